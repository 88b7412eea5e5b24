// Package worldgen builds a demo trade network from layered simplex noise.
// A prosperity field drives where ports cluster and how much throughput
// they handle; a scarcity field skews each local market's supply and
// demand so routes have price gradients worth sailing.
package worldgen

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/yashchitneni/shipfast-sub003/internal/catalog"
	"github.com/yashchitneni/shipfast-sub003/internal/market"
)

// GenConfig holds network generation parameters.
type GenConfig struct {
	Seed          int64   // 0 = random
	LocationCount int     // ports to place
	MapSize       float64 // world edge length, miles
}

// DefaultGenConfig returns a network sized for the demo simulation.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:          0,
		LocationCount: 12,
		MapSize:       5000,
	}
}

// SmallTestConfig returns a tiny deterministic network.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Seed:          42,
		LocationCount: 4,
		MapSize:       1000,
	}
}

var regionNames = [...]string{"north", "east", "south", "west"}

var portSyllables = [...]string{
	"val", "mar", "ost", "dun", "kel", "bar", "tor", "hav", "lin", "cor",
	"sel", "nor", "gra", "vis", "pel", "ash",
}

// Generate places locations on the map and derives per-region price
// modifiers. The same seed always produces the same network.
func Generate(cfg GenConfig, goods []catalog.Good) ([]catalog.Location, map[string]float64) {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	prosperity := opensimplex.NewNormalized(seed)
	scarcity := opensimplex.NewNormalized(seed + 1)
	rng := rand.New(rand.NewSource(seed))

	locations := make([]catalog.Location, 0, cfg.LocationCount)
	used := make(map[string]bool)

	for i := 0; i < cfg.LocationCount; i++ {
		pos := placePort(rng, prosperity, cfg.MapSize)

		// Sample noise in a stable unit space so MapSize changes don't
		// reshuffle the whole economy.
		nx, ny := pos.X/cfg.MapSize, pos.Y/cfg.MapSize
		wealth := octaveNoise(prosperity, nx, ny, 3, 4.0, 0.5)

		loc := catalog.Location{
			ID:          portID(rng, used),
			Position:    pos,
			Region:      regionFor(pos, cfg.MapSize),
			Capacity:    math.Round(20000 + wealth*80000),
			Utilization: round2(0.2 + wealth*0.6),
		}
		loc.Name = displayName(loc.ID)

		// Rich ports import finished goods and export surplus commodities;
		// poorer ones the reverse. The scarcity field decides which goods.
		loc.ExportModifiers = make(map[string]float64)
		loc.ImportModifiers = make(map[string]float64)
		for _, g := range goods {
			gs := octaveNoise(scarcity, nx+goodOffset(g.ID), ny, 2, 6.0, 0.5)
			switch {
			case gs > 0.62:
				loc.ExportModifiers[g.ID] = round2(0.75 + gs*0.15)
			case gs < 0.38:
				loc.ImportModifiers[g.ID] = round2(1.1 + (0.38-gs)*0.5)
			}
		}

		locations = append(locations, loc)
	}

	modifiers := regionalModifiers(prosperity, cfg.MapSize)
	return locations, modifiers
}

// SeedMarket derives initial supply and demand for each good from the
// scarcity field, so prices start off-balance and drift toward base as
// the simulation trades.
func SeedMarket(cfg GenConfig, goods []catalog.Good, modifiers map[string]float64) []market.Good {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	scarcity := opensimplex.NewNormalized(seed + 1)

	out := make([]market.Good, 0, len(goods))
	for _, g := range goods {
		gs := octaveNoise(scarcity, goodOffset(g.ID), 0.5, 2, 6.0, 0.5)

		// gs near 1 means scarce: low supply, high demand.
		supply := math.Round(400 + (1-gs)*800)
		demand := math.Round(400 + gs*800)

		out = append(out, market.Good{
			ID:               g.ID,
			Category:         g.Category,
			BasePrice:        g.BasePrice,
			TotalSupply:      supply,
			TotalDemand:      demand,
			Volatility:       g.Volatility,
			RegionalModifier: 1.0,
		})
	}
	return out
}

// placePort samples candidate positions and keeps the most prosperous,
// clustering ports along the field's ridges.
func placePort(rng *rand.Rand, noise opensimplex.Noise, mapSize float64) catalog.Position {
	best := catalog.Position{}
	bestScore := -1.0
	for c := 0; c < 8; c++ {
		p := catalog.Position{
			X: math.Round(rng.Float64() * mapSize),
			Y: math.Round(rng.Float64() * mapSize),
		}
		score := octaveNoise(noise, p.X/mapSize, p.Y/mapSize, 3, 4.0, 0.5)
		if score > bestScore {
			best, bestScore = p, score
		}
	}
	return best
}

// regionFor splits the map into quadrants.
func regionFor(p catalog.Position, mapSize float64) string {
	idx := 0
	if p.X >= mapSize/2 {
		idx |= 1
	}
	if p.Y >= mapSize/2 {
		idx |= 2
	}
	return regionNames[idx]
}

// regionalModifiers prices each quadrant off its average prosperity,
// clamped to a modest band so no region dominates outright.
func regionalModifiers(noise opensimplex.Noise, mapSize float64) map[string]float64 {
	centers := map[string][2]float64{
		"north": {0.25, 0.25},
		"east":  {0.75, 0.25},
		"south": {0.25, 0.75},
		"west":  {0.75, 0.75},
	}
	out := make(map[string]float64, len(centers))
	for region, c := range centers {
		wealth := octaveNoise(noise, c[0], c[1], 3, 4.0, 0.5)
		out[region] = round2(clamp(0.85+wealth*0.3, 0.85, 1.15))
	}
	return out
}

func portID(rng *rand.Rand, used map[string]bool) string {
	for {
		id := portSyllables[rng.Intn(len(portSyllables))] + portSyllables[rng.Intn(len(portSyllables))]
		if !used[id] {
			used[id] = true
			return id
		}
	}
}

func displayName(id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf("Port %s%s", string(id[0]-'a'+'A'), id[1:])
}

// goodOffset shifts the noise sample per good so goods are scarce in
// different places.
func goodOffset(id string) float64 {
	h := 0.0
	for _, c := range id {
		h += float64(c)
	}
	return math.Mod(h/97, 10)
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
