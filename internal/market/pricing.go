package market

import (
	"math"

	"github.com/yashchitneni/shipfast-sub003/internal/economy"
)

// Price modifier bounds: supply/demand pressure alone can at most halve a
// price or double it, before the condition multiplier and the hard clamp.
const (
	minPressureModifier = 0.4
	maxPressureModifier = 2.0

	// Hard clamp on the final price relative to base.
	priceFloorRatio   = 0.3
	priceCeilingRatio = 3.0
)

// Good is the live priced state of one commodity. RegionalModifier comes
// from the catalog's region table for the market being priced.
type Good struct {
	ID               string  `json:"id"`
	Category         string  `json:"category"`
	BasePrice        float64 `json:"base_price"`
	CurrentPrice     float64 `json:"current_price"`
	TotalSupply      float64 `json:"total_supply"`
	TotalDemand      float64 `json:"total_demand"`
	Volatility       float64 `json:"volatility"`
	RegionalModifier float64 `json:"regional_modifier"`
}

// UpdatePrices recomputes current prices for a set of goods against a market
// state. It is pure: the input slice is not mutated, and only price fields
// differ in the result. The invariant base*0.3 ≤ current ≤ base*3 holds for
// every returned good.
func UpdatePrices(goods []Good, state State, mods economy.Modifiers) []Good {
	out := make([]Good, len(goods))
	for i, g := range goods {
		out[i] = g
		out[i].CurrentPrice = resolvePrice(g, state, mods)
	}
	return out
}

// resolvePrice applies the supply/demand pressure formula for one good.
func resolvePrice(g Good, state State, mods economy.Modifiers) float64 {
	supply := g.TotalSupply * state.SupplyModifier
	demand := g.TotalDemand * state.DemandModifier

	// Floor of 1 on either side prevents division by zero and keeps a dead
	// market from producing unbounded pressure.
	if supply < 1 {
		supply = 1
	}
	if demand < 1 {
		demand = 1
	}

	pressure := math.Sqrt(demand / supply)
	pressure = clamp(pressure, minPressureModifier, maxPressureModifier)

	// Volatile goods overshoot equilibrium; stable goods barely move, and a
	// zero-volatility good holds its base price regardless of pressure.
	vol := g.Volatility * state.VolatilityFactor * mods.MarketVolatility
	if vol < 0 {
		vol = 0
	}
	pressure = clamp(1+(pressure-1)*vol, minPressureModifier, maxPressureModifier)

	regional := g.RegionalModifier
	if regional <= 0 {
		regional = 1.0
	}

	price := g.BasePrice * regional * pressure * state.Condition.Multiplier()
	price = clamp(price, g.BasePrice*priceFloorRatio, g.BasePrice*priceCeilingRatio)

	return round2(price)
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
