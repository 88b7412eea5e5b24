// Package catalog holds the immutable reference data for the trade network:
// goods, locations, and asset definitions. It is loaded once at startup,
// validated, and never mutated afterward.
package catalog

import "math"

// Position is a point on the 2D trade map.
type Position struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Distance returns the Euclidean distance between two positions.
func Distance(a, b Position) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Good is a tradeable commodity definition. BasePrice is the anchor the
// pricing engine clamps around; Volatility scales how far supply/demand
// pressure can push the price off that anchor.
type Good struct {
	ID         string  `yaml:"id" json:"id"`
	Name       string  `yaml:"name" json:"name"`
	Category   string  `yaml:"category" json:"category"`
	BasePrice  float64 `yaml:"base_price" json:"base_price"`
	Volatility float64 `yaml:"volatility" json:"volatility"`
}

// Location is a node in the trade network — a port, city, or depot with
// a local market.
type Location struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Position    Position `yaml:"position" json:"position"`
	Region      string  `yaml:"region" json:"region"`
	Capacity    float64 `yaml:"capacity" json:"capacity"`
	Utilization float64 `yaml:"utilization" json:"utilization"` // 0..1

	// Per-good local price modifiers. Exports make a good cheaper to buy
	// here, imports make it sell higher.
	ExportModifiers map[string]float64 `yaml:"export_modifiers" json:"export_modifiers,omitempty"`
	ImportModifiers map[string]float64 `yaml:"import_modifiers" json:"import_modifiers,omitempty"`
}

// AreaEffect is a radius-bounded bonus a placed asset grants to nearby
// locations. The radius boundary is inclusive.
type AreaEffect struct {
	Radius     float64 `yaml:"radius" json:"radius"`
	EffectType string  `yaml:"effect_type" json:"effect_type"`
	Value      float64 `yaml:"value" json:"value"`
}

// Storage subtypes for warehouse-class assets.
const (
	StorageStandard    = "standard"
	StorageSpecialized = "specialized"
)

// AssetDefinition describes a purchasable asset template: a vehicle or
// facility with cost, capacity, and an optional area effect.
type AssetDefinition struct {
	ID              string             `yaml:"id" json:"id"`
	Name            string             `yaml:"name" json:"name"`
	Kind            string             `yaml:"kind" json:"kind"` // "transport", "warehouse", "facility"
	Cost            float64            `yaml:"cost" json:"cost"`
	MaintenanceCost float64            `yaml:"maintenance_cost" json:"maintenance_cost"`
	Capacity        float64            `yaml:"capacity" json:"capacity"`
	Efficiency      float64            `yaml:"efficiency" json:"efficiency"`
	StorageType     string             `yaml:"storage_type,omitempty" json:"storage_type,omitempty"`
	Bonuses         map[string]float64 `yaml:"bonuses,omitempty" json:"bonuses,omitempty"`
	AreaEffect      *AreaEffect        `yaml:"area_effect,omitempty" json:"area_effect,omitempty"`
}

// Catalog is the full set of reference data. Treat as read-only after Load.
type Catalog struct {
	Goods     []Good            `yaml:"goods"`
	Locations []Location        `yaml:"locations"`
	Assets    []AssetDefinition `yaml:"assets"`

	// Region name → price multiplier applied by the pricing engine.
	RegionalModifiers map[string]float64 `yaml:"regional_modifiers"`

	goodIndex     map[string]*Good
	locationIndex map[string]*Location
	assetIndex    map[string]*AssetDefinition
}

// GoodByID returns a good definition, or nil if unknown.
func (c *Catalog) GoodByID(id string) *Good {
	return c.goodIndex[id]
}

// LocationByID returns a location, or nil if unknown.
func (c *Catalog) LocationByID(id string) *Location {
	return c.locationIndex[id]
}

// AssetByID returns an asset definition, or nil if unknown.
func (c *Catalog) AssetByID(id string) *AssetDefinition {
	return c.assetIndex[id]
}

// RegionalModifier returns the price multiplier for a region (1.0 when the
// region carries no modifier).
func (c *Catalog) RegionalModifier(region string) float64 {
	if m, ok := c.RegionalModifiers[region]; ok {
		return m
	}
	return 1.0
}

// AssetDefinitionIndex returns the definitions keyed by id, for callers that
// resolve many placed assets at once.
func (c *Catalog) AssetDefinitionIndex() map[string]AssetDefinition {
	out := make(map[string]AssetDefinition, len(c.Assets))
	for _, a := range c.Assets {
		out[a.ID] = a
	}
	return out
}

func (c *Catalog) buildIndexes() {
	c.goodIndex = make(map[string]*Good, len(c.Goods))
	for i := range c.Goods {
		c.goodIndex[c.Goods[i].ID] = &c.Goods[i]
	}
	c.locationIndex = make(map[string]*Location, len(c.Locations))
	for i := range c.Locations {
		c.locationIndex[c.Locations[i].ID] = &c.Locations[i]
	}
	c.assetIndex = make(map[string]*AssetDefinition, len(c.Assets))
	for i := range c.Assets {
		c.assetIndex[c.Assets[i].ID] = &c.Assets[i]
	}
}
