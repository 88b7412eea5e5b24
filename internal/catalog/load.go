package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a catalog YAML file. Validation is strict: a
// schema mismatch fails the load rather than propagating undefined fields
// into the simulation.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML from memory and validates it.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return &c, nil
}

// Validate checks a programmatically assembled catalog and builds its
// lookup indexes. Load and Parse call it; callers that construct a
// Catalog directly must call it before use.
func (c *Catalog) Validate() error {
	if err := c.validate(); err != nil {
		return err
	}
	c.buildIndexes()
	return nil
}

func (c *Catalog) validate() error {
	if len(c.Goods) == 0 {
		return fmt.Errorf("catalog has no goods")
	}

	goodIDs := make(map[string]bool, len(c.Goods))
	for i, g := range c.Goods {
		if g.ID == "" {
			return fmt.Errorf("good %d: missing id", i)
		}
		if goodIDs[g.ID] {
			return fmt.Errorf("good %q: duplicate id", g.ID)
		}
		goodIDs[g.ID] = true
		if g.BasePrice <= 0 {
			return fmt.Errorf("good %q: base price must be positive, got %v", g.ID, g.BasePrice)
		}
		if g.Volatility < 0 {
			return fmt.Errorf("good %q: negative volatility %v", g.ID, g.Volatility)
		}
	}

	locIDs := make(map[string]bool, len(c.Locations))
	for i, l := range c.Locations {
		if l.ID == "" {
			return fmt.Errorf("location %d: missing id", i)
		}
		if locIDs[l.ID] {
			return fmt.Errorf("location %q: duplicate id", l.ID)
		}
		locIDs[l.ID] = true
		if l.Utilization < 0 || l.Utilization > 1 {
			return fmt.Errorf("location %q: utilization %v outside [0,1]", l.ID, l.Utilization)
		}
		if l.Capacity < 0 {
			return fmt.Errorf("location %q: negative capacity %v", l.ID, l.Capacity)
		}
		for goodID := range l.ExportModifiers {
			if !goodIDs[goodID] {
				return fmt.Errorf("location %q: export modifier for unknown good %q", l.ID, goodID)
			}
		}
		for goodID := range l.ImportModifiers {
			if !goodIDs[goodID] {
				return fmt.Errorf("location %q: import modifier for unknown good %q", l.ID, goodID)
			}
		}
	}

	assetIDs := make(map[string]bool, len(c.Assets))
	for i, a := range c.Assets {
		if a.ID == "" {
			return fmt.Errorf("asset %d: missing id", i)
		}
		if assetIDs[a.ID] {
			return fmt.Errorf("asset %q: duplicate id", a.ID)
		}
		assetIDs[a.ID] = true
		if a.Cost < 0 || a.MaintenanceCost < 0 {
			return fmt.Errorf("asset %q: negative cost", a.ID)
		}
		if a.Capacity < 0 {
			return fmt.Errorf("asset %q: negative capacity %v", a.ID, a.Capacity)
		}
		if ae := a.AreaEffect; ae != nil {
			if ae.Radius <= 0 {
				return fmt.Errorf("asset %q: area effect radius must be positive, got %v", a.ID, ae.Radius)
			}
			if ae.EffectType == "" {
				return fmt.Errorf("asset %q: area effect missing effect type", a.ID)
			}
		}
	}

	for region, mod := range c.RegionalModifiers {
		if mod <= 0 {
			return fmt.Errorf("region %q: modifier must be positive, got %v", region, mod)
		}
	}

	return nil
}
