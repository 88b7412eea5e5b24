package catalog

import (
	"math"
	"testing"
)

const sampleYAML = `
goods:
  - id: grain
    name: Grain
    category: bulk
    base_price: 12.5
    volatility: 1.0
  - id: electronics
    name: Electronics
    category: high_value
    base_price: 480
    volatility: 1.6
locations:
  - id: port_alpha
    name: Port Alpha
    position: {x: 0, y: 0}
    region: north
    capacity: 50000
    utilization: 0.4
    export_modifiers:
      grain: 0.9
  - id: port_beta
    name: Port Beta
    position: {x: 300, y: 400}
    region: south
    capacity: 80000
    utilization: 0.85
assets:
  - id: freighter_mk1
    name: Freighter Mk I
    kind: transport
    cost: 250000
    maintenance_cost: 1200
    capacity: 8000
    efficiency: 1.0
  - id: depot_standard
    name: Standard Depot
    kind: warehouse
    cost: 90000
    maintenance_cost: 400
    capacity: 15000
    efficiency: 1.0
    storage_type: standard
    area_effect:
      radius: 50
      effect_type: storage_discount
      value: 0.05
regional_modifiers:
  north: 1.1
  south: 0.95
`

func TestParseAndIndex(t *testing.T) {
	c, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	g := c.GoodByID("electronics")
	if g == nil {
		t.Fatal("expected electronics good")
	}
	if g.BasePrice != 480 {
		t.Errorf("electronics base price = %v, want 480", g.BasePrice)
	}

	loc := c.LocationByID("port_alpha")
	if loc == nil {
		t.Fatal("expected port_alpha location")
	}
	if loc.ExportModifiers["grain"] != 0.9 {
		t.Errorf("grain export modifier = %v, want 0.9", loc.ExportModifiers["grain"])
	}

	def := c.AssetByID("depot_standard")
	if def == nil || def.AreaEffect == nil {
		t.Fatal("expected depot_standard with area effect")
	}
	if def.AreaEffect.Radius != 50 {
		t.Errorf("radius = %v, want 50", def.AreaEffect.Radius)
	}

	if m := c.RegionalModifier("north"); m != 1.1 {
		t.Errorf("north modifier = %v, want 1.1", m)
	}
	if m := c.RegionalModifier("unknown"); m != 1.0 {
		t.Errorf("unknown region modifier = %v, want 1.0", m)
	}
}

func TestValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no goods", `locations: []`},
		{"duplicate good", `
goods:
  - {id: grain, base_price: 10}
  - {id: grain, base_price: 20}
`},
		{"zero base price", `
goods:
  - {id: grain, base_price: 0}
`},
		{"utilization out of range", `
goods:
  - {id: grain, base_price: 10}
locations:
  - {id: a, utilization: 1.4}
`},
		{"unknown good in modifiers", `
goods:
  - {id: grain, base_price: 10}
locations:
  - id: a
    export_modifiers:
      silk: 0.8
`},
		{"bad area effect radius", `
goods:
  - {id: grain, base_price: 10}
assets:
  - id: depot
    area_effect: {radius: 0, effect_type: x, value: 1}
`},
	}

	for _, tc := range cases {
		if _, err := Parse([]byte(tc.yaml)); err == nil {
			t.Errorf("%s: expected validation error, got nil", tc.name)
		}
	}
}

func TestDistance(t *testing.T) {
	a := Position{X: 0, Y: 0}
	b := Position{X: 300, Y: 400}
	if d := Distance(a, b); math.Abs(d-500) > 1e-9 {
		t.Errorf("Distance = %v, want 500", d)
	}
	if d := Distance(a, a); d != 0 {
		t.Errorf("Distance to self = %v, want 0", d)
	}
}
