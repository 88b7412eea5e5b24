// Package market implements the pricing engine: it recomputes each good's
// current price from supply/demand pressure, volatility, and the global
// market condition, and publishes the result as an atomic snapshot.
package market

import "fmt"

// Condition is the global market condition, ordered worst to best.
type Condition uint8

const (
	ConditionCrisis Condition = iota
	ConditionRecession
	ConditionNormal
	ConditionBoom
)

// Multiplier returns the price/profit multiplier for a condition.
// Boom is pinned at 1.3; the table is monotonic across the ordering.
func (c Condition) Multiplier() float64 {
	switch c {
	case ConditionCrisis:
		return 0.7
	case ConditionRecession:
		return 0.85
	case ConditionBoom:
		return 1.3
	default:
		return 1.0
	}
}

func (c Condition) String() string {
	switch c {
	case ConditionCrisis:
		return "crisis"
	case ConditionRecession:
		return "recession"
	case ConditionNormal:
		return "normal"
	case ConditionBoom:
		return "boom"
	}
	return fmt.Sprintf("Condition(%d)", uint8(c))
}

// ParseCondition maps a condition name to its enum value.
func ParseCondition(s string) (Condition, error) {
	switch s {
	case "crisis":
		return ConditionCrisis, nil
	case "recession":
		return ConditionRecession, nil
	case "normal":
		return ConditionNormal, nil
	case "boom":
		return ConditionBoom, nil
	}
	return ConditionNormal, fmt.Errorf("unknown market condition %q", s)
}

// State is the global market state the pricing engine reads.
type State struct {
	Condition        Condition `json:"condition"`
	VolatilityFactor float64   `json:"volatility_factor"`
	DemandModifier   float64   `json:"demand_modifier"` // global demand scale
	SupplyModifier   float64   `json:"supply_modifier"` // global supply scale
}

// NormalState returns a neutral market state.
func NormalState() State {
	return State{
		Condition:        ConditionNormal,
		VolatilityFactor: 1.0,
		DemandModifier:   1.0,
		SupplyModifier:   1.0,
	}
}
