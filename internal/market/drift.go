package market

import "math/rand"

// Condition transitions are sticky and move one tier at a time.
const conditionShiftChance = 0.1

// Drift advances the global market state one step. The condition walks at
// most one tier, and the global demand/supply modifiers random-walk inside
// [0.8, 1.2].
func Drift(rng *rand.Rand, s State) State {
	roll := rng.Float64()
	switch {
	case roll < conditionShiftChance && s.Condition > ConditionCrisis:
		s.Condition--
	case roll > 1-conditionShiftChance && s.Condition < ConditionBoom:
		s.Condition++
	}

	s.DemandModifier = clampMod(s.DemandModifier * (1 + (rng.Float64()-0.5)*0.04))
	s.SupplyModifier = clampMod(s.SupplyModifier * (1 + (rng.Float64()-0.5)*0.04))
	return s
}

// DriftGoods jitters each good's supply and demand a few percent, modelling
// background trade the player is not part of. Both stay at least 1.
func DriftGoods(rng *rand.Rand, goods []Good) []Good {
	out := make([]Good, len(goods))
	copy(out, goods)
	for i := range out {
		out[i].TotalSupply = floorOne(out[i].TotalSupply * (1 + (rng.Float64()-0.5)*0.06))
		out[i].TotalDemand = floorOne(out[i].TotalDemand * (1 + (rng.Float64()-0.5)*0.06))
	}
	return out
}

func clampMod(v float64) float64 {
	if v < 0.8 {
		return 0.8
	}
	if v > 1.2 {
		return 1.2
	}
	return v
}

func floorOne(v float64) float64 {
	if v < 1 {
		return 1
	}
	return v
}
