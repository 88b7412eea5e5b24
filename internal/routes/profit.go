package routes

import (
	"fmt"
	"math"

	"github.com/yashchitneni/shipfast-sub003/internal/market"
)

// Per-level and per-specialist contributions to asset efficiency.
const (
	assetLevelStep      = 0.1
	specialistBonusStep = 0.05
)

// ProfitParams are the inputs to the route profit formula. The calculator
// is pure: no I/O, no randomness, identical inputs yield identical output.
type ProfitParams struct {
	Distance             float64
	BaseRatePerMile      float64
	CargoValueMultiplier float64
	AssetLevel           int
	SpecialistBonus      float64
	MarketCondition      market.Condition
	MaintenanceCostRate  float64
	DisasterPenalty      float64
}

// ProfitBreakdown is the per-modifier decomposition of a route's profit.
type ProfitBreakdown struct {
	BaseProfit              float64 `json:"base_profit"`
	AssetEfficiencyModifier float64 `json:"asset_efficiency_modifier"`
	MarketConditionModifier float64 `json:"market_condition_modifier"`
	MaintenanceModifier     float64 `json:"maintenance_modifier"`
	TotalProfit             float64 `json:"total_profit"`
}

// CalculateProfit converts route and asset parameters into a profit
// breakdown. A non-finite result is a CalculationError — the enclosing
// revenue cycle aborts rather than posting garbage to the ledger.
func CalculateProfit(p ProfitParams) (ProfitBreakdown, error) {
	b := ProfitBreakdown{
		BaseProfit:              p.Distance * p.BaseRatePerMile * p.CargoValueMultiplier,
		AssetEfficiencyModifier: 1 + float64(p.AssetLevel)*assetLevelStep + p.SpecialistBonus*specialistBonusStep,
		MarketConditionModifier: p.MarketCondition.Multiplier(),
		MaintenanceModifier:     1 - p.MaintenanceCostRate,
	}
	b.TotalProfit = b.BaseProfit *
		b.AssetEfficiencyModifier *
		b.MarketConditionModifier *
		b.MaintenanceModifier *
		(1 - p.DisasterPenalty)

	if !isFinite(b.BaseProfit) || !isFinite(b.TotalProfit) {
		return ProfitBreakdown{}, &CalculationError{
			Op:     "route profit",
			Detail: fmt.Sprintf("non-finite result for distance=%v rate=%v", p.Distance, p.BaseRatePerMile),
		}
	}
	return b, nil
}

// CalculationError reports unexpected numeric state in a calculation.
type CalculationError struct {
	Op     string
	Detail string
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("calculation error in %s: %s", e.Op, e.Detail)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
