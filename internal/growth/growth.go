// Package growth projects profit forward under a daily-compounding rate
// composed of several signed components.
package growth

import (
	"fmt"
	"math"
)

const daysPerYear = 365

// Params are the components of the effective annual rate. Bonuses add,
// penalties and interest subtract.
type Params struct {
	CurrentProfit     float64 `json:"current_profit"`
	BaseRate          float64 `json:"base_rate"`
	LaborBonuses      float64 `json:"labor_bonuses"`
	AIBonus           float64 `json:"ai_bonus"`
	DisasterPenalties float64 `json:"disaster_penalties"`
	LoanInterestRates float64 `json:"loan_interest_rates"`
	TimeDays          int     `json:"time_days"`
}

// EffectiveRate returns the net annual rate after all signed components.
func (p Params) EffectiveRate() float64 {
	return p.BaseRate + p.LaborBonuses + p.AIBonus - p.DisasterPenalties - p.LoanInterestRates
}

// Compound projects the profit forward TimeDays days under daily
// compounding: profit * (1 + rate/365)^days. Pure and deterministic.
func Compound(p Params) (float64, error) {
	if p.TimeDays < 0 {
		return 0, fmt.Errorf("compound growth: negative time %d days", p.TimeDays)
	}
	result := p.CurrentProfit * math.Pow(1+p.EffectiveRate()/daysPerYear, float64(p.TimeDays))
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("compound growth: non-finite result from rate %v over %d days", p.EffectiveRate(), p.TimeDays)
	}
	return result, nil
}
