// Package economy holds the shared modifier state that scales pricing and
// route profitability: efficiency bonuses, disaster penalties, market
// volatility, and policy effects.
package economy

// MaxDisasterPenalty is the hard cap on the disaster penalty. Severity
// beyond this is clamped, never accumulated past it.
const MaxDisasterPenalty = 0.5

// Modifiers are the global economic dials. Each one is applied either
// multiplicatively or additively depending on the formula it feeds.
type Modifiers struct {
	AssetEfficiency     float64 `json:"asset_efficiency"`
	SpecialistBonus     float64 `json:"specialist_bonus"`
	MarketVolatility    float64 `json:"market_volatility"`
	DisasterPenalty     float64 `json:"disaster_penalty"`
	CompetitionPressure float64 `json:"competition_pressure"`
	GovernmentSubsidy   float64 `json:"government_subsidy"`
}

// DefaultModifiers returns the neutral modifier set.
func DefaultModifiers() Modifiers {
	return Modifiers{
		AssetEfficiency:  1.0,
		MarketVolatility: 1.0,
	}
}

// SetDisasterPenalty overwrites the disaster penalty from a reported
// severity, clamped to the hard cap. Negative severity clears the penalty.
func (m *Modifiers) SetDisasterPenalty(severity float64) {
	if severity < 0 {
		severity = 0
	}
	if severity > MaxDisasterPenalty {
		severity = MaxDisasterPenalty
	}
	m.DisasterPenalty = severity
}

// SetSpecialistBonus overwrites the specialist bonus. Repeated calls with
// the same value are idempotent.
func (m *Modifiers) SetSpecialistBonus(value float64) {
	m.SpecialistBonus = value
}
