package economy

// DisasterKind classifies disruptive events that apply an economy-wide
// penalty while active.
type DisasterKind string

const (
	DisasterStorm      DisasterKind = "storm"
	DisasterPortStrike DisasterKind = "port_strike"
	DisasterPiracy     DisasterKind = "piracy"
	DisasterEmbargo    DisasterKind = "embargo"
)

// Disaster is an active disruption with a severity in [0,1]. The effective
// penalty it contributes is capped by MaxDisasterPenalty.
type Disaster struct {
	Kind        DisasterKind `json:"kind"`
	Severity    float64      `json:"severity"`
	Description string       `json:"description"`
	Region      string       `json:"region,omitempty"`
}

// EffectivePenalty returns the penalty a set of concurrent disasters applies.
// The worst severity wins; disasters do not stack past the hard cap, so a
// fleet caught in both a storm and a strike is penalized once at the higher
// severity.
func EffectivePenalty(disasters []Disaster) float64 {
	worst := 0.0
	for _, d := range disasters {
		if d.Severity > worst {
			worst = d.Severity
		}
	}
	if worst > MaxDisasterPenalty {
		worst = MaxDisasterPenalty
	}
	return worst
}
