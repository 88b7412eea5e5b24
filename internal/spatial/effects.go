// Package spatial resolves the area effects placed assets grant to nearby
// locations, plus the storage-network and utilization formulas. Everything
// here is a pure function over immutable inputs.
package spatial

import (
	"github.com/yashchitneni/shipfast-sub003/internal/catalog"
)

// Source is a placed asset considered as an effect emitter. Callers map
// their owned assets down to this shape.
type Source struct {
	ID           string
	DefinitionID string
	Position     catalog.Position
}

// Target is anything an area effect can land on.
type Target struct {
	ID       string
	Type     string // "location", "asset", ...
	Position catalog.Position
}

// Effect is one resolved bonus from one source onto one target.
type Effect struct {
	TargetID   string  `json:"target_id"`
	TargetType string  `json:"target_type"`
	EffectType string  `json:"effect_type"`
	Value      float64 `json:"value"`
	Distance   float64 `json:"distance"`
}

// AreaEffects computes, for every source whose definition declares an area
// effect, which targets fall inside its radius. The radius boundary is
// inclusive: a target exactly at the radius receives the effect.
func AreaEffects(sources []Source, defs map[string]catalog.AssetDefinition, targets []Target) map[string][]Effect {
	out := make(map[string][]Effect)
	for _, src := range sources {
		def, ok := defs[src.DefinitionID]
		if !ok || def.AreaEffect == nil {
			continue
		}
		ae := def.AreaEffect
		for _, tgt := range targets {
			d := catalog.Distance(src.Position, tgt.Position)
			if d > ae.Radius {
				continue
			}
			out[src.ID] = append(out[src.ID], Effect{
				TargetID:   tgt.ID,
				TargetType: tgt.Type,
				EffectType: ae.EffectType,
				Value:      ae.Value,
				Distance:   d,
			})
		}
	}
	return out
}

// CumulativeEffects sums every effect of every source landing on one target,
// keyed by effect type. Stacking is plain addition — diminishing returns,
// if any, are applied by the formula that consumes the sum.
func CumulativeEffects(targetID, targetType string, bySource map[string][]Effect) map[string]float64 {
	sums := make(map[string]float64)
	for _, effects := range bySource {
		for _, e := range effects {
			if e.TargetID == targetID && e.TargetType == targetType {
				sums[e.EffectType] += e.Value
			}
		}
	}
	return sums
}
