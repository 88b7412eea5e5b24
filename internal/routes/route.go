// Package routes defines trade routes and the pure profitability
// calculator. Profitability is always derived — recomputed on demand or
// once per revenue cycle, never stored as an authoritative value.
package routes

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yashchitneni/shipfast-sub003/internal/catalog"
)

// Route is a scheduled path between two locations serviced by assigned
// transport assets.
type Route struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Origin        string      `json:"origin"`      // location id
	Destination   string      `json:"destination"` // location id
	Waypoints     []string    `json:"waypoints"`   // ordered intermediate location ids
	DistanceMiles float64     `json:"distance_miles"`
	AssetIDs      []uuid.UUID `json:"asset_ids"`
	CargoGoodID   string      `json:"cargo_good_id"`
	CargoUnits    float64     `json:"cargo_units"`
	Active        bool        `json:"active"`
}

// New builds a route between two catalog locations, measuring distance
// through the ordered waypoints.
func New(name string, origin, dest *catalog.Location, waypoints ...*catalog.Location) *Route {
	r := &Route{
		ID:          uuid.New(),
		Name:        name,
		Origin:      origin.ID,
		Destination: dest.ID,
	}

	prev := origin.Position
	for _, wp := range waypoints {
		r.Waypoints = append(r.Waypoints, wp.ID)
		r.DistanceMiles += catalog.Distance(prev, wp.Position)
		prev = wp.Position
	}
	r.DistanceMiles += catalog.Distance(prev, dest.Position)

	return r
}

// AssignAsset attaches a transport asset to the route after checking the
// cargo load fits the asset's declared capacity.
func (r *Route) AssignAsset(assetID uuid.UUID, def *catalog.AssetDefinition) error {
	if def == nil {
		return fmt.Errorf("assign asset to route %s: unknown definition", r.Name)
	}
	if r.CargoUnits > def.Capacity {
		return &CapacityError{
			Resource:  def.Name,
			Limit:     def.Capacity,
			Requested: r.CargoUnits,
		}
	}
	r.AssetIDs = append(r.AssetIDs, assetID)
	return nil
}

// CapacityError reports a route or warehouse assignment exceeding a
// declared capacity. The assignment is rejected, nothing is mutated.
type CapacityError struct {
	Resource  string
	Limit     float64
	Requested float64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded on %s: requested %.0f of %.0f", e.Resource, e.Requested, e.Limit)
}
