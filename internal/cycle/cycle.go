// Package cycle runs the periodic revenue cycle: it prices every active
// route against the current market, accumulates categorized revenues and
// expenses, and posts the totals to the financial ledger as one atomic
// transaction. A cycle is all-or-nothing — any calculation failure leaves
// the ledger untouched and the cycle is retried on the next tick.
package cycle

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yashchitneni/shipfast-sub003/internal/catalog"
	"github.com/yashchitneni/shipfast-sub003/internal/ledger"
	"github.com/yashchitneni/shipfast-sub003/internal/market"
	"github.com/yashchitneni/shipfast-sub003/internal/notify"
	"github.com/yashchitneni/shipfast-sub003/internal/routes"
)

// State is the orchestrator's cycle state. Terminal states return to
// pending when the next interval begins.
type State uint8

const (
	StatePending State = iota
	StateProcessing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Config are the economic parameters of a revenue cycle.
type Config struct {
	Interval        time.Duration
	BaseRatePerMile float64
	CostRates       routes.CostRates

	// Cargo value multiplier by good category; goods in unlisted
	// categories use 1.0.
	CargoValueByCategory map[string]float64
}

// DefaultConfig returns cycle parameters tuned for the demo network.
func DefaultConfig() Config {
	return Config{
		Interval:        time.Minute,
		BaseRatePerMile: 2.5,
		CostRates: routes.CostRates{
			FuelPerMile:       0.4,
			CrewPerMile:       0.25,
			PortFeePerCall:    150,
			InsuranceRate:     0.015,
			MaintenancePerDay: 75,
		},
		CargoValueByCategory: map[string]float64{
			"bulk":       1.0,
			"standard":   1.2,
			"perishable": 1.3,
			"high_value": 1.5,
		},
	}
}

// Orchestrator drives revenue cycles off an external tick signal.
type Orchestrator struct {
	cfg     Config
	catalog *catalog.Catalog
	board   *market.Board
	ledger  *ledger.Ledger
	bus     *notify.Bus

	// ActiveRoutes supplies the routes to price each cycle.
	activeRoutes func() []*routes.Route

	// Reentrancy guard: a tick arriving while a cycle is processing is
	// dropped, not queued.
	inFlight atomic.Bool

	mu            sync.Mutex
	state         State
	nextCycleTime time.Time
	cycleCount    uint64
	lastSummary   *Summary
	prevSummary   *Summary
	lastErr       error
}

// New creates an orchestrator. The first cycle is due immediately.
func New(cfg Config, cat *catalog.Catalog, board *market.Board, led *ledger.Ledger, bus *notify.Bus, activeRoutes func() []*routes.Route) *Orchestrator {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Orchestrator{
		cfg:          cfg,
		catalog:      cat,
		board:        board,
		ledger:       led,
		bus:          bus,
		activeRoutes: activeRoutes,
		state:        StatePending,
	}
}

// State returns the current cycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// NextCycleTime returns when the next cycle is due.
func (o *Orchestrator) NextCycleTime() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nextCycleTime
}

// LastSummary returns the most recent completed cycle summary, or nil.
func (o *Orchestrator) LastSummary() *Summary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastSummary
}

// Tick is the external clock signal. If a cycle is due it runs one to
// completion synchronously and returns its summary. A tick that lands
// while another is processing is dropped — the ledger sees at most one
// posting per interval. A tick before the due time is a no-op.
func (o *Orchestrator) Tick(now time.Time) (*Summary, error) {
	o.mu.Lock()
	due := !now.Before(o.nextCycleTime)
	if !due && o.state == StateCompleted {
		// A completed cycle returns to pending while the next one waits
		// out its interval.
		o.state = StatePending
	}
	o.mu.Unlock()
	if !due {
		return nil, nil
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		slog.Debug("revenue cycle tick dropped, previous cycle still processing")
		return nil, nil
	}
	defer o.inFlight.Store(false)

	o.setState(StateProcessing)

	summary, err := o.runCycle(now)
	if err != nil {
		// Fail closed: no ledger mutation happened. Retried next tick.
		o.mu.Lock()
		o.state = StateFailed
		o.lastErr = err
		o.mu.Unlock()
		slog.Error("revenue cycle failed", "error", err)
		return nil, err
	}

	o.mu.Lock()
	o.state = StateCompleted
	o.cycleCount++
	summary.Cycle = o.cycleCount
	o.prevSummary = o.lastSummary
	o.lastSummary = summary
	o.nextCycleTime = now.Add(o.cfg.Interval)
	o.lastErr = nil
	o.mu.Unlock()

	o.publishEvents(summary)

	slog.Info("revenue cycle completed",
		"cycle", summary.Cycle,
		"routes", len(summary.Routes),
		"revenue", fmt.Sprintf("%.2f", summary.TotalRevenue),
		"expenses", fmt.Sprintf("%.2f", summary.TotalExpenses),
		"net", fmt.Sprintf("%.2f", summary.NetProfit),
	)
	return summary, nil
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// runCycle prices every active route and posts the totals. All pricing
// happens before any ledger mutation, so an error anywhere aborts cleanly.
func (o *Orchestrator) runCycle(now time.Time) (*Summary, error) {
	snap := o.board.Current()
	mods := o.ledger.Modifiers()
	cycleDays := o.cfg.Interval.Hours() / 24
	if cycleDays <= 0 {
		cycleDays = 1.0 / 1440 // sub-minute intervals still bill a minute of maintenance
	}

	active := o.activeRoutes()

	var results []routes.Profitability
	totalRevenue := 0.0
	expensesByCategory := make(map[string]float64)

	for _, r := range active {
		if !r.Active {
			continue
		}

		params := routes.ProfitParams{
			Distance:             r.DistanceMiles,
			BaseRatePerMile:      o.cfg.BaseRatePerMile,
			CargoValueMultiplier: o.cargoValue(r.CargoGoodID),
			AssetLevel:           len(r.AssetIDs),
			SpecialistBonus:      mods.SpecialistBonus,
			MarketCondition:      snap.State.Condition,
			MaintenanceCostRate:  o.maintenanceRate(r),
			DisasterPenalty:      mods.DisasterPenalty,
		}

		prof, err := routes.Evaluate(r, params, o.cfg.CostRates, cycleDays)
		if err != nil {
			return nil, fmt.Errorf("price route %s: %w", r.Name, err)
		}

		results = append(results, prof)
		totalRevenue += prof.Revenue
		for cat, amount := range prof.Costs {
			expensesByCategory[cat] += amount
		}
	}

	totalExpenses := 0.0
	for _, amount := range expensesByCategory {
		totalExpenses += amount
	}

	summary := newSummary(now, results, totalRevenue, totalExpenses, expensesByCategory, o.assetUtilization(active))

	if totalRevenue > 0 || totalExpenses > 0 {
		desc := fmt.Sprintf("revenue cycle %s", now.UTC().Format(time.RFC3339))
		if _, err := o.ledger.PostCycle(totalRevenue, totalExpenses, desc); err != nil {
			return nil, fmt.Errorf("post cycle to ledger: %w", err)
		}
	}

	return summary, nil
}

// cargoValue resolves the cargo value multiplier from the good's category.
func (o *Orchestrator) cargoValue(goodID string) float64 {
	if o.catalog == nil {
		return 1.0
	}
	g := o.catalog.GoodByID(goodID)
	if g == nil {
		return 1.0
	}
	if mult, ok := o.cfg.CargoValueByCategory[g.Category]; ok {
		return mult
	}
	return 1.0
}

// maintenanceRate derives the route's maintenance cost rate from the
// assets actually assigned to it: each one contributes its definition's
// maintenance cost as a fraction of purchase cost, averaged over the
// route's fleet.
func (o *Orchestrator) maintenanceRate(r *routes.Route) float64 {
	if o.catalog == nil || len(r.AssetIDs) == 0 {
		return 0
	}
	total, count := 0.0, 0
	for _, id := range r.AssetIDs {
		asset, ok := o.ledger.AssetByID(id)
		if !ok {
			continue
		}
		def := o.catalog.AssetByID(asset.DefinitionID)
		if def == nil || def.Cost <= 0 {
			continue
		}
		total += def.MaintenanceCost / def.Cost
		count++
	}
	if count == 0 {
		return 0
	}
	rate := total / float64(count)
	if rate > 0.5 {
		rate = 0.5
	}
	return rate
}

// assetUtilization is the share of owned assets assigned to active routes.
func (o *Orchestrator) assetUtilization(active []*routes.Route) float64 {
	owned := o.ledger.Snapshot().AssetCount
	if owned == 0 {
		return 0
	}
	assigned := make(map[string]bool)
	for _, r := range active {
		if !r.Active {
			continue
		}
		for _, id := range r.AssetIDs {
			assigned[id.String()] = true
		}
	}
	ratio := float64(len(assigned)) / float64(owned)
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

func (o *Orchestrator) publishEvents(s *Summary) {
	if o.bus == nil {
		return
	}
	if s.TotalRevenue > 0 {
		o.bus.Publish(notify.Event{
			Type:        notify.RevenueGenerated,
			Amount:      s.TotalRevenue,
			Description: fmt.Sprintf("cycle %d route revenue across %d routes", s.Cycle, len(s.Routes)),
			Timestamp:   s.CompletedAt,
		})
	}
	if s.TotalExpenses > 0 {
		o.bus.Publish(notify.Event{
			Type:        notify.ExpenseIncurred,
			Amount:      s.TotalExpenses,
			Description: fmt.Sprintf("cycle %d operating expenses", s.Cycle),
			Timestamp:   s.CompletedAt,
		})
	}
	o.bus.Publish(notify.Event{
		Type:        notify.CycleCompleted,
		Amount:      s.NetProfit,
		Description: fmt.Sprintf("cycle %d net profit", s.Cycle),
		Timestamp:   s.CompletedAt,
	})
}
