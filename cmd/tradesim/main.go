// Command tradesim runs the trade network economic simulation.
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/yashchitneni/shipfast-sub003/internal/api"
	"github.com/yashchitneni/shipfast-sub003/internal/catalog"
	"github.com/yashchitneni/shipfast-sub003/internal/config"
	"github.com/yashchitneni/shipfast-sub003/internal/cycle"
	"github.com/yashchitneni/shipfast-sub003/internal/growth"
	"github.com/yashchitneni/shipfast-sub003/internal/ledger"
	"github.com/yashchitneni/shipfast-sub003/internal/market"
	"github.com/yashchitneni/shipfast-sub003/internal/notify"
	"github.com/yashchitneni/shipfast-sub003/internal/persistence"
	"github.com/yashchitneni/shipfast-sub003/internal/routes"
	"github.com/yashchitneni/shipfast-sub003/internal/spatial"
	"github.com/yashchitneni/shipfast-sub003/internal/worldgen"
)

// Built-in reference data for the procedural network. A catalog file, when
// configured, replaces all of this.
var demoGoods = []catalog.Good{
	{ID: "grain", Name: "Grain", Category: "bulk", BasePrice: 12.5, Volatility: 1.0},
	{ID: "fuel", Name: "Fuel Oil", Category: "bulk", BasePrice: 85, Volatility: 1.2},
	{ID: "machinery", Name: "Machinery", Category: "standard", BasePrice: 220, Volatility: 0.9},
	{ID: "produce", Name: "Fresh Produce", Category: "perishable", BasePrice: 45, Volatility: 1.4},
	{ID: "electronics", Name: "Electronics", Category: "high_value", BasePrice: 480, Volatility: 1.5},
}

var demoAssets = []catalog.AssetDefinition{
	{ID: "coastal-freighter", Name: "Coastal Freighter", Kind: "transport", Cost: 25000, MaintenanceCost: 500, Capacity: 4000, Efficiency: 1.0},
	{ID: "bulk-carrier", Name: "Bulk Carrier", Kind: "transport", Cost: 90000, MaintenanceCost: 2200, Capacity: 12000, Efficiency: 0.9},
	{
		ID: "harbor-warehouse", Name: "Harbor Warehouse", Kind: "warehouse",
		Cost: 20000, MaintenanceCost: 300, Capacity: 50000,
		StorageType: catalog.StorageStandard,
		AreaEffect:  &catalog.AreaEffect{Radius: 400, EffectType: "logistics", Value: 0.05},
	},
}

func main() {
	cfgPath := os.Getenv("TRADESIM_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("tradesim starting", "seed", cfg.Seed, "port", cfg.Port)

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Trade Network (catalog file, or procedural from seed) ─────────
	cat, err := buildNetwork(cfg)
	if err != nil {
		slog.Error("failed to build trade network", "error", err)
		os.Exit(1)
	}
	slog.Info("trade network ready",
		"goods", len(cat.Goods),
		"locations", len(cat.Locations),
		"asset_types", len(cat.Assets),
	)

	// ── Market ────────────────────────────────────────────────────────
	genCfg := worldgen.DefaultGenConfig()
	genCfg.Seed = cfg.Seed
	genCfg.LocationCount = cfg.LocationCount

	seeded := worldgen.SeedMarket(genCfg, cat.Goods, cat.RegionalModifiers)
	board := market.NewBoard(seeded, market.NormalState())

	// ── Player Ledger ─────────────────────────────────────────────────
	led := ledger.New(cfg.PlayerID, cfg.StartingCash)
	led.SetLoanCeiling(cfg.LoanCeiling)

	writer := persistence.NewWriter(db, cfg.PlayerID)
	led.SetRecordSink(writer.Enqueue)

	bus := notify.NewBus()

	// Notification events drain to the database off the calculation path.
	eventSub := bus.Subscribe()
	go func() {
		for evt := range eventSub {
			if err := db.SaveEvents([]notify.Event{evt}); err != nil {
				slog.Error("persist event failed", "error", err)
			}
		}
	}()

	// ── Starting Fleet and Routes ─────────────────────────────────────
	fleet, routeList, err := bootstrapFleet(cat, led)
	if err != nil {
		slog.Error("failed to bootstrap fleet", "error", err)
		os.Exit(1)
	}
	slog.Info("fleet ready", "assets", len(fleet), "routes", len(routeList))

	applyStorageNetwork(cat, led)

	// ── Revenue Cycle Orchestrator ────────────────────────────────────
	cycleCfg := cycle.DefaultConfig()
	cycleCfg.Interval = cfg.CycleInterval.Std()
	orch := cycle.New(cycleCfg, cat, board, led, bus, func() []*routes.Route { return routeList })

	// ── HTTP API ──────────────────────────────────────────────────────
	apiServer := &api.Server{
		Board:        board,
		Ledger:       led,
		Orchestrator: orch,
		Bus:          bus,
		DB:           db,
		Routes:       func() []*routes.Route { return routeList },
		Port:         cfg.Port,
		AdminKey:     cfg.AdminKey,
		StartedAt:    time.Now(),
	}
	apiServer.Start()
	if cfg.AdminKey == "" {
		slog.Warn("TRADESIM_ADMIN_KEY not set, admin POST endpoints disabled")
	}

	// ── Main Loop ─────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	priceTicker := time.NewTicker(10 * time.Second)
	cycleTicker := time.NewTicker(time.Second)
	defer priceTicker.Stop()
	defer cycleTicker.Stop()

	rng := rand.New(rand.NewSource(cfg.Seed + 1000))

	fmt.Printf("\ntradesim is running: %d goods across %d ports.\n", len(cat.Goods), len(cat.Locations))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop.")

	running := true
	for running {
		select {
		case <-priceTicker.C:
			repriceMarket(rng, board, led)

		case now := <-cycleTicker.C:
			if summary, err := orch.Tick(now); err != nil {
				slog.Warn("cycle will retry", "error", err)
			} else if summary != nil {
				logProjection(summary, led)
				if err := db.SavePriceSnapshot(board.Current()); err != nil {
					slog.Error("price snapshot failed", "error", err)
				}
			}

		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			running = false
		}
	}

	// Final save on shutdown.
	slog.Info("final save...")
	bus.Close()
	writer.Close()
	if err := db.SaveLedgerState(led); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. Ledger saved.")
}

// buildNetwork loads the catalog file when configured, otherwise generates
// a procedural network from the seed.
func buildNetwork(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath != "" {
		return catalog.Load(cfg.CatalogPath)
	}

	genCfg := worldgen.DefaultGenConfig()
	genCfg.Seed = cfg.Seed
	genCfg.LocationCount = cfg.LocationCount

	locations, modifiers := worldgen.Generate(genCfg, demoGoods)
	cat := &catalog.Catalog{
		Goods:             demoGoods,
		Locations:         locations,
		Assets:            demoAssets,
		RegionalModifiers: modifiers,
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// bootstrapFleet buys the starting assets and lays routes between the
// busiest ports, one cargo good per route.
func bootstrapFleet(cat *catalog.Catalog, led *ledger.Ledger) ([]*ledger.PlacedAsset, []*routes.Route, error) {
	if len(cat.Locations) < 2 {
		return nil, nil, fmt.Errorf("need at least 2 locations, have %d", len(cat.Locations))
	}

	freighter := cat.AssetByID("coastal-freighter")
	warehouse := cat.AssetByID("harbor-warehouse")

	var fleet []*ledger.PlacedAsset
	var routeList []*routes.Route

	// One route per adjacent location pair, up to three, cargo assigned
	// round-robin from the goods list.
	pairs := len(cat.Locations) - 1
	if pairs > 3 {
		pairs = 3
	}
	for i := 0; i < pairs; i++ {
		origin := &cat.Locations[i]
		dest := &cat.Locations[i+1]
		good := cat.Goods[i%len(cat.Goods)]

		r := routes.New(fmt.Sprintf("%s-%s", origin.ID, dest.ID), origin, dest)
		r.CargoGoodID = good.ID
		r.CargoUnits = 2000
		r.Active = true

		if freighter != nil {
			asset, err := led.PurchaseAsset(freighter, origin.Position, 0)
			if err != nil {
				slog.Warn("skipping freighter purchase", "route", r.Name, "error", err)
			} else {
				fleet = append(fleet, asset)
				if err := r.AssignAsset(asset.ID, freighter); err != nil {
					return nil, nil, fmt.Errorf("assign %s to %s: %w", freighter.ID, r.Name, err)
				}
			}
		}
		routeList = append(routeList, r)
	}

	if warehouse != nil {
		asset, err := led.PurchaseAsset(warehouse, cat.Locations[0].Position, 0)
		if err != nil {
			slog.Warn("skipping warehouse purchase", "error", err)
		} else {
			fleet = append(fleet, asset)
		}
	}

	return fleet, routeList, nil
}

// applyStorageNetwork derives the warehouse network bonus from the owned
// warehouses and feeds it into the economy modifiers as a specialist bonus.
func applyStorageNetwork(cat *catalog.Catalog, led *ledger.Ledger) {
	defs := cat.AssetDefinitionIndex()

	var warehouses []spatial.Source
	for _, a := range led.Assets() {
		def, ok := defs[a.DefinitionID]
		if !ok || def.Kind != "warehouse" {
			continue
		}
		warehouses = append(warehouses, spatial.Source{
			ID:           a.ID.String(),
			DefinitionID: a.DefinitionID,
			Position:     a.Position,
		})
	}
	if len(warehouses) == 0 {
		return
	}

	bonus := spatial.StorageNetworkBonus(warehouses, defs)
	led.ApplySpecialistBonus(bonus)
	slog.Info("storage network bonus applied", "warehouses", len(warehouses), "bonus", fmt.Sprintf("%.3f", bonus))

	// Area effects land on nearby ports; logged for the observers, the
	// pricing engine picks regional pressure up through utilization.
	var targets []spatial.Target
	for _, l := range cat.Locations {
		targets = append(targets, spatial.Target{ID: l.ID, Type: "location", Position: l.Position})
	}
	for sourceID, effects := range spatial.AreaEffects(warehouses, defs, targets) {
		for _, e := range effects {
			slog.Debug("area effect", "source", sourceID, "target", e.TargetID, "type", e.EffectType, "value", e.Value)
		}
	}
}

// repriceMarket drifts the market one step and publishes a fresh snapshot.
func repriceMarket(rng *rand.Rand, board *market.Board, led *ledger.Ledger) {
	snap := board.Current()

	goods := make([]market.Good, 0, len(snap.Goods))
	for _, g := range snap.Goods {
		goods = append(goods, g)
	}

	state := market.Drift(rng, snap.State)
	goods = market.DriftGoods(rng, goods)
	priced := market.UpdatePrices(goods, state, led.Modifiers())

	next := board.Publish(priced, state, time.Now())
	if next.State.Condition != snap.State.Condition {
		slog.Info("market condition shifted",
			"from", snap.State.Condition,
			"to", next.State.Condition,
		)
	}
}

// logProjection reports where the latest cycle's profit lands after a year
// of daily compounding at the current effective rate.
func logProjection(summary *cycle.Summary, led *ledger.Ledger) {
	if summary.NetProfit <= 0 {
		return
	}
	params := growth.Params{
		CurrentProfit:     summary.NetProfit,
		BaseRate:          0.05,
		LaborBonuses:      led.Modifiers().SpecialistBonus,
		DisasterPenalties: led.Modifiers().DisasterPenalty,
		LoanInterestRates: led.LoanInterestDrag(),
		TimeDays:          365,
	}
	projected, err := growth.Compound(params)
	if err != nil {
		slog.Warn("growth projection failed", "error", err)
		return
	}
	slog.Info("cycle projection",
		"cycle", summary.Cycle,
		"net", fmt.Sprintf("%.2f", summary.NetProfit),
		"rate", fmt.Sprintf("%.3f", params.EffectiveRate()),
		"one_year", fmt.Sprintf("%.2f", projected),
	)
}
