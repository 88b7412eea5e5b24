package cycle

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/yashchitneni/shipfast-sub003/internal/ledger"
)

// Report is the period financial report produced for collaborators. The
// numbers are deterministic; the recommendation text is a presentation
// heuristic layered on top and carries no contract.
type Report struct {
	Cycle            uint64             `json:"cycle"`
	TotalRevenue     float64            `json:"total_revenue"`
	TotalExpenses    float64            `json:"total_expenses"`
	NetProfit        float64            `json:"net_profit"`
	ProfitMargin     float64            `json:"profit_margin"`
	RevenueGrowthPct float64            `json:"revenue_growth_pct"` // vs prior period
	ExpenseGrowthPct float64            `json:"expense_growth_pct"`
	ExpensesByType   map[string]float64 `json:"expenses_by_type"`
	RoutePerformance []RouteLine        `json:"route_performance"`
	AssetUtilization float64            `json:"asset_utilization"`
	CreditRating     string             `json:"credit_rating"`
	Recommendations  []string           `json:"recommendations"`
}

// RouteLine is one route's row in the report.
type RouteLine struct {
	Name         string  `json:"name"`
	Revenue      float64 `json:"revenue"`
	NetProfit    float64 `json:"net_profit"`
	Margin       float64 `json:"margin"`
	ROI          float64 `json:"roi"`
	ProfitPerDay float64 `json:"profit_per_day"`
}

// BuildReport composes the latest cycle summary, the prior one, and the
// player's financials into a period report.
func (o *Orchestrator) BuildReport() *Report {
	o.mu.Lock()
	cur, prev := o.lastSummary, o.prevSummary
	o.mu.Unlock()

	if cur == nil {
		return nil
	}

	fin := o.ledger.Snapshot()

	r := &Report{
		Cycle:            cur.Cycle,
		TotalRevenue:     cur.TotalRevenue,
		TotalExpenses:    cur.TotalExpenses,
		NetProfit:        cur.NetProfit,
		ExpensesByType:   cur.ExpensesByType,
		AssetUtilization: cur.AssetUtilization,
		CreditRating:     fin.CreditRating.String(),
	}
	if cur.TotalRevenue > 0 {
		r.ProfitMargin = cur.NetProfit / cur.TotalRevenue
	}
	if prev != nil {
		r.RevenueGrowthPct = growthPct(prev.TotalRevenue, cur.TotalRevenue)
		r.ExpenseGrowthPct = growthPct(prev.TotalExpenses, cur.TotalExpenses)
	}
	for _, p := range cur.Routes {
		r.RoutePerformance = append(r.RoutePerformance, RouteLine{
			Name:         p.RouteName,
			Revenue:      p.Revenue,
			NetProfit:    p.NetProfit,
			Margin:       p.Margin,
			ROI:          p.ROI,
			ProfitPerDay: p.ProfitPerDay,
		})
	}
	r.Recommendations = recommend(r, fin)
	return r
}

func growthPct(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

// recommend generates the free-text advice lines. Heuristic only — nothing
// downstream may depend on the wording.
func recommend(r *Report, fin ledger.PlayerFinancials) []string {
	var recs []string

	if r.ProfitMargin < 0 {
		recs = append(recs, fmt.Sprintf("Operations ran at a loss of %s this period; deactivate the weakest routes until margins recover.",
			humanize.CommafWithDigits(-r.NetProfit, 2)))
	} else if r.ProfitMargin < 0.15 {
		recs = append(recs, fmt.Sprintf("Profit margin is thin at %.1f%%; review fuel and port fee exposure on long routes.", r.ProfitMargin*100))
	}

	if len(r.RoutePerformance) > 0 {
		best := r.RoutePerformance[0]
		if best.NetProfit > 0 {
			recs = append(recs, fmt.Sprintf("%s is the top performer at %s net; consider assigning additional capacity.",
				best.Name, humanize.CommafWithDigits(best.NetProfit, 2)))
		}
		worst := r.RoutePerformance[len(r.RoutePerformance)-1]
		if worst.NetProfit < 0 {
			recs = append(recs, fmt.Sprintf("%s lost %s this cycle; reroute or deactivate it.",
				worst.Name, humanize.CommafWithDigits(-worst.NetProfit, 2)))
		}
	}

	if r.AssetUtilization < 0.5 && fin.AssetCount > 0 {
		recs = append(recs, fmt.Sprintf("Only %.0f%% of owned assets are assigned to active routes; idle assets still bill maintenance.", r.AssetUtilization*100))
	}

	if len(fin.Loans) > 0 && fin.CreditRating >= ledger.RatingBB {
		recs = append(recs, fmt.Sprintf("Credit rating sits at %s; paying down loan principal would unlock cheaper financing.", fin.CreditRating))
	}

	if r.RevenueGrowthPct > 10 {
		recs = append(recs, fmt.Sprintf("Revenue grew %.1f%% over the prior period; a good window to expand the network.", r.RevenueGrowthPct))
	}

	return recs
}
