package cycle

import (
	"sort"
	"time"

	"github.com/yashchitneni/shipfast-sub003/internal/routes"
)

// Summary is the outcome of one completed revenue cycle.
type Summary struct {
	Cycle            uint64                 `json:"cycle"`
	CompletedAt      time.Time              `json:"completed_at"`
	TotalRevenue     float64                `json:"total_revenue"`
	TotalExpenses    float64                `json:"total_expenses"`
	NetProfit        float64                `json:"net_profit"`
	ExpensesByType   map[string]float64     `json:"expenses_by_type"`
	Routes           []routes.Profitability `json:"routes"`      // sorted, most profitable first
	TopRoutes        []routes.Profitability `json:"top_routes"`  // up to 3 best performers
	AssetUtilization float64                `json:"asset_utilization"`
}

const topRouteCount = 3

func newSummary(at time.Time, results []routes.Profitability, revenue, expenses float64, byType map[string]float64, utilization float64) *Summary {
	sorted := make([]routes.Profitability, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].NetProfit > sorted[j].NetProfit })

	top := sorted
	if len(top) > topRouteCount {
		top = top[:topRouteCount]
	}

	return &Summary{
		CompletedAt:      at,
		TotalRevenue:     revenue,
		TotalExpenses:    expenses,
		NetProfit:        revenue - expenses,
		ExpensesByType:   byType,
		Routes:           sorted,
		TopRoutes:        top,
		AssetUtilization: utilization,
	}
}
