package routes

// Expense categories a route accrues per cycle.
const (
	ExpenseMaintenance = "maintenance"
	ExpenseFuel        = "fuel"
	ExpensePortFees    = "port_fees"
	ExpenseCrew        = "crew"
	ExpenseInsurance   = "insurance"
)

// CostRates are the per-route operating cost parameters. Fuel and crew
// accrue per mile; port fees per port call; insurance as a fraction of
// revenue.
type CostRates struct {
	FuelPerMile       float64 `yaml:"fuel_per_mile" json:"fuel_per_mile"`
	CrewPerMile       float64 `yaml:"crew_per_mile" json:"crew_per_mile"`
	PortFeePerCall    float64 `yaml:"port_fee_per_call" json:"port_fee_per_call"`
	InsuranceRate     float64 `yaml:"insurance_rate" json:"insurance_rate"`
	MaintenancePerDay float64 `yaml:"maintenance_per_day" json:"maintenance_per_day"`
}

// Profitability is the full route performance structure produced for both
// the UI and the revenue cycle orchestrator.
type Profitability struct {
	RouteID      string             `json:"route_id"`
	RouteName    string             `json:"route_name"`
	Breakdown    ProfitBreakdown    `json:"breakdown"`
	Revenue      float64            `json:"revenue"`
	Costs        map[string]float64 `json:"costs"`
	TotalCost    float64            `json:"total_cost"`
	NetProfit    float64            `json:"net_profit"`
	Margin       float64            `json:"margin"`         // net / revenue
	ROI          float64            `json:"roi"`            // net / total cost
	ProfitPerDay float64            `json:"profit_per_day"` // net / cycle days
}

// Evaluate prices one route: gross revenue from the profit formula, then
// the categorized operating costs, then the derived ratios. cycleDays is
// the length of the revenue period the figures cover.
func Evaluate(r *Route, p ProfitParams, rates CostRates, cycleDays float64) (Profitability, error) {
	breakdown, err := CalculateProfit(p)
	if err != nil {
		return Profitability{}, err
	}

	// Port calls: origin, destination, and each waypoint.
	portCalls := float64(2 + len(r.Waypoints))

	costs := map[string]float64{
		ExpenseFuel:        r.DistanceMiles * rates.FuelPerMile,
		ExpenseCrew:        r.DistanceMiles * rates.CrewPerMile,
		ExpensePortFees:    portCalls * rates.PortFeePerCall,
		ExpenseInsurance:   breakdown.TotalProfit * rates.InsuranceRate,
		ExpenseMaintenance: rates.MaintenancePerDay * cycleDays,
	}

	total := 0.0
	for _, c := range costs {
		total += c
	}

	out := Profitability{
		RouteID:   r.ID.String(),
		RouteName: r.Name,
		Breakdown: breakdown,
		Revenue:   breakdown.TotalProfit,
		Costs:     costs,
		TotalCost: total,
		NetProfit: breakdown.TotalProfit - total,
	}
	if out.Revenue > 0 {
		out.Margin = out.NetProfit / out.Revenue
	}
	if out.TotalCost > 0 {
		out.ROI = out.NetProfit / out.TotalCost
	}
	if cycleDays > 0 {
		out.ProfitPerDay = out.NetProfit / cycleDays
	}

	if !isFinite(out.NetProfit) || !isFinite(out.TotalCost) {
		return Profitability{}, &CalculationError{Op: "route evaluation", Detail: "non-finite totals for route " + r.Name}
	}
	return out, nil
}
