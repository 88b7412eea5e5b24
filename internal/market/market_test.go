package market

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/yashchitneni/shipfast-sub003/internal/economy"
)

func neutralGood(id string, base float64) Good {
	return Good{
		ID:               id,
		BasePrice:        base,
		TotalSupply:      100,
		TotalDemand:      100,
		Volatility:       1.0,
		RegionalModifier: 1.0,
	}
}

func TestBalancedMarketHoldsBasePrice(t *testing.T) {
	goods := []Good{neutralGood("grain", 12.5)}
	out := UpdatePrices(goods, NormalState(), economy.DefaultModifiers())
	if out[0].CurrentPrice != 12.5 {
		t.Errorf("balanced price = %v, want 12.5", out[0].CurrentPrice)
	}
}

func TestPriceClampInvariant(t *testing.T) {
	// Extreme supply/demand and every condition must keep the price inside
	// [base*0.3, base*3].
	extremes := []Good{
		{ID: "scarce", BasePrice: 50, TotalSupply: 1, TotalDemand: 1e9, Volatility: 5, RegionalModifier: 2},
		{ID: "glut", BasePrice: 50, TotalSupply: 1e9, TotalDemand: 1, Volatility: 5, RegionalModifier: 0.5},
		{ID: "dead", BasePrice: 50, TotalSupply: 0, TotalDemand: 0, Volatility: 1, RegionalModifier: 1},
	}
	conditions := []Condition{ConditionCrisis, ConditionRecession, ConditionNormal, ConditionBoom}

	for _, cond := range conditions {
		state := NormalState()
		state.Condition = cond
		out := UpdatePrices(extremes, state, economy.DefaultModifiers())
		for _, g := range out {
			lo, hi := g.BasePrice*0.3, g.BasePrice*3
			if g.CurrentPrice < lo-1e-9 || g.CurrentPrice > hi+1e-9 {
				t.Errorf("%s under %s: price %v outside [%v, %v]", g.ID, cond, g.CurrentPrice, lo, hi)
			}
		}
	}
}

func TestConditionMultipliersMonotonic(t *testing.T) {
	ordered := []Condition{ConditionCrisis, ConditionRecession, ConditionNormal, ConditionBoom}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Multiplier() <= ordered[i-1].Multiplier() {
			t.Errorf("multiplier for %s (%v) not above %s (%v)",
				ordered[i], ordered[i].Multiplier(), ordered[i-1], ordered[i-1].Multiplier())
		}
	}
	if ConditionBoom.Multiplier() != 1.3 {
		t.Errorf("boom multiplier = %v, want 1.3", ConditionBoom.Multiplier())
	}
	if ConditionNormal.Multiplier() != 1.0 {
		t.Errorf("normal multiplier = %v, want 1.0", ConditionNormal.Multiplier())
	}
}

func TestScarcityRaisesAndGlutLowers(t *testing.T) {
	scarce := neutralGood("g", 100)
	scarce.TotalDemand = 400
	glut := neutralGood("g", 100)
	glut.TotalSupply = 400

	mods := economy.DefaultModifiers()
	up := UpdatePrices([]Good{scarce}, NormalState(), mods)[0]
	down := UpdatePrices([]Good{glut}, NormalState(), mods)[0]

	// sqrt(400/100) = 2.0, exactly the pressure cap.
	if up.CurrentPrice != 200 {
		t.Errorf("scarce price = %v, want 200", up.CurrentPrice)
	}
	// sqrt(100/400) = 0.5 pressure.
	if down.CurrentPrice != 50 {
		t.Errorf("glut price = %v, want 50", down.CurrentPrice)
	}
}

func TestZeroVolatilityHoldsBasePrice(t *testing.T) {
	// Volatility scales the distance from equilibrium, so zero volatility
	// means no movement even under heavy pressure.
	g := neutralGood("g", 100)
	g.Volatility = 0
	g.TotalDemand = 900

	out := UpdatePrices([]Good{g}, NormalState(), economy.DefaultModifiers())[0]
	if out.CurrentPrice != 100 {
		t.Errorf("zero-volatility price = %v, want base 100", out.CurrentPrice)
	}
}

func TestUpdatePricesDoesNotMutateInput(t *testing.T) {
	goods := []Good{neutralGood("g", 100)}
	goods[0].TotalDemand = 900
	before := goods[0]
	_ = UpdatePrices(goods, NormalState(), economy.DefaultModifiers())
	if goods[0] != before {
		t.Error("input slice was mutated")
	}
}

func TestRoundingToTwoDecimals(t *testing.T) {
	g := neutralGood("g", 10)
	g.TotalDemand = 150 // pressure sqrt(1.5) ≈ 1.2247
	out := UpdatePrices([]Good{g}, NormalState(), economy.DefaultModifiers())[0]
	cents := out.CurrentPrice * 100
	if math.Abs(cents-math.Round(cents)) > 1e-9 {
		t.Errorf("price %v not rounded to two decimals", out.CurrentPrice)
	}
}

func TestParseCondition(t *testing.T) {
	for _, name := range []string{"crisis", "recession", "normal", "boom"} {
		c, err := ParseCondition(name)
		if err != nil {
			t.Fatalf("ParseCondition(%q) error: %v", name, err)
		}
		if c.String() != name {
			t.Errorf("round trip %q → %q", name, c.String())
		}
	}
	if _, err := ParseCondition("bull"); err == nil {
		t.Error("expected error for unknown condition")
	}
}

func TestBoardAtomicPublish(t *testing.T) {
	goods := []Good{neutralGood("a", 10), neutralGood("b", 20)}
	board := NewBoard(goods, NormalState())

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Readers must always see a complete snapshot: both goods present and
	// a sequence that never goes backward.
	wg.Add(1)
	go func() {
		defer wg.Done()
		var lastSeq uint64
		for {
			select {
			case <-stop:
				return
			default:
			}
			snap := board.Current()
			if len(snap.Goods) != 2 {
				t.Errorf("partial snapshot observed: %d goods", len(snap.Goods))
				return
			}
			if snap.Sequence < lastSeq {
				t.Errorf("sequence went backward: %d < %d", snap.Sequence, lastSeq)
				return
			}
			lastSeq = snap.Sequence
		}
	}()

	for i := 0; i < 200; i++ {
		repriced := UpdatePrices(goods, NormalState(), economy.DefaultModifiers())
		board.Publish(repriced, NormalState(), time.Now())
	}
	close(stop)
	wg.Wait()

	if board.Current().Sequence != 200 {
		t.Errorf("final sequence = %d, want 200", board.Current().Sequence)
	}
}
