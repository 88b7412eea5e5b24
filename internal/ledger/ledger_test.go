package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/yashchitneni/shipfast-sub003/internal/catalog"
)

func TestRecordTransactionBaseline(t *testing.T) {
	l := New("p1", 100000)

	if _, err := l.RecordTransaction(Income, "contract", 5000, "delivery bonus"); err != nil {
		t.Fatalf("income record failed: %v", err)
	}
	if _, err := l.RecordTransaction(Expense, "fuel", 1000, "bunker fuel"); err != nil {
		t.Fatalf("expense record failed: %v", err)
	}

	if cash := l.Cash(); cash != 104000 {
		t.Errorf("cash = %v, want 104000", cash)
	}
	snap := l.Snapshot()
	if math.Abs(snap.ProfitMargin-0.8) > 1e-9 {
		t.Errorf("profit margin = %v, want 0.8", snap.ProfitMargin)
	}
	if snap.TotalRevenue != 5000 || snap.TotalExpenses != 1000 {
		t.Errorf("totals = %v/%v, want 5000/1000", snap.TotalRevenue, snap.TotalExpenses)
	}
}

func TestRecordTransactionValidation(t *testing.T) {
	l := New("p1", 1000)

	var vErr *ValidationError
	if _, err := l.RecordTransaction(Income, "x", 0, "zero"); !errors.As(err, &vErr) {
		t.Errorf("zero amount: expected ValidationError, got %v", err)
	}
	if _, err := l.RecordTransaction(Income, "x", -50, "negative"); !errors.As(err, &vErr) {
		t.Errorf("negative amount: expected ValidationError, got %v", err)
	}
	if _, err := l.RecordTransaction(Expense, "x", 50, ""); !errors.As(err, &vErr) {
		t.Errorf("empty description: expected ValidationError, got %v", err)
	}

	if l.Cash() != 1000 {
		t.Errorf("failed validations must not touch cash, got %v", l.Cash())
	}
	if len(l.Records()) != 0 {
		t.Error("failed validations must not append records")
	}
}

func TestJournalAppendOnlyChronological(t *testing.T) {
	l := New("p1", 1000)
	for i := 0; i < 5; i++ {
		if _, err := l.RecordTransaction(Income, "test", 10, "entry"); err != nil {
			t.Fatalf("record %d failed: %v", i, err)
		}
	}
	recs := l.Records()
	if len(recs) != 5 {
		t.Fatalf("journal length = %d, want 5", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Timestamp.Before(recs[i-1].Timestamp) {
			t.Errorf("entry %d out of order", i)
		}
	}
	// Running balance is recorded per entry.
	if recs[4].Balance != 1050 {
		t.Errorf("final balance on record = %v, want 1050", recs[4].Balance)
	}
}

func TestZeroRevenueMarginIsZero(t *testing.T) {
	l := New("p1", 1000)
	if _, err := l.RecordTransaction(Expense, "fees", 100, "port fee"); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if m := l.Snapshot().ProfitMargin; m != 0 {
		t.Errorf("margin with zero revenue = %v, want 0", m)
	}
}

func TestApplyForLoanCeiling(t *testing.T) {
	l := New("p1", 10000)

	// First, modest loan fits under the ceiling.
	first, err := l.ApplyForLoan(5000, 180, 0.08)
	if err != nil {
		t.Fatalf("first loan rejected: %v", err)
	}
	if l.Cash() != 15000 {
		t.Errorf("cash after loan = %v, want 15000", l.Cash())
	}
	if first.RemainingBalance != 5000 {
		t.Errorf("remaining balance = %v, want 5000", first.RemainingBalance)
	}

	// A second, huge loan would push debt/(assets) past the ceiling:
	// (5000+100000)/(15000+100000) ≈ 0.91 > 0.75.
	var fundsErr *InsufficientFundsError
	if _, err := l.ApplyForLoan(100000, 180, 0.08); !errors.As(err, &fundsErr) {
		t.Fatalf("oversized loan: expected InsufficientFundsError, got %v", err)
	}
	if got := len(l.Loans()); got != 1 {
		t.Errorf("loan list after rejection = %d entries, want 1", got)
	}
	if l.Cash() != 15000 {
		t.Errorf("cash after rejection = %v, want unchanged 15000", l.Cash())
	}
}

func TestMakePaymentClosesLoan(t *testing.T) {
	l := New("p1", 10000)
	loan, err := l.ApplyForLoan(3000, 90, 0.05)
	if err != nil {
		t.Fatalf("loan rejected: %v", err)
	}

	if err := l.MakePayment(loan.ID, 1000); err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	loans := l.Loans()
	if loans[0].RemainingBalance != 2000 {
		t.Errorf("balance after payment = %v, want 2000", loans[0].RemainingBalance)
	}

	// Overpayment pays off exactly and closes the loan.
	if err := l.MakePayment(loan.ID, 5000); err != nil {
		t.Fatalf("payoff failed: %v", err)
	}
	if got := len(l.Loans()); got != 0 {
		t.Errorf("active loans after payoff = %d, want 0", got)
	}

	// Paying a closed loan fails.
	var vErr *ValidationError
	if err := l.MakePayment(loan.ID, 100); !errors.As(err, &vErr) {
		t.Errorf("payment on closed loan: expected ValidationError, got %v", err)
	}
}

func TestLoanOperationsJournaled(t *testing.T) {
	l := New("p1", 10000)

	loan, err := l.ApplyForLoan(5000, 180, 0.08)
	if err != nil {
		t.Fatalf("loan rejected: %v", err)
	}
	if err := l.MakePayment(loan.ID, 1000); err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if cash := l.Cash(); cash != 14000 {
		t.Errorf("cash = %v, want 14000", cash)
	}

	// Both movements land in the journal with a coherent balance chain.
	recs := l.Records()
	if len(recs) != 2 {
		t.Fatalf("journal has %d entries, want 2", len(recs))
	}
	if recs[0].Kind != Income || recs[0].Category != "loan_principal" || recs[0].Amount != 5000 {
		t.Errorf("principal entry = %+v", recs[0])
	}
	if recs[0].Balance != 15000 {
		t.Errorf("balance after principal = %v, want 15000", recs[0].Balance)
	}
	if recs[1].Kind != Expense || recs[1].Category != "loan_payment" || recs[1].Amount != 1000 {
		t.Errorf("payment entry = %+v", recs[1])
	}
	if recs[1].Balance != 14000 {
		t.Errorf("balance after payment = %v, want 14000", recs[1].Balance)
	}

	// Loan movements are balance-sheet transfers: operating totals and the
	// profit margin stay clean.
	snap := l.Snapshot()
	if snap.TotalRevenue != 0 || snap.TotalExpenses != 0 {
		t.Errorf("operating totals = %v/%v, want 0/0", snap.TotalRevenue, snap.TotalExpenses)
	}
	if snap.ProfitMargin != 0 {
		t.Errorf("profit margin = %v, want 0", snap.ProfitMargin)
	}
}

func TestMakePaymentValidation(t *testing.T) {
	l := New("p1", 10000)
	loan, _ := l.ApplyForLoan(3000, 90, 0.05)

	var vErr *ValidationError
	if err := l.MakePayment(loan.ID, 0); !errors.As(err, &vErr) {
		t.Errorf("zero payment: expected ValidationError, got %v", err)
	}
	if err := l.MakePayment(uuid.New(), 100); !errors.As(err, &vErr) {
		t.Errorf("unknown loan: expected ValidationError, got %v", err)
	}
	if got := l.Loans()[0].RemainingBalance; got != 3000 {
		t.Errorf("balance after failed payments = %v, want 3000", got)
	}
}

func TestDisasterPenaltyCapped(t *testing.T) {
	l := New("p1", 1000)
	l.ApplyDisasterPenalty(0.75)
	if got := l.Modifiers().DisasterPenalty; got != 0.5 {
		t.Errorf("disaster penalty = %v, want capped 0.5", got)
	}

	// Setter semantics: a milder report overwrites the capped value.
	l.ApplyDisasterPenalty(0.2)
	if got := l.Modifiers().DisasterPenalty; got != 0.2 {
		t.Errorf("disaster penalty after overwrite = %v, want 0.2", got)
	}
}

func TestSpecialistBonusSetter(t *testing.T) {
	l := New("p1", 1000)
	l.ApplySpecialistBonus(3)
	l.ApplySpecialistBonus(3)
	if got := l.Modifiers().SpecialistBonus; got != 3 {
		t.Errorf("specialist bonus = %v, want 3 (idempotent setter)", got)
	}
}

func TestCreditRatingMonotonic(t *testing.T) {
	// Lower debt ratio with clean history never rates worse than higher
	// debt with missed payments.
	clean := New("p1", 100000)
	clean.UpdateCreditRating()

	indebted := New("p2", 10000)
	if _, err := indebted.ApplyForLoan(20000, 365, 0.1); err != nil {
		t.Fatalf("loan rejected: %v", err)
	}
	indebted.RecordMissedPayment()
	indebted.RecordMissedPayment()

	if clean.CreditRatingNow() >= indebted.CreditRatingNow() {
		t.Errorf("clean rating %s should beat indebted rating %s",
			clean.CreditRatingNow(), indebted.CreditRatingNow())
	}
	if clean.CreditRatingNow() != RatingAAA {
		t.Errorf("debt-free rating = %s, want AAA", clean.CreditRatingNow())
	}
}

func TestCreditRatingDebtBands(t *testing.T) {
	prev := RatingAAA
	for _, ratio := range []float64{0.05, 0.15, 0.3, 0.45, 0.6, 0.75, 0.9} {
		r := ratingForDebt(ratio)
		if r < prev {
			t.Errorf("rating improved from %s to %s as debt rose to %v", prev, r, ratio)
		}
		prev = r
	}
	if ratingForDebt(0.9) != RatingCCC {
		t.Errorf("rating at 0.9 = %s, want CCC", ratingForDebt(0.9))
	}
}

func TestPostCycleAtomic(t *testing.T) {
	l := New("p1", 50000)
	posted, err := l.PostCycle(8000, 3000, "cycle 7")
	if err != nil {
		t.Fatalf("PostCycle failed: %v", err)
	}
	if len(posted) != 2 {
		t.Fatalf("posted %d records, want 2", len(posted))
	}
	if l.Cash() != 55000 {
		t.Errorf("cash = %v, want 55000", l.Cash())
	}

	if _, err := l.PostCycle(-1, 0, "bad"); err == nil {
		t.Error("negative revenue must be rejected")
	}
	if got := len(l.Records()); got != 2 {
		t.Errorf("journal after rejected post = %d entries, want 2", got)
	}
}

func TestPurchaseAndSellAsset(t *testing.T) {
	def := &catalog.AssetDefinition{ID: "depot", Name: "Depot", Cost: 30000, Capacity: 10000}
	l := New("p1", 50000)

	asset, err := l.PurchaseAsset(def, catalog.Position{X: 1, Y: 2}, 90)
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if l.Cash() != 20000 {
		t.Errorf("cash after purchase = %v, want 20000", l.Cash())
	}
	if asset.OwnerID != "p1" || asset.Status != AssetActive || asset.Health != 1.0 {
		t.Errorf("unexpected asset state: %+v", asset)
	}

	// Net worth counts the asset at cost.
	if nw := l.Snapshot().NetWorth; nw != 50000 {
		t.Errorf("net worth = %v, want 50000", nw)
	}

	if err := l.SellAsset(asset.ID, def); err != nil {
		t.Fatalf("sale failed: %v", err)
	}
	if l.Cash() != 38000 { // 20000 + 30000*0.6
		t.Errorf("cash after sale = %v, want 38000", l.Cash())
	}
	if got := len(l.Assets()); got != 0 {
		t.Errorf("assets after sale = %d, want 0", got)
	}
}

func TestPurchaseAssetInsufficientFunds(t *testing.T) {
	def := &catalog.AssetDefinition{ID: "depot", Name: "Depot", Cost: 30000}
	l := New("p1", 1000)

	var fundsErr *InsufficientFundsError
	if _, err := l.PurchaseAsset(def, catalog.Position{}, 0); !errors.As(err, &fundsErr) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}
	if l.Cash() != 1000 {
		t.Errorf("cash after rejection = %v, want 1000", l.Cash())
	}
}

func TestBuySellGoods(t *testing.T) {
	l := New("p1", 10000)

	if err := l.BuyGood("grain", 100, 12.5); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if l.Cash() != 8750 {
		t.Errorf("cash after buy = %v, want 8750", l.Cash())
	}
	if l.Holdings()["grain"] != 100 {
		t.Errorf("holdings = %v, want 100 grain", l.Holdings())
	}

	// Selling more than held is a retryable conflict.
	var conflict *ConflictError
	if err := l.SellGood("grain", 150, 13); !errors.As(err, &conflict) {
		t.Errorf("oversell: expected ConflictError, got %v", err)
	}

	if err := l.SellGood("grain", 100, 13); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if l.Cash() != 10050 {
		t.Errorf("cash after sell = %v, want 10050", l.Cash())
	}
	if len(l.Holdings()) != 0 {
		t.Errorf("holdings after sell = %v, want empty", l.Holdings())
	}
}

func TestRecordSinkReceivesEntries(t *testing.T) {
	l := New("p1", 1000)
	var seen []FinancialRecord
	l.SetRecordSink(func(r FinancialRecord) { seen = append(seen, r) })

	if _, err := l.RecordTransaction(Income, "test", 42, "sink check"); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if len(seen) != 1 || seen[0].Amount != 42 {
		t.Errorf("sink saw %v, want one 42 entry", seen)
	}
}
