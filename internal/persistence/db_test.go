package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yashchitneni/shipfast-sub003/internal/ledger"
	"github.com/yashchitneni/shipfast-sub003/internal/market"
	"github.com/yashchitneni/shipfast-sub003/internal/notify"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "sim.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveMeta("seed", "42"); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	if err := db.SaveMeta("seed", "43"); err != nil {
		t.Fatalf("overwrite meta: %v", err)
	}

	got, err := db.GetMeta("seed")
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if got != "43" {
		t.Errorf("meta = %q, want 43", got)
	}
}

func TestAppendRecordsIdempotent(t *testing.T) {
	db := openTestDB(t)

	rec := ledger.FinancialRecord{
		ID:          uuid.New(),
		Kind:        ledger.Income,
		Category:    "route_income",
		Amount:      2500,
		Description: "cycle revenue",
		Timestamp:   time.Now().UTC(),
		Balance:     102500,
	}

	if err := db.AppendRecords("p1", []ledger.FinancialRecord{rec}); err != nil {
		t.Fatalf("append: %v", err)
	}
	// Replaying the same entry (full-save overlap with the async writer)
	// must not duplicate it.
	if err := db.AppendRecords("p1", []ledger.FinancialRecord{rec}); err != nil {
		t.Fatalf("replay: %v", err)
	}

	got, err := db.RecentRecords("p1", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("journal has %d rows, want 1", len(got))
	}
	if got[0].ID != rec.ID || got[0].Amount != rec.Amount || got[0].Kind != ledger.Income {
		t.Errorf("round-trip mismatch: %+v", got[0])
	}
}

func TestRecentRecordsNewestFirst(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var recs []ledger.FinancialRecord
	for i := 0; i < 5; i++ {
		recs = append(recs, ledger.FinancialRecord{
			ID:          uuid.New(),
			Kind:        ledger.Expense,
			Category:    "maintenance",
			Amount:      float64(100 + i),
			Description: "upkeep",
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			Balance:     1000,
		})
	}
	if err := db.AppendRecords("p1", recs); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := db.RecentRecords("p1", 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3", len(got))
	}
	if got[0].Amount != 104 || got[2].Amount != 102 {
		t.Errorf("rows not newest-first: %v, %v", got[0].Amount, got[2].Amount)
	}
}

func TestSaveLedgerState(t *testing.T) {
	db := openTestDB(t)

	led := ledger.New("p1", 50000)
	if _, err := led.RecordTransaction(ledger.Income, "route_income", 4000, "first cycle"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := led.ApplyForLoan(10000, 365, 0.08); err != nil {
		t.Fatalf("loan: %v", err)
	}

	if err := db.SaveLedgerState(led); err != nil {
		t.Fatalf("save: %v", err)
	}

	recs, err := db.RecentRecords("p1", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != len(led.Records()) {
		t.Errorf("persisted %d records, ledger has %d", len(recs), len(led.Records()))
	}

	cash, err := db.GetMeta("cash:p1")
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if cash != "64000.00" {
		t.Errorf("persisted cash = %q, want 64000.00", cash)
	}
}

func TestEventsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	events := []notify.Event{
		{Type: notify.RevenueGenerated, Amount: 4725, Description: "cycle 1 route revenue", Timestamp: time.Now().UTC()},
		{Type: notify.CycleCompleted, Amount: 3580.5, Description: "cycle 1 net profit", Timestamp: time.Now().UTC()},
	}
	if err := db.SaveEvents(events); err != nil {
		t.Fatalf("save events: %v", err)
	}

	got, err := db.RecentEvents(10)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	// Newest first.
	if got[0].Type != notify.CycleCompleted || got[0].Amount != 3580.5 {
		t.Errorf("latest event = %+v", got[0])
	}
}

func TestSavePriceSnapshot(t *testing.T) {
	db := openTestDB(t)

	board := market.NewBoard([]market.Good{
		{ID: "grain", BasePrice: 12.5, TotalSupply: 100, TotalDemand: 100, Volatility: 1, RegionalModifier: 1},
	}, market.NormalState())

	if err := db.SavePriceSnapshot(board.Current()); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
}

func TestWriterFlush(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, "p1")
	defer w.Close()

	for i := 0; i < 10; i++ {
		w.Enqueue(ledger.FinancialRecord{
			ID:          uuid.New(),
			Kind:        ledger.Income,
			Category:    "route_income",
			Amount:      float64(i + 1),
			Description: "async entry",
			Timestamp:   time.Now().UTC(),
			Balance:     float64(i + 1),
		})
	}
	w.Flush()

	got, err := db.RecentRecords("p1", 20)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("flushed %d rows, want 10", len(got))
	}
}
