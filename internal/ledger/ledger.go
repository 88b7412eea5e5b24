// Package ledger owns a player's financial state: cash, the append-only
// transaction journal, loans, placed assets, and the credit rating. It is
// the only component in the engine that mutates state, and every mutation
// for one player is serialized behind the ledger's lock.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yashchitneni/shipfast-sub003/internal/catalog"
	"github.com/yashchitneni/shipfast-sub003/internal/economy"
)

// nowFn is swappable in tests that pin journal timestamps.
var nowFn = time.Now

// TransactionKind distinguishes money in from money out.
type TransactionKind string

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

// FinancialRecord is one journal entry. The journal is append-only and
// strictly chronological; entries are never mutated or deleted.
type FinancialRecord struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Kind        TransactionKind `json:"kind" db:"kind"`
	Category    string          `json:"category" db:"category"`
	Amount      float64         `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
	Timestamp   time.Time       `json:"timestamp" db:"timestamp"`
	Balance     float64         `json:"balance" db:"balance"` // cash after this entry
}

// PlacedAsset is an asset instance owned by one player, created on purchase
// and destroyed on sale.
type PlacedAsset struct {
	ID           uuid.UUID        `json:"id"`
	DefinitionID string           `json:"definition_id"`
	OwnerID      string           `json:"owner_id"`
	Position     catalog.Position `json:"position"`
	Rotation     float64          `json:"rotation"`
	Status       string           `json:"status"`
	Health       float64          `json:"health"`
}

// PlayerFinancials is the read-only view of a ledger, safe to hand to
// collaborators.
type PlayerFinancials struct {
	PlayerID      string       `json:"player_id"`
	Cash          float64      `json:"cash"`
	NetWorth      float64      `json:"net_worth"`
	CreditRating  CreditRating `json:"credit_rating"`
	TotalRevenue  float64      `json:"total_revenue"`
	TotalExpenses float64      `json:"total_expenses"`
	ProfitMargin  float64      `json:"profit_margin"`
	Loans         []Loan       `json:"loans"`
	AssetCount    int          `json:"asset_count"`
}

// Ledger is one player's financial aggregate root. All mutation goes
// through its command methods; fields are never written ad hoc.
type Ledger struct {
	mu sync.Mutex

	playerID      string
	cash          float64
	totalRevenue  float64
	totalExpenses float64
	profitMargin  float64
	rating        CreditRating
	loanCeiling   float64 // max debt-to-asset ratio

	records []FinancialRecord
	loans   []*Loan
	assets  map[uuid.UUID]*PlacedAsset

	// Goods held for trading, units by good id.
	holdings map[string]float64

	// Value of placed assets at purchase price, for net worth and the
	// debt-to-asset ratio.
	assetValue float64

	missedPayments int

	modifiers economy.Modifiers

	// onRecord, when set, receives every appended journal entry. It must
	// not block: the sink is the async persistence/notification side.
	onRecord func(FinancialRecord)
}

// DefaultLoanCeiling is the debt-to-asset ratio above which new loans are
// rejected.
const DefaultLoanCeiling = 0.75

// New creates a ledger for a player with starting cash.
func New(playerID string, startingCash float64) *Ledger {
	return &Ledger{
		playerID:    playerID,
		cash:        startingCash,
		rating:      RatingA,
		loanCeiling: DefaultLoanCeiling,
		assets:      make(map[uuid.UUID]*PlacedAsset),
		holdings:    make(map[string]float64),
		modifiers:   economy.DefaultModifiers(),
	}
}

// SetLoanCeiling overrides the default debt-to-asset ceiling.
func (l *Ledger) SetLoanCeiling(ceiling float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loanCeiling = ceiling
}

// SetRecordSink registers a non-blocking callback invoked for every journal
// entry, used to feed async persistence and notifications.
func (l *Ledger) SetRecordSink(sink func(FinancialRecord)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onRecord = sink
}

// RecordTransaction appends a journal entry and adjusts cash and running
// totals. Amount must be positive and the description non-empty; a failed
// validation leaves all state untouched.
func (l *Ledger) RecordTransaction(kind TransactionKind, category string, amount float64, description string) (FinancialRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recordLocked(kind, category, amount, description, nowFn())
}

func (l *Ledger) recordLocked(kind TransactionKind, category string, amount float64, description string, at time.Time) (FinancialRecord, error) {
	if kind != Income && kind != Expense {
		return FinancialRecord{}, &ValidationError{Field: "kind", Msg: "unknown kind " + string(kind)}
	}
	if amount <= 0 {
		return FinancialRecord{}, &ValidationError{Field: "amount", Msg: "must be positive"}
	}
	if description == "" {
		return FinancialRecord{}, &ValidationError{Field: "description", Msg: "must not be empty"}
	}

	switch kind {
	case Income:
		l.totalRevenue += amount
	case Expense:
		l.totalExpenses += amount
	}
	rec := l.transferLocked(kind, category, amount, description, at)
	l.recomputeMarginLocked()
	return rec, nil
}

// transferLocked journals a balance-sheet movement: cash moves and an entry
// lands in the journal, but revenue and expense totals stay untouched.
// Loan principal and repayments go through here so the profit margin only
// reflects operating activity.
func (l *Ledger) transferLocked(kind TransactionKind, category string, amount float64, description string, at time.Time) FinancialRecord {
	switch kind {
	case Income:
		l.cash += amount
	case Expense:
		l.cash -= amount
	}

	rec := FinancialRecord{
		ID:          uuid.New(),
		Kind:        kind,
		Category:    category,
		Amount:      amount,
		Description: description,
		Timestamp:   at,
		Balance:     l.cash,
	}
	l.records = append(l.records, rec)

	if l.onRecord != nil {
		l.onRecord(rec)
	}
	return rec
}

// PostCycle posts a revenue cycle's net totals as one atomic operation:
// either both entries land in the journal or neither does. Zero-amount
// sides are skipped (a cycle with no expenses posts only income).
func (l *Ledger) PostCycle(revenue, expenses float64, description string) ([]FinancialRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if revenue < 0 || expenses < 0 {
		return nil, &ValidationError{Field: "cycle totals", Msg: "must be non-negative"}
	}
	if description == "" {
		return nil, &ValidationError{Field: "description", Msg: "must not be empty"}
	}

	now := nowFn()
	var posted []FinancialRecord
	if revenue > 0 {
		rec, err := l.recordLocked(Income, "route_revenue", revenue, description, now)
		if err != nil {
			return nil, err
		}
		posted = append(posted, rec)
	}
	if expenses > 0 {
		rec, err := l.recordLocked(Expense, "route_operating", expenses, description, now)
		if err != nil {
			return nil, err
		}
		posted = append(posted, rec)
	}
	return posted, nil
}

func (l *Ledger) recomputeMarginLocked() {
	if l.totalRevenue == 0 {
		l.profitMargin = 0
		return
	}
	l.profitMargin = (l.totalRevenue - l.totalExpenses) / l.totalRevenue
}

// ApplyDisasterPenalty sets the economy-wide disaster penalty from a
// reported severity, hard-capped at 0.5. Overwrite semantics: a second
// report replaces, not stacks.
func (l *Ledger) ApplyDisasterPenalty(severity float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.modifiers.SetDisasterPenalty(severity)
}

// ApplySpecialistBonus sets the specialist bonus modifier.
func (l *Ledger) ApplySpecialistBonus(value float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.modifiers.SetSpecialistBonus(value)
}

// Modifiers returns a copy of the current economy modifiers.
func (l *Ledger) Modifiers() economy.Modifiers {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.modifiers
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// Records returns a copy of the journal, oldest first.
func (l *Ledger) Records() []FinancialRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]FinancialRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Snapshot returns the player's financial summary.
func (l *Ledger) Snapshot() PlayerFinancials {
	l.mu.Lock()
	defer l.mu.Unlock()

	loans := make([]Loan, len(l.loans))
	for i, ln := range l.loans {
		loans[i] = *ln
	}

	return PlayerFinancials{
		PlayerID:      l.playerID,
		Cash:          l.cash,
		NetWorth:      l.netWorthLocked(),
		CreditRating:  l.rating,
		TotalRevenue:  l.totalRevenue,
		TotalExpenses: l.totalExpenses,
		ProfitMargin:  l.profitMargin,
		Loans:         loans,
		AssetCount:    len(l.assets),
	}
}

func (l *Ledger) netWorthLocked() float64 {
	return l.cash + l.assetValue - l.totalDebtLocked()
}

func (l *Ledger) totalDebtLocked() float64 {
	total := 0.0
	for _, ln := range l.loans {
		total += ln.RemainingBalance
	}
	return total
}

// totalAssetsLocked is the asset side of the debt-to-asset ratio.
func (l *Ledger) totalAssetsLocked() float64 {
	return l.cash + l.assetValue
}
