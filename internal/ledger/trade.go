package ledger

import "fmt"

// BuyGood purchases units of a good at the quoted unit price, moving cash
// into holdings. The quote comes from the published market snapshot; a
// stale or missing quote is the caller's problem, a short balance is ours.
func (l *Ledger) BuyGood(goodID string, units, unitPrice float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if goodID == "" {
		return &ValidationError{Field: "good", Msg: "must not be empty"}
	}
	if units <= 0 {
		return &ValidationError{Field: "units", Msg: "must be positive"}
	}
	if unitPrice <= 0 {
		return &ValidationError{Field: "unit price", Msg: "must be positive"}
	}

	cost := units * unitPrice
	if cost > l.cash {
		return &InsufficientFundsError{Required: cost, Available: l.cash, Reason: "goods purchase"}
	}

	desc := fmt.Sprintf("bought %.0f units of %s @ %.2f", units, goodID, unitPrice)
	if _, err := l.recordLocked(Expense, "goods_purchase", cost, desc, nowFn()); err != nil {
		return err
	}
	l.holdings[goodID] += units
	return nil
}

// SellGood sells held units at the quoted unit price. Selling more than is
// held is a conflict, not a validation failure: holdings may have changed
// since the caller's projection, so the caller refreshes and retries.
func (l *Ledger) SellGood(goodID string, units, unitPrice float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if goodID == "" {
		return &ValidationError{Field: "good", Msg: "must not be empty"}
	}
	if units <= 0 {
		return &ValidationError{Field: "units", Msg: "must be positive"}
	}
	if unitPrice <= 0 {
		return &ValidationError{Field: "unit price", Msg: "must be positive"}
	}

	held := l.holdings[goodID]
	if units > held {
		return &ConflictError{
			Resource: "holdings/" + goodID,
			Detail:   fmt.Sprintf("tried to sell %.0f of %.0f held", units, held),
		}
	}

	desc := fmt.Sprintf("sold %.0f units of %s @ %.2f", units, goodID, unitPrice)
	if _, err := l.recordLocked(Income, "goods_sale", units*unitPrice, desc, nowFn()); err != nil {
		return err
	}
	l.holdings[goodID] -= units
	if l.holdings[goodID] == 0 {
		delete(l.holdings, goodID)
	}
	return nil
}

// Holdings returns a copy of the goods currently held.
func (l *Ledger) Holdings() map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]float64, len(l.holdings))
	for k, v := range l.holdings {
		out[k] = v
	}
	return out
}
