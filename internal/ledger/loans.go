package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Loan is an open debt. RemainingBalance is monotonically non-increasing;
// when it reaches zero the loan is closed and removed from the active list.
type Loan struct {
	ID               uuid.UUID `json:"id"`
	Principal        float64   `json:"principal"`
	InterestRate     float64   `json:"interest_rate"` // annual
	RemainingBalance float64   `json:"remaining_balance"`
	TermDays         int       `json:"term_days"`
	IssuedAt         time.Time `json:"issued_at"`
	PaymentsMade     int       `json:"payments_made"`
}

// ApplyForLoan requests a loan. The resulting debt-to-asset ratio —
// (existing debt + principal) / (assets + principal) — must stay under the
// configured ceiling, otherwise the application is rejected with no
// mutation. On success cash increases by the principal and the loan joins
// the active list.
func (l *Ledger) ApplyForLoan(amount float64, termDays int, interestRate float64) (*Loan, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount <= 0 {
		return nil, &ValidationError{Field: "amount", Msg: "must be positive"}
	}
	if termDays <= 0 {
		return nil, &ValidationError{Field: "term", Msg: "must be positive"}
	}
	if interestRate < 0 {
		return nil, &ValidationError{Field: "interest rate", Msg: "must not be negative"}
	}

	projectedDebt := l.totalDebtLocked() + amount
	projectedAssets := l.totalAssetsLocked() + amount
	if projectedAssets <= 0 || projectedDebt/projectedAssets > l.loanCeiling {
		return nil, &InsufficientFundsError{
			Required:  amount,
			Available: l.cash,
			Reason:    fmt.Sprintf("debt-to-asset ratio would exceed %.2f", l.loanCeiling),
		}
	}

	now := nowFn()
	loan := &Loan{
		ID:               uuid.New(),
		Principal:        amount,
		InterestRate:     interestRate,
		RemainingBalance: amount,
		TermDays:         termDays,
		IssuedAt:         now,
	}
	l.loans = append(l.loans, loan)
	l.transferLocked(Income, "loan_principal",
		amount, fmt.Sprintf("loan principal, %d day term", termDays), now)
	l.updateRatingLocked()

	return loan, nil
}

// MakePayment pays down a loan. Cash decreases by the paid amount, the
// balance never goes below zero, and a fully paid loan is closed and
// removed. A payment larger than the remaining balance pays it off exactly.
func (l *Ledger) MakePayment(loanID uuid.UUID, amount float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount <= 0 {
		return &ValidationError{Field: "amount", Msg: "must be positive"}
	}

	idx := -1
	for i, ln := range l.loans {
		if ln.ID == loanID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &ValidationError{Field: "loan", Msg: "no active loan with id " + loanID.String()}
	}

	loan := l.loans[idx]
	pay := amount
	if pay > loan.RemainingBalance {
		pay = loan.RemainingBalance
	}
	if pay > l.cash {
		return &InsufficientFundsError{Required: pay, Available: l.cash, Reason: "loan payment"}
	}

	loan.RemainingBalance -= pay
	loan.PaymentsMade++
	l.transferLocked(Expense, "loan_payment",
		pay, "payment on loan "+loan.ID.String(), nowFn())

	if loan.RemainingBalance <= 0 {
		loan.RemainingBalance = 0
		l.loans = append(l.loans[:idx], l.loans[idx+1:]...)
	}

	l.updateRatingLocked()
	return nil
}

// RecordMissedPayment notes a missed loan payment; it degrades the credit
// rating on the next update.
func (l *Ledger) RecordMissedPayment() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.missedPayments++
	l.updateRatingLocked()
}

// Loans returns copies of the active loans.
func (l *Ledger) Loans() []Loan {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Loan, len(l.loans))
	for i, ln := range l.loans {
		out[i] = *ln
	}
	return out
}

// DebtRatio returns the current debt-to-asset ratio.
func (l *Ledger) DebtRatio() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debtRatioLocked()
}

func (l *Ledger) debtRatioLocked() float64 {
	assets := l.totalAssetsLocked()
	if assets <= 0 {
		if l.totalDebtLocked() > 0 {
			return 1
		}
		return 0
	}
	return l.totalDebtLocked() / assets
}

// LoanInterestDrag is the summed annual interest rate across active loans,
// the loanInterestRates input of the growth projection.
func (l *Ledger) LoanInterestDrag() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0.0
	for _, ln := range l.loans {
		total += ln.InterestRate
	}
	return total
}
