package ledger

import "fmt"

// ValidationError rejects malformed or out-of-range input before any
// mutation happens.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// InsufficientFundsError rejects a purchase or loan that exceeds available
// cash or the debt ceiling. Cash is left unchanged.
type InsufficientFundsError struct {
	Required  float64
	Available float64
	Reason    string
}

func (e *InsufficientFundsError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("insufficient funds: %s (required %.2f, available %.2f)", e.Reason, e.Required, e.Available)
	}
	return fmt.Sprintf("insufficient funds: required %.2f, available %.2f", e.Required, e.Available)
}

// ConflictError surfaces a stale optimistic update on a shared resource.
// The operation is retryable: the caller refreshes and resubmits.
type ConflictError struct {
	Resource string
	Detail   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s (retry with fresh state)", e.Resource, e.Detail)
}
