package ledger

// CreditRating is an ordered tier from AAA (best) to CCC (worst).
type CreditRating uint8

const (
	RatingAAA CreditRating = iota
	RatingAA
	RatingA
	RatingBBB
	RatingBB
	RatingB
	RatingCCC
)

var ratingNames = [...]string{"AAA", "AA", "A", "BBB", "BB", "B", "CCC"}

func (r CreditRating) String() string {
	if int(r) < len(ratingNames) {
		return ratingNames[r]
	}
	return "CCC"
}

// MarshalText makes ratings render as their tier name in JSON.
func (r CreditRating) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ratingForDebt maps a debt-to-asset ratio to a base tier. Bands are
// monotonic: more debt never improves the tier.
func ratingForDebt(ratio float64) CreditRating {
	switch {
	case ratio <= 0.10:
		return RatingAAA
	case ratio <= 0.20:
		return RatingAA
	case ratio <= 0.35:
		return RatingA
	case ratio <= 0.50:
		return RatingBBB
	case ratio <= 0.65:
		return RatingBB
	case ratio <= 0.80:
		return RatingB
	default:
		return RatingCCC
	}
}

// UpdateCreditRating rederives the tier from the debt ratio and payment
// history and returns it. Each missed payment costs one tier, floored at
// CCC; clean history with low debt always rates at least as well as a
// worse balance sheet.
func (l *Ledger) UpdateCreditRating() CreditRating {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updateRatingLocked()
	return l.rating
}

func (l *Ledger) updateRatingLocked() {
	tier := ratingForDebt(l.debtRatioLocked())
	for i := 0; i < l.missedPayments; i++ {
		if tier >= RatingCCC {
			break
		}
		tier++
	}
	l.rating = tier
}

// CreditRatingNow returns the most recently derived tier without
// recomputing.
func (l *Ledger) CreditRatingNow() CreditRating {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rating
}
