package market

import (
	"sync/atomic"
	"time"
)

// Snapshot is one complete, immutable pricing of the market. Readers must
// never observe a partially-updated set of goods, so a snapshot is built
// off to the side and published with a single pointer swap.
type Snapshot struct {
	Goods     map[string]Good `json:"goods"`
	State     State           `json:"state"`
	Sequence  uint64          `json:"sequence"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GoodPrice returns the current price of a good, and whether it is listed.
func (s *Snapshot) GoodPrice(id string) (float64, bool) {
	g, ok := s.Goods[id]
	if !ok {
		return 0, false
	}
	return g.CurrentPrice, true
}

// Board holds the currently published market snapshot. Recomputation is
// free-running and concurrent; publication is an atomic replace.
type Board struct {
	current atomic.Pointer[Snapshot]
	seq     atomic.Uint64
}

// NewBoard creates a board seeded with an initial snapshot of the goods at
// their base prices.
func NewBoard(goods []Good, state State) *Board {
	b := &Board{}
	indexed := make(map[string]Good, len(goods))
	for _, g := range goods {
		if g.CurrentPrice == 0 {
			g.CurrentPrice = round2(g.BasePrice)
		}
		indexed[g.ID] = g
	}
	b.current.Store(&Snapshot{
		Goods:     indexed,
		State:     state,
		UpdatedAt: time.Now(),
	})
	return b
}

// Current returns the latest published snapshot. The returned snapshot is
// immutable; callers read it without locking.
func (b *Board) Current() *Snapshot {
	return b.current.Load()
}

// Publish replaces the current snapshot atomically, stamping sequence and
// publication time.
func (b *Board) Publish(goods []Good, state State, now time.Time) *Snapshot {
	indexed := make(map[string]Good, len(goods))
	for _, g := range goods {
		indexed[g.ID] = g
	}
	snap := &Snapshot{
		Goods:     indexed,
		State:     state,
		Sequence:  b.seq.Add(1),
		UpdatedAt: now,
	}
	b.current.Store(snap)
	return snap
}
