package persistence

import (
	"log/slog"
	"sync"
	"time"

	"github.com/yashchitneni/shipfast-sub003/internal/ledger"
)

const (
	writerQueueSize = 1024
	flushBatchSize  = 64
	flushInterval   = 2 * time.Second
)

// Writer drains journal entries to the database off the calculation path.
// Enqueue never blocks: when the queue is full the entry is dropped and the
// next full ledger save picks it up, entries are keyed by id so the replay
// is idempotent.
type Writer struct {
	db       *DB
	playerID string

	queue chan ledger.FinancialRecord
	flush chan chan struct{}
	done  chan struct{}

	closeOnce sync.Once
}

// NewWriter starts a writer goroutine draining to db.
func NewWriter(db *DB, playerID string) *Writer {
	w := &Writer{
		db:       db,
		playerID: playerID,
		queue:    make(chan ledger.FinancialRecord, writerQueueSize),
		flush:    make(chan chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue queues one journal entry for persistence. Safe to call from the
// ledger's record sink.
func (w *Writer) Enqueue(rec ledger.FinancialRecord) {
	select {
	case w.queue <- rec:
	default:
		slog.Warn("persistence queue full, dropping journal entry", "record", rec.ID)
	}
}

// Flush blocks until every entry queued before the call is written.
func (w *Writer) Flush() {
	ack := make(chan struct{})
	select {
	case w.flush <- ack:
		<-ack
	case <-w.done:
	}
}

// Close flushes pending entries and stops the writer goroutine.
func (w *Writer) Close() {
	w.closeOnce.Do(func() {
		w.Flush()
		close(w.queue)
		<-w.done
	})
}

func (w *Writer) run() {
	defer close(w.done)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]ledger.FinancialRecord, 0, flushBatchSize)

	writeBatch := func() {
		if len(batch) == 0 {
			return
		}
		if err := w.db.AppendRecords(w.playerID, batch); err != nil {
			slog.Error("persist journal batch", "error", err, "entries", len(batch))
		}
		batch = batch[:0]
	}

	for {
		select {
		case rec, ok := <-w.queue:
			if !ok {
				writeBatch()
				return
			}
			batch = append(batch, rec)
			if len(batch) >= flushBatchSize {
				writeBatch()
			}
		case <-ticker.C:
			writeBatch()
		case ack := <-w.flush:
			// Drain whatever is already queued, then write.
			for {
				select {
				case rec, ok := <-w.queue:
					if !ok {
						writeBatch()
						close(ack)
						return
					}
					batch = append(batch, rec)
					continue
				default:
				}
				break
			}
			writeBatch()
			close(ack)
		}
	}
}
