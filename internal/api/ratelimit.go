package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Reports and journal listings walk the full financial journal, so they are
// metered in credits per caller per window rather than the plain request
// counting the cheap snapshot GETs get. A caller that exhausts its budget
// waits out the window.
type ReportQuota struct {
	mu      sync.Mutex
	callers map[string]*callerWindow
	budget  int
	window  time.Duration
}

type callerWindow struct {
	spent   int
	started time.Time
}

// NewReportQuota returns a quota granting budget credits per caller per
// window. Stale callers are pruned lazily on a later spend.
func NewReportQuota(budget int, window time.Duration) *ReportQuota {
	return &ReportQuota{
		callers: make(map[string]*callerWindow),
		budget:  budget,
		window:  window,
	}
}

// Spend charges cost credits to a caller. When the caller is over budget it
// returns false and the time until their window resets.
func (q *ReportQuota) Spend(caller string, cost int) (bool, time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	if len(q.callers) > 1024 {
		q.prune(now)
	}

	w, ok := q.callers[caller]
	if !ok || now.Sub(w.started) >= q.window {
		q.callers[caller] = &callerWindow{spent: cost, started: now}
		return cost <= q.budget, 0
	}

	if w.spent+cost > q.budget {
		wait := q.window - now.Sub(w.started)
		if wait < 0 {
			wait = 0
		}
		return false, wait
	}
	w.spent += cost
	return true, 0
}

// prune drops windows old enough that they no longer limit anything.
// Caller holds q.mu.
func (q *ReportQuota) prune(now time.Time) {
	for caller, w := range q.callers {
		if now.Sub(w.started) >= q.window {
			delete(q.callers, caller)
		}
	}
}

// withQuota wraps a handler so each request charges cost credits against the
// caller's report budget. Over-budget requests get a 429 with a Retry-After
// hint.
func withQuota(q *ReportQuota, cost int, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, wait := q.Spend(clientAddr(r), cost)
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
			http.Error(w, "report quota exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientAddr identifies the caller for quota purposes: the first hop in
// X-Forwarded-For when present, otherwise the connection's address.
func clientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i, c := range xff {
			if c == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
