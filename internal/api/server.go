// Package api provides the HTTP API for observing the simulation.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yashchitneni/shipfast-sub003/internal/cycle"
	"github.com/yashchitneni/shipfast-sub003/internal/ledger"
	"github.com/yashchitneni/shipfast-sub003/internal/market"
	"github.com/yashchitneni/shipfast-sub003/internal/notify"
	"github.com/yashchitneni/shipfast-sub003/internal/persistence"
	"github.com/yashchitneni/shipfast-sub003/internal/routes"
)

// Server serves the simulation state over HTTP.
type Server struct {
	Board        *market.Board
	Ledger       *ledger.Ledger
	Orchestrator *cycle.Orchestrator
	Bus          *notify.Bus
	DB           *persistence.DB
	Routes       func() []*routes.Route
	Port         int
	AdminKey     string // Bearer token for POST endpoints. Empty = POST disabled.

	StartedAt time.Time
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// 120 credits/hour: a full report costs 2, a journal listing 1.
	quota := NewReportQuota(120, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/prices", s.handlePrices)
	mux.HandleFunc("/api/v1/ledger", s.handleLedger)
	mux.HandleFunc("/api/v1/ledger/records", withQuota(quota, 1, s.handleLedgerRecords))
	mux.HandleFunc("/api/v1/routes", s.handleRoutes)
	mux.HandleFunc("/api/v1/cycle", s.handleCycle)
	mux.HandleFunc("/api/v1/report", withQuota(quota, 2, s.handleReport))
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no TRADESIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Board.Current()
	fin := s.Ledger.Snapshot()

	active := 0
	for _, rt := range s.Routes() {
		if rt.Active {
			active++
		}
	}

	status := map[string]any{
		"name":           "tradesim",
		"uptime":         time.Since(s.StartedAt).Round(time.Second).String(),
		"market":         snap.State.Condition.String(),
		"price_sequence": snap.Sequence,
		"goods":          len(snap.Goods),
		"active_routes":  active,
		"cycle_state":    s.Orchestrator.State().String(),
		"next_cycle":     s.Orchestrator.NextCycleTime(),
		"cash":           fin.Cash,
		"net_worth":      fin.NetWorth,
		"credit_rating":  fin.CreditRating,
	}
	writeJSON(w, status)
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	snap := s.Board.Current()

	type priceRow struct {
		ID       string  `json:"id"`
		Category string  `json:"category"`
		Base     float64 `json:"base_price"`
		Current  float64 `json:"current_price"`
		Supply   float64 `json:"supply"`
		Demand   float64 `json:"demand"`
	}

	var result []priceRow
	for _, g := range snap.Goods {
		result = append(result, priceRow{
			ID:       g.ID,
			Category: g.Category,
			Base:     g.BasePrice,
			Current:  g.CurrentPrice,
			Supply:   g.TotalSupply,
			Demand:   g.TotalDemand,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	writeJSON(w, map[string]any{
		"sequence":   snap.Sequence,
		"condition":  snap.State.Condition.String(),
		"updated_at": snap.UpdatedAt,
		"goods":      result,
	})
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Ledger.Snapshot())
}

func (s *Server) handleLedgerRecords(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	records := s.Ledger.Records()
	if len(records) > limit {
		records = records[len(records)-limit:]
	}
	writeJSON(w, records)
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Routes())
}

func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	summary := s.Orchestrator.LastSummary()
	if summary == nil {
		writeJSON(w, map[string]any{
			"state":      s.Orchestrator.State().String(),
			"next_cycle": s.Orchestrator.NextCycleTime(),
		})
		return
	}
	writeJSON(w, summary)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report := s.Orchestrator.BuildReport()
	if report == nil {
		http.Error(w, "no completed cycle yet", http.StatusNotFound)
		return
	}
	writeJSON(w, report)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	writeJSON(w, s.Bus.Recent(limit))
}

// handleSnapshot forces a full ledger save (POST, admin).
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "persistence disabled", http.StatusServiceUnavailable)
		return
	}
	if err := s.DB.SaveLedgerState(s.Ledger); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"saved": true})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
