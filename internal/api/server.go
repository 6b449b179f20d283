// Package api provides the HTTP surface for the Godsworn world.
// GET endpoints are public (read-only observation). Player actions
// (influence, wagers) are rate-limited POSTs; the control plane
// (tick, speed, bet resolution) requires a bearer token.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ravenna/godsworn/internal/divine"
	"github.com/ravenna/godsworn/internal/engine"
	"github.com/ravenna/godsworn/internal/persistence"
	"github.com/ravenna/godsworn/internal/refdata"
	"github.com/ravenna/godsworn/internal/wager"
	"github.com/ravenna/godsworn/internal/world"
)

// Server serves the world state over HTTP.
type Server struct {
	DB     *persistence.DB
	Ref    *refdata.Ref
	Driver *engine.Driver
	Clock  *engine.Clock
	Divine *divine.Engine
	Ledger *wager.Ledger

	Port     int
	AdminKey string // Bearer token for admin endpoints. Empty = admin disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Player actions get a per-IP budget; reads are unthrottled.
	actionLimiter := NewRateLimiter(120, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/heroes", s.handleHeroes)
	mux.HandleFunc("/api/v1/hero/", s.handleHeroDetail)
	mux.HandleFunc("/api/v1/settlements", s.handleSettlements)
	mux.HandleFunc("/api/v1/settlement/", s.handleSettlementDetail)
	mux.HandleFunc("/api/v1/regions", s.handleRegions)
	mux.HandleFunc("/api/v1/landmarks", s.handleLandmarks)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/bets", s.handleBets)
	mux.HandleFunc("/api/v1/influence/history", s.handleInfluenceHistory)

	// Player actions.
	mux.HandleFunc("/api/v1/influence/cost", RateLimitMiddleware(actionLimiter, s.handleInfluenceCost))
	mux.HandleFunc("/api/v1/influence", RateLimitMiddleware(actionLimiter, s.handleInfluence))
	mux.HandleFunc("/api/v1/bets/quote", RateLimitMiddleware(actionLimiter, s.handleBetQuote))
	mux.HandleFunc("/api/v1/bets/place", RateLimitMiddleware(actionLimiter, s.handlePlaceBet))

	// Admin control plane.
	mux.HandleFunc("/api/v1/tick", s.adminOnly(s.handleTick))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/bets/resolve", s.adminOnly(s.handleResolveBet))
	mux.HandleFunc("/api/v1/refdata/reload", s.adminOnly(s.handleRefdataReload))

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

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires a bearer token and rejects non-POST methods.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no GODSWORN_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	year, err := s.DB.CurrentYear()
	if err != nil {
		writeError(w, err)
		return
	}
	player, err := s.DB.Player()
	if err != nil {
		writeError(w, err)
		return
	}
	regions, _ := s.DB.Regions()
	settlements, _ := s.DB.Settlements()
	living, _ := s.DB.LivingHeroes()
	active, _ := s.DB.ActiveBets()

	population := 0
	for _, rg := range regions {
		population += rg.PopulationTotal
	}

	writeJSON(w, map[string]any{
		"name":         "Godsworn",
		"year":         year,
		"speed":        s.Clock.Speed(),
		"player":       player.Name,
		"divine_favor": player.DivineFavor,
		"population":   population,
		"regions":      len(regions),
		"settlements":  len(settlements),
		"heroes":       len(living),
		"active_bets":  len(active),
	})
}

func (s *Server) handleHeroes(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	var (
		heroes []*world.Hero
		err    error
	)
	if r.URL.Query().Get("include_fallen") == "true" {
		heroes, err = s.DB.Heroes()
	} else {
		heroes, err = s.DB.LivingHeroes()
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, heroes)
}

func (s *Server) handleHeroDetail(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	id, ok := pathID(w, r, "/api/v1/hero/")
	if !ok {
		return
	}
	h, err := s.DB.Hero(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, h)
}

func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	var (
		settlements []*world.Settlement
		err         error
	)
	if q := r.URL.Query().Get("region"); q != "" {
		regionID, parseErr := strconv.ParseUint(q, 10, 64)
		if parseErr != nil {
			http.Error(w, "invalid region id", http.StatusBadRequest)
			return
		}
		settlements, err = s.DB.SettlementsByRegion(regionID)
	} else {
		settlements, err = s.DB.Settlements()
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, settlements)
}

func (s *Server) handleSettlementDetail(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	id, ok := pathID(w, r, "/api/v1/settlement/")
	if !ok {
		return
	}
	st, err := s.DB.Settlement(id)
	if err != nil {
		writeError(w, err)
		return
	}
	buildings, err := s.DB.BuildingTypes(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"settlement": st,
		"buildings":  buildings,
	})
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	regions, err := s.DB.Regions()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, regions)
}

func (s *Server) handleLandmarks(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	landmarks, err := s.DB.Landmarks()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, landmarks)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	limit := queryLimit(r, 50, 500)
	events, err := s.DB.RecentEvents(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, events)
}

func (s *Server) handleBets(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	var (
		bets []*world.DivineBet
		err  error
	)
	if r.URL.Query().Get("status") == "active" {
		bets, err = s.DB.ActiveBets()
	} else {
		bets, err = s.DB.AllBets()
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, bets)
}

func (s *Server) handleInfluenceHistory(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	limit := queryLimit(r, 50, 500)
	history, err := s.DB.InfluenceHistory(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, history)
}

type influenceRequest struct {
	TargetID      uint64 `json:"target_id"`
	TargetType    string `json:"target_type"`
	InfluenceType string `json:"influence_type"`
	Strength      string `json:"strength"`
	Description   string `json:"description,omitempty"`
}

func (s *Server) handleInfluenceCost(w http.ResponseWriter, r *http.Request) {
	var req influenceRequest
	if !decodePost(w, r, &req) {
		return
	}
	est, err := s.Divine.CalculateCost(req.TargetID, world.TargetType(req.TargetType),
		req.InfluenceType, req.Strength)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, est)
}

func (s *Server) handleInfluence(w http.ResponseWriter, r *http.Request) {
	var req influenceRequest
	if !decodePost(w, r, &req) {
		return
	}

	s.Driver.Lock()
	defer s.Driver.Unlock()

	year, err := s.DB.CurrentYear()
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.Divine.Apply(req.TargetID, world.TargetType(req.TargetType),
		req.InfluenceType, req.Strength, req.Description, year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, result)
}

type betRequest struct {
	BetType    string `json:"bet_type"`
	TargetID   uint64 `json:"target_id"`
	Timeframe  int    `json:"timeframe"`
	Confidence string `json:"confidence"`
	Stake      int    `json:"stake"`
}

func (req betRequest) spec() wager.BetSpec {
	return wager.BetSpec{
		BetType:    req.BetType,
		TargetID:   req.TargetID,
		Timeframe:  req.Timeframe,
		Confidence: world.Confidence(req.Confidence),
		Stake:      req.Stake,
	}
}

func (s *Server) handleBetQuote(w http.ResponseWriter, r *http.Request) {
	var req betRequest
	if !decodePost(w, r, &req) {
		return
	}
	quote := s.Ledger.Odds.ComputeOdds(req.BetType, req.TargetID,
		req.Timeframe, world.Confidence(req.Confidence))
	writeJSON(w, quote)
}

func (s *Server) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	var req betRequest
	if !decodePost(w, r, &req) {
		return
	}

	s.Driver.Lock()
	defer s.Driver.Unlock()

	year, err := s.DB.CurrentYear()
	if err != nil {
		writeError(w, err)
		return
	}
	bet, err := s.Ledger.PlaceBet(req.spec(), year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, bet)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	report, err := s.Driver.Advance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > engine.MaxSpeed {
		http.Error(w, fmt.Sprintf("speed must be 0-%g", engine.MaxSpeed), http.StatusBadRequest)
		return
	}
	s.Clock.SetSpeed(req.Speed)
	writeJSON(w, map[string]any{"speed": s.Clock.Speed()})
}

func (s *Server) handleResolveBet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BetID   string `json:"bet_id"`
		Outcome string `json:"outcome"`
		Notes   string `json:"notes,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	outcome := wager.Outcome(req.Outcome)
	if outcome != wager.OutcomeWon && outcome != wager.OutcomeLost {
		http.Error(w, "outcome must be won or lost", http.StatusBadRequest)
		return
	}

	s.Driver.Lock()
	defer s.Driver.Unlock()

	bet, err := s.DB.Bet(req.BetID)
	if err != nil {
		writeError(w, err)
		return
	}
	year, err := s.DB.CurrentYear()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.Ledger.Resolve(bet, outcome, req.Notes, year); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, bet)
}

func (s *Server) handleRefdataReload(w http.ResponseWriter, r *http.Request) {
	if err := s.Ref.Reload(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"reloaded": true})
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func decodePost(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, prefix string) (uint64, bool) {
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	raw = strings.TrimSuffix(raw, "/")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func queryLimit(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// writeError maps domain sentinel errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, world.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, world.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, world.ErrInsufficientFavor):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
