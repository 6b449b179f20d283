package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ravenna/godsworn/internal/divine"
	"github.com/ravenna/godsworn/internal/engine"
	"github.com/ravenna/godsworn/internal/hero"
	"github.com/ravenna/godsworn/internal/persistence"
	"github.com/ravenna/godsworn/internal/refdata"
	"github.com/ravenna/godsworn/internal/rng"
	"github.com/ravenna/godsworn/internal/settlement"
	"github.com/ravenna/godsworn/internal/wager"
	"github.com/ravenna/godsworn/internal/world"
)

func newTestServer(t *testing.T) (*Server, *persistence.DB) {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "world.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ref := refdata.Static(refdata.Defaults())
	odds := &wager.OddsEngine{Ref: ref, Heroes: db, Settlements: db, Regions: db, Landmarks: db}
	ledger := &wager.Ledger{Odds: odds, Bets: db, Players: db}
	driver := &engine.Driver{
		Ref: ref, Heroes: db, Settlements: db, Regions: db,
		Events: db, Meta: db, Ledger: ledger,
		Lifecycle: &hero.Engine{Ref: ref},
		Evolution: &settlement.Engine{Ref: ref},
		Rand:      rng.NewLocked(rng.New(1)),
	}
	srv := &Server{
		DB:     db,
		Ref:    ref,
		Driver: driver,
		Clock:  engine.NewClock(driver, time.Second),
		Divine: &divine.Engine{
			Ref: ref, Heroes: db, Settlements: db, Regions: db,
			Landmarks: db, Players: db, History: db,
		},
		Ledger:   ledger,
		AdminKey: "test-key",
	}

	// Minimal world: one region, one settlement, one hero, the player.
	if err := db.SaveRegion(&world.Region{
		ID: 7, Name: "The Ashen Reach",
		Prosperity: 50, Chaos: 20, MagicAffinity: 40, DangerLevel: 10, DivineResonance: 50,
	}); err != nil {
		t.Fatalf("seed region: %v", err)
	}
	if err := db.SaveSettlement(&world.Settlement{
		ID: 4, Name: "Goldbury", RegionID: 7, Type: world.TypeVillage,
		Population: 400, Prosperity: 80, Status: world.StatusStable,
	}); err != nil {
		t.Fatalf("seed settlement: %v", err)
	}
	if err := db.SaveHero(&world.Hero{
		ID: 3, Name: "Serah", RegionID: 7, Role: "warrior",
		Level: 10, Age: 30, IsAlive: true, Status: world.HeroLiving,
	}); err != nil {
		t.Fatalf("seed hero: %v", err)
	}
	if err := db.SavePlayer(&world.Player{ID: 1, Name: "The Nameless", DivineFavor: 500}); err != nil {
		t.Fatalf("seed player: %v", err)
	}
	if err := db.SetCurrentYear(5); err != nil {
		t.Fatalf("seed year: %v", err)
	}
	return srv, db
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv.handleStatus, http.MethodGet, "/api/v1/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["year"].(float64) != 5 || got["divine_favor"].(float64) != 500 {
		t.Fatalf("body = %v", got)
	}
	if got["heroes"].(float64) != 1 || got["settlements"].(float64) != 1 {
		t.Fatalf("counts = %v", got)
	}
}

func TestHeroDetailNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv.handleHeroDetail, http.MethodGet, "/api/v1/hero/99", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	w = doJSON(t, srv.handleHeroDetail, http.MethodGet, "/api/v1/hero/nonsense", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestInfluenceCostEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv.handleInfluenceCost, http.MethodPost, "/api/v1/influence/cost",
		`{"target_id":7,"target_type":"region","influence_type":"direct","strength":"moderate"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var est divine.CostEstimate
	if err := json.Unmarshal(w.Body.Bytes(), &est); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if est.Cost != 94 || est.TargetName != "The Ashen Reach" {
		t.Fatalf("estimate = %+v", est)
	}
}

func TestInfluenceDebitsFavor(t *testing.T) {
	srv, db := newTestServer(t)

	w := doJSON(t, srv.handleInfluence, http.MethodPost, "/api/v1/influence",
		`{"target_id":3,"target_type":"hero","influence_type":"bless","strength":"subtle"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	p, err := db.Player()
	if err != nil {
		t.Fatalf("player: %v", err)
	}
	if p.DivineFavor != 490 {
		t.Fatalf("favor = %d, want 490", p.DivineFavor)
	}
}

func TestPlaceBetEndpoint(t *testing.T) {
	srv, db := newTestServer(t)

	w := doJSON(t, srv.handlePlaceBet, http.MethodPost, "/api/v1/bets/place",
		`{"bet_type":"settlement_growth","target_id":4,"timeframe":5,"confidence":"possible","stake":100}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var bet world.DivineBet
	if err := json.Unmarshal(w.Body.Bytes(), &bet); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bet.Status != world.BetActive || bet.PlacedYear != 5 {
		t.Fatalf("bet = %+v", bet)
	}

	active, err := db.ActiveBets()
	if err != nil || len(active) != 1 {
		t.Fatalf("active = %v, err %v", active, err)
	}

	// Validation errors map to 400.
	w = doJSON(t, srv.handlePlaceBet, http.MethodPost, "/api/v1/bets/place",
		`{"bet_type":"settlement_growth","target_id":4,"timeframe":99,"confidence":"possible","stake":100}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestPlaceBetInsufficientFavor(t *testing.T) {
	srv, db := newTestServer(t)
	if err := db.SavePlayer(&world.Player{ID: 1, Name: "The Nameless", DivineFavor: 10}); err != nil {
		t.Fatalf("save player: %v", err)
	}

	w := doJSON(t, srv.handlePlaceBet, http.MethodPost, "/api/v1/bets/place",
		`{"bet_type":"settlement_growth","target_id":4,"timeframe":5,"confidence":"possible","stake":100}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.adminOnly(srv.handleTick)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tick", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/tick", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tick", nil)
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("get: status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/tick", nil)
	req.Header.Set("Authorization", "Bearer test-key")
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("good token: status = %d: %s", w.Code, w.Body.String())
	}
	var report engine.TickReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Year != 6 {
		t.Fatalf("report year = %d, want 6", report.Year)
	}
}

func TestAdminDisabledWithoutKey(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.AdminKey = ""
	handler := srv.adminOnly(srv.handleTick)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tick", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("third request should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other IPs have their own budget")
	}
	if rl.RetryAfter("1.2.3.4") <= 0 {
		t.Fatal("retry-after should be positive")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.9:1234"
	if ip := clientIP(r); ip != "10.0.0.9" {
		t.Fatalf("ip = %q", ip)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if ip := clientIP(r); ip != "203.0.113.7" {
		t.Fatalf("forwarded ip = %q", ip)
	}
}
