package wager

import (
	"errors"
	"testing"

	"github.com/ravenna/godsworn/internal/world"
	"github.com/ravenna/godsworn/internal/worldtest"
)

func testLedger(h *worldtest.Harness) *Ledger {
	return &Ledger{Odds: testOdds(h), Bets: h, Players: h}
}

func growthHarness(favor int) *worldtest.Harness {
	h := worldtest.New(favor)
	h.SettlementsByID[4] = &world.Settlement{
		ID: 4, Name: "Goldbury", Type: world.TypeTown, Population: 2000, Prosperity: 80,
	}
	return h
}

func growthSpec() BetSpec {
	return BetSpec{
		BetType:    "settlement_growth",
		TargetID:   4,
		Timeframe:  5,
		Confidence: world.ConfidencePossible,
		Stake:      100,
	}
}

func TestPlaceBet_HappyPath(t *testing.T) {
	h := growthHarness(500)
	bet, err := testLedger(h).PlaceBet(growthSpec(), 100)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if bet.CurrentOdds != 2.0 {
		t.Errorf("odds: got %v want 2.0", bet.CurrentOdds)
	}
	if bet.PotentialPayout != 200 {
		t.Errorf("payout: got %d want 200 (floor of 100*2.0)", bet.PotentialPayout)
	}
	if bet.Status != world.BetActive || bet.PlacedYear != 100 {
		t.Errorf("lifecycle fields: status=%s placed=%d", bet.Status, bet.PlacedYear)
	}
	if h.ThePlayer.DivineFavor != 400 {
		t.Errorf("stake not debited: favor %d", h.ThePlayer.DivineFavor)
	}
	if _, ok := h.BetsByID[bet.ID]; !ok {
		t.Error("bet not persisted")
	}
}

func TestPlaceBet_Validation(t *testing.T) {
	h := growthHarness(500)
	l := testLedger(h)

	cases := []struct {
		name   string
		mutate func(*BetSpec)
		want   error
	}{
		{"timeframe low", func(s *BetSpec) { s.Timeframe = 0 }, world.ErrInvalidArgument},
		{"timeframe high", func(s *BetSpec) { s.Timeframe = 51 }, world.ErrInvalidArgument},
		{"stake low", func(s *BetSpec) { s.Stake = 0 }, world.ErrInvalidArgument},
		{"stake high", func(s *BetSpec) { s.Stake = 1001 }, world.ErrInvalidArgument},
		{"bad confidence", func(s *BetSpec) { s.Confidence = "sure_thing" }, world.ErrInvalidArgument},
		{"bad bet type", func(s *BetSpec) { s.BetType = "coin_toss" }, world.ErrInvalidArgument},
		{"missing target", func(s *BetSpec) { s.TargetID = 999 }, world.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := growthSpec()
			tc.mutate(&spec)
			_, err := l.PlaceBet(spec, 100)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
			if h.ThePlayer.DivineFavor != 500 {
				t.Fatalf("favor mutated on rejected bet: %d", h.ThePlayer.DivineFavor)
			}
		})
	}
}

func TestPlaceBet_InsufficientFavor(t *testing.T) {
	h := growthHarness(50)
	_, err := testLedger(h).PlaceBet(growthSpec(), 100)
	if !errors.Is(err, world.ErrInsufficientFavor) {
		t.Fatalf("got %v want ErrInsufficientFavor", err)
	}
	if len(h.BetsByID) != 0 {
		t.Error("bet persisted despite rejection")
	}
}

func TestPlaceThenReprice_StableRoundTrip(t *testing.T) {
	h := growthHarness(500)
	l := testLedger(h)
	bet, err := l.PlaceBet(growthSpec(), 100)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	before := bet.CurrentOdds
	if err := l.RepriceActive(); err != nil {
		t.Fatalf("reprice: %v", err)
	}
	after := h.BetsByID[bet.ID].CurrentOdds

	drift := after - before
	if drift < 0 {
		drift = -drift
	}
	if drift > RepriceDriftBound*before {
		t.Errorf("reprice immediately after placing drifted %v (odds %v -> %v)", drift, before, after)
	}
}

func TestSweepExpired(t *testing.T) {
	h := growthHarness(500)
	l := testLedger(h)

	fresh, err := l.PlaceBet(growthSpec(), 100)
	if err != nil {
		t.Fatal(err)
	}
	stale, err := l.PlaceBet(growthSpec(), 95)
	if err != nil {
		t.Fatal(err)
	}

	n, err := l.SweepExpired(100)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired count: got %d want 1", n)
	}
	if got := h.BetsByID[stale.ID].Status; got != world.BetExpired {
		t.Errorf("stale bet status: got %s want expired", got)
	}
	if got := h.BetsByID[fresh.ID].Status; got != world.BetActive {
		t.Errorf("fresh bet status: got %s want active", got)
	}
	if y := h.BetsByID[stale.ID].ResolvedYear; y == nil || *y != 100 {
		t.Errorf("resolved year not stamped: %v", y)
	}
}

func TestResolve_WonCreditsPayout(t *testing.T) {
	h := growthHarness(500)
	l := testLedger(h)
	bet, err := l.PlaceBet(growthSpec(), 100)
	if err != nil {
		t.Fatal(err)
	}
	favorAfterStake := h.ThePlayer.DivineFavor

	if err := l.Resolve(bet, OutcomeWon, "the city swelled", 103); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if bet.Status != world.BetWon {
		t.Errorf("status: got %s want won", bet.Status)
	}
	want := favorAfterStake + bet.PotentialPayout
	if h.ThePlayer.DivineFavor != want {
		t.Errorf("favor: got %d want %d", h.ThePlayer.DivineFavor, want)
	}
}

func TestResolve_OnlyOnce(t *testing.T) {
	h := growthHarness(500)
	l := testLedger(h)
	bet, err := l.PlaceBet(growthSpec(), 100)
	if err != nil {
		t.Fatal(err)
	}

	if err := l.Resolve(bet, OutcomeLost, "", 101); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	favor := h.ThePlayer.DivineFavor

	err = l.Resolve(bet, OutcomeWon, "", 102)
	if !errors.Is(err, world.ErrInvalidArgument) {
		t.Fatalf("second resolve: got %v want ErrInvalidArgument", err)
	}
	if h.ThePlayer.DivineFavor != favor {
		t.Errorf("favor changed on rejected resolve: %d", h.ThePlayer.DivineFavor)
	}
}
