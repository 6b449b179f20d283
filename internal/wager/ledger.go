package wager

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/ravenna/godsworn/internal/world"
)

// Stake and timeframe bounds enforced at placement.
const (
	MinStake     = 1
	MaxStake     = 1000
	MinTimeframe = 1
	MaxTimeframe = 50
)

// Outcome is the terminal state an external outcome evaluator assigns to
// a bet. The ledger itself only expires bets on timeframe; whether a bet
// was won or lost is the evaluator's call.
type Outcome string

const (
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
	OutcomeExpired Outcome = "expired"
)

// BetSpec is a placement request.
type BetSpec struct {
	BetType    string           `json:"bet_type"`
	TargetID   uint64           `json:"target_id"`
	Timeframe  int              `json:"timeframe"`
	Confidence world.Confidence `json:"confidence"`
	Stake      int              `json:"stake"`
}

// Ledger owns the DivineBet lifecycle: placement, the yearly expiry
// sweep, repricing, and payout settlement.
type Ledger struct {
	Odds    *OddsEngine
	Bets    world.BetStore
	Players world.PlayerStore
}

// PlaceBet validates the spec, prices it, and persists an active bet.
// The quoted payout rate becomes an absolute amount here: stake times
// rate, floored.
func (l *Ledger) PlaceBet(spec BetSpec, currentYear int) (*world.DivineBet, error) {
	tables := l.Odds.Ref.Tables()

	if spec.Timeframe < MinTimeframe || spec.Timeframe > MaxTimeframe {
		return nil, fmt.Errorf("%w: timeframe %d outside [%d, %d]",
			world.ErrInvalidArgument, spec.Timeframe, MinTimeframe, MaxTimeframe)
	}
	if spec.Stake < MinStake || spec.Stake > MaxStake {
		return nil, fmt.Errorf("%w: stake %d outside [%d, %d]",
			world.ErrInvalidArgument, spec.Stake, MinStake, MaxStake)
	}
	if !tables.HasConfidence(string(spec.Confidence)) {
		return nil, fmt.Errorf("%w: confidence %q", world.ErrInvalidArgument, spec.Confidence)
	}
	targetType, ok := tables.TargetTypeFor(spec.BetType)
	if !ok {
		return nil, fmt.Errorf("%w: bet type %q", world.ErrInvalidArgument, spec.BetType)
	}

	// Target must exist before any pricing; a vanished target is a
	// placement error, not an odds fallback.
	if _, _, err := l.Odds.LookupTarget(world.TargetType(targetType), spec.TargetID); err != nil {
		return nil, fmt.Errorf("bet target %d: %w", spec.TargetID, err)
	}

	player, err := l.Players.Player()
	if err != nil {
		return nil, fmt.Errorf("load player: %w", err)
	}
	if player.DivineFavor < spec.Stake {
		return nil, fmt.Errorf("%w: stake %d, favor %d",
			world.ErrInsufficientFavor, spec.Stake, player.DivineFavor)
	}

	q := l.Odds.ComputeOdds(spec.BetType, spec.TargetID, spec.Timeframe, spec.Confidence)

	bet := &world.DivineBet{
		ID:              uuid.NewString(),
		PlayerID:        player.ID,
		BetType:         spec.BetType,
		TargetID:        spec.TargetID,
		Target:          world.TargetType(targetType),
		Timeframe:       spec.Timeframe,
		Confidence:      spec.Confidence,
		Stake:           spec.Stake,
		CurrentOdds:     q.Odds,
		PotentialPayout: int(math.Floor(float64(spec.Stake) * q.PayoutRate)),
		Status:          world.BetActive,
		PlacedYear:      currentYear,
	}

	player.DivineFavor -= spec.Stake
	if err := l.Players.SavePlayer(player); err != nil {
		return nil, fmt.Errorf("debit stake: %w", err)
	}
	if err := l.Bets.SaveBet(bet); err != nil {
		return nil, fmt.Errorf("save bet: %w", err)
	}

	slog.Info("bet placed",
		"bet_id", bet.ID,
		"bet_type", bet.BetType,
		"target_id", bet.TargetID,
		"odds", bet.CurrentOdds,
		"stake", bet.Stake,
		"potential_payout", bet.PotentialPayout,
	)
	return bet, nil
}

// SweepExpired transitions every active bet whose timeframe has elapsed
// to expired. Returns the number of bets expired. Win/lose resolution is
// the external outcome evaluator's path via Resolve; the sweep never
// guesses outcomes.
func (l *Ledger) SweepExpired(currentYear int) (int, error) {
	active, err := l.Bets.ActiveBets()
	if err != nil {
		return 0, fmt.Errorf("list active bets: %w", err)
	}
	expired := 0
	for _, b := range active {
		if currentYear-b.PlacedYear < b.Timeframe {
			continue
		}
		if err := l.Resolve(b, OutcomeExpired, "timeframe elapsed", currentYear); err != nil {
			slog.Error("bet expiry failed", "bet_id", b.ID, "error", err)
			continue
		}
		expired++
	}
	return expired, nil
}

// RepriceActive re-prices every active bet under the drift bound.
func (l *Ledger) RepriceActive() error {
	active, err := l.Bets.ActiveBets()
	if err != nil {
		return fmt.Errorf("list active bets: %w", err)
	}
	for _, b := range active {
		l.Odds.Reprice(b)
		if err := l.Bets.SaveBet(b); err != nil {
			slog.Error("bet reprice save failed", "bet_id", b.ID, "error", err)
		}
	}
	return nil
}

// Resolve finalizes a bet exactly once. A won bet credits the player's
// favor with the potential payout.
func (l *Ledger) Resolve(b *world.DivineBet, outcome Outcome, notes string, currentYear int) error {
	if b.Status != world.BetActive {
		return fmt.Errorf("%w: bet %s already %s", world.ErrInvalidArgument, b.ID, b.Status)
	}

	switch outcome {
	case OutcomeWon:
		b.Status = world.BetWon
	case OutcomeLost:
		b.Status = world.BetLost
	case OutcomeExpired:
		b.Status = world.BetExpired
	default:
		return fmt.Errorf("%w: outcome %q", world.ErrInvalidArgument, outcome)
	}
	year := currentYear
	b.ResolvedYear = &year
	b.ResolutionNotes = notes

	if err := l.Bets.SaveBet(b); err != nil {
		return fmt.Errorf("save bet: %w", err)
	}

	if b.Status == world.BetWon {
		player, err := l.Players.Player()
		if err != nil {
			return fmt.Errorf("load player for payout: %w", err)
		}
		player.DivineFavor += b.PotentialPayout
		if err := l.Players.SavePlayer(player); err != nil {
			return fmt.Errorf("credit payout: %w", err)
		}
		slog.Info("bet won", "bet_id", b.ID, "payout", b.PotentialPayout)
	}
	return nil
}
