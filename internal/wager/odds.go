// Package wager prices divine bets and owns their lifecycle. Quote-time
// payout rates and bet-level absolute payouts are deliberately distinct
// units: a Quote carries odds and a rate, a DivineBet carries the
// stake-applied amount.
package wager

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/ravenna/godsworn/internal/refdata"
	"github.com/ravenna/godsworn/internal/rules"
	"github.com/ravenna/godsworn/internal/world"
)

// MinOdds floors every quoted and repriced odds value.
const MinOdds = 1.1

// RepriceDriftBound caps per-update odds movement at ±20% of the
// previous value, keeping year-to-year volatility from breaking wagers.
const RepriceDriftBound = 0.2

// Fallback quote substituted when any lookup fails mid-computation.
const (
	fallbackOdds       = 2.0
	fallbackPayoutRate = 2.0
)

// Quote is a priced bet offer. PayoutRate is a rate (odds times the
// confidence stake multiplier), not an amount; the ledger multiplies in
// the stake at placement time.
type Quote struct {
	Odds       float64 `json:"odds"`
	PayoutRate float64 `json:"payout_rate"`
}

// OddsEngine composes the base odds table, confidence and timeframe
// modifiers, and the target's live-stat rule table into bet odds.
type OddsEngine struct {
	Ref         *refdata.Ref
	Heroes      world.HeroStore
	Settlements world.SettlementStore
	Regions     world.RegionStore
	Landmarks   world.LandmarkStore
}

// ComputeOdds prices a (bet type, target, timeframe, confidence) tuple.
// It never fails: any lookup error is logged and the safe default quote
// is returned instead.
func (e *OddsEngine) ComputeOdds(betType string, targetID uint64, timeframe int, confidence world.Confidence) Quote {
	q, err := e.quote(betType, targetID, timeframe, confidence)
	if err != nil {
		slog.Warn("odds computation fallback",
			"bet_type", betType,
			"target_id", targetID,
			"error", err,
		)
		return Quote{Odds: fallbackOdds, PayoutRate: fallbackPayoutRate}
	}
	return q
}

func (e *OddsEngine) quote(betType string, targetID uint64, timeframe int, confidence world.Confidence) (Quote, error) {
	tables := e.Ref.Tables()

	base := tables.BaseOddsFor(betType)
	tier := tables.ConfidenceFor(string(confidence))
	timeframeMod := tables.TimeframeModifier(timeframe)

	targetMod := 1.0
	if targetType, ok := tables.TargetTypeFor(betType); ok {
		if ruleTable := tables.RulesFor(targetType, betType); len(ruleTable) > 0 {
			_, stats, err := e.LookupTarget(world.TargetType(targetType), targetID)
			if err != nil {
				return Quote{}, fmt.Errorf("target stats: %w", err)
			}
			targetMod = rules.Evaluate(stats, ruleTable)
		}
	}

	odds := round2(base * tier.OddsModifier * timeframeMod * targetMod)
	if odds < MinOdds {
		odds = MinOdds
	}
	return Quote{
		Odds:       odds,
		PayoutRate: odds * tier.StakeMultiplier,
	}, nil
}

// Reprice recomputes an active bet's odds through the normal path, then
// clamps the move to the drift bound and refreshes the potential payout.
// The caller persists the bet. The fresh quote is already rounded;
// rounding again after the clamp could push the odds back outside the
// drift bound, so a clamped value keeps its exact bound.
func (e *OddsEngine) Reprice(b *world.DivineBet) {
	fresh := e.ComputeOdds(b.BetType, b.TargetID, b.Timeframe, b.Confidence)

	lo := b.CurrentOdds * (1 - RepriceDriftBound)
	hi := b.CurrentOdds * (1 + RepriceDriftBound)
	odds := fresh.Odds
	if odds < lo {
		odds = lo
	}
	if odds > hi {
		odds = hi
	}
	if odds < MinOdds {
		odds = MinOdds
	}

	tier := e.Ref.Tables().ConfidenceFor(string(b.Confidence))
	b.CurrentOdds = odds
	b.PotentialPayout = int(math.Round(float64(b.Stake) * odds * tier.StakeMultiplier))
}

// LookupTarget resolves a bet or influence target to its display name
// and flat stat snapshot.
func (e *OddsEngine) LookupTarget(targetType world.TargetType, id uint64) (string, map[string]any, error) {
	switch targetType {
	case world.TargetHero:
		h, err := e.Heroes.Hero(id)
		if err != nil {
			return "", nil, err
		}
		return h.Name, h.StatSnapshot(), nil
	case world.TargetSettlement:
		s, err := e.Settlements.Settlement(id)
		if err != nil {
			return "", nil, err
		}
		return s.Name, s.StatSnapshot(), nil
	case world.TargetRegion:
		r, err := e.Regions.Region(id)
		if err != nil {
			return "", nil, err
		}
		return r.Name, r.StatSnapshot(), nil
	case world.TargetLandmark:
		l, err := e.Landmarks.Landmark(id)
		if err != nil {
			return "", nil, err
		}
		return l.Name, l.StatSnapshot(), nil
	default:
		return "", nil, fmt.Errorf("%w: target type %q", world.ErrInvalidArgument, targetType)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
