// Package divine prices and applies the player's influence actions
// against target resistance, diminishing returns, and regional
// resonance.
package divine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/ravenna/godsworn/internal/refdata"
	"github.com/ravenna/godsworn/internal/world"
)

// Resistance bounds after influence-type scaling.
const (
	minResistance = 5.0
	maxResistance = 95.0
)

// regionCostFactor surcharges region-wide influence.
const regionCostFactor = 1.5

// Engine computes influence costs and applies world effects.
type Engine struct {
	Ref         *refdata.Ref
	Heroes      world.HeroStore
	Settlements world.SettlementStore
	Regions     world.RegionStore
	Landmarks   world.LandmarkStore
	Players     world.PlayerStore
	History     world.HistoryStore
}

// CostEstimate is a priced influence quote.
type CostEstimate struct {
	Cost          int             `json:"cost"`
	TargetName    string          `json:"target_name"`
	Effectiveness refdata.Effects `json:"effectiveness"`
}

// Result reports an applied influence.
type Result struct {
	Success    bool               `json:"success"`
	Cost       int                `json:"cost"`
	Effects    map[string]float64 `json:"effects"`
	TargetName string             `json:"target_name"`
}

// CalculateCost quotes the favor cost and effectiveness of an influence
// without applying it.
func (e *Engine) CalculateCost(targetID uint64, targetType world.TargetType, influenceType, strength string) (CostEstimate, error) {
	tables := e.Ref.Tables()
	it, mult, err := lookupInfluence(tables, influenceType, strength)
	if err != nil {
		return CostEstimate{}, err
	}
	tgt, err := e.loadTarget(targetType, targetID)
	if err != nil {
		return CostEstimate{}, err
	}
	return CostEstimate{
		Cost:          influenceCost(it, mult, targetType),
		TargetName:    tgt.name(),
		Effectiveness: e.modifiers(it, tgt),
	}, nil
}

// Apply performs an influence action: computes cost, checks favor,
// applies bounded field deltas to the target, debits the player, and
// appends a history record. A failed history write is logged and
// swallowed; the primary mutations stand.
func (e *Engine) Apply(targetID uint64, targetType world.TargetType, influenceType, strength, description string, year int) (*Result, error) {
	tables := e.Ref.Tables()
	it, mult, err := lookupInfluence(tables, influenceType, strength)
	if err != nil {
		return nil, err
	}
	tgt, err := e.loadTarget(targetType, targetID)
	if err != nil {
		return nil, err
	}

	cost := influenceCost(it, mult, targetType)
	player, err := e.Players.Player()
	if err != nil {
		return nil, fmt.Errorf("load player: %w", err)
	}
	if player.DivineFavor < cost {
		return nil, fmt.Errorf("%w: need %d, have %d",
			world.ErrInsufficientFavor, cost, player.DivineFavor)
	}

	eff := e.modifiers(it, tgt)
	applied := tgt.apply(eff, mult)

	if err := tgt.persist(e); err != nil {
		return nil, fmt.Errorf("save target: %w", err)
	}
	player.DivineFavor -= cost
	if err := e.Players.SavePlayer(player); err != nil {
		return nil, fmt.Errorf("debit favor: %w", err)
	}

	rec := &world.InfluenceRecord{
		ID:            uuid.NewString(),
		TargetID:      targetID,
		Target:        targetType,
		InfluenceType: influenceType,
		Strength:      strength,
		Effects:       applied,
		GameYear:      year,
	}
	if err := e.History.AppendInfluence(rec); err != nil {
		slog.Warn("influence history write failed",
			"target_id", targetID,
			"target_type", targetType,
			"error", err,
		)
	}

	slog.Info("influence applied",
		"target", tgt.name(),
		"influence_type", influenceType,
		"strength", strength,
		"cost", cost,
	)
	return &Result{
		Success:    true,
		Cost:       cost,
		Effects:    applied,
		TargetName: tgt.name(),
	}, nil
}

func lookupInfluence(tables *refdata.Tables, influenceType, strength string) (refdata.InfluenceType, float64, error) {
	it, ok := tables.InfluenceFor(influenceType)
	if !ok {
		return refdata.InfluenceType{}, 0, fmt.Errorf("%w: influence type %q", world.ErrInvalidArgument, influenceType)
	}
	mult, ok := tables.StrengthMultiplier(strength)
	if !ok {
		return refdata.InfluenceType{}, 0, fmt.Errorf("%w: strength %q", world.ErrInvalidArgument, strength)
	}
	return it, mult, nil
}

// influenceCost keeps the intermediate value fractional so the region
// surcharge rounds once at the end.
func influenceCost(it refdata.InfluenceType, strengthMult float64, targetType world.TargetType) int {
	cost := float64(it.BaseCost) * strengthMult
	if targetType == world.TargetRegion {
		cost *= regionCostFactor
	}
	rounded := int(math.Round(cost))
	if rounded < 1 {
		return 1
	}
	return rounded
}

// resistance scales a target's base resistance by the influence type
// and clamps to [5, 95].
func resistance(tgt target, it refdata.InfluenceType) float64 {
	r := tgt.baseResistance() * it.ResistanceScale
	if r < minResistance {
		return minResistance
	}
	if r > maxResistance {
		return maxResistance
	}
	return r
}

// modifiers scales the influence type's base effect triple by
// resistance, diminishing returns, and regional resonance.
func (e *Engine) modifiers(it refdata.InfluenceType, tgt target) refdata.Effects {
	resistanceMod := 1 - resistance(tgt, it)/100

	// Per-target cooldown factor from influence history. Held at 1.0
	// until history-window scoring lands.
	// TODO: derive from HistoryStore once it grows a recency query.
	diminishing := 1.0

	resonanceBonus := 1.0
	if r, ok := tgt.resonance(); ok {
		resonanceBonus = 1 + (r-50)*0.01
	}

	final := resistanceMod * diminishing * resonanceBonus
	return refdata.Effects{
		Prosperity:       round2(it.Effects.Prosperity * final),
		HeroAttraction:   round2(it.Effects.HeroAttraction * final),
		EventProbability: round2(it.Effects.EventProbability * final),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
