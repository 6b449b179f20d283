package refdata

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ravenna/godsworn/internal/rules"
)

// DefaultTimeframeModifier applies to timeframes beyond the last step.
const DefaultTimeframeModifier = 0.6

// DefaultBaseOdds applies to bet types missing from the table.
const DefaultBaseOdds = 3.0

// Ref hands out the current immutable table snapshot and supports an
// explicit reload. Engines keep the Ref and call Tables per operation.
type Ref struct {
	mu   sync.RWMutex
	path string
	t    *Tables
}

// Open loads reference data from the YAML file at path, overlaid on the
// built-in defaults. An empty path yields pure defaults.
func Open(path string) (*Ref, error) {
	r := &Ref{path: path}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Static wraps a fixed table set with no backing file. Used by tests and
// by callers that assemble tables in code.
func Static(t *Tables) *Ref {
	return &Ref{t: t}
}

// Tables returns the current snapshot. The snapshot is immutable; a
// Reload swaps in a fresh one without disturbing readers mid-operation.
func (r *Ref) Tables() *Tables {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.t
}

// Reload re-reads the backing file and atomically replaces the snapshot.
// YAML maps merge over the defaults key by key; list-valued tables
// (timeframe steps, evolution thresholds, death reasons, rule sets)
// replace their default wholesale when present.
func (r *Ref) Reload() error {
	t := Defaults()
	if r.path != "" {
		raw, err := os.ReadFile(r.path)
		if err != nil {
			return fmt.Errorf("read reference data: %w", err)
		}
		if err := yaml.Unmarshal(raw, t); err != nil {
			return fmt.Errorf("parse reference data: %w", err)
		}
	}
	r.mu.Lock()
	r.t = t
	r.mu.Unlock()
	return nil
}

// BaseOddsFor returns the base odds for a bet type, or DefaultBaseOdds
// for an unknown type.
func (t *Tables) BaseOddsFor(betType string) float64 {
	if bt, ok := t.BetTypes[betType]; ok {
		return bt.BaseOdds
	}
	return DefaultBaseOdds
}

// TargetTypeFor reports the entity kind a bet type targets.
func (t *Tables) TargetTypeFor(betType string) (string, bool) {
	bt, ok := t.BetTypes[betType]
	return bt.TargetType, ok
}

// ConfidenceFor returns the tier for a confidence level. Unknown levels
// fall back to neutral modifiers.
func (t *Tables) ConfidenceFor(confidence string) ConfidenceTier {
	if c, ok := t.Confidence[confidence]; ok {
		return c
	}
	return ConfidenceTier{OddsModifier: 1.0, StakeMultiplier: 1.0}
}

// HasConfidence reports whether the confidence level is a table member.
func (t *Tables) HasConfidence(confidence string) bool {
	_, ok := t.Confidence[confidence]
	return ok
}

// TimeframeModifier resolves the step function by nearest upper bound.
func (t *Tables) TimeframeModifier(years int) float64 {
	for _, step := range t.Timeframe {
		if years <= step.MaxYears {
			return step.Modifier
		}
	}
	return DefaultTimeframeModifier
}

// RulesFor returns the modifier-rule table for a (target type, bet type)
// pair, or nil when no table is registered.
func (t *Tables) RulesFor(targetType, betType string) []rules.Rule {
	for _, rs := range t.TargetRules {
		if rs.TargetType == targetType && rs.BetType == betType {
			return rs.Rules
		}
	}
	return nil
}

// StrengthMultiplier returns the cost multiplier for a strength level.
func (t *Tables) StrengthMultiplier(strength string) (float64, bool) {
	m, ok := t.Strengths[strength]
	return m, ok
}

// InfluenceFor returns the influence-type row.
func (t *Tables) InfluenceFor(influenceType string) (InfluenceType, bool) {
	it, ok := t.Influence[influenceType]
	return it, ok
}

// CeilingFor returns the population ceiling for a settlement type.
// Unknown types are effectively uncapped.
func (t *Tables) CeilingFor(settlementType string) int {
	if c, ok := t.TypeCeilings[settlementType]; ok {
		return c
	}
	return int(^uint(0) >> 1)
}

// SpecializationBonus returns the prosperity multiplier contributed by a
// settlement specialization, 1.0 when unlisted.
func (t *Tables) SpecializationBonus(name string) float64 {
	if b, ok := t.Specials[name]; ok {
		return b
	}
	return 1.0
}

// TraitBonus returns the prosperity multiplier contributed by a
// settlement trait, 1.0 when unlisted.
func (t *Tables) TraitBonus(name string) float64 {
	if b, ok := t.SettleTraits[name]; ok {
		return b
	}
	return 1.0
}

// ValidRole reports whether a hero role is listed in the role table.
func (t *Tables) ValidRole(role string) bool {
	for _, r := range t.HeroRoles {
		if r == role {
			return true
		}
	}
	return false
}
