// Package refdata holds the externally-seeded reference tables that
// drive odds, influence, and settlement evolution. Tables are loaded
// once from YAML into an immutable snapshot; engines hold a Ref handle
// and read the current snapshot per operation, never ambient globals.
package refdata

import (
	"github.com/ravenna/godsworn/internal/rules"
)

// BetType describes one wagerable outcome category.
type BetType struct {
	BaseOdds   float64 `yaml:"base_odds"`
	TargetType string  `yaml:"target_type"`
}

// ConfidenceTier scales both the odds and the stake multiplier for a
// bettor-chosen risk level.
type ConfidenceTier struct {
	OddsModifier    float64 `yaml:"odds_modifier"`
	StakeMultiplier float64 `yaml:"stake_multiplier"`
}

// TimeframeStep is one entry of the timeframe step function: the
// modifier applies to timeframes of at most MaxYears. Entries are
// matched nearest-upper-bound in ascending order.
type TimeframeStep struct {
	MaxYears int     `yaml:"max_years"`
	Modifier float64 `yaml:"modifier"`
}

// TargetRuleSet binds a modifier-rule table to a (target type, bet type)
// pair.
type TargetRuleSet struct {
	TargetType string       `yaml:"target_type"`
	BetType    string       `yaml:"bet_type"`
	Rules      []rules.Rule `yaml:"rules"`
}

// EvolutionThreshold gates one settlement tier promotion.
type EvolutionThreshold struct {
	From              string   `yaml:"from"`
	To                string   `yaml:"to"`
	MinPopulation     int      `yaml:"min_population"`
	MinProsperity     float64  `yaml:"min_prosperity"`
	RequiredBuildings []string `yaml:"required_buildings"`
}

// DeathReason is one weighted entry of the active death-reason table.
type DeathReason struct {
	Reason string  `yaml:"reason"`
	Weight float64 `yaml:"weight"`
}

// Effects is the base effect triple of an influence type. Values are
// signed: curses carry negative entries.
type Effects struct {
	Prosperity       float64 `yaml:"prosperity"`
	HeroAttraction   float64 `yaml:"hero_attraction"`
	EventProbability float64 `yaml:"event_probability"`
}

// InfluenceType is one row of the influence table. The table covers both
// the channel names (environmental/inspirational/coincidental/direct)
// and the player verbs (bless/curse/guide/empower); verbs alias a
// channel's cost tier while carrying their own resistance scale.
type InfluenceType struct {
	BaseCost        int     `yaml:"base_cost"`
	ResistanceScale float64 `yaml:"resistance_scale"`
	Effects         Effects `yaml:"effects"`
}

// Tables is one immutable snapshot of all reference data.
type Tables struct {
	BetTypes      map[string]BetType        `yaml:"bet_types"`
	Confidence    map[string]ConfidenceTier `yaml:"confidence"`
	Timeframe     []TimeframeStep           `yaml:"timeframe"`
	TargetRules   []TargetRuleSet           `yaml:"target_rules"`
	HeroRoles     []string                  `yaml:"hero_roles"`
	Strengths     map[string]float64        `yaml:"strengths"`
	Influence     map[string]InfluenceType  `yaml:"influence"`
	DeathReasons  []DeathReason             `yaml:"death_reasons"`
	Specials      map[string]float64        `yaml:"specializations"`
	SettleTraits  map[string]float64        `yaml:"settlement_traits"`
	Evolution     []EvolutionThreshold      `yaml:"evolution"`
	TypeCeilings  map[string]int            `yaml:"type_ceilings"`
	HeroMoveChance float64                  `yaml:"hero_move_chance"`
}

// Defaults returns the built-in table set. Loading YAML overlays these,
// so a partial file only overrides what it names.
func Defaults() *Tables {
	return &Tables{
		BetTypes: map[string]BetType{
			"hero_level_up":         {BaseOdds: 2.0, TargetType: "hero"},
			"hero_death":            {BaseOdds: 4.0, TargetType: "hero"},
			"hero_ascension":        {BaseOdds: 8.0, TargetType: "hero"},
			"settlement_growth":     {BaseOdds: 2.5, TargetType: "settlement"},
			"settlement_prosperity": {BaseOdds: 3.0, TargetType: "settlement"},
			"settlement_decline":    {BaseOdds: 3.5, TargetType: "settlement"},
			"region_prosperity":     {BaseOdds: 3.0, TargetType: "region"},
			"region_upheaval":       {BaseOdds: 5.0, TargetType: "region"},
			"landmark_awakening":    {BaseOdds: 6.0, TargetType: "landmark"},
		},
		Confidence: map[string]ConfidenceTier{
			"long_shot":    {OddsModifier: 1.8, StakeMultiplier: 1.5},
			"possible":     {OddsModifier: 1.0, StakeMultiplier: 1.0},
			"likely":       {OddsModifier: 0.75, StakeMultiplier: 0.8},
			"near_certain": {OddsModifier: 0.5, StakeMultiplier: 0.6},
		},
		Timeframe: []TimeframeStep{
			{MaxYears: 1, Modifier: 1.5},
			{MaxYears: 3, Modifier: 1.2},
			{MaxYears: 5, Modifier: 1.0},
			{MaxYears: 10, Modifier: 0.8},
		},
		TargetRules: []TargetRuleSet{
			{
				TargetType: "hero",
				BetType:    "hero_level_up",
				Rules: []rules.Rule{
					{Field: "level", Comparator: rules.CmpLT, Threshold: 15, Op: rules.OpMultiply, Value: 0.8},
					{Field: "level", Comparator: rules.CmpGE, Threshold: 50, Op: rules.OpMultiply, Value: 1.6},
				},
			},
			{
				TargetType: "hero",
				BetType:    "hero_death",
				Rules: []rules.Rule{
					{Field: "age", Comparator: rules.CmpGT, Threshold: 70, Op: rules.OpMultiply, Value: 0.6},
					{Field: "level", Comparator: rules.CmpGT, Threshold: 10, Op: rules.OpAdd, Value: 0.3},
				},
			},
			{
				TargetType: "settlement",
				BetType:    "settlement_growth",
				Rules: []rules.Rule{
					{Field: "prosperity", Comparator: rules.CmpGT, Threshold: 80, Op: rules.OpMultiply, Value: 0.6},
					{Field: "prosperity", Comparator: rules.CmpGT, Threshold: 60, Op: rules.OpMultiply, Value: 0.8},
					{Field: "prosperity", Comparator: rules.CmpLT, Threshold: 25, Op: rules.OpMultiply, Value: 1.5},
				},
			},
			{
				TargetType: "region",
				BetType:    "region_upheaval",
				Rules: []rules.Rule{
					{Field: "chaos", Comparator: rules.CmpGT, Threshold: 60, Op: rules.OpMultiply, Value: 0.7},
					{Field: "danger_level", Comparator: rules.CmpGT, Threshold: 70, Op: rules.OpAdd, Value: -0.2},
				},
			},
		},
		HeroRoles: []string{
			"warrior", "ranger", "mystic", "priest", "rogue", "scholar", "bard",
		},
		Strengths: map[string]float64{
			"subtle":      1.0,
			"minor":       1.5,
			"moderate":    2.5,
			"significant": 4.0,
		},
		Influence: map[string]InfluenceType{
			"environmental": {BaseCost: 5, ResistanceScale: 1.0, Effects: Effects{Prosperity: 2, HeroAttraction: 0.05, EventProbability: 0.02}},
			"inspirational": {BaseCost: 10, ResistanceScale: 1.0, Effects: Effects{Prosperity: 3, HeroAttraction: 0.10, EventProbability: 0.05}},
			"coincidental":  {BaseCost: 15, ResistanceScale: 1.0, Effects: Effects{Prosperity: 5, HeroAttraction: 0.15, EventProbability: 0.08}},
			"direct":        {BaseCost: 25, ResistanceScale: 1.0, Effects: Effects{Prosperity: 8, HeroAttraction: 0.25, EventProbability: 0.12}},
			"bless":         {BaseCost: 10, ResistanceScale: 0.8, Effects: Effects{Prosperity: 3, HeroAttraction: 0.10, EventProbability: 0.05}},
			"curse":         {BaseCost: 15, ResistanceScale: 1.5, Effects: Effects{Prosperity: -5, HeroAttraction: -0.15, EventProbability: 0.08}},
			"guide":         {BaseCost: 5, ResistanceScale: 1.2, Effects: Effects{Prosperity: 2, HeroAttraction: 0.05, EventProbability: 0.02}},
			"empower":       {BaseCost: 25, ResistanceScale: 1.0, Effects: Effects{Prosperity: 8, HeroAttraction: 0.25, EventProbability: 0.12}},
		},
		DeathReasons: []DeathReason{
			{Reason: "slain by a rival", Weight: 2},
			{Reason: "fell in a monster hunt", Weight: 3},
			{Reason: "lost to a cursed ruin", Weight: 1.5},
			{Reason: "succumbed to plague", Weight: 1.5},
			{Reason: "died peacefully of old age", Weight: 2},
		},
		Specials: map[string]float64{
			"trade":   1.3,
			"mining":  1.2,
			"farming": 1.1,
			"arcane":  1.15,
			"fishing": 1.05,
		},
		SettleTraits: map[string]float64{
			"crossroads":  1.2,
			"fortified":   0.95,
			"blessed":     1.25,
			"cursed":      0.8,
			"riverside":   1.1,
		},
		Evolution: []EvolutionThreshold{
			{From: "hamlet", To: "village", MinPopulation: 150, MinProsperity: 30, RequiredBuildings: []string{"well"}},
			{From: "village", To: "town", MinPopulation: 800, MinProsperity: 45, RequiredBuildings: []string{"market", "granary"}},
			{From: "town", To: "city", MinPopulation: 4000, MinProsperity: 60, RequiredBuildings: []string{"walls", "temple", "guildhall"}},
			{From: "city", To: "metropolis", MinPopulation: 15000, MinProsperity: 75, RequiredBuildings: []string{"cathedral", "citadel", "grand_market"}},
		},
		TypeCeilings: map[string]int{
			"hamlet":     200,
			"village":    1000,
			"town":       5000,
			"city":       20000,
			"metropolis": 100000,
		},
		HeroMoveChance: 0.1,
	}
}
