// Package world provides the persistent entity model for the Godsworn
// simulation and the storage contracts the engines operate through.
package world

// HeroStatus is a hero's lifecycle state.
type HeroStatus string

const (
	HeroLiving   HeroStatus = "living"
	HeroDeceased HeroStatus = "deceased"
	HeroUndead   HeroStatus = "undead"
	HeroAscended HeroStatus = "ascended"
)

// Alignment positions a hero on the good and chaotic axes (0–100 each).
type Alignment struct {
	Good    int `json:"good"`
	Chaotic int `json:"chaotic"`
}

// Hero is a named adventurer living in one region of the world.
type Hero struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	RegionID uint64 `json:"region_id"`
	Role     string `json:"role"` // validated against the role table at creation

	Level int `json:"level"` // >= 1
	Age   int `json:"age"`   // years

	IsAlive     bool       `json:"is_alive"`
	Status      HeroStatus `json:"status"`
	DeathReason *string    `json:"death_reason,omitempty"`

	PersonalityTraits []string  `json:"personality_traits"`
	Alignment         Alignment `json:"alignment"`
	Feats             []string  `json:"feats"`

	// Divine-influence stats (0–100), mutated only by the influence engine.
	Power       float64 `json:"power"`
	Guidance    float64 `json:"guidance"`
	Inspiration float64 `json:"inspiration"`
}

// SettlementType is an ordered tier of settlement size.
type SettlementType string

const (
	TypeHamlet     SettlementType = "hamlet"
	TypeVillage    SettlementType = "village"
	TypeTown       SettlementType = "town"
	TypeCity       SettlementType = "city"
	TypeMetropolis SettlementType = "metropolis"
)

// SettlementStatus is derived from prosperity bands and tier transitions.
type SettlementStatus string

const (
	StatusStable    SettlementStatus = "stable"
	StatusGrowing   SettlementStatus = "growing"
	StatusThriving  SettlementStatus = "thriving"
	StatusDeclining SettlementStatus = "declining"
)

// Settlement is a population center inside a region. Tier transitions are
// monotonic: the evolution engine promotes but never demotes.
type Settlement struct {
	ID       uint64         `json:"id"`
	Name     string         `json:"name"`
	RegionID uint64         `json:"region_id"`
	Type     SettlementType `json:"type"`

	Population    int     `json:"population"` // >= 0, capped by type ceiling
	Prosperity    float64 `json:"prosperity"` // 0–100
	Defensibility float64 `json:"defensibility"`
	Development   float64 `json:"development"`

	Status          SettlementStatus `json:"status"`
	Specializations []string         `json:"specializations"`
	Traits          []string         `json:"traits"`
	FoundedYear     int              `json:"founded_year"`
}

// Region is a territory holding settlements, heroes, and landmarks.
// The hero and settlement engines read regions; only the influence
// engine mutates them.
type Region struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`

	Prosperity      float64 `json:"prosperity"` // 0–100
	Chaos           float64 `json:"chaos"`
	MagicAffinity   float64 `json:"magic_affinity"`
	DangerLevel     float64 `json:"danger_level"`
	DivineResonance float64 `json:"divine_resonance"`

	Status          string `json:"status"`
	PopulationTotal int    `json:"population_total"` // reduced after each settlement phase
}

// Landmark is a fixed magical site inside a region.
type Landmark struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	RegionID uint64 `json:"region_id"`

	MagicLevel  float64 `json:"magic_level"` // 0–100
	DangerLevel float64 `json:"danger_level"`
	PowerLevel  float64 `json:"power_level"`
}

// Player is the single divine actor. DivineFavor never drops below zero.
type Player struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	DivineFavor int    `json:"divine_favor"`
}

// TargetType identifies which entity kind an influence or wager targets.
type TargetType string

const (
	TargetHero       TargetType = "hero"
	TargetRegion     TargetType = "region"
	TargetSettlement TargetType = "settlement"
	TargetLandmark   TargetType = "landmark"
)

// BetStatus is a wager's lifecycle state. A bet leaves active exactly once.
type BetStatus string

const (
	BetActive  BetStatus = "active"
	BetWon     BetStatus = "won"
	BetLost    BetStatus = "lost"
	BetExpired BetStatus = "expired"
)

// Confidence is the bettor-chosen risk tier.
type Confidence string

const (
	ConfidenceLongShot    Confidence = "long_shot"
	ConfidencePossible    Confidence = "possible"
	ConfidenceLikely      Confidence = "likely"
	ConfidenceNearCertain Confidence = "near_certain"
)

// DivineBet is a parimutuel-style wager on a future world state.
// PotentialPayout is an absolute favor amount (stake already applied);
// the quote-time payout rate lives on wager.Quote, not here.
type DivineBet struct {
	ID       string     `json:"id"` // uuid
	PlayerID uint64     `json:"player_id"`
	BetType  string     `json:"bet_type"`
	TargetID uint64     `json:"target_id"`
	Target   TargetType `json:"target_type"`

	Timeframe  int        `json:"timeframe"` // 1–50 years
	Confidence Confidence `json:"confidence"`
	Stake      int        `json:"divine_favor_stake"` // 1–1000

	CurrentOdds     float64 `json:"current_odds"` // >= 1.1
	PotentialPayout int     `json:"potential_payout"`

	Status          BetStatus `json:"status"`
	PlacedYear      int       `json:"placed_year"`
	ResolvedYear    *int      `json:"resolved_year,omitempty"`
	ResolutionNotes string    `json:"resolution_notes,omitempty"`
}

// Event categories used by the chronicle.
const (
	EventHero       = "hero"
	EventSettlement = "settlement"
	EventWager      = "wager"
	EventWorld      = "world"
)

// Event is one line of the world chronicle.
type Event struct {
	ID          uint64 `json:"id"`
	Year        int    `json:"year"`
	Category    string `json:"category"`
	Description string `json:"description"`
	RegionID    uint64 `json:"region_id,omitempty"`
}

// InfluenceRecord is an append-only history entry for a divine influence.
type InfluenceRecord struct {
	ID            string             `json:"id"` // uuid
	TargetID      uint64             `json:"target_id"`
	Target        TargetType         `json:"target_type"`
	InfluenceType string             `json:"influence_type"`
	Strength      string             `json:"strength"`
	Effects       map[string]float64 `json:"effects"` // field -> applied delta
	GameYear      int                `json:"game_year"`
}

// tierOrder lists settlement types from smallest to largest.
var tierOrder = []SettlementType{TypeHamlet, TypeVillage, TypeTown, TypeCity, TypeMetropolis}

// TierRank returns the position of a settlement type in the tier order,
// or -1 for an unknown type.
func TierRank(t SettlementType) int {
	for i, tier := range tierOrder {
		if tier == t {
			return i
		}
	}
	return -1
}

// ClampStat bounds a 0–100 entity statistic.
func ClampStat(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
