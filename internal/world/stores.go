package world

// Repository contracts the engines depend on. All world state is owned
// by the persistence layer; engines fetch, mutate, and save through
// these interfaces and never hold entities beyond one operation.

// HeroStore loads and saves heroes.
type HeroStore interface {
	Hero(id uint64) (*Hero, error)
	SaveHero(h *Hero) error
	LivingHeroes() ([]*Hero, error)
}

// SettlementStore loads and saves settlements and answers the
// building-prerequisite query used by tier evolution.
type SettlementStore interface {
	Settlement(id uint64) (*Settlement, error)
	SaveSettlement(s *Settlement) error
	Settlements() ([]*Settlement, error)
	SettlementsByRegion(regionID uint64) ([]*Settlement, error)
	BuildingTypes(settlementID uint64) ([]string, error)
}

// RegionStore loads and saves regions.
type RegionStore interface {
	Region(id uint64) (*Region, error)
	SaveRegion(r *Region) error
	Regions() ([]*Region, error)
	RegionIDsExcept(id uint64) ([]uint64, error)
	UpdatePopulationTotal(regionID uint64, total int) error
}

// LandmarkStore loads and saves landmarks.
type LandmarkStore interface {
	Landmark(id uint64) (*Landmark, error)
	SaveLandmark(l *Landmark) error
}

// BetStore loads and saves divine bets.
type BetStore interface {
	Bet(id string) (*DivineBet, error)
	SaveBet(b *DivineBet) error
	ActiveBets() ([]*DivineBet, error)
}

// PlayerStore holds the single player row.
type PlayerStore interface {
	Player() (*Player, error)
	SavePlayer(p *Player) error
}

// EventStore is the world chronicle.
type EventStore interface {
	AppendEvents(events []*Event) error
	RecentEvents(limit int) ([]*Event, error)
}

// MetaStore holds world-level scalars.
type MetaStore interface {
	CurrentYear() (int, error)
	SetCurrentYear(year int) error
}

// HistoryStore is the append-only influence history sink. Writes are
// non-critical: a failure is logged by the caller and swallowed.
type HistoryStore interface {
	AppendInfluence(rec *InfluenceRecord) error
}
