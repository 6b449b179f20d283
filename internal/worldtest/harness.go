// Package worldtest provides an in-memory store harness for engine and
// ledger tests. Stores implement the world repository contracts with
// plain maps; every method can be forced to fail for fault-path tests.
package worldtest

import (
	"fmt"
	"sort"

	"github.com/ravenna/godsworn/internal/world"
)

// Harness bundles in-memory implementations of every store interface.
type Harness struct {
	HeroesByID      map[uint64]*world.Hero
	SettlementsByID map[uint64]*world.Settlement
	RegionsByID     map[uint64]*world.Region
	LandmarksByID   map[uint64]*world.Landmark
	BetsByID        map[string]*world.DivineBet
	Buildings       map[uint64][]string
	ThePlayer       *world.Player
	History         []*world.InfluenceRecord
	Events          []*world.Event
	Year            int

	// FailHistory forces AppendInfluence to fail, for testing the
	// non-critical write path.
	FailHistory bool
}

// New returns an empty harness with a player holding the given favor.
func New(favor int) *Harness {
	return &Harness{
		HeroesByID:      map[uint64]*world.Hero{},
		SettlementsByID: map[uint64]*world.Settlement{},
		RegionsByID:     map[uint64]*world.Region{},
		LandmarksByID:   map[uint64]*world.Landmark{},
		BetsByID:        map[string]*world.DivineBet{},
		Buildings:       map[uint64][]string{},
		ThePlayer:       &world.Player{ID: 1, Name: "The Nameless", DivineFavor: favor},
	}
}

// HeroStore

func (h *Harness) Hero(id uint64) (*world.Hero, error) {
	hero, ok := h.HeroesByID[id]
	if !ok {
		return nil, fmt.Errorf("hero %d: %w", id, world.ErrNotFound)
	}
	return hero, nil
}

func (h *Harness) SaveHero(hero *world.Hero) error {
	h.HeroesByID[hero.ID] = hero
	return nil
}

func (h *Harness) LivingHeroes() ([]*world.Hero, error) {
	var out []*world.Hero
	for _, hero := range h.HeroesByID {
		if hero.IsAlive {
			out = append(out, hero)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SettlementStore

func (h *Harness) Settlement(id uint64) (*world.Settlement, error) {
	s, ok := h.SettlementsByID[id]
	if !ok {
		return nil, fmt.Errorf("settlement %d: %w", id, world.ErrNotFound)
	}
	return s, nil
}

func (h *Harness) SaveSettlement(s *world.Settlement) error {
	h.SettlementsByID[s.ID] = s
	return nil
}

func (h *Harness) Settlements() ([]*world.Settlement, error) {
	var out []*world.Settlement
	for _, s := range h.SettlementsByID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (h *Harness) SettlementsByRegion(regionID uint64) ([]*world.Settlement, error) {
	var out []*world.Settlement
	for _, s := range h.SettlementsByID {
		if s.RegionID == regionID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (h *Harness) BuildingTypes(settlementID uint64) ([]string, error) {
	return h.Buildings[settlementID], nil
}

// RegionStore

func (h *Harness) Region(id uint64) (*world.Region, error) {
	r, ok := h.RegionsByID[id]
	if !ok {
		return nil, fmt.Errorf("region %d: %w", id, world.ErrNotFound)
	}
	return r, nil
}

func (h *Harness) SaveRegion(r *world.Region) error {
	h.RegionsByID[r.ID] = r
	return nil
}

func (h *Harness) Regions() ([]*world.Region, error) {
	var out []*world.Region
	for _, r := range h.RegionsByID {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (h *Harness) RegionIDsExcept(id uint64) ([]uint64, error) {
	var out []uint64
	for rid := range h.RegionsByID {
		if rid != id {
			out = append(out, rid)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (h *Harness) UpdatePopulationTotal(regionID uint64, total int) error {
	r, ok := h.RegionsByID[regionID]
	if !ok {
		return fmt.Errorf("region %d: %w", regionID, world.ErrNotFound)
	}
	r.PopulationTotal = total
	return nil
}

// LandmarkStore

func (h *Harness) Landmark(id uint64) (*world.Landmark, error) {
	l, ok := h.LandmarksByID[id]
	if !ok {
		return nil, fmt.Errorf("landmark %d: %w", id, world.ErrNotFound)
	}
	return l, nil
}

func (h *Harness) SaveLandmark(l *world.Landmark) error {
	h.LandmarksByID[l.ID] = l
	return nil
}

// BetStore

func (h *Harness) Bet(id string) (*world.DivineBet, error) {
	b, ok := h.BetsByID[id]
	if !ok {
		return nil, fmt.Errorf("bet %s: %w", id, world.ErrNotFound)
	}
	return b, nil
}

func (h *Harness) SaveBet(b *world.DivineBet) error {
	h.BetsByID[b.ID] = b
	return nil
}

func (h *Harness) ActiveBets() ([]*world.DivineBet, error) {
	var out []*world.DivineBet
	for _, b := range h.BetsByID {
		if b.Status == world.BetActive {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PlayerStore

func (h *Harness) Player() (*world.Player, error) {
	return h.ThePlayer, nil
}

func (h *Harness) SavePlayer(p *world.Player) error {
	h.ThePlayer = p
	return nil
}

// HistoryStore

func (h *Harness) AppendInfluence(rec *world.InfluenceRecord) error {
	if h.FailHistory {
		return fmt.Errorf("history sink unavailable")
	}
	h.History = append(h.History, rec)
	return nil
}

// EventStore

func (h *Harness) AppendEvents(events []*world.Event) error {
	for _, ev := range events {
		ev.ID = uint64(len(h.Events) + 1)
		h.Events = append(h.Events, ev)
	}
	return nil
}

func (h *Harness) RecentEvents(limit int) ([]*world.Event, error) {
	if limit <= 0 || limit > len(h.Events) {
		limit = len(h.Events)
	}
	out := make([]*world.Event, limit)
	copy(out, h.Events[len(h.Events)-limit:])
	return out, nil
}

// MetaStore

func (h *Harness) CurrentYear() (int, error) { return h.Year, nil }

func (h *Harness) SetCurrentYear(year int) error {
	h.Year = year
	return nil
}
