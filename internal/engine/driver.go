// Package engine advances the world one game year at a time. A year
// tick runs the hero phase, then the settlement phase, then region
// bookkeeping and the wager sweep, in that order. Phases run their
// per-entity work on a small worker pool; store writes stay on the
// driving goroutine.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ravenna/godsworn/internal/hero"
	"github.com/ravenna/godsworn/internal/refdata"
	"github.com/ravenna/godsworn/internal/rng"
	"github.com/ravenna/godsworn/internal/settlement"
	"github.com/ravenna/godsworn/internal/wager"
	"github.com/ravenna/godsworn/internal/world"
)

const defaultWorkers = 4

// Driver owns the year tick.
type Driver struct {
	Ref         *refdata.Ref
	Heroes      world.HeroStore
	Settlements world.SettlementStore
	Regions     world.RegionStore
	Events      world.EventStore
	Meta        world.MetaStore
	Ledger      *wager.Ledger

	Lifecycle *hero.Engine
	Evolution *settlement.Engine

	// Rand must be safe for concurrent use; wrap with rng.NewLocked.
	Rand    rng.Source
	Workers int

	// mu serializes year ticks against player actions. The API layer
	// takes it through Lock/Unlock around influence and wager calls.
	mu sync.Mutex
}

// TickReport summarizes one completed year.
type TickReport struct {
	Year             int `json:"year"`
	HeroEvents       int `json:"hero_events"`
	SettlementEvents int `json:"settlement_events"`
	ExpiredBets      int `json:"expired_bets"`
	Deaths           int `json:"deaths"`
}

// Lock blocks the year tick while a player action mutates world state.
func (d *Driver) Lock() { d.mu.Lock() }

// Unlock releases the tick lock.
func (d *Driver) Unlock() { d.mu.Unlock() }

// Advance runs one full game year and returns a summary. Per-entity
// failures are logged and skipped; only store-wide failures abort the
// tick.
func (d *Driver) Advance(ctx context.Context) (*TickReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	year, err := d.Meta.CurrentYear()
	if err != nil {
		return nil, fmt.Errorf("load current year: %w", err)
	}
	year++

	report := &TickReport{Year: year}
	var chronicle []*world.Event

	heroEvents, deaths, err := d.heroPhase(ctx, year)
	if err != nil {
		return nil, err
	}
	report.HeroEvents = len(heroEvents)
	report.Deaths = deaths
	chronicle = append(chronicle, heroEvents...)

	settlementEvents, err := d.settlementPhase(ctx, year)
	if err != nil {
		return nil, err
	}
	report.SettlementEvents = len(settlementEvents)
	chronicle = append(chronicle, settlementEvents...)

	if err := d.updateRegionPopulations(); err != nil {
		return nil, err
	}

	expired, err := d.Ledger.SweepExpired(year)
	if err != nil {
		return nil, fmt.Errorf("sweep expired bets: %w", err)
	}
	report.ExpiredBets = expired
	if expired > 0 {
		chronicle = append(chronicle, &world.Event{
			Year:        year,
			Category:    world.EventWager,
			Description: fmt.Sprintf("%d divine wager(s) lapsed unfulfilled", expired),
		})
	}
	if err := d.Ledger.RepriceActive(); err != nil {
		slog.Warn("bet repricing incomplete", "year", year, "error", err)
	}

	if err := d.Events.AppendEvents(chronicle); err != nil {
		slog.Warn("chronicle write failed", "year", year, "error", err)
	}
	if err := d.Meta.SetCurrentYear(year); err != nil {
		return nil, fmt.Errorf("store current year: %w", err)
	}

	slog.Info("year complete",
		"year", year,
		"hero_events", report.HeroEvents,
		"settlement_events", report.SettlementEvents,
		"deaths", report.Deaths,
		"expired_bets", report.ExpiredBets,
	)
	return report, nil
}

func (d *Driver) workers() int {
	if d.Workers > 0 {
		return d.Workers
	}
	return defaultWorkers
}

// heroPhase ticks every living hero. Tick calls run on the pool; each
// goroutine owns its hero outright, so only the shared entropy source
// needs locking. Saves happen afterwards on this goroutine.
func (d *Driver) heroPhase(ctx context.Context, year int) ([]*world.Event, int, error) {
	heroes, err := d.Heroes.LivingHeroes()
	if err != nil {
		return nil, 0, fmt.Errorf("load living heroes: %w", err)
	}

	otherRegions := map[uint64][]uint64{}
	for _, h := range heroes {
		if _, ok := otherRegions[h.RegionID]; ok {
			continue
		}
		ids, err := d.Regions.RegionIDsExcept(h.RegionID)
		if err != nil {
			return nil, 0, fmt.Errorf("load region ids: %w", err)
		}
		otherRegions[h.RegionID] = ids
	}

	lines := make([][]string, len(heroes))
	d.runPool(ctx, len(heroes), func(i int) {
		h := heroes[i]
		lines[i] = d.Lifecycle.Tick(h, year, otherRegions[h.RegionID], d.Rand)
	})
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var events []*world.Event
	deaths := 0
	for i, h := range heroes {
		if err := d.Heroes.SaveHero(h); err != nil {
			slog.Error("hero save failed", "hero_id", h.ID, "error", err)
			continue
		}
		if !h.IsAlive {
			deaths++
		}
		for _, line := range lines[i] {
			events = append(events, &world.Event{
				Year:        year,
				Category:    world.EventHero,
				Description: line,
				RegionID:    h.RegionID,
			})
		}
	}
	return events, deaths, nil
}

// settlementPhase ticks every settlement and derives chronicle lines
// from observed tier and status transitions.
func (d *Driver) settlementPhase(ctx context.Context, year int) ([]*world.Event, error) {
	settlements, err := d.Settlements.Settlements()
	if err != nil {
		return nil, fmt.Errorf("load settlements: %w", err)
	}

	buildings := make([][]string, len(settlements))
	for i, s := range settlements {
		b, err := d.Settlements.BuildingTypes(s.ID)
		if err != nil {
			return nil, fmt.Errorf("load buildings for settlement %d: %w", s.ID, err)
		}
		buildings[i] = b
	}

	type before struct {
		typ    world.SettlementType
		status world.SettlementStatus
	}
	prior := make([]before, len(settlements))
	for i, s := range settlements {
		prior[i] = before{s.Type, s.Status}
	}

	d.runPool(ctx, len(settlements), func(i int) {
		d.Evolution.Tick(settlements[i], year, buildings[i], d.Rand)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var events []*world.Event
	for i, s := range settlements {
		if err := d.Settlements.SaveSettlement(s); err != nil {
			slog.Error("settlement save failed", "settlement_id", s.ID, "error", err)
			continue
		}
		if s.Type != prior[i].typ {
			events = append(events, &world.Event{
				Year:        year,
				Category:    world.EventSettlement,
				Description: fmt.Sprintf("%s has grown into a %s", s.Name, s.Type),
				RegionID:    s.RegionID,
			})
		}
		if s.Status != prior[i].status {
			switch s.Status {
			case world.StatusThriving:
				events = append(events, &world.Event{
					Year:        year,
					Category:    world.EventSettlement,
					Description: fmt.Sprintf("%s is thriving", s.Name),
					RegionID:    s.RegionID,
				})
			case world.StatusDeclining:
				events = append(events, &world.Event{
					Year:        year,
					Category:    world.EventSettlement,
					Description: fmt.Sprintf("%s has fallen into decline", s.Name),
					RegionID:    s.RegionID,
				})
			}
		}
	}
	return events, nil
}

// updateRegionPopulations rolls settlement headcounts up to their
// regions after the settlement phase.
func (d *Driver) updateRegionPopulations() error {
	regions, err := d.Regions.Regions()
	if err != nil {
		return fmt.Errorf("load regions: %w", err)
	}
	for _, r := range regions {
		settlements, err := d.Settlements.SettlementsByRegion(r.ID)
		if err != nil {
			return fmt.Errorf("load settlements for region %d: %w", r.ID, err)
		}
		total := 0
		for _, s := range settlements {
			total += s.Population
		}
		if err := d.Regions.UpdatePopulationTotal(r.ID, total); err != nil {
			slog.Error("region population update failed", "region_id", r.ID, "error", err)
		}
	}
	return nil
}

// runPool fans n index-addressed jobs out over the worker pool and
// joins. Stops handing out work once ctx is done.
func (d *Driver) runPool(ctx context.Context, n int, job func(i int)) {
	workers := d.workers()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if ctx.Err() != nil {
				return
			}
			job(i)
		}
		return
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				job(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}
