// Package hero advances hero state one game year at a time: aging,
// banded leveling, region movement, and mortality.
package hero

import (
	"fmt"
	"math"

	"github.com/ravenna/godsworn/internal/refdata"
	"github.com/ravenna/godsworn/internal/rng"
	"github.com/ravenna/godsworn/internal/world"
)

// Leveling curve parameters. Early levels come fast, the climb past 50
// is a crawl.
const (
	MaxLevelsPerYear = 5
	BaseLevelChance  = 0.3
	DifficultyFactor = 0.95

	earlyBandCeiling = 15
	lateBandFloor    = 50

	earlyBandFactor = 4.0
	midBandFactor   = 1.5
	lateBandFactor  = 0.3
)

// Mortality parameters.
const (
	BaseLifeExpectancy     = 70
	LifeExpectancyPerLevel = 2
	OldAgeDeathChance      = 0.2

	dangerBaseChance  = 0.01
	dangerChanceFloor = 0.2
)

// Engine runs the yearly hero tick. It holds no entity state; each call
// mutates exactly the hero passed in.
type Engine struct {
	Ref *refdata.Ref
}

// Tick advances one hero by one game year and returns the notable
// events. Ticking a dead hero is a no-op. otherRegions lists the region
// IDs the hero could move to (current region excluded).
func (e *Engine) Tick(h *world.Hero, year int, otherRegions []uint64, src rng.Source) []string {
	if h == nil || !h.IsAlive {
		return nil
	}
	tables := e.Ref.Tables()
	var events []string

	h.Age++

	// Leveling: sequential attempts, stopping on the first failure.
	gained := 0
	for i := 0; i < MaxLevelsPerYear; i++ {
		if src.Float64() >= levelChance(h.Level) {
			break
		}
		h.Level++
		gained++
		if milestoneLevel(h.Level) {
			h.Feats = append(h.Feats, milestoneFeat(h.Level))
		}
	}
	switch {
	case gained == 1:
		events = append(events, fmt.Sprintf("%s reaches level %d", h.Name, h.Level))
	case gained > 1:
		events = append(events, fmt.Sprintf("%s surges %d levels to level %d", h.Name, gained, h.Level))
	}

	// Movement: one roll per year. A failed roll, or no region to move
	// to, still marks the hero as having stayed put.
	if src.Float64() < tables.HeroMoveChance && len(otherRegions) > 0 {
		h.RegionID = otherRegions[src.IntN(len(otherRegions))]
		events = append(events, fmt.Sprintf("%s travels to new lands", h.Name))
	} else {
		events = append(events, fmt.Sprintf("%s stays the course", h.Name))
	}

	// Mortality: natural and danger checks are independent; either kills.
	died := false
	lifeExpectancy := BaseLifeExpectancy + h.Level*LifeExpectancyPerLevel
	if h.Age > lifeExpectancy && src.Float64() < OldAgeDeathChance {
		died = true
	}
	dangerChance := dangerBaseChance * math.Max(dangerChanceFloor, 1-float64(h.Level)/10)
	if src.Float64() < dangerChance {
		died = true
	}
	if died {
		reason := pickDeathReason(tables.DeathReasons, src)
		h.IsAlive = false
		h.Status = world.HeroDeceased
		h.DeathReason = &reason
		events = append(events, fmt.Sprintf("%s has died: %s", h.Name, reason))
		return events
	}

	return events
}

// levelChance is the per-attempt success probability at the given level.
func levelChance(level int) float64 {
	p := BaseLevelChance * math.Pow(DifficultyFactor, float64(level-1))
	switch {
	case level <= earlyBandCeiling:
		p *= earlyBandFactor
	case level < lateBandFloor:
		p *= midBandFactor
	default:
		p *= lateBandFactor
	}
	return p
}

func milestoneLevel(level int) bool {
	if level == 5 || level == 10 {
		return true
	}
	return level >= 25 && level%25 == 0
}

func milestoneFeat(level int) string {
	switch level {
	case 5:
		return "Proven Adventurer"
	case 10:
		return "Seasoned Veteran"
	case 25:
		return "Renowned Champion"
	default:
		return fmt.Sprintf("Living Legend of the %dth Circle", level)
	}
}

// pickDeathReason draws a weighted-random entry from the active
// death-reason table.
func pickDeathReason(reasons []refdata.DeathReason, src rng.Source) string {
	if len(reasons) == 0 {
		return "lost to the mists of history"
	}
	total := 0.0
	for _, r := range reasons {
		total += r.Weight
	}
	roll := src.Float64() * total
	for _, r := range reasons {
		roll -= r.Weight
		if roll < 0 {
			return r.Reason
		}
	}
	return reasons[len(reasons)-1].Reason
}
