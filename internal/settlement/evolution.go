// Package settlement advances settlement state one game year at a time:
// prosperity drift, capped population growth, and tier evolution.
package settlement

import (
	"math"

	"github.com/ravenna/godsworn/internal/refdata"
	"github.com/ravenna/godsworn/internal/rng"
	"github.com/ravenna/godsworn/internal/world"
)

// Growth parameters. Growth compounds yearly but is rate-capped and
// bounded by the settlement type's population ceiling.
const (
	BaseGrowthRate      = 0.02
	ProsperityGrowthMod = 1.5
	MaxGrowthRate       = 0.05
)

// Prosperity random-walk bounds: a yearly draw from [-5, 10) before
// specialization/trait scaling.
const (
	prosperityDriftMin = -5.0
	prosperityDriftMax = 10.0
)

// Status bands.
const (
	decliningBelow = 25.0
	thrivingAbove  = 75.0
)

// Engine runs the yearly settlement tick.
type Engine struct {
	Ref *refdata.Ref
}

// Tick advances one settlement by one game year. buildings lists the
// building types the settlement possesses, used to gate tier evolution.
// Type transitions are monotonic; this engine never demotes.
func (e *Engine) Tick(s *world.Settlement, year int, buildings []string, src rng.Source) {
	if s == nil {
		return
	}
	tables := e.Ref.Tables()

	// Prosperity random walk scaled by specialization and trait bonuses.
	drift := prosperityDriftMin + src.Float64()*(prosperityDriftMax-prosperityDriftMin)
	before := s.Prosperity
	s.Prosperity = world.ClampStat(s.Prosperity + drift*prosperityModifier(s, tables))
	prosperityChanged := s.Prosperity != before

	// Compounding population growth, rate-capped and ceiling-bounded.
	growthRate := math.Min(BaseGrowthRate*(1+s.Prosperity/100*ProsperityGrowthMod), MaxGrowthRate)
	grown := s.Population + int(math.Ceil(float64(s.Population)*growthRate))
	if ceiling := tables.CeilingFor(string(s.Type)); grown > ceiling {
		grown = ceiling
	}
	s.Population = grown

	// Tier evolution: first threshold whose gates all pass.
	for _, th := range tables.Evolution {
		if th.From != string(s.Type) {
			continue
		}
		if s.Population < th.MinPopulation || s.Prosperity < th.MinProsperity {
			continue
		}
		if !hasAll(buildings, th.RequiredBuildings) {
			continue
		}
		s.Type = world.SettlementType(th.To)
		s.Status = world.StatusGrowing
		break
	}

	// Prosperity status bands run after evolution and take precedence
	// over the growing status when both apply.
	if prosperityChanged {
		switch {
		case s.Prosperity < decliningBelow:
			s.Status = world.StatusDeclining
		case s.Prosperity > thrivingAbove:
			s.Status = world.StatusThriving
		}
	}
}

// prosperityModifier multiplies the per-specialization and per-trait
// bonuses from the reference tables, 1.0 for anything unlisted.
func prosperityModifier(s *world.Settlement, tables *refdata.Tables) float64 {
	m := 1.0
	for _, spec := range s.Specializations {
		m *= tables.SpecializationBonus(spec)
	}
	for _, trait := range s.Traits {
		m *= tables.TraitBonus(trait)
	}
	return m
}

func hasAll(have, required []string) bool {
	for _, want := range required {
		found := false
		for _, b := range have {
			if b == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
