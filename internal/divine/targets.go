package divine

import (
	"fmt"
	"math"

	"github.com/ravenna/godsworn/internal/refdata"
	"github.com/ravenna/godsworn/internal/world"
)

// secondaryScale converts the probability-valued secondary effects
// (hero attraction, event probability) onto the 0-100 stat scale.
const secondaryScale = 20.0

// target dispatches influence mechanics per entity kind. apply mutates
// the loaded entity in place and returns the per-field deltas actually
// applied after clamping; persist writes it back.
type target interface {
	name() string
	baseResistance() float64
	// resonance reports the divine resonance bonus source, when the
	// target kind has one.
	resonance() (float64, bool)
	apply(eff refdata.Effects, strength float64) map[string]float64
	persist(e *Engine) error
}

func (e *Engine) loadTarget(targetType world.TargetType, id uint64) (target, error) {
	switch targetType {
	case world.TargetHero:
		h, err := e.Heroes.Hero(id)
		if err != nil {
			return nil, fmt.Errorf("%w: hero %d", world.ErrNotFound, id)
		}
		return &heroTarget{h}, nil
	case world.TargetSettlement:
		s, err := e.Settlements.Settlement(id)
		if err != nil {
			return nil, fmt.Errorf("%w: settlement %d", world.ErrNotFound, id)
		}
		return &settlementTarget{s}, nil
	case world.TargetRegion:
		r, err := e.Regions.Region(id)
		if err != nil {
			return nil, fmt.Errorf("%w: region %d", world.ErrNotFound, id)
		}
		return &regionTarget{r}, nil
	case world.TargetLandmark:
		l, err := e.Landmarks.Landmark(id)
		if err != nil {
			return nil, fmt.Errorf("%w: landmark %d", world.ErrNotFound, id)
		}
		return &landmarkTarget{l}, nil
	default:
		return nil, fmt.Errorf("%w: target type %q", world.ErrInvalidArgument, targetType)
	}
}

// shift applies a clamped delta to a 0-100 stat and returns the change
// that actually took effect.
func shift(field *float64, delta float64) float64 {
	before := *field
	*field = world.ClampStat(before + delta)
	return round2(*field - before)
}

type heroTarget struct {
	h *world.Hero
}

func (t *heroTarget) name() string { return t.h.Name }

func (t *heroTarget) baseResistance() float64 {
	r := float64(t.h.Level * 5)
	if t.h.Role == "mystic" || t.h.Role == "priest" {
		r += 20
	}
	return r
}

func (t *heroTarget) resonance() (float64, bool) { return 0, false }

func (t *heroTarget) apply(eff refdata.Effects, strength float64) map[string]float64 {
	return map[string]float64{
		"power":       shift(&t.h.Power, eff.Prosperity*strength),
		"guidance":    shift(&t.h.Guidance, eff.HeroAttraction*secondaryScale*strength),
		"inspiration": shift(&t.h.Inspiration, eff.EventProbability*secondaryScale*strength),
	}
}

func (t *heroTarget) persist(e *Engine) error { return e.Heroes.SaveHero(t.h) }

type settlementTarget struct {
	s *world.Settlement
}

func (t *settlementTarget) name() string { return t.s.Name }

func (t *settlementTarget) baseResistance() float64 {
	r := math.Sqrt(float64(t.s.Population)/100) + t.s.Prosperity/2
	return math.Min(75, r)
}

func (t *settlementTarget) resonance() (float64, bool) { return 0, false }

func (t *settlementTarget) apply(eff refdata.Effects, strength float64) map[string]float64 {
	return map[string]float64{
		"prosperity":    shift(&t.s.Prosperity, eff.Prosperity*strength),
		"defensibility": shift(&t.s.Defensibility, eff.HeroAttraction*secondaryScale*strength),
		"development":   shift(&t.s.Development, eff.EventProbability*secondaryScale*strength),
	}
}

func (t *settlementTarget) persist(e *Engine) error { return e.Settlements.SaveSettlement(t.s) }

type regionTarget struct {
	r *world.Region
}

func (t *regionTarget) name() string { return t.r.Name }

func (t *regionTarget) baseResistance() float64 {
	return (t.r.MagicAffinity + t.r.Chaos) / 2
}

func (t *regionTarget) resonance() (float64, bool) { return t.r.DivineResonance, true }

func (t *regionTarget) apply(eff refdata.Effects, strength float64) map[string]float64 {
	return map[string]float64{
		"prosperity":     shift(&t.r.Prosperity, eff.Prosperity*strength),
		"magic_affinity": shift(&t.r.MagicAffinity, eff.HeroAttraction*secondaryScale*strength),
		"chaos":          shift(&t.r.Chaos, eff.EventProbability*secondaryScale*strength),
	}
}

func (t *regionTarget) persist(e *Engine) error { return e.Regions.SaveRegion(t.r) }

type landmarkTarget struct {
	l *world.Landmark
}

func (t *landmarkTarget) name() string { return t.l.Name }

func (t *landmarkTarget) baseResistance() float64 {
	return math.Max(t.l.MagicLevel, t.l.DangerLevel)
}

func (t *landmarkTarget) resonance() (float64, bool) { return 0, false }

func (t *landmarkTarget) apply(eff refdata.Effects, strength float64) map[string]float64 {
	return map[string]float64{
		"magic_level":  shift(&t.l.MagicLevel, eff.Prosperity*strength),
		"power_level":  shift(&t.l.PowerLevel, eff.HeroAttraction*secondaryScale*strength),
		"danger_level": shift(&t.l.DangerLevel, eff.EventProbability*secondaryScale*strength),
	}
}

func (t *landmarkTarget) persist(e *Engine) error { return e.Landmarks.SaveLandmark(t.l) }
