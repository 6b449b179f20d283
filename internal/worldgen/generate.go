// Package worldgen builds the starting world: regions shaped by layered
// simplex noise, settlements, landmarks, a first generation of heroes,
// and the player singleton. It runs once, on first boot against an
// empty database.
package worldgen

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/ravenna/godsworn/internal/refdata"
	"github.com/ravenna/godsworn/internal/rng"
	"github.com/ravenna/godsworn/internal/world"
)

// Config holds generation parameters.
type Config struct {
	Regions       int
	Seed          int64 // 0 = random
	StartingFavor int
	PlayerName    string
}

// DefaultConfig returns a reasonable starting world.
func DefaultConfig() Config {
	return Config{
		Regions:       6,
		Seed:          0,
		StartingFavor: 100,
		PlayerName:    "The Nameless",
	}
}

// World is a freshly generated world state, ready to be persisted.
type World struct {
	Regions     []*world.Region
	Settlements []*world.Settlement
	Buildings   map[uint64][]string // settlement ID -> building types
	Landmarks   []*world.Landmark
	Heroes      []*world.Hero
	Player      *world.Player
}

var personalityTraits = []string{
	"brave", "cunning", "pious", "reckless", "stoic",
	"charming", "vengeful", "curious", "melancholy", "proud",
}

var startingSpecializations = []string{
	"trade", "agriculture", "mining", "crafting", "fishing",
}

var startingTraits = []string{
	"crossroads", "fortified", "blessed", "cursed", "riverside",
}

// Generate creates a complete starting world. The same seed always
// produces the same world.
func Generate(cfg Config, tables *refdata.Tables) *World {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Independent noise layers, sampled along a diagonal walk so that
	// neighboring regions stay correlated but distinct.
	prosperityNoise := opensimplex.NewNormalized(seed)
	chaosNoise := opensimplex.NewNormalized(seed + 1)
	magicNoise := opensimplex.NewNormalized(seed + 2)

	src := rng.New(seed)
	namer := newSettlementNamer(src)

	w := &World{
		Buildings: map[uint64][]string{},
		Player:    &world.Player{ID: 1, Name: cfg.PlayerName, DivineFavor: cfg.StartingFavor},
	}

	var nextSettlementID uint64 = 1
	var nextHeroID uint64 = 1
	var nextLandmarkID uint64 = 1

	for i := 0; i < cfg.Regions; i++ {
		x := float64(i) * 2.13
		y := float64(i) * 1.71

		prosperity := 20 + 60*octaveNoise(prosperityNoise, x, y, 4, 0.08, 0.5)
		chaos := 10 + 60*octaveNoise(chaosNoise, x, y, 3, 0.06, 0.5)
		magic := 100 * octaveNoise(magicNoise, x, y, 3, 0.05, 0.5)
		// Danger tracks chaos; resonance tracks magic. Offset sampling
		// keeps them from being pure copies.
		danger := 10 + 50*octaveNoise(chaosNoise, x+17, y-9, 3, 0.06, 0.5)
		resonance := 25 + 50*octaveNoise(magicNoise, x-13, y+11, 3, 0.05, 0.5)

		r := &world.Region{
			ID:              uint64(i + 1),
			Name:            regionName(src),
			Prosperity:      world.ClampStat(prosperity),
			Chaos:           world.ClampStat(chaos),
			MagicAffinity:   world.ClampStat(magic),
			DangerLevel:     world.ClampStat(danger),
			DivineResonance: world.ClampStat(resonance),
		}
		w.Regions = append(w.Regions, r)

		// One to three settlements per region.
		for n := 1 + src.IntN(3); n > 0; n-- {
			s := generateSettlement(nextSettlementID, r, namer, src)
			w.Settlements = append(w.Settlements, s)
			w.Buildings[s.ID] = startingBuildings(s.Type, src)
			nextSettlementID++
		}

		// Roughly half the regions hide a landmark.
		if src.Float64() < 0.5 {
			w.Landmarks = append(w.Landmarks, &world.Landmark{
				ID:          nextLandmarkID,
				Name:        landmarkName(src),
				RegionID:    r.ID,
				MagicLevel:  world.ClampStat(r.MagicAffinity + float64(src.IntN(30)) - 10),
				DangerLevel: world.ClampStat(r.DangerLevel + float64(src.IntN(30)) - 10),
				PowerLevel:  world.ClampStat(20 + float64(src.IntN(40))),
			})
			nextLandmarkID++
		}

		// Two or three founding heroes per region.
		for n := 2 + src.IntN(2); n > 0; n-- {
			w.Heroes = append(w.Heroes, generateHero(nextHeroID, r.ID, tables, src))
			nextHeroID++
		}
	}

	// Region headcounts start consistent with their settlements.
	totals := map[uint64]int{}
	for _, s := range w.Settlements {
		totals[s.RegionID] += s.Population
	}
	for _, r := range w.Regions {
		r.PopulationTotal = totals[r.ID]
	}

	return w
}

func generateSettlement(id uint64, r *world.Region, namer *settlementNamer, src rng.Source) *world.Settlement {
	typ := world.TypeHamlet
	population := 40 + src.IntN(100)
	switch roll := src.Float64(); {
	case roll < 0.15:
		typ = world.TypeTown
		population = 900 + src.IntN(2000)
	case roll < 0.55:
		typ = world.TypeVillage
		population = 200 + src.IntN(500)
	}

	s := &world.Settlement{
		ID:            id,
		Name:          namer.next(),
		RegionID:      r.ID,
		Type:          typ,
		Population:    population,
		Prosperity:    world.ClampStat(r.Prosperity + float64(src.IntN(21)) - 10),
		Defensibility: world.ClampStat(20 + float64(src.IntN(50))),
		Development:   world.ClampStat(10 + float64(src.IntN(40))),
		Status:        world.StatusStable,
	}
	if src.Float64() < 0.6 {
		s.Specializations = []string{pick(src, startingSpecializations)}
	}
	if src.Float64() < 0.3 {
		s.Traits = []string{pick(src, startingTraits)}
	}
	return s
}

func startingBuildings(typ world.SettlementType, src rng.Source) []string {
	switch typ {
	case world.TypeVillage:
		b := []string{"well"}
		if src.Float64() < 0.5 {
			b = append(b, "market")
		}
		if src.Float64() < 0.5 {
			b = append(b, "granary")
		}
		return b
	case world.TypeTown:
		return []string{"well", "market", "granary", "walls"}
	default:
		if src.Float64() < 0.5 {
			return []string{"well"}
		}
		return nil
	}
}

func generateHero(id, regionID uint64, tables *refdata.Tables, src rng.Source) *world.Hero {
	h := &world.Hero{
		ID:       id,
		Name:     heroName(src),
		RegionID: regionID,
		Role:     pick(src, tables.HeroRoles),
		Level:    1 + src.IntN(5),
		Age:      16 + src.IntN(30),
		IsAlive:  true,
		Status:   world.HeroLiving,
		Alignment: world.Alignment{
			Good:    src.IntN(101),
			Chaotic: src.IntN(101),
		},
		Power:       world.ClampStat(20 + float64(src.IntN(40))),
		Guidance:    world.ClampStat(20 + float64(src.IntN(40))),
		Inspiration: world.ClampStat(20 + float64(src.IntN(40))),
	}
	h.PersonalityTraits = []string{pick(src, personalityTraits)}
	if src.Float64() < 0.5 {
		second := pick(src, personalityTraits)
		if second != h.PersonalityTraits[0] {
			h.PersonalityTraits = append(h.PersonalityTraits, second)
		}
	}
	return h
}

// octaveNoise layers multiple noise frequencies into fractal detail.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}
