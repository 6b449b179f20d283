package hero

import (
	"strings"
	"testing"

	"github.com/ravenna/godsworn/internal/refdata"
	"github.com/ravenna/godsworn/internal/rng"
	"github.com/ravenna/godsworn/internal/world"
)

func testEngine() *Engine {
	return &Engine{Ref: refdata.Static(refdata.Defaults())}
}

func livingHero(level, age int) *world.Hero {
	return &world.Hero{
		ID:       1,
		Name:     "Serna of the Vale",
		RegionID: 3,
		Role:     "ranger",
		Level:    level,
		Age:      age,
		IsAlive:  true,
		Status:   world.HeroLiving,
	}
}

func TestTick_QuietYearOnlyAges(t *testing.T) {
	// Level 10, age 40, RNG forced: level attempt fails, no move, no death.
	h := livingHero(10, 40)
	src := &rng.Sequence{Values: []float64{0.99, 0.99, 0.99}}

	events := testEngine().Tick(h, 101, []uint64{1, 2}, src)

	if h.Age != 41 {
		t.Errorf("age: got %d want 41", h.Age)
	}
	if h.Level != 10 {
		t.Errorf("level: got %d want 10", h.Level)
	}
	if h.RegionID != 3 {
		t.Errorf("region: got %d want 3", h.RegionID)
	}
	if !h.IsAlive || h.Status != world.HeroLiving {
		t.Errorf("hero should still be alive: alive=%v status=%s", h.IsAlive, h.Status)
	}
	if len(h.Feats) != 0 {
		t.Errorf("feats: got %v want none", h.Feats)
	}
	// Even a quiet year records that the hero stayed put.
	if len(events) != 1 || !strings.Contains(events[0], "stays") {
		t.Errorf("events: got %v want a single stayed event", events)
	}
}

func TestTick_DeadHeroIsNoOp(t *testing.T) {
	reason := "slain by a rival"
	h := livingHero(12, 44)
	h.IsAlive = false
	h.Status = world.HeroDeceased
	h.DeathReason = &reason

	events := testEngine().Tick(h, 101, []uint64{1}, &rng.Sequence{Values: []float64{0.0}})

	if events != nil {
		t.Errorf("dead hero produced events: %v", events)
	}
	if h.Age != 44 || h.Level != 12 {
		t.Errorf("dead hero mutated: age=%d level=%d", h.Age, h.Level)
	}
}

func TestTick_LevelNeverDecreases(t *testing.T) {
	h := livingHero(1, 16)
	src := rng.New(7)
	for year := 0; year < 200 && h.IsAlive; year++ {
		before := h.Level
		testEngine().Tick(h, year, []uint64{1, 2, 4}, src)
		if h.Level < before {
			t.Fatalf("year %d: level decreased %d -> %d", year, before, h.Level)
		}
	}
}

func TestTick_MultiLevelYearGrantsMilestoneFeats(t *testing.T) {
	// At low levels every attempt succeeds, so one year gains the full
	// five levels and crosses the level-5 milestone.
	h := livingHero(4, 20)
	src := &rng.Sequence{Values: []float64{
		0, 0, 0, 0, 0, // five level attempts, all succeed
		0.99,       // no move
		0.99, 0.99, // no deaths
	}}

	events := testEngine().Tick(h, 101, nil, src)

	if h.Level != 9 {
		t.Fatalf("level: got %d want 9", h.Level)
	}
	found := false
	for _, f := range h.Feats {
		if f == "Proven Adventurer" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing level-5 milestone feat, feats=%v", h.Feats)
	}
	plural := false
	for _, e := range events {
		if strings.Contains(e, "surges 5 levels") {
			plural = true
		}
	}
	if !plural {
		t.Errorf("missing multi-level event: %v", events)
	}
}

func TestTick_Movement(t *testing.T) {
	h := livingHero(10, 40)
	// Move roll succeeds (0.05 < 0.1), picks the second region.
	src := &rng.Sequence{Values: []float64{0.99, 0.05, 0.6, 0.99, 0.99}}

	testEngine().Tick(h, 101, []uint64{7, 9}, src)

	if h.RegionID != 9 {
		t.Errorf("region: got %d want 9", h.RegionID)
	}
}

func TestTick_NoAlternativeRegionsStays(t *testing.T) {
	h := livingHero(10, 40)
	src := &rng.Sequence{Values: []float64{0.99, 0.0, 0.99, 0.99}}

	events := testEngine().Tick(h, 101, nil, src)

	if h.RegionID != 3 {
		t.Errorf("region changed with no candidates: %d", h.RegionID)
	}
	stayed := false
	for _, e := range events {
		if strings.Contains(e, "stays") {
			stayed = true
		}
	}
	if !stayed {
		t.Errorf("missing stayed event: %v", events)
	}
}

func TestTick_OldAgeDeath(t *testing.T) {
	// Level 10 => life expectancy 90; age 95 triggers the natural check.
	h := livingHero(10, 95)
	src := &rng.Sequence{Values: []float64{
		0.99, // level attempt fails
		0.99, // no move
		0.10, // natural death fires (< 0.2)
		0.99, // danger does not
		0.0,  // death reason pick
	}}

	testEngine().Tick(h, 101, []uint64{1}, src)

	if h.IsAlive {
		t.Fatal("hero should be dead")
	}
	if h.Status != world.HeroDeceased {
		t.Errorf("status: got %s want deceased", h.Status)
	}
	if h.DeathReason == nil || *h.DeathReason == "" {
		t.Error("death reason not stamped")
	}

	// A later tick must not touch the corpse.
	age := h.Age
	testEngine().Tick(h, 102, []uint64{1}, &rng.Sequence{Values: []float64{0}})
	if h.Age != age {
		t.Errorf("dead hero aged: %d -> %d", age, h.Age)
	}
}

func TestLevelChance_Bands(t *testing.T) {
	// The early band is a flat 4x boost, so chance at level 2 exceeds
	// the mid band at level 16 which exceeds the late band at level 50.
	early := levelChance(2)
	mid := levelChance(16)
	late := levelChance(50)
	if !(early > mid && mid > late) {
		t.Errorf("band ordering broken: early=%v mid=%v late=%v", early, mid, late)
	}
}

func TestPickDeathReason_Weighted(t *testing.T) {
	reasons := []refdata.DeathReason{
		{Reason: "a", Weight: 1},
		{Reason: "b", Weight: 3},
	}
	// Roll 0.5 of total 4 lands inside "b"? 0.5*4 = 2.0; 2.0-1 = 1.0 >= 0,
	// 1.0-3 < 0 -> "b".
	got := pickDeathReason(reasons, &rng.Sequence{Values: []float64{0.5}})
	if got != "b" {
		t.Errorf("weighted pick: got %q want b", got)
	}
	// Roll near zero lands in "a".
	got = pickDeathReason(reasons, &rng.Sequence{Values: []float64{0.01}})
	if got != "a" {
		t.Errorf("weighted pick: got %q want a", got)
	}
}
