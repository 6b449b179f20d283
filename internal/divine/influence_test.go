package divine

import (
	"errors"
	"math"
	"testing"

	"github.com/ravenna/godsworn/internal/refdata"
	"github.com/ravenna/godsworn/internal/world"
	"github.com/ravenna/godsworn/internal/worldtest"
)

func newEngine(h *worldtest.Harness) *Engine {
	return &Engine{
		Ref:         refdata.Static(refdata.Defaults()),
		Heroes:      h,
		Settlements: h,
		Regions:     h,
		Landmarks:   h,
		Players:     h,
		History:     h,
	}
}

func approx(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCalculateCost_RegionSurcharge(t *testing.T) {
	h := worldtest.New(500)
	h.RegionsByID[7] = &world.Region{
		ID: 7, Name: "The Ashen Reach",
		MagicAffinity: 40, Chaos: 20, DivineResonance: 50,
	}
	e := newEngine(h)

	est, err := e.CalculateCost(7, world.TargetRegion, "direct", "moderate")
	if err != nil {
		t.Fatalf("CalculateCost: %v", err)
	}
	if est.Cost != 94 {
		t.Fatalf("cost = %d, want 94", est.Cost)
	}
	if est.TargetName != "The Ashen Reach" {
		t.Fatalf("target name = %q", est.TargetName)
	}
}

func TestCalculateCost_HeroNoSurcharge(t *testing.T) {
	h := worldtest.New(500)
	h.HeroesByID[3] = &world.Hero{ID: 3, Name: "Serah", Role: "warrior", Level: 4, IsAlive: true}
	e := newEngine(h)

	est, err := e.CalculateCost(3, world.TargetHero, "direct", "moderate")
	if err != nil {
		t.Fatalf("CalculateCost: %v", err)
	}
	// 25 * 2.5, no region surcharge.
	if est.Cost != 63 {
		t.Fatalf("cost = %d, want 63", est.Cost)
	}
}

func TestCalculateCost_Effectiveness(t *testing.T) {
	h := worldtest.New(500)
	// Level 4 warrior: base resistance 20, bless scales by 0.8 -> 16.
	h.HeroesByID[3] = &world.Hero{ID: 3, Name: "Serah", Role: "warrior", Level: 4, IsAlive: true}
	e := newEngine(h)

	est, err := e.CalculateCost(3, world.TargetHero, "bless", "subtle")
	if err != nil {
		t.Fatalf("CalculateCost: %v", err)
	}
	approx(t, est.Effectiveness.Prosperity, 2.52)
	approx(t, est.Effectiveness.HeroAttraction, 0.08)
	approx(t, est.Effectiveness.EventProbability, 0.04)
}

func TestResistance_MysticBonusAndCeiling(t *testing.T) {
	h := worldtest.New(500)
	// Level 30 mystic: 150 + 20 base, curse scales by 1.5, clamps at 95.
	h.HeroesByID[9] = &world.Hero{ID: 9, Name: "Vael", Role: "mystic", Level: 30, IsAlive: true}
	e := newEngine(h)

	est, err := e.CalculateCost(9, world.TargetHero, "curse", "subtle")
	if err != nil {
		t.Fatalf("CalculateCost: %v", err)
	}
	// resistanceMod 0.05: prosperity -5 * 0.05.
	approx(t, est.Effectiveness.Prosperity, -0.25)
}

func TestResistance_Floor(t *testing.T) {
	h := worldtest.New(500)
	// Level 0 hero would have zero resistance; the floor holds at 5.
	h.HeroesByID[2] = &world.Hero{ID: 2, Name: "Pip", Role: "rogue", Level: 0, IsAlive: true}
	e := newEngine(h)

	est, err := e.CalculateCost(2, world.TargetHero, "environmental", "subtle")
	if err != nil {
		t.Fatalf("CalculateCost: %v", err)
	}
	// prosperity 2 * 0.95.
	approx(t, est.Effectiveness.Prosperity, 1.9)
}

func TestCalculateCost_RegionResonanceBonus(t *testing.T) {
	h := worldtest.New(500)
	// Base resistance (40+20)/2 = 30 -> mod 0.7; resonance 80 -> bonus 1.3.
	h.RegionsByID[7] = &world.Region{
		ID: 7, Name: "The Ashen Reach",
		MagicAffinity: 40, Chaos: 20, DivineResonance: 80,
	}
	e := newEngine(h)

	est, err := e.CalculateCost(7, world.TargetRegion, "environmental", "subtle")
	if err != nil {
		t.Fatalf("CalculateCost: %v", err)
	}
	approx(t, est.Effectiveness.Prosperity, 1.82)
}

func TestApply_HeroDeltasAndDebit(t *testing.T) {
	h := worldtest.New(100)
	h.HeroesByID[3] = &world.Hero{
		ID: 3, Name: "Serah", Role: "warrior", Level: 4, IsAlive: true,
		Power: 50, Guidance: 50, Inspiration: 50,
	}
	e := newEngine(h)

	res, err := e.Apply(3, world.TargetHero, "bless", "subtle", "a quiet benediction", 12)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !res.Success || res.Cost != 10 {
		t.Fatalf("result = %+v", res)
	}
	approx(t, res.Effects["power"], 2.52)
	approx(t, res.Effects["guidance"], 1.6)
	approx(t, res.Effects["inspiration"], 0.8)

	hero := h.HeroesByID[3]
	approx(t, hero.Power, 52.52)
	approx(t, hero.Guidance, 51.6)
	approx(t, hero.Inspiration, 50.8)
	if h.ThePlayer.DivineFavor != 90 {
		t.Fatalf("favor = %d, want 90", h.ThePlayer.DivineFavor)
	}
}

func TestApply_DeltasClampAtStatCeiling(t *testing.T) {
	h := worldtest.New(100)
	h.HeroesByID[3] = &world.Hero{
		ID: 3, Name: "Serah", Role: "warrior", Level: 4, IsAlive: true,
		Power: 99, Guidance: 50, Inspiration: 50,
	}
	e := newEngine(h)

	res, err := e.Apply(3, world.TargetHero, "bless", "subtle", "", 12)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	approx(t, res.Effects["power"], 1.0)
	approx(t, h.HeroesByID[3].Power, 100)
}

func TestApply_CurseLowersSettlementProsperity(t *testing.T) {
	h := worldtest.New(100)
	// Population 400 -> sqrt(4) = 2; prosperity 40 -> +20; base 22.
	// Curse scales by 1.5 -> 33 -> mod 0.67.
	h.SettlementsByID[4] = &world.Settlement{
		ID: 4, Name: "Goldbury", Type: world.TypeVillage,
		Population: 400, Prosperity: 40, Defensibility: 30, Development: 20,
		Status: world.StatusStable,
	}
	e := newEngine(h)

	res, err := e.Apply(4, world.TargetSettlement, "curse", "subtle", "", 30)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	approx(t, res.Effects["prosperity"], -3.35)
	approx(t, h.SettlementsByID[4].Prosperity, 36.65)
}

func TestApply_InvalidInputs(t *testing.T) {
	h := worldtest.New(100)
	h.HeroesByID[3] = &world.Hero{ID: 3, Name: "Serah", Role: "warrior", Level: 4, IsAlive: true}
	e := newEngine(h)

	cases := []struct {
		name          string
		targetID      uint64
		targetType    world.TargetType
		influenceType string
		strength      string
		want          error
	}{
		{"unknown influence type", 3, world.TargetHero, "smite", "subtle", world.ErrInvalidArgument},
		{"unknown strength", 3, world.TargetHero, "bless", "overwhelming", world.ErrInvalidArgument},
		{"unknown target type", 3, world.TargetType("comet"), "bless", "subtle", world.ErrInvalidArgument},
		{"missing target", 99, world.TargetHero, "bless", "subtle", world.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Apply(tc.targetID, tc.targetType, tc.influenceType, tc.strength, "", 1)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if h.ThePlayer.DivineFavor != 100 {
				t.Fatalf("favor changed on rejected influence: %d", h.ThePlayer.DivineFavor)
			}
		})
	}
}

func TestApply_InsufficientFavor(t *testing.T) {
	h := worldtest.New(9)
	h.HeroesByID[3] = &world.Hero{
		ID: 3, Name: "Serah", Role: "warrior", Level: 4, IsAlive: true, Power: 50,
	}
	e := newEngine(h)

	_, err := e.Apply(3, world.TargetHero, "bless", "subtle", "", 1)
	if !errors.Is(err, world.ErrInsufficientFavor) {
		t.Fatalf("err = %v, want ErrInsufficientFavor", err)
	}
	if h.ThePlayer.DivineFavor != 9 {
		t.Fatalf("favor = %d, want 9", h.ThePlayer.DivineFavor)
	}
	approx(t, h.HeroesByID[3].Power, 50)
}

func TestApply_HistoryRecorded(t *testing.T) {
	h := worldtest.New(100)
	h.HeroesByID[3] = &world.Hero{ID: 3, Name: "Serah", Role: "warrior", Level: 4, IsAlive: true}
	e := newEngine(h)

	if _, err := e.Apply(3, world.TargetHero, "bless", "subtle", "", 12); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(h.History) != 1 {
		t.Fatalf("history entries = %d, want 1", len(h.History))
	}
	rec := h.History[0]
	if rec.TargetID != 3 || rec.Target != world.TargetHero ||
		rec.InfluenceType != "bless" || rec.Strength != "subtle" || rec.GameYear != 12 {
		t.Fatalf("record = %+v", rec)
	}
	if rec.ID == "" {
		t.Fatal("record has no id")
	}
}

func TestApply_HistoryFailureIsSwallowed(t *testing.T) {
	h := worldtest.New(100)
	h.FailHistory = true
	h.HeroesByID[3] = &world.Hero{ID: 3, Name: "Serah", Role: "warrior", Level: 4, IsAlive: true, Power: 50}
	e := newEngine(h)

	res, err := e.Apply(3, world.TargetHero, "bless", "subtle", "", 12)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !res.Success {
		t.Fatal("influence should succeed despite history failure")
	}
	if h.ThePlayer.DivineFavor != 90 {
		t.Fatalf("favor = %d, want 90", h.ThePlayer.DivineFavor)
	}
}
