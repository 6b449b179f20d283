package persistence

import (
	"fmt"
	"log/slog"

	"github.com/ravenna/godsworn/internal/worldgen"
)

// SeedWorld persists a freshly generated world. Intended for first boot
// against an empty database.
func (db *DB) SeedWorld(w *worldgen.World) error {
	slog.Info("seeding world state",
		"regions", len(w.Regions),
		"settlements", len(w.Settlements),
		"landmarks", len(w.Landmarks),
		"heroes", len(w.Heroes),
	)

	for _, r := range w.Regions {
		if err := db.SaveRegion(r); err != nil {
			return fmt.Errorf("seed region %d: %w", r.ID, err)
		}
	}
	for _, s := range w.Settlements {
		if err := db.SaveSettlement(s); err != nil {
			return fmt.Errorf("seed settlement %d: %w", s.ID, err)
		}
		for _, b := range w.Buildings[s.ID] {
			if err := db.AddBuilding(s.ID, b); err != nil {
				return fmt.Errorf("seed building %q for settlement %d: %w", b, s.ID, err)
			}
		}
	}
	for _, l := range w.Landmarks {
		if err := db.SaveLandmark(l); err != nil {
			return fmt.Errorf("seed landmark %d: %w", l.ID, err)
		}
	}
	for _, h := range w.Heroes {
		if err := db.SaveHero(h); err != nil {
			return fmt.Errorf("seed hero %d: %w", h.ID, err)
		}
	}
	if err := db.SavePlayer(w.Player); err != nil {
		return fmt.Errorf("seed player: %w", err)
	}
	if err := db.SetCurrentYear(0); err != nil {
		return fmt.Errorf("seed year: %w", err)
	}

	slog.Info("world state seeded")
	return nil
}
