package persistence

import (
	"encoding/json"

	"github.com/ravenna/godsworn/internal/world"
)

type heroRow struct {
	ID            uint64  `db:"id"`
	Name          string  `db:"name"`
	RegionID      uint64  `db:"region_id"`
	Role          string  `db:"role"`
	Level         int     `db:"level"`
	Age           int     `db:"age"`
	IsAlive       bool    `db:"is_alive"`
	Status        string  `db:"status"`
	DeathReason   *string `db:"death_reason"`
	TraitsJSON    string  `db:"traits_json"`
	AlignmentJSON string  `db:"alignment_json"`
	FeatsJSON     string  `db:"feats_json"`
	Power         float64 `db:"power"`
	Guidance      float64 `db:"guidance"`
	Inspiration   float64 `db:"inspiration"`
}

func heroToRow(h *world.Hero) heroRow {
	traits, _ := json.Marshal(h.PersonalityTraits)
	alignment, _ := json.Marshal(h.Alignment)
	feats, _ := json.Marshal(h.Feats)
	return heroRow{
		ID:            h.ID,
		Name:          h.Name,
		RegionID:      h.RegionID,
		Role:          h.Role,
		Level:         h.Level,
		Age:           h.Age,
		IsAlive:       h.IsAlive,
		Status:        string(h.Status),
		DeathReason:   h.DeathReason,
		TraitsJSON:    string(traits),
		AlignmentJSON: string(alignment),
		FeatsJSON:     string(feats),
		Power:         h.Power,
		Guidance:      h.Guidance,
		Inspiration:   h.Inspiration,
	}
}

func (r heroRow) toHero() *world.Hero {
	h := &world.Hero{
		ID:          r.ID,
		Name:        r.Name,
		RegionID:    r.RegionID,
		Role:        r.Role,
		Level:       r.Level,
		Age:         r.Age,
		IsAlive:     r.IsAlive,
		Status:      world.HeroStatus(r.Status),
		DeathReason: r.DeathReason,
		Power:       r.Power,
		Guidance:    r.Guidance,
		Inspiration: r.Inspiration,
	}
	json.Unmarshal([]byte(r.TraitsJSON), &h.PersonalityTraits)
	json.Unmarshal([]byte(r.AlignmentJSON), &h.Alignment)
	json.Unmarshal([]byte(r.FeatsJSON), &h.Feats)
	return h
}

// Hero loads one hero by ID.
func (db *DB) Hero(id uint64) (*world.Hero, error) {
	var row heroRow
	err := db.conn.Get(&row, "SELECT * FROM heroes WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err, "hero", id)
	}
	return row.toHero(), nil
}

// SaveHero upserts one hero.
func (db *DB) SaveHero(h *world.Hero) error {
	_, err := db.conn.NamedExec(`INSERT OR REPLACE INTO heroes
		(id, name, region_id, role, level, age, is_alive, status, death_reason,
		 traits_json, alignment_json, feats_json, power, guidance, inspiration)
		VALUES (:id, :name, :region_id, :role, :level, :age, :is_alive, :status,
		 :death_reason, :traits_json, :alignment_json, :feats_json,
		 :power, :guidance, :inspiration)`,
		heroToRow(h))
	return err
}

// LivingHeroes returns all living heroes in ID order.
func (db *DB) LivingHeroes() ([]*world.Hero, error) {
	var rows []heroRow
	err := db.conn.Select(&rows, "SELECT * FROM heroes WHERE is_alive = 1 ORDER BY id")
	if err != nil {
		return nil, err
	}
	heroes := make([]*world.Hero, len(rows))
	for i, r := range rows {
		heroes[i] = r.toHero()
	}
	return heroes, nil
}

// Heroes returns every hero, living or dead, in ID order.
func (db *DB) Heroes() ([]*world.Hero, error) {
	var rows []heroRow
	err := db.conn.Select(&rows, "SELECT * FROM heroes ORDER BY id")
	if err != nil {
		return nil, err
	}
	heroes := make([]*world.Hero, len(rows))
	for i, r := range rows {
		heroes[i] = r.toHero()
	}
	return heroes, nil
}
