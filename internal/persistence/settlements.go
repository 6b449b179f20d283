package persistence

import (
	"encoding/json"

	"github.com/ravenna/godsworn/internal/world"
)

type settlementRow struct {
	ID          uint64  `db:"id"`
	Name        string  `db:"name"`
	RegionID    uint64  `db:"region_id"`
	Type        string  `db:"type"`
	Population  int     `db:"population"`
	Prosperity  float64 `db:"prosperity"`
	Defens      float64 `db:"defensibility"`
	Development float64 `db:"development"`
	Status      string  `db:"status"`
	SpecsJSON   string  `db:"specializations_json"`
	TraitsJSON  string  `db:"traits_json"`
	FoundedYear int     `db:"founded_year"`
}

func settlementToRow(s *world.Settlement) settlementRow {
	specs, _ := json.Marshal(s.Specializations)
	traits, _ := json.Marshal(s.Traits)
	return settlementRow{
		ID:          s.ID,
		Name:        s.Name,
		RegionID:    s.RegionID,
		Type:        string(s.Type),
		Population:  s.Population,
		Prosperity:  s.Prosperity,
		Defens:      s.Defensibility,
		Development: s.Development,
		Status:      string(s.Status),
		SpecsJSON:   string(specs),
		TraitsJSON:  string(traits),
		FoundedYear: s.FoundedYear,
	}
}

func (r settlementRow) toSettlement() *world.Settlement {
	s := &world.Settlement{
		ID:            r.ID,
		Name:          r.Name,
		RegionID:      r.RegionID,
		Type:          world.SettlementType(r.Type),
		Population:    r.Population,
		Prosperity:    r.Prosperity,
		Defensibility: r.Defens,
		Development:   r.Development,
		Status:        world.SettlementStatus(r.Status),
		FoundedYear:   r.FoundedYear,
	}
	json.Unmarshal([]byte(r.SpecsJSON), &s.Specializations)
	json.Unmarshal([]byte(r.TraitsJSON), &s.Traits)
	return s
}

// Settlement loads one settlement by ID.
func (db *DB) Settlement(id uint64) (*world.Settlement, error) {
	var row settlementRow
	err := db.conn.Get(&row, "SELECT * FROM settlements WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err, "settlement", id)
	}
	return row.toSettlement(), nil
}

// SaveSettlement upserts one settlement.
func (db *DB) SaveSettlement(s *world.Settlement) error {
	_, err := db.conn.NamedExec(`INSERT OR REPLACE INTO settlements
		(id, name, region_id, type, population, prosperity, defensibility,
		 development, status, specializations_json, traits_json, founded_year)
		VALUES (:id, :name, :region_id, :type, :population, :prosperity,
		 :defensibility, :development, :status, :specializations_json,
		 :traits_json, :founded_year)`,
		settlementToRow(s))
	return err
}

// Settlements returns every settlement in ID order.
func (db *DB) Settlements() ([]*world.Settlement, error) {
	return db.selectSettlements("SELECT * FROM settlements ORDER BY id")
}

// SettlementsByRegion returns a region's settlements in ID order.
func (db *DB) SettlementsByRegion(regionID uint64) ([]*world.Settlement, error) {
	return db.selectSettlements("SELECT * FROM settlements WHERE region_id = ? ORDER BY id", regionID)
}

func (db *DB) selectSettlements(query string, args ...any) ([]*world.Settlement, error) {
	var rows []settlementRow
	if err := db.conn.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]*world.Settlement, len(rows))
	for i, r := range rows {
		out[i] = r.toSettlement()
	}
	return out, nil
}

// BuildingTypes lists a settlement's buildings.
func (db *DB) BuildingTypes(settlementID uint64) ([]string, error) {
	var types []string
	err := db.conn.Select(&types,
		"SELECT building_type FROM buildings WHERE settlement_id = ? ORDER BY building_type",
		settlementID)
	return types, err
}

// AddBuilding records a building; adding one twice is a no-op.
func (db *DB) AddBuilding(settlementID uint64, buildingType string) error {
	_, err := db.conn.Exec(
		"INSERT OR IGNORE INTO buildings (settlement_id, building_type) VALUES (?, ?)",
		settlementID, buildingType)
	return err
}
