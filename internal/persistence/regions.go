package persistence

import "github.com/ravenna/godsworn/internal/world"

type regionRow struct {
	ID              uint64  `db:"id"`
	Name            string  `db:"name"`
	Prosperity      float64 `db:"prosperity"`
	Chaos           float64 `db:"chaos"`
	MagicAffinity   float64 `db:"magic_affinity"`
	DangerLevel     float64 `db:"danger_level"`
	DivineResonance float64 `db:"divine_resonance"`
	Status          string  `db:"status"`
	PopulationTotal int     `db:"population_total"`
}

func regionToRow(r *world.Region) regionRow {
	return regionRow(*r)
}

func (r regionRow) toRegion() *world.Region {
	out := world.Region(r)
	return &out
}

// Region loads one region by ID.
func (db *DB) Region(id uint64) (*world.Region, error) {
	var row regionRow
	err := db.conn.Get(&row, "SELECT * FROM regions WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err, "region", id)
	}
	return row.toRegion(), nil
}

// SaveRegion upserts one region.
func (db *DB) SaveRegion(r *world.Region) error {
	_, err := db.conn.NamedExec(`INSERT OR REPLACE INTO regions
		(id, name, prosperity, chaos, magic_affinity, danger_level,
		 divine_resonance, status, population_total)
		VALUES (:id, :name, :prosperity, :chaos, :magic_affinity,
		 :danger_level, :divine_resonance, :status, :population_total)`,
		regionToRow(r))
	return err
}

// Regions returns every region in ID order.
func (db *DB) Regions() ([]*world.Region, error) {
	var rows []regionRow
	if err := db.conn.Select(&rows, "SELECT * FROM regions ORDER BY id"); err != nil {
		return nil, err
	}
	out := make([]*world.Region, len(rows))
	for i, r := range rows {
		out[i] = r.toRegion()
	}
	return out, nil
}

// RegionIDsExcept lists all region IDs but the given one.
func (db *DB) RegionIDsExcept(id uint64) ([]uint64, error) {
	var ids []uint64
	err := db.conn.Select(&ids, "SELECT id FROM regions WHERE id != ? ORDER BY id", id)
	return ids, err
}

// UpdatePopulationTotal stores a region's rolled-up settlement headcount.
func (db *DB) UpdatePopulationTotal(regionID uint64, total int) error {
	res, err := db.conn.Exec(
		"UPDATE regions SET population_total = ? WHERE id = ?", total, regionID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFoundErr("region", regionID)
	}
	return nil
}

type landmarkRow struct {
	ID          uint64  `db:"id"`
	Name        string  `db:"name"`
	RegionID    uint64  `db:"region_id"`
	MagicLevel  float64 `db:"magic_level"`
	DangerLevel float64 `db:"danger_level"`
	PowerLevel  float64 `db:"power_level"`
}

// Landmark loads one landmark by ID.
func (db *DB) Landmark(id uint64) (*world.Landmark, error) {
	var row landmarkRow
	err := db.conn.Get(&row, "SELECT * FROM landmarks WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err, "landmark", id)
	}
	l := world.Landmark(row)
	return &l, nil
}

// SaveLandmark upserts one landmark.
func (db *DB) SaveLandmark(l *world.Landmark) error {
	_, err := db.conn.NamedExec(`INSERT OR REPLACE INTO landmarks
		(id, name, region_id, magic_level, danger_level, power_level)
		VALUES (:id, :name, :region_id, :magic_level, :danger_level, :power_level)`,
		landmarkRow(*l))
	return err
}

// Landmarks returns every landmark in ID order.
func (db *DB) Landmarks() ([]*world.Landmark, error) {
	var rows []landmarkRow
	if err := db.conn.Select(&rows, "SELECT * FROM landmarks ORDER BY id"); err != nil {
		return nil, err
	}
	out := make([]*world.Landmark, len(rows))
	for i, r := range rows {
		l := world.Landmark(r)
		out[i] = &l
	}
	return out, nil
}
