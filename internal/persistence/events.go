package persistence

import "github.com/ravenna/godsworn/internal/world"

type eventRow struct {
	ID          uint64 `db:"id"`
	Year        int    `db:"year"`
	Category    string `db:"category"`
	Description string `db:"description"`
	RegionID    uint64 `db:"region_id"`
}

// AppendEvents writes a batch of chronicle events in one transaction.
func (db *DB) AppendEvents(events []*world.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (year, category, description, region_id) VALUES (?, ?, ?, ?)",
			e.Year, e.Category, e.Description, e.RegionID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecentEvents returns the most recent N events, oldest first.
func (db *DB) RecentEvents(limit int) ([]*world.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows, `SELECT * FROM (
			SELECT * FROM events ORDER BY id DESC LIMIT ?
		) ORDER BY id`, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*world.Event, len(rows))
	for i, r := range rows {
		e := world.Event(r)
		out[i] = &e
	}
	return out, nil
}
