// Package persistence provides SQLite-based world state storage. It
// owns the full world state; engines load, mutate, and save entities
// through the store interfaces in package world.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ravenna/godsworn/internal/world"
)

const metaCurrentYear = "current_year"

// DB wraps a SQLite connection and implements every world store
// interface.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS heroes (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		region_id INTEGER NOT NULL,
		role TEXT NOT NULL,
		level INTEGER NOT NULL,
		age INTEGER NOT NULL,
		is_alive INTEGER NOT NULL,
		status TEXT NOT NULL,
		death_reason TEXT,
		traits_json TEXT NOT NULL,
		alignment_json TEXT NOT NULL,
		feats_json TEXT NOT NULL,
		power REAL NOT NULL,
		guidance REAL NOT NULL,
		inspiration REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settlements (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		region_id INTEGER NOT NULL,
		type TEXT NOT NULL,
		population INTEGER NOT NULL,
		prosperity REAL NOT NULL,
		defensibility REAL NOT NULL,
		development REAL NOT NULL,
		status TEXT NOT NULL,
		specializations_json TEXT NOT NULL,
		traits_json TEXT NOT NULL,
		founded_year INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS buildings (
		settlement_id INTEGER NOT NULL,
		building_type TEXT NOT NULL,
		PRIMARY KEY (settlement_id, building_type)
	);

	CREATE TABLE IF NOT EXISTS regions (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		prosperity REAL NOT NULL,
		chaos REAL NOT NULL,
		magic_affinity REAL NOT NULL,
		danger_level REAL NOT NULL,
		divine_resonance REAL NOT NULL,
		status TEXT NOT NULL DEFAULT '',
		population_total INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS landmarks (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		region_id INTEGER NOT NULL,
		magic_level REAL NOT NULL,
		danger_level REAL NOT NULL,
		power_level REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bets (
		id TEXT PRIMARY KEY,
		player_id INTEGER NOT NULL,
		bet_type TEXT NOT NULL,
		target_id INTEGER NOT NULL,
		target_type TEXT NOT NULL,
		timeframe INTEGER NOT NULL,
		confidence TEXT NOT NULL,
		stake INTEGER NOT NULL,
		current_odds REAL NOT NULL,
		potential_payout INTEGER NOT NULL,
		status TEXT NOT NULL,
		placed_year INTEGER NOT NULL,
		resolved_year INTEGER,
		resolution_notes TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS player (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		divine_favor INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS influence_history (
		id TEXT PRIMARY KEY,
		target_id INTEGER NOT NULL,
		target_type TEXT NOT NULL,
		influence_type TEXT NOT NULL,
		strength TEXT NOT NULL,
		effects_json TEXT NOT NULL,
		game_year INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		year INTEGER NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		region_id INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_heroes_alive ON heroes(is_alive);
	CREATE INDEX IF NOT EXISTS idx_heroes_region ON heroes(region_id);
	CREATE INDEX IF NOT EXISTS idx_settlements_region ON settlements(region_id);
	CREATE INDEX IF NOT EXISTS idx_bets_status ON bets(status);
	CREATE INDEX IF NOT EXISTS idx_events_year ON events(year);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// CurrentYear reports the stored game year, 0 for a fresh world.
func (db *DB) CurrentYear() (int, error) {
	v, err := db.GetMeta(metaCurrentYear)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

// SetCurrentYear stores the game year.
func (db *DB) SetCurrentYear(year int) error {
	return db.SaveMeta(metaCurrentYear, strconv.Itoa(year))
}

// HasWorldState reports whether a world has already been generated.
func (db *DB) HasWorldState() (bool, error) {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM regions"); err != nil {
		return false, err
	}
	return count > 0, nil
}

func notFound(err error, what string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr(what, id)
	}
	return err
}

func notFoundErr(what string, id any) error {
	return fmt.Errorf("%w: %s %v", world.ErrNotFound, what, id)
}
