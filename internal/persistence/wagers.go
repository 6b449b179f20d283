package persistence

import (
	"encoding/json"

	"github.com/ravenna/godsworn/internal/world"
)

type betRow struct {
	ID              string  `db:"id"`
	PlayerID        uint64  `db:"player_id"`
	BetType         string  `db:"bet_type"`
	TargetID        uint64  `db:"target_id"`
	TargetType      string  `db:"target_type"`
	Timeframe       int     `db:"timeframe"`
	Confidence      string  `db:"confidence"`
	Stake           int     `db:"stake"`
	CurrentOdds     float64 `db:"current_odds"`
	PotentialPayout int     `db:"potential_payout"`
	Status          string  `db:"status"`
	PlacedYear      int     `db:"placed_year"`
	ResolvedYear    *int    `db:"resolved_year"`
	ResolutionNotes string  `db:"resolution_notes"`
}

func betToRow(b *world.DivineBet) betRow {
	return betRow{
		ID:              b.ID,
		PlayerID:        b.PlayerID,
		BetType:         b.BetType,
		TargetID:        b.TargetID,
		TargetType:      string(b.Target),
		Timeframe:       b.Timeframe,
		Confidence:      string(b.Confidence),
		Stake:           b.Stake,
		CurrentOdds:     b.CurrentOdds,
		PotentialPayout: b.PotentialPayout,
		Status:          string(b.Status),
		PlacedYear:      b.PlacedYear,
		ResolvedYear:    b.ResolvedYear,
		ResolutionNotes: b.ResolutionNotes,
	}
}

func (r betRow) toBet() *world.DivineBet {
	return &world.DivineBet{
		ID:              r.ID,
		PlayerID:        r.PlayerID,
		BetType:         r.BetType,
		TargetID:        r.TargetID,
		Target:          world.TargetType(r.TargetType),
		Timeframe:       r.Timeframe,
		Confidence:      world.Confidence(r.Confidence),
		Stake:           r.Stake,
		CurrentOdds:     r.CurrentOdds,
		PotentialPayout: r.PotentialPayout,
		Status:          world.BetStatus(r.Status),
		PlacedYear:      r.PlacedYear,
		ResolvedYear:    r.ResolvedYear,
		ResolutionNotes: r.ResolutionNotes,
	}
}

// Bet loads one bet by ID.
func (db *DB) Bet(id string) (*world.DivineBet, error) {
	var row betRow
	err := db.conn.Get(&row, "SELECT * FROM bets WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err, "bet", id)
	}
	return row.toBet(), nil
}

// SaveBet upserts one bet.
func (db *DB) SaveBet(b *world.DivineBet) error {
	_, err := db.conn.NamedExec(`INSERT OR REPLACE INTO bets
		(id, player_id, bet_type, target_id, target_type, timeframe,
		 confidence, stake, current_odds, potential_payout, status,
		 placed_year, resolved_year, resolution_notes)
		VALUES (:id, :player_id, :bet_type, :target_id, :target_type,
		 :timeframe, :confidence, :stake, :current_odds, :potential_payout,
		 :status, :placed_year, :resolved_year, :resolution_notes)`,
		betToRow(b))
	return err
}

// ActiveBets returns the open book in placement order.
func (db *DB) ActiveBets() ([]*world.DivineBet, error) {
	return db.selectBets("SELECT * FROM bets WHERE status = ? ORDER BY placed_year, id",
		string(world.BetActive))
}

// AllBets returns every bet, newest placement first.
func (db *DB) AllBets() ([]*world.DivineBet, error) {
	return db.selectBets("SELECT * FROM bets ORDER BY placed_year DESC, id")
}

func (db *DB) selectBets(query string, args ...any) ([]*world.DivineBet, error) {
	var rows []betRow
	if err := db.conn.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]*world.DivineBet, len(rows))
	for i, r := range rows {
		out[i] = r.toBet()
	}
	return out, nil
}

type playerRow struct {
	ID          uint64 `db:"id"`
	Name        string `db:"name"`
	DivineFavor int    `db:"divine_favor"`
}

// Player loads the single player row.
func (db *DB) Player() (*world.Player, error) {
	var row playerRow
	err := db.conn.Get(&row, "SELECT * FROM player LIMIT 1")
	if err != nil {
		return nil, notFound(err, "player", 1)
	}
	p := world.Player(row)
	return &p, nil
}

// SavePlayer upserts the player.
func (db *DB) SavePlayer(p *world.Player) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO player (id, name, divine_favor) VALUES (?, ?, ?)",
		p.ID, p.Name, p.DivineFavor)
	return err
}

// AppendInfluence records one influence action.
func (db *DB) AppendInfluence(rec *world.InfluenceRecord) error {
	effects, _ := json.Marshal(rec.Effects)
	_, err := db.conn.Exec(`INSERT INTO influence_history
		(id, target_id, target_type, influence_type, strength, effects_json, game_year)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TargetID, string(rec.Target), rec.InfluenceType,
		rec.Strength, string(effects), rec.GameYear)
	return err
}

// InfluenceHistory returns the most recent influence records.
func (db *DB) InfluenceHistory(limit int) ([]*world.InfluenceRecord, error) {
	type row struct {
		ID            string `db:"id"`
		TargetID      uint64 `db:"target_id"`
		TargetType    string `db:"target_type"`
		InfluenceType string `db:"influence_type"`
		Strength      string `db:"strength"`
		EffectsJSON   string `db:"effects_json"`
		GameYear      int    `db:"game_year"`
	}
	var rows []row
	err := db.conn.Select(&rows, `SELECT * FROM influence_history
		ORDER BY game_year DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*world.InfluenceRecord, len(rows))
	for i, r := range rows {
		rec := &world.InfluenceRecord{
			ID:            r.ID,
			TargetID:      r.TargetID,
			Target:        world.TargetType(r.TargetType),
			InfluenceType: r.InfluenceType,
			Strength:      r.Strength,
			GameYear:      r.GameYear,
		}
		json.Unmarshal([]byte(r.EffectsJSON), &rec.Effects)
		out[i] = rec
	}
	return out, nil
}
