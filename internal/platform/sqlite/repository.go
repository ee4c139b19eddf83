// Package sqlite owns all access to the persistent store. Every
// mutation acquires one process-wide write lock for its whole duration,
// existence checks included, so writes are totally ordered; reads skip
// the lock and may interleave with writes but never observe a partially
// applied mutation.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"league-roster-service/internal/core"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

const schema = `
CREATE TABLE IF NOT EXISTS teams (
  id      INTEGER PRIMARY KEY AUTOINCREMENT,
  name    TEXT NOT NULL UNIQUE,
  city    TEXT NOT NULL,
  founded INTEGER NOT NULL,
  budget  REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS players (
  id           INTEGER PRIMARY KEY AUTOINCREMENT,
  first_name   TEXT NOT NULL,
  last_name    TEXT NOT NULL,
  role         TEXT NOT NULL,
  shirt_number INTEGER NOT NULL,
  goals        INTEGER NOT NULL DEFAULT 0,
  team_id      INTEGER NULL,
  FOREIGN KEY (team_id)
    REFERENCES teams(id)
    ON UPDATE CASCADE
    ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_players_last_name ON players(last_name);
CREATE INDEX IF NOT EXISTS idx_players_team ON players(team_id);
`

// Repository implements core.Repository on a single SQLite database
// file. The mutex is the global write lock.
type Repository struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the database at path and returns a
// repository wrapping it. Migrate must still be run before use.
//
// The pragmas ride on the DSN so they apply to every pooled connection:
// foreign keys are off by default in SQLite and per-connection, and WAL
// lets readers proceed while a write is in flight.
func Open(path string) (*Repository, error) {
	dsn := "file:" + path +
		"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return New(db), nil
}

// New wraps an existing database connection.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying connection for health checks.
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Migrate creates the schema if absent and applies the additive
// evolution steps: older stores that predate the goals counter get the
// column added with existing rows defaulting to 0.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return r.ensureGoalsColumn(ctx)
}

func (r *Repository) ensureGoalsColumn(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, "PRAGMA table_info(players)")
	if err != nil {
		return fmt.Errorf("inspecting players table: %w", err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return err
		}
		if name == "goals" {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if found {
		return nil
	}

	_, err = r.db.ExecContext(ctx,
		"ALTER TABLE players ADD COLUMN goals INTEGER NOT NULL DEFAULT 0")
	if err != nil {
		return fmt.Errorf("adding goals column: %w", err)
	}
	return nil
}

// CreateTeam inserts a team and returns its assigned id. A name
// collision fails the whole insert with core.ErrConflict.
func (r *Repository) CreateTeam(ctx context.Context, t *core.Team) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (name, city, founded, budget) VALUES (?, ?, ?, ?)`,
		t.Name, t.City, t.Founded, t.Budget,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("team name %q: %w", t.Name, core.ErrConflict)
		}
		return 0, err
	}
	return res.LastInsertId()
}

// ListTeams returns all teams sorted by name ascending.
func (r *Repository) ListTeams(ctx context.Context) ([]core.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, city, founded, budget FROM teams ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []core.Team{}
	for rows.Next() {
		var t core.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.City, &t.Founded, &t.Budget); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// GetTeam fetches one team by id.
func (r *Repository) GetTeam(ctx context.Context, id int64) (*core.Team, error) {
	var t core.Team
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, city, founded, budget FROM teams WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.City, &t.Founded, &t.Budget)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTeam removes a team and, in the same transaction, releases every
// player attached to it (team reference set to null). No player is ever
// observably left pointing at the deleted id.
func (r *Repository) DeleteTeam(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ok, err := teamExists(ctx, tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("team %d: %w", id, core.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE players SET team_id = NULL WHERE team_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM teams WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// CreatePlayer inserts a player and returns its assigned id. A non-nil
// TeamID is trusted to reference an existing team; a dangling id is
// rejected by the foreign key and surfaces as core.ErrConflict.
func (r *Repository) CreatePlayer(ctx context.Context, p *core.Player) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO players (first_name, last_name, role, shirt_number, goals, team_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.FirstName, p.LastName, string(p.Role), p.ShirtNumber, p.Goals, p.TeamID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("team reference: %w", core.ErrConflict)
		}
		return 0, err
	}
	return res.LastInsertId()
}

// ListPlayersByTeam returns the team's players sorted by (last name,
// first name). An unknown team id yields an empty slice, not an error.
func (r *Repository) ListPlayersByTeam(ctx context.Context, teamID int64) ([]core.Player, error) {
	return r.listPlayers(ctx,
		`SELECT id, first_name, last_name, role, shirt_number, goals, team_id
		 FROM players WHERE team_id = ? ORDER BY last_name, first_name`, teamID)
}

// ListFreeAgents returns all unattached players sorted by (last name,
// first name).
func (r *Repository) ListFreeAgents(ctx context.Context) ([]core.Player, error) {
	return r.listPlayers(ctx,
		`SELECT id, first_name, last_name, role, shirt_number, goals, team_id
		 FROM players WHERE team_id IS NULL ORDER BY last_name, first_name`)
}

func (r *Repository) listPlayers(ctx context.Context, query string, args ...interface{}) ([]core.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []core.Player{}
	for rows.Next() {
		var p core.Player
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Role,
			&p.ShirtNumber, &p.Goals, &p.TeamID); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// UpdatePlayer rewrites a player's mutable fields. A nil goals pointer
// keeps the stored counter unchanged; a non-nil one replaces it.
func (r *Repository) UpdatePlayer(ctx context.Context, id int64, first, last string, role core.Role, shirt int, goals *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ok, err := playerExists(ctx, r.db, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("player %d: %w", id, core.ErrNotFound)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE players
		 SET first_name = ?, last_name = ?, role = ?, shirt_number = ?,
		     goals = COALESCE(?, goals)
		 WHERE id = ?`,
		first, last, string(role), shirt, goals, id,
	)
	return err
}

// TransferPlayer moves a player to another team, or releases them to
// the free-agent pool when teamID is nil. Both the player and the
// target team are validated before anything is written.
func (r *Repository) TransferPlayer(ctx context.Context, id int64, teamID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if teamID != nil {
		ok, err := teamExists(ctx, r.db, *teamID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("team %d: %w", *teamID, core.ErrNotFound)
		}
	}

	ok, err := playerExists(ctx, r.db, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("player %d: %w", id, core.ErrNotFound)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE players SET team_id = ? WHERE id = ?`, teamID, id)
	return err
}

// DeletePlayer removes a player record entirely.
func (r *Repository) DeletePlayer(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("player %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// Reset clears both tables and rewinds the id counters. Intended for
// test fixtures and the maintenance tooling, never the request path.
func (r *Repository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Children first, then parents.
	if _, err := tx.ExecContext(ctx, `DELETE FROM players`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM teams`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sqlite_sequence WHERE name IN ('players', 'teams')`); err != nil {
		return err
	}
	return tx.Commit()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func teamExists(ctx context.Context, q querier, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM teams WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func playerExists(ctx context.Context, q querier, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM players WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
