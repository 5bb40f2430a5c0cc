package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang/glog"
	"github.com/hoshinonyaruko/snake-autopilot/structs"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by GetResult for unknown sessions.
var ErrNotFound = errors.New("result not found")

const createGamesTableSQL = `
CREATE TABLE IF NOT EXISTS Games (
    SessionID TEXT PRIMARY KEY,
    Width INTEGER,
    Height INTEGER,
    Length INTEGER,
    Ticks INTEGER,
    Autopilot BOOLEAN,
    Reason TEXT,
    StartedAt TIMESTAMP,
    EndedAt TIMESTAMP
);
`

const createGamesIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_games_length ON Games (Length DESC, Ticks);
`

const selectResultSQL = `SELECT SessionID, Width, Height, Length, Ticks, Autopilot, Reason, StartedAt, EndedAt FROM Games`

func executeSQL(db *sql.DB, sqlStatement string) error {
	if _, err := db.Exec(sqlStatement); err != nil {
		return fmt.Errorf("executing SQL statement: %s\n%w", sqlStatement, err)
	}
	return nil
}

// InitializeDatabase creates the tables if they do not exist yet.
func InitializeDatabase(db *sql.DB) error {
	for _, stmt := range []string{createGamesTableSQL, createGamesIndexSQL} {
		if err := executeSQL(db, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveResult stores a finished game. Saving the same session twice keeps
// the last one.
func SaveResult(db *sql.DB, r structs.Result) error {
	_, err := db.Exec("INSERT OR REPLACE INTO Games (SessionID, Width, Height, Length, Ticks, Autopilot, Reason, StartedAt, EndedAt) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		r.SessionID, r.Width, r.Height, r.Length, r.Ticks, r.Autopilot, r.Reason, r.StartedAt, r.EndedAt)
	return err
}

// TopResults returns the longest games, fewest ticks first on ties.
func TopResults(db *sql.DB, limit int) ([]structs.Result, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(selectResultSQL+" ORDER BY Length DESC, Ticks ASC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []structs.Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetResult loads one game by session id.
func GetResult(db *sql.DB, id string) (structs.Result, error) {
	r, err := scanResult(db.QueryRow(selectResultSQL+" WHERE SessionID = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(s scanner) (structs.Result, error) {
	var r structs.Result
	err := s.Scan(&r.SessionID, &r.Width, &r.Height, &r.Length, &r.Ticks, &r.Autopilot, &r.Reason, &r.StartedAt, &r.EndedAt)
	return r, err
}

// Store wraps a database handle for the session package.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file and its tables.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := InitializeDatabase(db); err != nil {
		db.Close()
		return nil, err
	}
	glog.Infof("results database %s ready", path)
	return &Store{db: db}, nil
}

func (s *Store) SaveResult(r structs.Result) error { return SaveResult(s.db, r) }

func (s *Store) TopResults(limit int) ([]structs.Result, error) { return TopResults(s.db, limit) }

func (s *Store) GetResult(id string) (structs.Result, error) { return GetResult(s.db, id) }

func (s *Store) Close() error { return s.db.Close() }
