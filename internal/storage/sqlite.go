// Package storage provides SQLite-based persistence for finished match
// results. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/blockduel/internal/duel"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// MatchEntry represents one recorded match.
type MatchEntry struct {
	ID           int64
	SessionCode  string
	Mode         string
	Seed         int
	WinnerSlot   int
	WinnerName   string
	LoserName    string
	DurationSecs int
	CreatedAt    time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_code TEXT NOT NULL,
			mode TEXT NOT NULL,
			seed INTEGER NOT NULL DEFAULT 0,
			winner_slot INTEGER NOT NULL,
			winner_name TEXT NOT NULL,
			loser_name TEXT NOT NULL,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_session ON matches(session_code);
		CREATE INDEX IF NOT EXISTS idx_matches_created ON matches(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch records a finished match. Returns the inserted row ID.
func (s *Store) SaveMatch(entry MatchEntry) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO matches
		 (session_code, mode, seed, winner_slot, winner_name, loser_name, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionCode,
		entry.Mode,
		entry.Seed,
		entry.WinnerSlot,
		entry.WinnerName,
		entry.LoserName,
		entry.DurationSecs,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentMatches retrieves the most recent matches, newest first.
func (s *Store) RecentMatches(limit int) ([]MatchEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, session_code, mode, seed, winner_slot, winner_name, loser_name, duration_secs, created_at
		 FROM matches
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var entries []MatchEntry
	for rows.Next() {
		e, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// SessionMatches retrieves all matches played in one session, oldest
// first. A session that went through several rematch cycles has one row
// per finished match.
func (s *Store) SessionMatches(code string) ([]MatchEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, session_code, mode, seed, winner_slot, winner_name, loser_name, duration_secs, created_at
		 FROM matches
		 WHERE session_code = ?
		 ORDER BY id ASC`,
		code,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session matches: %w", err)
	}
	defer rows.Close()

	var entries []MatchEntry
	for rows.Next() {
		e, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// MatchCount returns the total number of recorded matches.
func (s *Store) MatchCount() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM matches`).Scan(&count); err != nil {
		return 0, fmt.Errorf("storage: cannot count matches: %w", err)
	}
	return count, nil
}

func scanMatch(rows *sql.Rows) (MatchEntry, error) {
	var e MatchEntry
	var createdAt any
	if err := rows.Scan(
		&e.ID,
		&e.SessionCode,
		&e.Mode,
		&e.Seed,
		&e.WinnerSlot,
		&e.WinnerName,
		&e.LoserName,
		&e.DurationSecs,
		&createdAt,
	); err != nil {
		return e, fmt.Errorf("storage: cannot scan row: %w", err)
	}

	// Parse the datetime - handle both time.Time and string
	switch v := createdAt.(type) {
	case time.Time:
		e.CreatedAt = v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			e.CreatedAt = parsed
		}
	}
	return e, nil
}

// RecordMatch implements duel.MatchRecorder.
// This adapter allows the coordinator to save results without a direct
// storage dependency.
func (s *Store) RecordMatch(rec duel.MatchRecord) error {
	_, err := s.SaveMatch(MatchEntry{
		SessionCode:  rec.SessionID,
		Mode:         rec.Mode,
		Seed:         rec.Seed,
		WinnerSlot:   rec.WinnerSlot,
		WinnerName:   rec.WinnerName,
		LoserName:    rec.LoserName,
		DurationSecs: rec.DurationSecs,
	})
	return err
}

// Ensure Store implements MatchRecorder
var _ duel.MatchRecorder = (*Store)(nil)
