package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// Store persists watchlists, settings and signal history to SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (API reads while jobs write).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS watchlist (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			code         TEXT NOT NULL UNIQUE,
			name         TEXT NOT NULL,
			added_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			sort_order   INTEGER DEFAULT 0,
			notes        TEXT,
			buy_price    REAL,
			buy_date     TEXT,
			buy_quantity INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS etf_watchlist (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			code       TEXT NOT NULL UNIQUE,
			name       TEXT NOT NULL,
			added_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			sort_order INTEGER DEFAULT 0,
			notes      TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS signal_history (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			code          TEXT NOT NULL,
			name          TEXT NOT NULL,
			signal_type   TEXT NOT NULL,
			pattern_name  TEXT NOT NULL,
			strength      REAL,
			price         REAL,
			description   TEXT,
			confirmations TEXT,
			detected_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_code ON signal_history(code)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_detected ON signal_history(detected_at)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key        TEXT PRIMARY KEY,
			value      TEXT,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
