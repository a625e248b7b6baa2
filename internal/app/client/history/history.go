// Package history persists previously-used login tuples so the client
// can offer "remember me" and silent login at startup. The core only
// reads the most recent entry on start and writes a new one after a
// successful manual login.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoHistory is returned by Last when nothing has been saved yet.
var ErrNoHistory = errors.New("history: no saved logins")

// Entry is one remembered login.
type Entry struct {
	ID          int64
	Username    string
	Password    string
	SecretKey   string
	Host        string
	Port        int
	Token       string
	Saved       bool
	SilentLogin bool
	CreatedAt   time.Time
}

// Store is the sqlite-backed login history.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init history tables: %w", err)
	}

	return s, nil
}

func (s *Store) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS logins (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			password TEXT NOT NULL DEFAULT '',
			secret_key TEXT NOT NULL DEFAULT '',
			host TEXT NOT NULL DEFAULT '',
			port INTEGER NOT NULL DEFAULT 0,
			token TEXT NOT NULL DEFAULT '',
			saved BOOLEAN NOT NULL DEFAULT 0,
			silent_login BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_logins_created ON logins(created_at);
	`)
	return err
}

// Save appends a login entry.
func (s *Store) Save(e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO logins (username, password, secret_key, host, port, token, saved, silent_login, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Username, e.Password, e.SecretKey, e.Host, e.Port, e.Token, e.Saved, e.SilentLogin, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save login entry: %w", err)
	}

	return nil
}

// Last returns the most recently saved entry.
func (s *Store) Last() (*Entry, error) {
	var e Entry
	err := s.db.QueryRow(`
		SELECT id, username, password, secret_key, host, port, token, saved, silent_login, created_at
		FROM logins
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&e.ID, &e.Username, &e.Password, &e.SecretKey, &e.Host, &e.Port,
		&e.Token, &e.Saved, &e.SilentLogin, &e.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read login history: %w", err)
	}

	return &e, nil
}

// Clear removes all saved logins.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM logins`); err != nil {
		return fmt.Errorf("failed to clear login history: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
