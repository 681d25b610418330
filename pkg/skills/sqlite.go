package skills

import (
	"context"
	"database/sql"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/helicon-ai/skillforge/pkg/errors"
	"github.com/helicon-ai/skillforge/pkg/logging"
)

// SQLiteStore persists skills in a SQLite database. If path is ":memory:"
// the database is created in-memory.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex

	initialized sync.Once
}

// NewSQLiteStore opens (or creates) the database at path. An existing file
// that is not a readable SQLite database is backed up to a .corrupt sibling
// and recreated, so storage corruption never surfaces to the caller.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	store, err := openSQLiteStore(path)
	if err == nil || path == ":memory:" {
		return store, err
	}

	backup := path + ".corrupt"
	if renameErr := os.Rename(path, backup); renameErr != nil {
		return nil, err
	}
	logging.GetLogger().Warn(context.Background(),
		"skill database %s is unreadable, backed up to %s and starting fresh", path, backup)
	return openSQLiteStore(path)
}

func openSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to open SQLite database"),
			errors.Fields{"path": path})
	}

	store := &SQLiteStore{
		db:   db,
		path: path,
	}
	if err := store.ensureInitialized(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureInitialized() error {
	var initErr error
	s.initialized.Do(func() {
		// Enable WAL mode for better concurrency
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			initErr = errors.Wrap(err, errors.PersistenceFailed, "failed to enable WAL mode")
			return
		}

		query := `
		CREATE TABLE IF NOT EXISTS skills (
			id       TEXT PRIMARY KEY,
			content  TEXT NOT NULL,
			section  TEXT NOT NULL,
			helpful  INTEGER NOT NULL DEFAULT 0,
			harmful  INTEGER NOT NULL DEFAULT 0,
			position INTEGER NOT NULL
		);`
		if _, err := s.db.Exec(query); err != nil {
			initErr = errors.Wrap(err, errors.PersistenceFailed, "failed to create skills table")
		}
	})
	return initErr
}

func (s *SQLiteStore) Path() string {
	return s.path
}

// Load reads all skills in insertion order.
func (s *SQLiteStore) Load() ([]Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT id, content, section, helpful, harmful FROM skills ORDER BY position ASC")
	if err != nil {
		return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to query skills")
	}
	defer rows.Close()

	skills := []Skill{}
	for rows.Next() {
		var sk Skill
		if err := rows.Scan(&sk.ID, &sk.Content, &sk.Section, &sk.Helpful, &sk.Harmful); err != nil {
			return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to scan skill row")
		}
		skills = append(skills, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to iterate skill rows")
	}

	return skills, nil
}

// Save replaces the stored skill set in a single transaction.
func (s *SQLiteStore) Save(skills []Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to begin transaction")
	}

	if _, err := tx.Exec("DELETE FROM skills"); err != nil {
		tx.Rollback()
		return errors.Wrap(err, errors.PersistenceFailed, "failed to clear skills table")
	}

	stmt, err := tx.Prepare("INSERT INTO skills (id, content, section, helpful, harmful, position) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, errors.PersistenceFailed, "failed to prepare insert")
	}
	defer stmt.Close()

	for i, sk := range skills {
		if _, err := stmt.Exec(sk.ID, sk.Content, sk.Section, sk.Helpful, sk.Harmful, i); err != nil {
			tx.Rollback()
			return errors.WithFields(
				errors.Wrap(err, errors.PersistenceFailed, "failed to insert skill"),
				errors.Fields{"id": sk.ID})
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to commit skills")
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
