package cache

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// Plugin records when a plugin version's node types were fetched.
type Plugin struct {
	Name      string
	Version   string
	FetchedAt time.Time
}

// Store persists fetched node types in a SQLite database.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// OpenStore opens (or creates) the database at path, enables WAL mode and
// brings the schema up to date.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open node type store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if version == schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return tx.Commit()
}

// withTx runs fn inside a transaction, rolling back when it fails.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// PutPlugin replaces everything stored for p.Name with types.
func (s *Store) PutPlugin(p Plugin, types []NodeType) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
            INSERT INTO plugins (name, version, fetched_at) VALUES (?, ?, ?)
            ON CONFLICT(name) DO UPDATE SET version = excluded.version, fetched_at = excluded.fetched_at
        `, p.Name, p.Version, p.FetchedAt.Unix()); err != nil {
			return fmt.Errorf("failed to upsert plugin %s: %w", p.Name, err)
		}
		if _, err := tx.Exec(`DELETE FROM node_types WHERE plugin = ?`, p.Name); err != nil {
			return err
		}
		for _, t := range types {
			props, err := json.Marshal(t.Properties)
			if err != nil {
				return fmt.Errorf("failed to encode properties of %s: %w", t.Type, err)
			}
			if _, err := tx.Exec(`
                INSERT OR REPLACE INTO node_types (type, plugin, description, properties)
                VALUES (?, ?, ?, ?)
            `, t.Type, p.Name, t.Description, string(props)); err != nil {
				return fmt.Errorf("failed to insert node type %s: %w", t.Type, err)
			}
		}
		return nil
	})
}

// LoadPlugin returns the stored record of a plugin and its node types, or
// ErrNotFound.
func (s *Store) LoadPlugin(name string) (Plugin, []NodeType, error) {
	var p Plugin
	var types []NodeType
	err := s.withTx(func(tx *sql.Tx) error {
		var fetched int64
		err := tx.QueryRow(`SELECT name, version, fetched_at FROM plugins WHERE name = ?`, name).
			Scan(&p.Name, &p.Version, &fetched)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: plugin %s", ErrNotFound, name)
		}
		if err != nil {
			return err
		}
		p.FetchedAt = time.Unix(fetched, 0)

		rows, err := tx.Query(`SELECT type, description, properties FROM node_types WHERE plugin = ? ORDER BY type`, name)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			t := NodeType{Plugin: p.Name, Version: p.Version}
			var props string
			if err := rows.Scan(&t.Type, &t.Description, &props); err != nil {
				return err
			}
			if err := json.Unmarshal([]byte(props), &t.Properties); err != nil {
				return fmt.Errorf("failed to decode properties of %s: %w", t.Type, err)
			}
			types = append(types, t)
		}
		return rows.Err()
	})
	if err != nil {
		return Plugin{}, nil, err
	}
	return p, types, nil
}

// Plugins lists every stored plugin.
func (s *Store) Plugins() ([]Plugin, error) {
	var plugins []Plugin
	err := s.withTx(func(tx *sql.Tx) error {
		rows, err := tx.Query(`SELECT name, version, fetched_at FROM plugins ORDER BY name`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var p Plugin
			var fetched int64
			if err := rows.Scan(&p.Name, &p.Version, &fetched); err != nil {
				return err
			}
			p.FetchedAt = time.Unix(fetched, 0)
			plugins = append(plugins, p)
		}
		return rows.Err()
	})
	return plugins, err
}

// DeletePlugin removes a plugin together with its node types.
func (s *Store) DeletePlugin(name string) error {
	return s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM plugins WHERE name = ?`, name)
		return err
	})
}

// Close closes the database. Further calls return ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
