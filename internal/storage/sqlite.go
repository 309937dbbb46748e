package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores each key's document in a single kv table. One writer,
// foreign keys on, busy timeout for the rare concurrent open.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the database at path and migrates it on the same
// handle before handing it out.
func OpenSQLite(path, migrationsPath string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	if err := migrateUp(db, migrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Load(key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT value FROM documents WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &PersistenceError{Op: "load", Key: key, Err: err}
	}
	return data, true, nil
}

func (s *SQLite) Save(key string, data []byte) error {
	_, err := s.db.Exec(`
	INSERT INTO documents(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP;
	`, key, data)
	if err != nil {
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}
	return nil
}

func (s *SQLite) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM documents ORDER BY key`)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Key: "*", Err: err}
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, &PersistenceError{Op: "load", Key: "*", Err: err}
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
