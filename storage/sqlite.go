package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteStore opens (creating if needed) a SQLite-backed store at
// the given path. Pass ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite allows a single writer; serializing access through
	// one connection avoids SQLITE_BUSY during bulk import.
	db.SetMaxOpenConns(1)

	s := &SQLStore{
		db:       db,
		serialPK: "INTEGER PRIMARY KEY AUTOINCREMENT",
	}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
