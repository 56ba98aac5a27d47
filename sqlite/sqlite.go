package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens a db at path, and creates the tables if they don't exist.
// It returns an error if the opening or initialization of the db failed.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("db path required")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// Enable Write-Ahead Logging. See https://sqlite.org/wal.html
	if _, err := db.Exec(`PRAGMA journal_mode = wal;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, err
	}
	defer tx.Rollback()
	err = CreateEventsTable(tx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create events table: %w", err)
	}
	err = tx.Commit()
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
