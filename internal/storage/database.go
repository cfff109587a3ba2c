package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
)

const sqliteConstraintUnique = 2067

// fixed width so that TEXT ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB is the local SQLite database: payments, generation history and, for local runs,
// the profile records themselves.
type DB struct {
	db *sql.DB
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		"id" TEXT PRIMARY KEY,
		"code" TEXT NOT NULL UNIQUE,
		"personality_factors" TEXT NOT NULL DEFAULT '',
		"fields" TEXT NOT NULL DEFAULT '{}',
		"token_balance" INTEGER NOT NULL DEFAULT 0,
		"additional_profile" TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		"intent_id" TEXT PRIMARY KEY,
		"record_id" TEXT NOT NULL,
		"package" TEXT NOT NULL,
		"tokens" INTEGER NOT NULL,
		"amount" TEXT NOT NULL,
		"currency" TEXT NOT NULL,
		"status" TEXT NOT NULL,
		"created_at" TEXT NOT NULL,
		"updated_at" TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS generations (
		"id" TEXT PRIMARY KEY,
		"record_id" TEXT NOT NULL,
		"feature" TEXT NOT NULL,
		"text" TEXT NOT NULL,
		"image_url" TEXT NOT NULL DEFAULT '',
		"image_variants" TEXT NOT NULL DEFAULT '[]',
		"placeholder" INTEGER NOT NULL DEFAULT 0,
		"created_at" TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS generations_record_idx ON generations(record_id, created_at)`,
}

// Open opens (or creates) the database at path and runs the migrations.
// Use ":memory:" for a throwaway database.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.Open(): failed to open database: %w", err)
	}
	// a single connection keeps a :memory: database alive across calls
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.Open(): failed to connect to database: %w", err)
	}

	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage.Open(): migration failed: %w", err)
		}
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqliteConstraintUnique
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
