package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Connect opens (and if needed creates) the database file and applies the
// schema. SQLite is the single-node deployment option; the schema mirrors
// what the MySQL and Postgres backends expect to exist already.
func Connect(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single writer: SQLite serializes writes itself.
	db.SetMaxOpenConns(1)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	if err := migrate(ctx2, db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cases (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_id         INTEGER NOT NULL,
    engine_type      TEXT NOT NULL DEFAULT '',
    symptoms         TEXT NOT NULL,
    image_ref        TEXT NOT NULL DEFAULT '',
    diagnosis_report TEXT NOT NULL,
    created_at       TEXT NOT NULL,
    FOREIGN KEY (owner_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_cases_owner ON cases(owner_id, id DESC);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}
