// Package sqlfile provides a kv.Backend on a single SQLite file through
// sqlx and the pure-Go modernc driver. It needs no cgo and no server, which
// makes it the default for the bundled HTTP server.
package sqlfile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/xraph/tally/store/kv"
)

const schema = `CREATE TABLE IF NOT EXISTS tally_tables (
    name TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Backend keeps one row per table.
type Backend struct {
	db *sqlx.DB
}

var _ kv.Backend = (*Backend)(nil)

// Open opens (or creates) the SQLite database at dsn. Use ":memory:" for a
// throwaway database.
func Open(dsn string) (*Backend, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlfile: open %s: %w", dsn, err)
	}
	// SQLite serialises writers; one connection also keeps ":memory:" alive.
	db.SetMaxOpenConns(1)
	return &Backend{db: db}, nil
}

// New wraps an existing connection.
func New(db *sqlx.DB) *Backend {
	return &Backend{db: db}
}

// DB returns the underlying connection.
func (b *Backend) DB() *sqlx.DB { return b.db }

func (b *Backend) Migrate(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlfile: create schema: %w", err)
	}
	return nil
}

func (b *Backend) Load(ctx context.Context, table string) ([]byte, bool, error) {
	var payload string
	err := b.db.GetContext(ctx, &payload, `SELECT payload FROM tally_tables WHERE name = ?`, table)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(payload), true, nil
}

func (b *Backend) Save(ctx context.Context, table string, data []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO tally_tables (name, payload, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		table, string(data), time.Now().UTC(),
	)
	return err
}

// Tables lists the stored table names with their last write time.
func (b *Backend) Tables(ctx context.Context) (map[string]time.Time, error) {
	var rows []struct {
		Name      string    `db:"name"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	if err := b.db.SelectContext(ctx, &rows, `SELECT name, updated_at FROM tally_tables ORDER BY name`); err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		out[r.Name] = r.UpdatedAt
	}
	return out, nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *Backend) Close() error {
	return b.db.Close()
}
