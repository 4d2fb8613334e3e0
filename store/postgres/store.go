// Package postgres provides a kv.Backend on PostgreSQL via Grove ORM.
// Each table is a JSONB document so it can be inspected with SQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/tally/store/kv"
)

// compile-time interface check
var _ kv.Backend = (*Store)(nil)

type tableModel struct {
	grove.BaseModel `grove:"table:tally_tables"`

	Name      string          `grove:"name,pk"`
	Payload   json.RawMessage `grove:"payload,type:jsonb"`
	UpdatedAt time.Time       `grove:"updated_at"`
}

// Store keeps one row per table.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL backend backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the blob table using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("tally/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("tally/postgres: migration failed: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, table string) ([]byte, bool, error) {
	m := new(tableModel)
	err := s.pg.NewSelect(m).
		Where("name = $1", table).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("tally/postgres: load %s: %w", table, err)
	}
	return m.Payload, true, nil
}

// Save updates the row for table, inserting it on first write.
func (s *Store) Save(ctx context.Context, table string, data []byte) error {
	m := &tableModel{Name: table, Payload: data, UpdatedAt: time.Now().UTC()}

	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/postgres: save %s: %w", table, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	if _, err := s.pg.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("tally/postgres: save %s: %w", table, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
