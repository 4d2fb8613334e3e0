// Package kv persists the in-memory tables as one JSON array per table
// through a pluggable Backend.
//
// Reads are served from memory. Every write rewrites the tables it touched
// before returning, so the backend always holds the last acknowledged state.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/tally/backup"
	"github.com/xraph/tally/store/memory"
)

// Backend stores opaque table blobs by table name.
type Backend interface {
	// Load returns the blob saved under table. ok is false when nothing has
	// been saved yet.
	Load(ctx context.Context, table string) (data []byte, ok bool, err error)
	Save(ctx context.Context, table string, data []byte) error
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Store is a memory.Store whose changes are written through to a Backend.
type Store struct {
	*memory.Store

	backend Backend
	logger  *slog.Logger

	// flushMu keeps a dump and its save together so an older snapshot
	// never overwrites a newer one.
	flushMu sync.Mutex
}

func New(b Backend, opts ...Option) *Store {
	s := &Store{
		backend: b,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Store = memory.New(memory.WithChangeHook(s.flush))
	return s
}

func (s *Store) flush(ctx context.Context, tables ...string) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	for _, name := range tables {
		data, err := s.DumpTable(name)
		if err != nil {
			return err
		}
		if err := s.backend.Save(ctx, name, data); err != nil {
			return fmt.Errorf("kv: save %s: %w", name, err)
		}
	}
	return nil
}

// Migrate prepares the backend and loads every saved table into memory.
func (s *Store) Migrate(ctx context.Context) error {
	start := time.Now()
	if err := s.backend.Migrate(ctx); err != nil {
		return fmt.Errorf("kv: migrate: %w", err)
	}

	n, err := s.hydrate(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("kv store hydrated",
		"tables", n,
		"elapsed", time.Since(start),
	)
	return nil
}

// Refresh reloads every saved table from the backend, picking up writes
// made by other processes sharing it.
func (s *Store) Refresh(ctx context.Context) error {
	_, err := s.hydrate(ctx)
	return err
}

func (s *Store) hydrate(ctx context.Context) (int, error) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	loaded := make(map[string]json.RawMessage)
	for _, name := range backup.Tables {
		data, ok, err := s.backend.Load(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("kv: load %s: %w", name, err)
		}
		if ok && len(data) > 0 {
			loaded[name] = data
		}
	}
	if err := s.LoadTables(loaded); err != nil {
		return 0, fmt.Errorf("kv: hydrate: %w", err)
	}
	return len(loaded), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Store) Close() error {
	return s.backend.Close()
}
