// Package mongo provides a kv.Backend on MongoDB via Grove ORM. Each table
// is one document in the tally_tables collection, keyed by table name.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/tally/store/kv"
)

const colTables = "tally_tables"

// compile-time interface check
var _ kv.Backend = (*Store)(nil)

type tableModel struct {
	grove.BaseModel `grove:"table:tally_tables"`

	Name      string    `grove:"name,pk"    bson:"_id"`
	Payload   string    `grove:"payload"    bson:"payload"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

// Store keeps one document per table. Payloads are stored as JSON strings
// so decimal amounts round-trip without BSON conversion.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB backend backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the collection indexes.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.mdb.Collection(colTables).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "updated_at", Value: -1}}, Options: options.Index().SetName("updated_at_desc")},
	})
	if err != nil {
		return fmt.Errorf("tally/mongo: migrate %s indexes: %w", colTables, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, table string) ([]byte, bool, error) {
	var m tableModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": table}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("tally/mongo: load %s: %w", table, err)
	}
	return []byte(m.Payload), true, nil
}

func (s *Store) Save(ctx context.Context, table string, data []byte) error {
	_, err := s.mdb.NewUpdate((*tableModel)(nil)).
		Filter(bson.M{"_id": table}).
		SetUpdate(bson.M{"$set": bson.M{
			"payload":    string(data),
			"updated_at": time.Now().UTC(),
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tally/mongo: save %s: %w", table, err)
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

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
