package kv_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tally/backup"
	"github.com/xraph/tally/customer"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/product"
	"github.com/xraph/tally/store"
	"github.com/xraph/tally/store/kv"
	"github.com/xraph/tally/types"
)

var _ store.Store = (*kv.Store)(nil)

// mapBackend keeps blobs in a map and counts saves.
type mapBackend struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	saves   map[string]int
	failOn  string
	closed  bool
	migrate int
}

func newMapBackend() *mapBackend {
	return &mapBackend{blobs: map[string][]byte{}, saves: map[string]int{}}
}

func (b *mapBackend) Load(_ context.Context, table string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[table]
	return data, ok, nil
}

func (b *mapBackend) Save(_ context.Context, table string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if table == b.failOn {
		return errors.New("backend unavailable")
	}
	b.blobs[table] = append([]byte(nil), data...)
	b.saves[table]++
	return nil
}

func (b *mapBackend) Migrate(context.Context) error { b.migrate++; return nil }
func (b *mapBackend) Ping(context.Context) error    { return nil }
func (b *mapBackend) Close() error                  { b.closed = true; return nil }

func TestWritesAreSavedPerTable(t *testing.T) {
	ctx := context.Background()
	b := newMapBackend()
	s := kv.New(b)
	require.NoError(t, s.Migrate(ctx))

	p := &product.Product{Entity: types.NewEntity(), ID: id.NewProductID(), Name: "Laptop", Stock: 3}
	require.NoError(t, s.CreateProduct(ctx, p))

	assert.Equal(t, 1, b.saves[backup.Products])
	assert.Zero(t, b.saves[backup.Customers])

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(b.blobs[backup.Products], &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Laptop", rows[0]["name"])
}

func TestMigrateHydratesFromBackend(t *testing.T) {
	ctx := context.Background()
	b := newMapBackend()

	first := kv.New(b)
	require.NoError(t, first.Migrate(ctx))
	c := &customer.Customer{Entity: types.NewEntity(), ID: id.NewCustomerID(), Name: "Ada"}
	require.NoError(t, first.CreateCustomer(ctx, c))
	require.NoError(t, first.Close())
	assert.True(t, b.closed)

	second := kv.New(b)
	require.NoError(t, second.Migrate(ctx))
	got, err := second.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, 2, b.migrate)
}

func TestLegacyBlobIsAccepted(t *testing.T) {
	ctx := context.Background()
	b := newMapBackend()
	b.blobs[backup.Products] = []byte(`[{"id":"1","name":"Old mouse","category":"accessory","buyingPrice":5,"sellingPrice":12.5,"stock":4,"minStock":1,"supplierId":"","createdAt":"2024-01-02T00:00:00Z"}]`)

	s := kv.New(b)
	require.NoError(t, s.Migrate(ctx))

	list, err := s.ListProducts(ctx, product.ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1", list[0].ID.String())
	assert.Equal(t, types.Cents(1250), list[0].SellingPrice)
}

func TestSaveFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	b := newMapBackend()
	b.failOn = backup.Products
	s := kv.New(b)

	err := s.CreateProduct(ctx, &product.Product{ID: id.NewProductID(), Name: "Dock"})
	assert.ErrorContains(t, err, "backend unavailable")
}

func TestImportSavesEveryGivenTable(t *testing.T) {
	ctx := context.Background()
	b := newMapBackend()
	s := kv.New(b)

	require.NoError(t, s.ImportTables(ctx, map[string]json.RawMessage{
		backup.Products:  json.RawMessage(`[]`),
		backup.Customers: json.RawMessage(`[]`),
	}))
	assert.Equal(t, 1, b.saves[backup.Products])
	assert.Equal(t, 1, b.saves[backup.Customers])
	assert.Zero(t, b.saves[backup.Sales])
}

func TestRefreshPicksUpOtherWriters(t *testing.T) {
	ctx := context.Background()
	b := newMapBackend()

	first := kv.New(b)
	second := kv.New(b)
	require.NoError(t, first.Migrate(ctx))
	require.NoError(t, second.Migrate(ctx))

	c := &customer.Customer{Entity: types.NewEntity(), ID: id.NewCustomerID(), Name: "Rahim"}
	require.NoError(t, first.CreateCustomer(ctx, c))

	_, err := second.GetCustomer(ctx, c.ID)
	require.Error(t, err)

	require.NoError(t, second.Refresh(ctx))
	got, err := second.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rahim", got.Name)
}
