package memory_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tally"
	"github.com/xraph/tally/backup"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/payment"
	"github.com/xraph/tally/product"
	"github.com/xraph/tally/sale"
	"github.com/xraph/tally/store"
	"github.com/xraph/tally/store/memory"
	"github.com/xraph/tally/types"
)

var _ store.Store = (*memory.Store)(nil)

func newProduct(name string, stock int64) *product.Product {
	return &product.Product{
		Entity:       types.NewEntity(),
		ID:           id.NewProductID(),
		Name:         name,
		Category:     product.CategoryAccessory,
		SellingPrice: types.Major(10),
		Stock:        stock,
	}
}

func TestProductCRUD(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	p := newProduct("Mouse", 5)
	require.NoError(t, s.CreateProduct(ctx, p))
	assert.ErrorIs(t, s.CreateProduct(ctx, p), tally.ErrAlreadyExists)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mouse", got.Name)

	// Returned records are copies.
	got.Stock = 99
	again, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), again.Stock)

	got.Name = "Wireless mouse"
	require.NoError(t, s.UpdateProduct(ctx, got))
	again, err = s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wireless mouse", again.Name)

	missing := newProduct("Ghost", 0)
	err = s.UpdateProduct(ctx, missing)
	assert.ErrorIs(t, err, tally.ErrProductNotFound)
	assert.True(t, tally.IsNotFound(err))

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	require.NoError(t, s.DeleteProduct(ctx, p.ID), "deleting a missing record is a no-op")

	_, err = s.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, tally.ErrNotFound)
}

func TestCreateRequiresID(t *testing.T) {
	s := memory.New()
	err := s.CreateProduct(context.Background(), &product.Product{Name: "No id"})
	assert.ErrorIs(t, err, tally.ErrInvalidInput)
}

func TestListPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	names := []string{"c", "a", "b", "d"}
	ids := make([]id.ProductID, len(names))
	for i, n := range names {
		p := newProduct(n, int64(i))
		ids[i] = p.ID
		require.NoError(t, s.CreateProduct(ctx, p))
	}
	require.NoError(t, s.DeleteProduct(ctx, ids[1]))

	list, err := s.ListProducts(ctx, product.ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].Name)
	assert.Equal(t, "b", list[1].Name)
	assert.Equal(t, "d", list[2].Name)

	page, err := s.ListProducts(ctx, product.ListOpts{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].Name)

	// The index still resolves records that moved.
	got, err := s.GetProduct(ctx, ids[3])
	require.NoError(t, err)
	assert.Equal(t, "d", got.Name)
}

func TestListProductsLowStock(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	low := newProduct("Cable", 1)
	low.MinStock = 2
	ok := newProduct("Laptop", 10)
	ok.MinStock = 2
	require.NoError(t, s.CreateProduct(ctx, low))
	require.NoError(t, s.CreateProduct(ctx, ok))

	list, err := s.ListProducts(ctx, product.ListOpts{LowStock: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, low.ID, list[0].ID)
}

func TestSaleItemsAreDetached(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	sl := &sale.Sale{
		Entity: types.NewEntity(),
		ID:     id.NewSaleID(),
		Items:  []sale.Item{{ProductID: id.NewProductID(), Quantity: 2}},
		Status: sale.StatusCompleted,
	}
	require.NoError(t, s.CreateSale(ctx, sl))
	sl.Items[0].Quantity = 50

	got, err := s.GetSale(ctx, sl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Items[0].Quantity)
}

func TestPaymentVoucherNumberUnique(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	first := &payment.Payment{ID: id.NewPaymentID(), PaymentType: payment.TypeEnrollment, VoucherNumber: "PAY-1"}
	second := &payment.Payment{ID: id.NewPaymentID(), PaymentType: payment.TypeExam, VoucherNumber: "PAY-1"}

	require.NoError(t, s.CreatePayment(ctx, first))
	assert.ErrorIs(t, s.CreatePayment(ctx, second), tally.ErrDuplicateVoucherNumber)

	got, err := s.GetPaymentByVoucher(ctx, "PAY-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = s.GetPaymentByVoucher(ctx, "PAY-2")
	assert.ErrorIs(t, err, tally.ErrPaymentNotFound)
}

func TestChangeHook(t *testing.T) {
	ctx := context.Background()
	var changed []string
	s := memory.New(memory.WithChangeHook(func(_ context.Context, tables ...string) error {
		changed = append(changed, tables...)
		return nil
	}))

	p := newProduct("Keyboard", 3)
	require.NoError(t, s.CreateProduct(ctx, p))
	require.NoError(t, s.DeleteProduct(ctx, id.NewProductID()))
	assert.Equal(t, []string{backup.Products}, changed, "no-op deletes do not report a change")

	assert.Error(t, s.CreateProduct(ctx, p))
	assert.Len(t, changed, 1, "failed writes do not report a change")

	hookErr := errors.New("disk full")
	s = memory.New(memory.WithChangeHook(func(context.Context, ...string) error { return hookErr }))
	assert.ErrorIs(t, s.CreateProduct(ctx, newProduct("Monitor", 1)), hookErr)
}

func TestExportImportTables(t *testing.T) {
	ctx := context.Background()
	src := memory.New()
	require.NoError(t, src.CreateProduct(ctx, newProduct("SSD", 4)))

	tables, err := src.ExportTables(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, len(backup.Tables))
	assert.JSONEq(t, "[]", string(tables[backup.Customers]))

	dst := memory.New()
	keep := newProduct("Old stock", 1)
	require.NoError(t, dst.CreateProduct(ctx, keep))

	require.NoError(t, dst.ImportTables(ctx, map[string]json.RawMessage{
		backup.Products: tables[backup.Products],
	}))

	list, err := dst.ListProducts(ctx, product.ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "SSD", list[0].Name)
}

func TestImportTablesIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	p := newProduct("Router", 2)
	require.NoError(t, s.CreateProduct(ctx, p))

	err := s.ImportTables(ctx, map[string]json.RawMessage{
		backup.Products:  json.RawMessage(`[]`),
		backup.Customers: json.RawMessage(`[{"id":"c1","name":"x"},{"id":"c1","name":"y"}]`),
	})
	require.Error(t, err)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err, "products must survive a rejected import")
	assert.Equal(t, "Router", got.Name)
}

func TestDumpAndLoadTables(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.CreateProduct(ctx, newProduct("GPU", 1)))

	data, err := s.DumpTable(backup.Products)
	require.NoError(t, err)

	other := memory.New()
	require.NoError(t, other.LoadTables(map[string]json.RawMessage{backup.Products: data}))
	list, err := other.ListProducts(ctx, product.ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "GPU", list[0].Name)

	_, err = s.DumpTable("widgets")
	assert.Error(t, err)
}
