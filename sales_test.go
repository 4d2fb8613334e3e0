package tally_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tally"
	"github.com/xraph/tally/customer"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/invoice"
	"github.com/xraph/tally/purchase"
	"github.com/xraph/tally/sale"
)

func TestRecordSaleMovesStockAndCustomerTotal(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)

	p := mustProduct(t, tl, "SSD", 10)
	c := &customer.Customer{Name: "Tanvir"}
	require.NoError(t, tl.CreateCustomer(ctx, c))

	s := saleOf(p.ID, 3)
	s.CustomerID = c.ID
	require.NoError(t, tl.RecordSale(ctx, s))

	assert.Equal(t, sale.StatusCompleted, s.Status)
	assert.Equal(t, tally.Major(180), s.Subtotal)
	assert.Equal(t, tally.Major(18), s.Tax)
	assert.Equal(t, tally.Major(198), s.Total)
	assert.Equal(t, int64(7), stockOf(t, tl, p.ID))

	got, err := tl.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, tally.Major(198), got.TotalPurchases)
}

func TestStockNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)

	p := mustProduct(t, tl, "RAM", 5)
	require.NoError(t, tl.RecordSale(ctx, saleOf(p.ID, 7)))
	assert.Equal(t, int64(0), stockOf(t, tl, p.ID))

	_, err := tl.AdjustStock(ctx, p.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stockOf(t, tl, p.ID))

	got, err := tl.AdjustStock(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Stock)
}

func TestPendingSaleLeavesStock(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)

	p := mustProduct(t, tl, "Mouse", 5)
	s := saleOf(p.ID, 2)
	s.Status = sale.StatusPending
	require.NoError(t, tl.RecordSale(ctx, s))

	assert.Equal(t, int64(5), stockOf(t, tl, p.ID))
}

func TestSaleSkipsUnknownProduct(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)

	p := mustProduct(t, tl, "Keyboard", 5)
	s := &sale.Sale{Items: []sale.Item{
		{ProductID: id.NewProductID(), Quantity: 1, UnitPrice: tally.Major(10)},
		{ProductID: p.ID, Quantity: 2, UnitPrice: tally.Major(10)},
	}}
	require.NoError(t, tl.RecordSale(ctx, s))

	assert.Equal(t, int64(3), stockOf(t, tl, p.ID))
	_, err := tl.GetSale(ctx, s.ID)
	require.NoError(t, err)
}

func TestStockRejectPolicy(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t, tally.WithStockPolicy(tally.StockReject))

	p := mustProduct(t, tl, "GPU", 1)
	s := saleOf(p.ID, 2)
	err := tl.RecordSale(ctx, s)
	require.ErrorIs(t, err, tally.ErrInsufficientStock)
	assert.True(t, tally.IsConflict(err))

	sales, err := tl.ListSales(ctx, sale.ListOpts{})
	require.NoError(t, err)
	assert.Empty(t, sales)
	assert.Equal(t, int64(1), stockOf(t, tl, p.ID))
}

func TestDeleteSaleReverses(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)

	p := mustProduct(t, tl, "Monitor", 6)
	c := &customer.Customer{Name: "Ruma", TotalPurchases: tally.Major(10)}
	require.NoError(t, tl.CreateCustomer(ctx, c))

	s := saleOf(p.ID, 2)
	s.CustomerID = c.ID
	require.NoError(t, tl.RecordSale(ctx, s))
	require.NoError(t, tl.DeleteSale(ctx, s.ID))

	assert.Equal(t, int64(6), stockOf(t, tl, p.ID))
	got, err := tl.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, tally.Major(10), got.TotalPurchases)

	_, err = tl.GetSale(ctx, s.ID)
	require.ErrorIs(t, err, tally.ErrSaleNotFound)
	require.NoError(t, tl.DeleteSale(ctx, s.ID), "deleting twice is a no-op")
}

func TestSaleEvents(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	tl, _ := newTally(t, tally.WithPlugin(rec))

	p := mustProduct(t, tl, "Cable", 3)
	require.NoError(t, tl.RecordSale(ctx, saleOf(p.ID, 2)))

	assert.Equal(t, []string{"stock_changed", "low_stock", "sale_recorded"}, rec.seen())
	assert.Equal(t, []int64{1}, rec.stock)
}

func TestGenerateInvoice(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t, tally.WithInvoiceTerms(15))

	p := mustProduct(t, tl, "Printer", 2)
	s := saleOf(p.ID, 1)
	require.NoError(t, tl.RecordSale(ctx, s))

	inv, err := tl.GenerateInvoice(ctx, s.ID)
	require.NoError(t, err)
	assert.Regexp(t, `^INV-\d+$`, inv.InvoiceNumber)
	assert.Equal(t, invoice.StatusDraft, inv.Status)
	assert.Equal(t, s.Total, inv.Total)
	assert.WithinDuration(t, inv.CreatedAt.AddDate(0, 0, 15), inv.DueDate, time.Second)

	paid, err := tl.UpdateInvoice(ctx, inv.ID, func(i *invoice.Invoice) { i.Status = invoice.StatusPaid })
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, paid.Status)
	assert.Equal(t, inv.CreatedAt, paid.CreatedAt)

	_, err = tl.GenerateInvoice(ctx, id.NewSaleID())
	require.ErrorIs(t, err, tally.ErrNotFound)
}

func TestPurchaseReceivedOnce(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)

	p := mustProduct(t, tl, "PSU", 1)
	pur := &purchase.Purchase{Items: []purchase.Item{{ProductID: p.ID, Quantity: 4, UnitPrice: tally.Major(30)}}}
	require.NoError(t, tl.RecordPurchase(ctx, pur))
	assert.Equal(t, purchase.StatusPending, pur.Status)
	assert.Equal(t, tally.Major(120), pur.Total)
	assert.Equal(t, int64(1), stockOf(t, tl, p.ID))

	got, err := tl.ReceivePurchase(ctx, pur.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReceivedAt)
	assert.Equal(t, int64(5), stockOf(t, tl, p.ID))

	_, err = tl.ReceivePurchase(ctx, pur.ID)
	require.ErrorIs(t, err, tally.ErrAlreadyReceived)
	assert.Equal(t, int64(5), stockOf(t, tl, p.ID))
}

func TestUpdateMissingRecord(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)

	_, err := tl.UpdateCustomer(ctx, id.NewCustomerID(), func(c *customer.Customer) { c.Name = "x" })
	require.ErrorIs(t, err, tally.ErrCustomerNotFound)
	require.NoError(t, tl.DeleteCustomer(ctx, id.NewCustomerID()))
}

func TestCreateValidates(t *testing.T) {
	tl, _ := newTally(t)

	err := tl.CreateCustomer(context.Background(), &customer.Customer{Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, tally.IsInvalid(err))

	var multi tally.MultiError
	require.ErrorAs(t, err, &multi)
	assert.Len(t, multi.Errors, 2)
}

func TestDeleteFlooredSaleReturnsWhatItTook(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)

	p := mustProduct(t, tl, "RAM", 5)
	s := saleOf(p.ID, 7)
	require.NoError(t, tl.RecordSale(ctx, s))
	assert.Equal(t, int64(0), stockOf(t, tl, p.ID))
	require.NotNil(t, s.Items[0].Taken)
	assert.Equal(t, int64(5), *s.Items[0].Taken)

	require.NoError(t, tl.DeleteSale(ctx, s.ID))
	assert.Equal(t, int64(5), stockOf(t, tl, p.ID))
}

func TestDeleteSaleWithRepeatedProduct(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)

	p := mustProduct(t, tl, "Cable", 4)
	s := &sale.Sale{Items: []sale.Item{
		{ProductID: p.ID, Quantity: 3, UnitPrice: tally.Major(5)},
		{ProductID: p.ID, Quantity: 3, UnitPrice: tally.Major(5)},
	}}
	require.NoError(t, tl.RecordSale(ctx, s))
	assert.Equal(t, int64(0), stockOf(t, tl, p.ID))
	assert.Equal(t, int64(3), s.Items[0].Moved())
	assert.Equal(t, int64(1), s.Items[1].Moved())

	require.NoError(t, tl.DeleteSale(ctx, s.ID))
	assert.Equal(t, int64(4), stockOf(t, tl, p.ID))
}
