package tally_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xraph/tally"
	"github.com/xraph/tally/course"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/payment"
	"github.com/xraph/tally/product"
	"github.com/xraph/tally/sale"
	"github.com/xraph/tally/store/memory"
	"github.com/xraph/tally/student"
)

func newTally(t *testing.T, opts ...tally.Option) (*tally.Tally, *memory.Store) {
	t.Helper()
	s := memory.New()
	opts = append([]tally.Option{tally.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	tl := tally.New(s, opts...)
	require.NoError(t, tl.Start(context.Background()))
	t.Cleanup(func() { _ = tl.Stop() })
	return tl, s
}

func mustProduct(t *testing.T, tl *tally.Tally, name string, stock int64) *product.Product {
	t.Helper()
	p := &product.Product{
		Name:         name,
		Category:     product.CategoryComponent,
		BuyingPrice:  tally.Major(40),
		SellingPrice: tally.Major(60),
		Stock:        stock,
		MinStock:     1,
	}
	require.NoError(t, tl.CreateProduct(context.Background(), p))
	return p
}

func stockOf(t *testing.T, tl *tally.Tally, productID id.ProductID) int64 {
	t.Helper()
	p, err := tl.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func saleOf(productID id.ProductID, qty int64) *sale.Sale {
	return &sale.Sale{
		Items: []sale.Item{{ProductID: productID, Quantity: qty, UnitPrice: tally.Major(60)}},
	}
}

// classroom is a course priced 100 with admission 20, registration 10 and
// exam 5, one batch and one student.
type classroom struct {
	course  *course.Course
	batch   *course.Batch
	student *student.Student
}

func mustClassroom(t *testing.T, tl *tally.Tally, seats int) classroom {
	t.Helper()
	ctx := context.Background()

	c := &course.Course{
		Name:            "Networking",
		Price:           tally.Major(100),
		AdmissionFee:    tally.Major(20),
		RegistrationFee: tally.Major(10),
		ExamFee:         tally.Major(5),
	}
	require.NoError(t, tl.CreateCourse(ctx, c))

	b := &course.Batch{CourseID: c.ID, BatchName: "Evening", MaxStudents: seats}
	require.NoError(t, tl.CreateBatch(ctx, b))

	return classroom{course: c, batch: b, student: mustStudent(t, tl, "Sumi")}
}

func mustStudent(t *testing.T, tl *tally.Tally, name string) *student.Student {
	t.Helper()
	s := &student.Student{Name: name}
	require.NoError(t, tl.CreateStudent(context.Background(), s))
	return s
}

// recorder captures plugin events.
type recorder struct {
	mu     sync.Mutex
	events []string
	stock  []int64
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) OnSaleRecorded(context.Context, *sale.Sale) error {
	r.add("sale_recorded")
	return nil
}

func (r *recorder) OnStockChanged(_ context.Context, _ id.ProductID, _, after int64, _ string) error {
	r.mu.Lock()
	r.stock = append(r.stock, after)
	r.mu.Unlock()
	r.add("stock_changed")
	return nil
}

func (r *recorder) OnLowStock(context.Context, *product.Product) error {
	r.add("low_stock")
	return nil
}

func (r *recorder) OnPaymentRecorded(context.Context, *payment.Payment) error {
	r.add("payment_recorded")
	return nil
}

func (r *recorder) OnVoucherGenerated(context.Context, *payment.Voucher) error {
	r.add("voucher_generated")
	return nil
}

func (r *recorder) OnBackupImported(context.Context, []string) error {
	r.add("backup_imported")
	return nil
}
