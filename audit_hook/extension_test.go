package audithook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tally"
	audithook "github.com/xraph/tally/audit_hook"
	"github.com/xraph/tally/course"
	"github.com/xraph/tally/enrollment"
	"github.com/xraph/tally/product"
	"github.com/xraph/tally/sale"
	"github.com/xraph/tally/store/memory"
	"github.com/xraph/tally/student"
)

type trail struct {
	mu     sync.Mutex
	events []*audithook.AuditEvent
}

func (tr *trail) Record(_ context.Context, evt *audithook.AuditEvent) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.events = append(tr.events, evt)
	return nil
}

func (tr *trail) actions() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]string, 0, len(tr.events))
	for _, evt := range tr.events {
		out = append(out, evt.Action)
	}
	return out
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func engine(t *testing.T, ext *audithook.Extension) *tally.Tally {
	t.Helper()
	tl := tally.New(memory.New(), tally.WithLogger(quiet), tally.WithPlugin(ext))
	require.NoError(t, tl.Start(context.Background()))
	t.Cleanup(func() { _ = tl.Stop() })
	return tl
}

func TestEnrollmentIsAudited(t *testing.T) {
	ctx := context.Background()
	tr := &trail{}
	tl := engine(t, audithook.New(tr, audithook.WithLogger(quiet)))

	c := &course.Course{Name: "Office Basics", Price: tally.Major(80)}
	require.NoError(t, tl.CreateCourse(ctx, c))
	b := &course.Batch{CourseID: c.ID, BatchName: "Morning"}
	require.NoError(t, tl.CreateBatch(ctx, b))
	s := &student.Student{Name: "Arif"}
	require.NoError(t, tl.CreateStudent(ctx, s))

	e, err := tl.Enroll(ctx, enrollment.Request{
		StudentID:      s.ID,
		CourseID:       c.ID,
		BatchID:        b.ID,
		InitialPayment: tally.Major(30),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		audithook.ActionEnrollmentCreated,
		audithook.ActionPaymentRecorded,
		audithook.ActionVoucherGenerated,
	}, tr.actions())

	first := tr.events[0]
	assert.Equal(t, audithook.ResourceEnrollment, first.Resource)
	assert.Equal(t, audithook.CategoryTraining, first.Category)
	assert.Equal(t, e.ID.String(), first.ResourceID)
	assert.Equal(t, "80.00", first.Metadata["total_fee"])

	voucher := tr.events[2]
	assert.Equal(t, audithook.OutcomeSuccess, voucher.Outcome)
	assert.Equal(t, "", voucher.Metadata["missing"])
}

func TestDisabledActionsAreSkipped(t *testing.T) {
	ctx := context.Background()
	tr := &trail{}
	tl := engine(t, audithook.New(tr,
		audithook.WithLogger(quiet),
		audithook.WithDisabledActions(audithook.ActionStockChanged),
	))

	p := &product.Product{Name: "Cable", Category: product.CategoryAccessory, SellingPrice: tally.Major(3), Stock: 2, MinStock: 1}
	require.NoError(t, tl.CreateProduct(ctx, p))
	require.NoError(t, tl.RecordSale(ctx, &sale.Sale{
		Items: []sale.Item{{ProductID: p.ID, Quantity: 2, UnitPrice: tally.Major(3)}},
	}))

	assert.Equal(t, []string{audithook.ActionLowStock, audithook.ActionSaleRecorded}, tr.actions())
	assert.Equal(t, audithook.SeverityWarning, tr.events[0].Severity)
	assert.Equal(t, int64(0), tr.events[0].Metadata["stock"])
}

func TestRecorderFailureDoesNotFailTheEngine(t *testing.T) {
	ctx := context.Background()
	calls := 0
	rec := audithook.RecorderFunc(func(context.Context, *audithook.AuditEvent) error {
		calls++
		return errors.New("trail offline")
	})
	tl := engine(t, audithook.New(rec,
		audithook.WithLogger(quiet),
		audithook.WithEnabledActions(audithook.ActionSaleRecorded),
	))

	require.NoError(t, tl.RecordSale(ctx, &sale.Sale{
		Items: []sale.Item{{Quantity: 1, UnitPrice: tally.Major(5)}},
	}))
	assert.Equal(t, 1, calls)
}
