package tally_test

import (
	"context"
	"log"
	"log/slog"
	"testing"

	"github.com/xraph/tally"
	"github.com/xraph/tally/course"
	"github.com/xraph/tally/customer"
	"github.com/xraph/tally/enrollment"
	"github.com/xraph/tally/product"
	"github.com/xraph/tally/sale"
	"github.com/xraph/tally/store/memory"
	"github.com/xraph/tally/student"
	"github.com/xraph/tally/types"
)

// TestDocumentationExamples verifies that the package documentation examples
// run as written.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use kv with a backend in production)
		store := memory.New()

		tl := tally.New(store, tally.WithLogger(slog.Default()))

		ctx := context.Background()
		if err := tl.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer tl.Stop()

		laptop := &product.Product{Name: "ThinkPad", SellingPrice: tally.Major(899), Stock: 4}
		if err := tl.CreateProduct(ctx, laptop); err != nil {
			t.Fatal(err)
		}
		buyer := &customer.Customer{Name: "Karim"}
		if err := tl.CreateCustomer(ctx, buyer); err != nil {
			t.Fatal(err)
		}

		s := &sale.Sale{
			CustomerID: buyer.ID,
			Items:      []sale.Item{{ProductID: laptop.ID, Quantity: 1, UnitPrice: tally.Major(899)}},
		}
		if err := tl.RecordSale(ctx, s); err != nil {
			t.Fatal(err)
		}
		if s.Total != tally.Cents(98890) {
			t.Fatalf("sale total = %s, want 988.90", s.Total)
		}

		c := &course.Course{Name: "Hardware Basics", Price: tally.Major(100), AdmissionFee: tally.Major(20)}
		if err := tl.CreateCourse(ctx, c); err != nil {
			t.Fatal(err)
		}
		b := &course.Batch{CourseID: c.ID, BatchName: "Morning"}
		if err := tl.CreateBatch(ctx, b); err != nil {
			t.Fatal(err)
		}
		st := &student.Student{Name: "Nadia"}
		if err := tl.CreateStudent(ctx, st); err != nil {
			t.Fatal(err)
		}

		e, err := tl.Enroll(ctx, enrollment.Request{
			StudentID:      st.ID,
			CourseID:       c.ID,
			BatchID:        b.ID,
			Fees:           course.FeeSelection{Admission: true},
			InitialPayment: tally.Major(50),
		})
		if err != nil {
			t.Fatal(err)
		}
		if !e.Balanced() {
			t.Fatalf("remaining %s != total %s - paid %s", e.RemainingAmount, e.TotalFee, e.PaidAmount)
		}

		log.Printf("Enrolled with %s remaining\n", e.RemainingAmount.String())
	})

	t.Run("MoneyExamples", func(t *testing.T) {
		// Constructors
		_ = types.Cents(4900) // 49.00
		_ = types.Major(299)  // 299.00
		_ = types.Zero        // 0.00

		// Arithmetic
		m1 := types.Major(1)
		m2 := types.Major(2)
		if m1.Add(m2).Subtract(m2) != m1 {
			t.Fatal("add then subtract must restore the value")
		}
		_ = m1.Multiply(3) // 3.00

		// Formatting
		if got := m1.Format("usd"); got != "$1.00" {
			t.Fatalf("Format = %q", got)
		}
		_ = m1.FormatMajor() // "1.00"
	})
}
