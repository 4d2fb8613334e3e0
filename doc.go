// Package tally is the bookkeeping engine of a computer shop that also runs
// a training centre and a repair desk.
//
// Tally is designed as a library, not a service. Import it into your Go
// application, or run the bundled HTTP server in cmd/tally. It provides:
//
//   - Inventory with stock that never goes below zero
//   - Point-of-sale sales, purchases and invoices
//   - Courses, batches, enrollments and fee payments that reconcile exactly
//   - Payment vouchers issued once per voucher number
//   - Service tickets that consume parts exactly once
//   - JSON backups compatible with older export files
//
// # Quick Start
//
// Create a Tally instance with your preferred store:
//
//	import (
//	    "github.com/xraph/tally"
//	    "github.com/xraph/tally/store/kv"
//	    "github.com/xraph/tally/store/sqlfile"
//	)
//
//	// Initialize store
//	backend, err := sqlfile.Open("tally.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create tally
//	t := tally.New(kv.New(backend))
//
//	// Start loads the saved tables
//	if err := t.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer t.Stop()
//
// # Propagation
//
// Operations that touch more than one table run under a lock so their
// effects are never observed half applied:
//
//	sale := &sale.Sale{
//	    CustomerID: customerID,
//	    Items: []sale.Item{
//	        {ProductID: laptopID, Quantity: 1, UnitPrice: tally.Major(899)},
//	    },
//	}
//	err := t.RecordSale(ctx, sale) // stock -1, customer total +988.90
//
// Enrollment fees reconcile exactly. Deleting a payment reverses it:
//
//	e, err := t.Enroll(ctx, enrollment.Request{
//	    StudentID: studentID, CourseID: courseID, BatchID: batchID,
//	    Fees:           course.FeeSelection{Admission: true},
//	    InitialPayment: tally.Major(50),
//	})
//	// e.RemainingAmount == e.TotalFee - e.PaidAmount
//
// By default a sale beyond available stock floors the stock at zero and an
// overpayment drives the remaining amount negative. WithStockPolicy and
// WithPaymentPolicy make both an error instead.
//
// # Money
//
// Amounts are integer cents (Money). Adding and removing the same amount
// always restores the original value. In JSON a Money is a number in major
// units, the shape older backup files use.
//
// # TypeID
//
// Entities use TypeID identifiers:
//
//	prod_01h2xcejqtf2nbrexx3vqjhp41  // Product ID
//	enr_01h2xcejqtf2nbrexx3vqjhp41   // Enrollment ID
//	pay_01h455vb4pex5vsknk084sn02q   // Course payment ID
//
// IDs read from older backups (such as "1712345678901") are kept verbatim.
package tally
