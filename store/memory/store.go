// Package memory provides an in-memory implementation of store.Store.
//
// Tables keep insertion order. A change hook, when set, is called after
// every successful write with the names of the tables that changed; the
// kv store uses it to persist each table as a JSON blob.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/xraph/tally"
	"github.com/xraph/tally/attendance"
	"github.com/xraph/tally/backup"
	"github.com/xraph/tally/course"
	"github.com/xraph/tally/customer"
	"github.com/xraph/tally/enrollment"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/invoice"
	"github.com/xraph/tally/payment"
	"github.com/xraph/tally/product"
	"github.com/xraph/tally/purchase"
	"github.com/xraph/tally/sale"
	"github.com/xraph/tally/service"
	"github.com/xraph/tally/student"
	"github.com/xraph/tally/supplier"
)

// ChangeHook is called after a successful write with the changed tables.
// Its error is returned to the writer.
type ChangeHook func(ctx context.Context, tables ...string) error

// Option configures a Store.
type Option func(*Store)

// WithChangeHook sets the hook called after every write.
func WithChangeHook(h ChangeHook) Option {
	return func(s *Store) { s.onChange = h }
}

type Store struct {
	mu       sync.RWMutex
	onChange ChangeHook

	products        *table[product.Product]
	customers       *table[customer.Customer]
	suppliers       *table[supplier.Supplier]
	sales           *table[sale.Sale]
	purchases       *table[purchase.Purchase]
	invoices        *table[invoice.Invoice]
	courses         *table[course.Course]
	batches         *table[course.Batch]
	students        *table[student.Student]
	admissions      *table[enrollment.Admission]
	enrollments     *table[enrollment.Enrollment]
	payments        *table[payment.Payment]
	vouchers        *table[payment.Voucher]
	tickets         *table[service.Ticket]
	technicians     *table[service.Technician]
	serviceInvoices *table[service.Invoice]
	sessions        *table[attendance.Session]

	tables map[string]tabler
}

func New(opts ...Option) *Store {
	s := &Store{
		products: newTable(backup.Products, tally.ErrProductNotFound,
			func(p *product.Product) id.ID { return p.ID }, nil),
		customers: newTable(backup.Customers, tally.ErrCustomerNotFound,
			func(c *customer.Customer) id.ID { return c.ID }, nil),
		suppliers: newTable(backup.Suppliers, tally.ErrSupplierNotFound,
			func(s *supplier.Supplier) id.ID { return s.ID },
			func(s *supplier.Supplier) { s.Products = slices.Clone(s.Products) }),
		sales: newTable(backup.Sales, tally.ErrSaleNotFound,
			func(s *sale.Sale) id.ID { return s.ID },
			func(s *sale.Sale) { s.Items = slices.Clone(s.Items) }),
		purchases: newTable(backup.Purchases, tally.ErrPurchaseNotFound,
			func(p *purchase.Purchase) id.ID { return p.ID },
			func(p *purchase.Purchase) { p.Items = slices.Clone(p.Items) }),
		invoices: newTable(backup.Invoices, tally.ErrInvoiceNotFound,
			func(inv *invoice.Invoice) id.ID { return inv.ID },
			func(inv *invoice.Invoice) { inv.Items = slices.Clone(inv.Items) }),
		courses: newTable(backup.Courses, tally.ErrCourseNotFound,
			func(c *course.Course) id.ID { return c.ID },
			func(c *course.Course) { c.Materials = slices.Clone(c.Materials) }),
		batches: newTable(backup.CourseBatches, tally.ErrBatchNotFound,
			func(b *course.Batch) id.ID { return b.ID }, nil),
		students: newTable(backup.Students, tally.ErrStudentNotFound,
			func(s *student.Student) id.ID { return s.ID }, nil),
		admissions: newTable(backup.Admissions, tally.ErrAdmissionNotFound,
			func(a *enrollment.Admission) id.ID { return a.ID }, nil),
		enrollments: newTable(backup.Enrollments, tally.ErrEnrollmentNotFound,
			func(e *enrollment.Enrollment) id.ID { return e.ID }, nil),
		payments: newTable(backup.CoursePayments, tally.ErrPaymentNotFound,
			func(p *payment.Payment) id.ID { return p.ID }, nil),
		vouchers: newTable(backup.PaymentVouchers, tally.ErrVoucherNotFound,
			func(v *payment.Voucher) id.ID { return v.ID },
			func(v *payment.Voucher) { v.Missing = slices.Clone(v.Missing) }),
		tickets: newTable(backup.ServiceTickets, tally.ErrTicketNotFound,
			func(t *service.Ticket) id.ID { return t.ID },
			func(t *service.Ticket) {
				t.PartsUsed = slices.Clone(t.PartsUsed)
				t.Notes = slices.Clone(t.Notes)
			}),
		technicians: newTable(backup.Technicians, tally.ErrTechnicianNotFound,
			func(t *service.Technician) id.ID { return t.ID },
			func(t *service.Technician) { t.Specializations = slices.Clone(t.Specializations) }),
		serviceInvoices: newTable(backup.ServiceInvoices, tally.ErrServiceInvoiceNotFound,
			func(inv *service.Invoice) id.ID { return inv.ID }, nil),
		sessions: newTable(backup.AttendanceSessions, tally.ErrSessionNotFound,
			func(s *attendance.Session) id.ID { return s.ID },
			func(s *attendance.Session) { s.Records = slices.Clone(s.Records) }),
	}

	s.tables = make(map[string]tabler)
	for _, t := range []tabler{
		s.products, s.customers, s.suppliers, s.sales, s.purchases, s.invoices,
		s.courses, s.batches, s.students, s.admissions, s.enrollments,
		s.payments, s.vouchers, s.tickets, s.technicians, s.serviceInvoices,
		s.sessions,
	} {
		s.tables[t.tableName()] = t
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// write runs fn under the write lock and, when it succeeds, reports the
// changed table to the change hook.
func (s *Store) write(ctx context.Context, tableName string, fn func() error) error {
	s.mu.Lock()
	err := fn()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.changed(ctx, tableName)
}

// remove deletes a record; deleting a missing record is a no-op.
func (s *Store) remove(ctx context.Context, tableName string, fn func() bool) error {
	s.mu.Lock()
	removed := fn()
	s.mu.Unlock()
	if !removed {
		return nil
	}
	return s.changed(ctx, tableName)
}

func (s *Store) changed(ctx context.Context, tables ...string) error {
	if s.onChange == nil {
		return nil
	}
	return s.onChange(ctx, tables...)
}

func matchID(want, got id.ID) bool {
	return want.IsNil() || want == got
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// ──────────────────────────────────────────────────
// Products
// ──────────────────────────────────────────────────

func (s *Store) CreateProduct(ctx context.Context, p *product.Product) error {
	return s.write(ctx, backup.Products, func() error { return s.products.insert(p) })
}

func (s *Store) GetProduct(_ context.Context, productID id.ProductID) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products.get(productID)
}

func (s *Store) ListProducts(_ context.Context, opts product.ListOpts) ([]*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.products.list(func(p *product.Product) bool {
		if opts.Category != "" && p.Category != opts.Category {
			return false
		}
		if opts.LowStock && !p.IsLowStock() {
			return false
		}
		return matchID(opts.SupplierID, p.SupplierID)
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *product.Product) error {
	return s.write(ctx, backup.Products, func() error { return s.products.update(p) })
}

func (s *Store) DeleteProduct(ctx context.Context, productID id.ProductID) error {
	return s.remove(ctx, backup.Products, func() bool { return s.products.remove(productID) })
}

// ──────────────────────────────────────────────────
// Customers
// ──────────────────────────────────────────────────

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	return s.write(ctx, backup.Customers, func() error { return s.customers.insert(c) })
}

func (s *Store) GetCustomer(_ context.Context, customerID id.CustomerID) (*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customers.get(customerID)
}

func (s *Store) ListCustomers(_ context.Context, opts customer.ListOpts) ([]*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(opts.Search)
	return s.customers.list(func(c *customer.Customer) bool {
		return q == "" || contains(c.Name, q) || contains(c.Email, q) || contains(c.Phone, q)
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	return s.write(ctx, backup.Customers, func() error { return s.customers.update(c) })
}

func (s *Store) DeleteCustomer(ctx context.Context, customerID id.CustomerID) error {
	return s.remove(ctx, backup.Customers, func() bool { return s.customers.remove(customerID) })
}

// ──────────────────────────────────────────────────
// Suppliers
// ──────────────────────────────────────────────────

func (s *Store) CreateSupplier(ctx context.Context, sp *supplier.Supplier) error {
	return s.write(ctx, backup.Suppliers, func() error { return s.suppliers.insert(sp) })
}

func (s *Store) GetSupplier(_ context.Context, supplierID id.SupplierID) (*supplier.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suppliers.get(supplierID)
}

func (s *Store) ListSuppliers(_ context.Context, opts supplier.ListOpts) ([]*supplier.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.suppliers.list(nil, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateSupplier(ctx context.Context, sp *supplier.Supplier) error {
	return s.write(ctx, backup.Suppliers, func() error { return s.suppliers.update(sp) })
}

func (s *Store) DeleteSupplier(ctx context.Context, supplierID id.SupplierID) error {
	return s.remove(ctx, backup.Suppliers, func() bool { return s.suppliers.remove(supplierID) })
}

// ──────────────────────────────────────────────────
// Sales
// ──────────────────────────────────────────────────

func (s *Store) CreateSale(ctx context.Context, sl *sale.Sale) error {
	return s.write(ctx, backup.Sales, func() error { return s.sales.insert(sl) })
}

func (s *Store) GetSale(_ context.Context, saleID id.SaleID) (*sale.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sales.get(saleID)
}

func (s *Store) ListSales(_ context.Context, opts sale.ListOpts) ([]*sale.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sales.list(func(sl *sale.Sale) bool {
		if opts.Status != "" && sl.Status != opts.Status {
			return false
		}
		if !opts.Start.IsZero() && sl.CreatedAt.Before(opts.Start) {
			return false
		}
		if !opts.End.IsZero() && !sl.CreatedAt.Before(opts.End) {
			return false
		}
		return matchID(opts.CustomerID, sl.CustomerID)
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) DeleteSale(ctx context.Context, saleID id.SaleID) error {
	return s.remove(ctx, backup.Sales, func() bool { return s.sales.remove(saleID) })
}

// ──────────────────────────────────────────────────
// Purchases
// ──────────────────────────────────────────────────

func (s *Store) CreatePurchase(ctx context.Context, p *purchase.Purchase) error {
	return s.write(ctx, backup.Purchases, func() error { return s.purchases.insert(p) })
}

func (s *Store) GetPurchase(_ context.Context, purchaseID id.PurchaseID) (*purchase.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.purchases.get(purchaseID)
}

func (s *Store) ListPurchases(_ context.Context, opts purchase.ListOpts) ([]*purchase.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.purchases.list(func(p *purchase.Purchase) bool {
		if opts.Status != "" && p.Status != opts.Status {
			return false
		}
		return matchID(opts.SupplierID, p.SupplierID)
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdatePurchase(ctx context.Context, p *purchase.Purchase) error {
	return s.write(ctx, backup.Purchases, func() error { return s.purchases.update(p) })
}

func (s *Store) DeletePurchase(ctx context.Context, purchaseID id.PurchaseID) error {
	return s.remove(ctx, backup.Purchases, func() bool { return s.purchases.remove(purchaseID) })
}

// ──────────────────────────────────────────────────
// Invoices
// ──────────────────────────────────────────────────

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	return s.write(ctx, backup.Invoices, func() error { return s.invoices.insert(inv) })
}

func (s *Store) GetInvoice(_ context.Context, invID id.InvoiceID) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invoices.get(invID)
}

func (s *Store) ListInvoices(_ context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.invoices.list(func(inv *invoice.Invoice) bool {
		if opts.Status != "" && inv.Status != opts.Status {
			return false
		}
		return matchID(opts.CustomerID, inv.CustomerID) && matchID(opts.SaleID, inv.SaleID)
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	return s.write(ctx, backup.Invoices, func() error { return s.invoices.update(inv) })
}

func (s *Store) DeleteInvoice(ctx context.Context, invID id.InvoiceID) error {
	return s.remove(ctx, backup.Invoices, func() bool { return s.invoices.remove(invID) })
}

// ──────────────────────────────────────────────────
// Courses and batches
// ──────────────────────────────────────────────────

func (s *Store) CreateCourse(ctx context.Context, c *course.Course) error {
	return s.write(ctx, backup.Courses, func() error { return s.courses.insert(c) })
}

func (s *Store) GetCourse(_ context.Context, courseID id.CourseID) (*course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.courses.get(courseID)
}

func (s *Store) ListCourses(_ context.Context, opts course.ListOpts) ([]*course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.courses.list(func(c *course.Course) bool {
		return opts.Status == "" || c.Status == opts.Status
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateCourse(ctx context.Context, c *course.Course) error {
	return s.write(ctx, backup.Courses, func() error { return s.courses.update(c) })
}

func (s *Store) DeleteCourse(ctx context.Context, courseID id.CourseID) error {
	return s.remove(ctx, backup.Courses, func() bool { return s.courses.remove(courseID) })
}

func (s *Store) CreateBatch(ctx context.Context, b *course.Batch) error {
	return s.write(ctx, backup.CourseBatches, func() error { return s.batches.insert(b) })
}

func (s *Store) GetBatch(_ context.Context, batchID id.BatchID) (*course.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batches.get(batchID)
}

func (s *Store) ListBatches(_ context.Context, opts course.BatchListOpts) ([]*course.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.batches.list(func(b *course.Batch) bool {
		if opts.Status != "" && b.Status != opts.Status {
			return false
		}
		return matchID(opts.CourseID, b.CourseID)
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateBatch(ctx context.Context, b *course.Batch) error {
	return s.write(ctx, backup.CourseBatches, func() error { return s.batches.update(b) })
}

func (s *Store) DeleteBatch(ctx context.Context, batchID id.BatchID) error {
	return s.remove(ctx, backup.CourseBatches, func() bool { return s.batches.remove(batchID) })
}

// ──────────────────────────────────────────────────
// Students
// ──────────────────────────────────────────────────

func (s *Store) CreateStudent(ctx context.Context, st *student.Student) error {
	return s.write(ctx, backup.Students, func() error { return s.students.insert(st) })
}

func (s *Store) GetStudent(_ context.Context, studentID id.StudentID) (*student.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.students.get(studentID)
}

func (s *Store) ListStudents(_ context.Context, opts student.ListOpts) ([]*student.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(opts.Search)
	return s.students.list(func(st *student.Student) bool {
		return q == "" || contains(st.Name, q) || contains(st.Email, q) || contains(st.Phone, q)
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateStudent(ctx context.Context, st *student.Student) error {
	return s.write(ctx, backup.Students, func() error { return s.students.update(st) })
}

func (s *Store) DeleteStudent(ctx context.Context, studentID id.StudentID) error {
	return s.remove(ctx, backup.Students, func() bool { return s.students.remove(studentID) })
}

// ──────────────────────────────────────────────────
// Admissions and enrollments
// ──────────────────────────────────────────────────

func (s *Store) CreateAdmission(ctx context.Context, a *enrollment.Admission) error {
	return s.write(ctx, backup.Admissions, func() error { return s.admissions.insert(a) })
}

func (s *Store) GetAdmission(_ context.Context, admissionID id.AdmissionID) (*enrollment.Admission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admissions.get(admissionID)
}

func (s *Store) ListAdmissions(_ context.Context, opts enrollment.AdmissionListOpts) ([]*enrollment.Admission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.admissions.list(func(a *enrollment.Admission) bool {
		if opts.Status != "" && a.Status != opts.Status {
			return false
		}
		return matchID(opts.StudentID, a.StudentID) && matchID(opts.BatchID, a.BatchID)
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateAdmission(ctx context.Context, a *enrollment.Admission) error {
	return s.write(ctx, backup.Admissions, func() error { return s.admissions.update(a) })
}

func (s *Store) DeleteAdmission(ctx context.Context, admissionID id.AdmissionID) error {
	return s.remove(ctx, backup.Admissions, func() bool { return s.admissions.remove(admissionID) })
}

func (s *Store) CreateEnrollment(ctx context.Context, e *enrollment.Enrollment) error {
	return s.write(ctx, backup.Enrollments, func() error { return s.enrollments.insert(e) })
}

func (s *Store) GetEnrollment(_ context.Context, enrollmentID id.EnrollmentID) (*enrollment.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enrollments.get(enrollmentID)
}

func (s *Store) ListEnrollments(_ context.Context, opts enrollment.ListOpts) ([]*enrollment.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.enrollments.list(func(e *enrollment.Enrollment) bool {
		if opts.Status != "" && e.Status != opts.Status {
			return false
		}
		return matchID(opts.StudentID, e.StudentID) &&
			matchID(opts.CourseID, e.CourseID) &&
			matchID(opts.BatchID, e.BatchID)
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateEnrollment(ctx context.Context, e *enrollment.Enrollment) error {
	return s.write(ctx, backup.Enrollments, func() error { return s.enrollments.update(e) })
}

func (s *Store) DeleteEnrollment(ctx context.Context, enrollmentID id.EnrollmentID) error {
	return s.remove(ctx, backup.Enrollments, func() bool { return s.enrollments.remove(enrollmentID) })
}

// ──────────────────────────────────────────────────
// Payments and vouchers
// ──────────────────────────────────────────────────

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	return s.write(ctx, backup.CoursePayments, func() error {
		if p.VoucherNumber != "" {
			if _, taken := s.payments.find(func(o *payment.Payment) bool {
				return o.VoucherNumber == p.VoucherNumber
			}); taken {
				return tally.ErrDuplicateVoucherNumber
			}
		}
		return s.payments.insert(p)
	})
}

func (s *Store) GetPayment(_ context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payments.get(paymentID)
}

func (s *Store) GetPaymentByVoucher(_ context.Context, voucherNumber string) (*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.payments.find(func(p *payment.Payment) bool {
		return p.VoucherNumber == voucherNumber
	}); ok {
		return p, nil
	}
	return nil, tally.ErrPaymentNotFound
}

func (s *Store) ListPayments(_ context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.payments.list(func(p *payment.Payment) bool {
		if opts.Type != "" && p.PaymentType != opts.Type {
			return false
		}
		return matchID(opts.EnrollmentID, p.EnrollmentID) && matchID(opts.StudentID, p.StudentID)
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) DeletePayment(ctx context.Context, paymentID id.PaymentID) error {
	return s.remove(ctx, backup.CoursePayments, func() bool { return s.payments.remove(paymentID) })
}

func (s *Store) CreateVoucher(ctx context.Context, v *payment.Voucher) error {
	return s.write(ctx, backup.PaymentVouchers, func() error {
		if _, taken := s.vouchers.find(func(o *payment.Voucher) bool {
			return o.VoucherNumber == v.VoucherNumber
		}); taken {
			return tally.ErrAlreadyExists
		}
		return s.vouchers.insert(v)
	})
}

func (s *Store) GetVoucher(_ context.Context, voucherNumber string) (*payment.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.vouchers.find(func(v *payment.Voucher) bool {
		return v.VoucherNumber == voucherNumber
	}); ok {
		return v, nil
	}
	return nil, tally.ErrVoucherNotFound
}

func (s *Store) ListVouchers(_ context.Context, opts payment.VoucherListOpts) ([]*payment.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.vouchers.list(func(v *payment.Voucher) bool {
		return matchID(opts.PaymentID, v.PaymentID)
	}, opts.Limit, opts.Offset), nil
}

// ──────────────────────────────────────────────────
// Repair desk
// ──────────────────────────────────────────────────

func (s *Store) CreateTicket(ctx context.Context, t *service.Ticket) error {
	return s.write(ctx, backup.ServiceTickets, func() error { return s.tickets.insert(t) })
}

func (s *Store) GetTicket(_ context.Context, ticketID id.TicketID) (*service.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tickets.get(ticketID)
}

func (s *Store) ListTickets(_ context.Context, opts service.TicketListOpts) ([]*service.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tickets.list(func(t *service.Ticket) bool {
		if opts.Status != "" && t.Status != opts.Status {
			return false
		}
		if opts.PendingOnly && !t.Status.IsPending() {
			return false
		}
		return matchID(opts.CustomerID, t.CustomerID) && matchID(opts.TechnicianID, t.AssignedTechnician)
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateTicket(ctx context.Context, t *service.Ticket) error {
	return s.write(ctx, backup.ServiceTickets, func() error { return s.tickets.update(t) })
}

func (s *Store) DeleteTicket(ctx context.Context, ticketID id.TicketID) error {
	return s.remove(ctx, backup.ServiceTickets, func() bool { return s.tickets.remove(ticketID) })
}

func (s *Store) CreateTechnician(ctx context.Context, t *service.Technician) error {
	return s.write(ctx, backup.Technicians, func() error { return s.technicians.insert(t) })
}

func (s *Store) GetTechnician(_ context.Context, technicianID id.TechnicianID) (*service.Technician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.technicians.get(technicianID)
}

func (s *Store) ListTechnicians(_ context.Context, opts service.TechnicianListOpts) ([]*service.Technician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.technicians.list(func(t *service.Technician) bool {
		return opts.Status == "" || t.Status == opts.Status
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateTechnician(ctx context.Context, t *service.Technician) error {
	return s.write(ctx, backup.Technicians, func() error { return s.technicians.update(t) })
}

func (s *Store) DeleteTechnician(ctx context.Context, technicianID id.TechnicianID) error {
	return s.remove(ctx, backup.Technicians, func() bool { return s.technicians.remove(technicianID) })
}

func (s *Store) CreateServiceInvoice(ctx context.Context, inv *service.Invoice) error {
	return s.write(ctx, backup.ServiceInvoices, func() error { return s.serviceInvoices.insert(inv) })
}

func (s *Store) GetServiceInvoice(_ context.Context, invID id.ServiceInvoiceID) (*service.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serviceInvoices.get(invID)
}

func (s *Store) ListServiceInvoices(_ context.Context, opts service.InvoiceListOpts) ([]*service.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.serviceInvoices.list(func(inv *service.Invoice) bool {
		if opts.Status != "" && inv.Status != opts.Status {
			return false
		}
		return matchID(opts.CustomerID, inv.CustomerID) && matchID(opts.TicketID, inv.ServiceTicketID)
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateServiceInvoice(ctx context.Context, inv *service.Invoice) error {
	return s.write(ctx, backup.ServiceInvoices, func() error { return s.serviceInvoices.update(inv) })
}

func (s *Store) DeleteServiceInvoice(ctx context.Context, invID id.ServiceInvoiceID) error {
	return s.remove(ctx, backup.ServiceInvoices, func() bool { return s.serviceInvoices.remove(invID) })
}

// ──────────────────────────────────────────────────
// Attendance
// ──────────────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, a *attendance.Session) error {
	return s.write(ctx, backup.AttendanceSessions, func() error { return s.sessions.insert(a) })
}

func (s *Store) GetSession(_ context.Context, sessionID id.SessionID) (*attendance.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions.get(sessionID)
}

func (s *Store) ListSessions(_ context.Context, opts attendance.ListOpts) ([]*attendance.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessions.list(func(a *attendance.Session) bool {
		return matchID(opts.BatchID, a.BatchID)
	}, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateSession(ctx context.Context, a *attendance.Session) error {
	return s.write(ctx, backup.AttendanceSessions, func() error { return s.sessions.update(a) })
}

func (s *Store) DeleteSession(ctx context.Context, sessionID id.SessionID) error {
	return s.remove(ctx, backup.AttendanceSessions, func() bool { return s.sessions.remove(sessionID) })
}

// ──────────────────────────────────────────────────
// Tables
// ──────────────────────────────────────────────────

// DumpTable returns the named table as a JSON array.
func (s *Store) DumpTable(name string) ([]byte, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("memory: unknown table %q", name)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return t.marshal()
}

// LoadTables replaces the given tables without calling the change hook.
// Every table is decoded before any is replaced.
func (s *Store) LoadTables(tables map[string]json.RawMessage) error {
	commits := make([]func(), 0, len(tables))
	for name, data := range tables {
		t, ok := s.tables[name]
		if !ok {
			return fmt.Errorf("memory: unknown table %q", name)
		}
		commit, err := t.stage(data)
		if err != nil {
			return err
		}
		commits = append(commits, commit)
	}

	s.mu.Lock()
	for _, commit := range commits {
		commit()
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) ExportTables(_ context.Context) (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]json.RawMessage, len(s.tables))
	for name, t := range s.tables {
		data, err := t.marshal()
		if err != nil {
			return nil, fmt.Errorf("memory: export %q: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}

func (s *Store) ImportTables(ctx context.Context, tables map[string]json.RawMessage) error {
	if err := s.LoadTables(tables); err != nil {
		return err
	}

	names := make([]string, 0, len(tables))
	for _, name := range backup.Tables {
		if _, ok := tables[name]; ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return s.changed(ctx, names...)
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }
