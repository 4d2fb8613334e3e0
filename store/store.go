package store

import (
	"context"
	"encoding/json"

	"github.com/xraph/tally/attendance"
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

// Store is the unified storage interface for all Tally tables.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
//
// Get methods return a copy of the stored record; mutating it has no effect
// until it is passed to the matching Update. Lists preserve insertion order.
type Store interface {
	// Product methods
	CreateProduct(ctx context.Context, p *product.Product) error
	GetProduct(ctx context.Context, productID id.ProductID) (*product.Product, error)
	ListProducts(ctx context.Context, opts product.ListOpts) ([]*product.Product, error)
	UpdateProduct(ctx context.Context, p *product.Product) error
	DeleteProduct(ctx context.Context, productID id.ProductID) error

	// Customer methods
	CreateCustomer(ctx context.Context, c *customer.Customer) error
	GetCustomer(ctx context.Context, customerID id.CustomerID) (*customer.Customer, error)
	ListCustomers(ctx context.Context, opts customer.ListOpts) ([]*customer.Customer, error)
	UpdateCustomer(ctx context.Context, c *customer.Customer) error
	DeleteCustomer(ctx context.Context, customerID id.CustomerID) error

	// Supplier methods
	CreateSupplier(ctx context.Context, s *supplier.Supplier) error
	GetSupplier(ctx context.Context, supplierID id.SupplierID) (*supplier.Supplier, error)
	ListSuppliers(ctx context.Context, opts supplier.ListOpts) ([]*supplier.Supplier, error)
	UpdateSupplier(ctx context.Context, s *supplier.Supplier) error
	DeleteSupplier(ctx context.Context, supplierID id.SupplierID) error

	// Sale methods
	CreateSale(ctx context.Context, s *sale.Sale) error
	GetSale(ctx context.Context, saleID id.SaleID) (*sale.Sale, error)
	ListSales(ctx context.Context, opts sale.ListOpts) ([]*sale.Sale, error)
	DeleteSale(ctx context.Context, saleID id.SaleID) error

	// Purchase methods
	CreatePurchase(ctx context.Context, p *purchase.Purchase) error
	GetPurchase(ctx context.Context, purchaseID id.PurchaseID) (*purchase.Purchase, error)
	ListPurchases(ctx context.Context, opts purchase.ListOpts) ([]*purchase.Purchase, error)
	UpdatePurchase(ctx context.Context, p *purchase.Purchase) error
	DeletePurchase(ctx context.Context, purchaseID id.PurchaseID) error

	// Invoice methods
	CreateInvoice(ctx context.Context, inv *invoice.Invoice) error
	GetInvoice(ctx context.Context, invID id.InvoiceID) (*invoice.Invoice, error)
	ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error)
	UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error
	DeleteInvoice(ctx context.Context, invID id.InvoiceID) error

	// Course methods
	CreateCourse(ctx context.Context, c *course.Course) error
	GetCourse(ctx context.Context, courseID id.CourseID) (*course.Course, error)
	ListCourses(ctx context.Context, opts course.ListOpts) ([]*course.Course, error)
	UpdateCourse(ctx context.Context, c *course.Course) error
	DeleteCourse(ctx context.Context, courseID id.CourseID) error

	// Batch methods
	CreateBatch(ctx context.Context, b *course.Batch) error
	GetBatch(ctx context.Context, batchID id.BatchID) (*course.Batch, error)
	ListBatches(ctx context.Context, opts course.BatchListOpts) ([]*course.Batch, error)
	UpdateBatch(ctx context.Context, b *course.Batch) error
	DeleteBatch(ctx context.Context, batchID id.BatchID) error

	// Student methods
	CreateStudent(ctx context.Context, s *student.Student) error
	GetStudent(ctx context.Context, studentID id.StudentID) (*student.Student, error)
	ListStudents(ctx context.Context, opts student.ListOpts) ([]*student.Student, error)
	UpdateStudent(ctx context.Context, s *student.Student) error
	DeleteStudent(ctx context.Context, studentID id.StudentID) error

	// Admission methods
	CreateAdmission(ctx context.Context, a *enrollment.Admission) error
	GetAdmission(ctx context.Context, admissionID id.AdmissionID) (*enrollment.Admission, error)
	ListAdmissions(ctx context.Context, opts enrollment.AdmissionListOpts) ([]*enrollment.Admission, error)
	UpdateAdmission(ctx context.Context, a *enrollment.Admission) error
	DeleteAdmission(ctx context.Context, admissionID id.AdmissionID) error

	// Enrollment methods
	CreateEnrollment(ctx context.Context, e *enrollment.Enrollment) error
	GetEnrollment(ctx context.Context, enrollmentID id.EnrollmentID) (*enrollment.Enrollment, error)
	ListEnrollments(ctx context.Context, opts enrollment.ListOpts) ([]*enrollment.Enrollment, error)
	UpdateEnrollment(ctx context.Context, e *enrollment.Enrollment) error
	DeleteEnrollment(ctx context.Context, enrollmentID id.EnrollmentID) error

	// Course payment methods
	CreatePayment(ctx context.Context, p *payment.Payment) error
	GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error)
	GetPaymentByVoucher(ctx context.Context, voucherNumber string) (*payment.Payment, error)
	ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error)
	DeletePayment(ctx context.Context, paymentID id.PaymentID) error

	// Voucher methods
	CreateVoucher(ctx context.Context, v *payment.Voucher) error
	GetVoucher(ctx context.Context, voucherNumber string) (*payment.Voucher, error)
	ListVouchers(ctx context.Context, opts payment.VoucherListOpts) ([]*payment.Voucher, error)

	// Service ticket methods
	CreateTicket(ctx context.Context, t *service.Ticket) error
	GetTicket(ctx context.Context, ticketID id.TicketID) (*service.Ticket, error)
	ListTickets(ctx context.Context, opts service.TicketListOpts) ([]*service.Ticket, error)
	UpdateTicket(ctx context.Context, t *service.Ticket) error
	DeleteTicket(ctx context.Context, ticketID id.TicketID) error

	// Technician methods
	CreateTechnician(ctx context.Context, t *service.Technician) error
	GetTechnician(ctx context.Context, technicianID id.TechnicianID) (*service.Technician, error)
	ListTechnicians(ctx context.Context, opts service.TechnicianListOpts) ([]*service.Technician, error)
	UpdateTechnician(ctx context.Context, t *service.Technician) error
	DeleteTechnician(ctx context.Context, technicianID id.TechnicianID) error

	// Service invoice methods
	CreateServiceInvoice(ctx context.Context, inv *service.Invoice) error
	GetServiceInvoice(ctx context.Context, invID id.ServiceInvoiceID) (*service.Invoice, error)
	ListServiceInvoices(ctx context.Context, opts service.InvoiceListOpts) ([]*service.Invoice, error)
	UpdateServiceInvoice(ctx context.Context, inv *service.Invoice) error
	DeleteServiceInvoice(ctx context.Context, invID id.ServiceInvoiceID) error

	// Attendance methods
	CreateSession(ctx context.Context, s *attendance.Session) error
	GetSession(ctx context.Context, sessionID id.SessionID) (*attendance.Session, error)
	ListSessions(ctx context.Context, opts attendance.ListOpts) ([]*attendance.Session, error)
	UpdateSession(ctx context.Context, s *attendance.Session) error
	DeleteSession(ctx context.Context, sessionID id.SessionID) error

	// Backup methods. ExportTables returns every table as a JSON array keyed
	// by table name. ImportTables decodes every given table before replacing
	// any of them; tables not in the map are left untouched.
	ExportTables(ctx context.Context) (map[string]json.RawMessage, error)
	ImportTables(ctx context.Context, tables map[string]json.RawMessage) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
