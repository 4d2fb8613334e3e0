// Package id defines TypeID-based identity types for all Tally entities.
//
// Every record in Tally uses a single ID struct with a prefix that identifies
// its table. IDs are K-sortable (UUIDv7-based), globally unique,
// and URL-safe in the format "prefix_suffix".
//
// Records restored from older backups may carry opaque identifiers such as
// "1712345678901". Those are kept verbatim as legacy IDs with no prefix.
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

// Prefix constants for all Tally entity types.
const (
	PrefixProduct           Prefix = "prod" // Inventory product
	PrefixCustomer          Prefix = "cust" // Point-of-sale customer
	PrefixSupplier          Prefix = "supp" // Stock supplier
	PrefixSale              Prefix = "sale" // Point-of-sale sale
	PrefixPurchase          Prefix = "pur"  // Purchase order from a supplier
	PrefixInvoice           Prefix = "inv"  // Sale invoice
	PrefixCourse            Prefix = "crs"  // Training course
	PrefixBatch             Prefix = "bat"  // Scheduled run of a course
	PrefixStudent           Prefix = "stu"  // Student profile
	PrefixAdmission         Prefix = "adm"  // Admission application
	PrefixEnrollment        Prefix = "enr"  // Student enrollment in a batch
	PrefixPayment           Prefix = "pay"  // Course payment
	PrefixVoucher           Prefix = "vch"  // Payment voucher snapshot
	PrefixTicket            Prefix = "tkt"  // Repair desk ticket
	PrefixTechnician        Prefix = "tech" // Repair technician
	PrefixServiceInvoice    Prefix = "sinv" // Service invoice
	PrefixAttendanceSession Prefix = "att"  // Attendance session
	PrefixAttendanceRecord  Prefix = "attr" // Attendance mark
)

// ID is the primary identifier type for all Tally entities.
// It wraps a TypeID providing a prefix-qualified, globally unique,
// sortable, URL-safe identifier in the format "prefix_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner  typeid.TypeID
	legacy string
	valid  bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "prod_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseLenient parses s as a TypeID and falls back to a legacy opaque ID
// when it is not one. Only the empty string is rejected.
func ParseLenient(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	if tid, err := typeid.Parse(s); err == nil {
		return ID{inner: tid, valid: true}, nil
	}

	return ID{legacy: s, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// ──────────────────────────────────────────────────
// Type aliases
// ──────────────────────────────────────────────────

// ProductID is a type-safe identifier for products (prefix: "prod").
type ProductID = ID

// CustomerID is a type-safe identifier for customers (prefix: "cust").
type CustomerID = ID

// SupplierID is a type-safe identifier for suppliers (prefix: "supp").
type SupplierID = ID

// SaleID is a type-safe identifier for sales (prefix: "sale").
type SaleID = ID

// PurchaseID is a type-safe identifier for purchases (prefix: "pur").
type PurchaseID = ID

// InvoiceID is a type-safe identifier for sale invoices (prefix: "inv").
type InvoiceID = ID

// CourseID is a type-safe identifier for courses (prefix: "crs").
type CourseID = ID

// BatchID is a type-safe identifier for course batches (prefix: "bat").
type BatchID = ID

// StudentID is a type-safe identifier for students (prefix: "stu").
type StudentID = ID

// AdmissionID is a type-safe identifier for admissions (prefix: "adm").
type AdmissionID = ID

// EnrollmentID is a type-safe identifier for enrollments (prefix: "enr").
type EnrollmentID = ID

// PaymentID is a type-safe identifier for course payments (prefix: "pay").
type PaymentID = ID

// VoucherID is a type-safe identifier for payment vouchers (prefix: "vch").
type VoucherID = ID

// TicketID is a type-safe identifier for service tickets (prefix: "tkt").
type TicketID = ID

// TechnicianID is a type-safe identifier for technicians (prefix: "tech").
type TechnicianID = ID

// ServiceInvoiceID is a type-safe identifier for service invoices (prefix: "sinv").
type ServiceInvoiceID = ID

// SessionID is a type-safe identifier for attendance sessions (prefix: "att").
type SessionID = ID

// RecordID is a type-safe identifier for attendance marks (prefix: "attr").
type RecordID = ID

// ──────────────────────────────────────────────────
// Constructors
// ──────────────────────────────────────────────────

// NewProductID generates a new unique product ID.
func NewProductID() ID { return New(PrefixProduct) }

// NewCustomerID generates a new unique customer ID.
func NewCustomerID() ID { return New(PrefixCustomer) }

// NewSupplierID generates a new unique supplier ID.
func NewSupplierID() ID { return New(PrefixSupplier) }

// NewSaleID generates a new unique sale ID.
func NewSaleID() ID { return New(PrefixSale) }

// NewPurchaseID generates a new unique purchase ID.
func NewPurchaseID() ID { return New(PrefixPurchase) }

// NewInvoiceID generates a new unique sale invoice ID.
func NewInvoiceID() ID { return New(PrefixInvoice) }

// NewCourseID generates a new unique course ID.
func NewCourseID() ID { return New(PrefixCourse) }

// NewBatchID generates a new unique batch ID.
func NewBatchID() ID { return New(PrefixBatch) }

// NewStudentID generates a new unique student ID.
func NewStudentID() ID { return New(PrefixStudent) }

// NewAdmissionID generates a new unique admission ID.
func NewAdmissionID() ID { return New(PrefixAdmission) }

// NewEnrollmentID generates a new unique enrollment ID.
func NewEnrollmentID() ID { return New(PrefixEnrollment) }

// NewPaymentID generates a new unique course payment ID.
func NewPaymentID() ID { return New(PrefixPayment) }

// NewVoucherID generates a new unique voucher ID.
func NewVoucherID() ID { return New(PrefixVoucher) }

// NewTicketID generates a new unique service ticket ID.
func NewTicketID() ID { return New(PrefixTicket) }

// NewTechnicianID generates a new unique technician ID.
func NewTechnicianID() ID { return New(PrefixTechnician) }

// NewServiceInvoiceID generates a new unique service invoice ID.
func NewServiceInvoiceID() ID { return New(PrefixServiceInvoice) }

// NewSessionID generates a new unique attendance session ID.
func NewSessionID() ID { return New(PrefixAttendanceSession) }

// NewRecordID generates a new unique attendance record ID.
func NewRecordID() ID { return New(PrefixAttendanceRecord) }

// ──────────────────────────────────────────────────
// Parse helpers
// ──────────────────────────────────────────────────

// ParseProductID parses a string and validates the "prod" prefix.
func ParseProductID(s string) (ID, error) { return ParseWithPrefix(s, PrefixProduct) }

// ParseEnrollmentID parses a string and validates the "enr" prefix.
func ParseEnrollmentID(s string) (ID, error) { return ParseWithPrefix(s, PrefixEnrollment) }

// ParsePaymentID parses a string and validates the "pay" prefix.
func ParsePaymentID(s string) (ID, error) { return ParseWithPrefix(s, PrefixPayment) }

// ParseTicketID parses a string and validates the "tkt" prefix.
func ParseTicketID(s string) (ID, error) { return ParseWithPrefix(s, PrefixTicket) }

// ParseAny parses a string into an ID without type checking the prefix.
// Legacy opaque identifiers are accepted.
func ParseAny(s string) (ID, error) { return ParseLenient(s) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}
	if i.legacy != "" {
		return i.legacy
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
// Legacy IDs have no prefix.
func (i ID) Prefix() Prefix {
	if !i.valid || i.legacy != "" {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// IsLegacy reports whether this ID was restored from a non-TypeID string.
func (i ID) IsLegacy() bool {
	return i.valid && i.legacy != ""
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := ParseLenient(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the Nil ID so that optional foreign key columns store NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}
