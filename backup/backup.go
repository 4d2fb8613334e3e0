// Package backup defines the JSON backup document: one array per table,
// keyed by table name.
//
// The document format predates Tally. Older files carry only the legacy
// tables (products, customers, suppliers, sales, purchases, courses and
// invoices); newer files carry every table.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Table names. They double as storage keys.
const (
	Products           = "products"
	Customers          = "customers"
	Suppliers          = "suppliers"
	Sales              = "sales"
	Purchases          = "purchases"
	Courses            = "courses"
	Invoices           = "invoices"
	ServiceTickets     = "serviceTickets"
	Technicians        = "technicians"
	ServiceInvoices    = "serviceInvoices"
	CourseBatches      = "courseBatches"
	Students           = "students"
	Admissions         = "admissions"
	Enrollments        = "enrollments"
	CoursePayments     = "coursePayments"
	PaymentVouchers    = "paymentVouchers"
	AttendanceSessions = "attendanceSessions"
)

// Legacy lists the tables every backup must contain.
var Legacy = []string{Products, Customers, Suppliers, Sales, Purchases, Courses, Invoices}

// Tables lists every table in export order.
var Tables = []string{
	Products, Customers, Suppliers, Sales, Purchases, Courses, Invoices,
	ServiceTickets, Technicians, ServiceInvoices,
	CourseBatches, Students, Admissions, Enrollments, CoursePayments, PaymentVouchers,
	AttendanceSessions,
}

// ErrInvalidFormat is returned when a document fails validation.
var ErrInvalidFormat = errors.New("backup: invalid format")

// IsTable reports whether name is a known table.
func IsTable(name string) bool {
	return slices.Contains(Tables, name)
}

// Document maps table names to their JSON arrays.
type Document map[string]json.RawMessage

// Decode reads and validates a document. The top level must be an object;
// every legacy table must be present and every known table present must be
// a JSON array. Unknown keys are dropped.
func Decode(r io.Reader) (Document, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrInvalidFormat)
	}

	for _, name := range Legacy {
		if _, ok := raw[name]; !ok {
			return nil, fmt.Errorf("%w: missing table %q", ErrInvalidFormat, name)
		}
	}

	doc := make(Document, len(raw))
	for name, data := range raw {
		if !IsTable(name) {
			continue
		}
		if !isArray(data) {
			return nil, fmt.Errorf("%w: table %q is not an array", ErrInvalidFormat, name)
		}
		doc[name] = data
	}
	return doc, nil
}

// Encode writes the document as indented JSON with tables in export order.
func (d Document) Encode(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	first := true
	for _, name := range d.Names() {
		if !first {
			buf.WriteString(",\n")
		}
		first = false

		key, _ := json.Marshal(name) //nolint:errcheck // strings always marshal
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		if err := json.Indent(&buf, d[name], "  ", "  "); err != nil {
			return fmt.Errorf("backup: encode table %q: %w", name, err)
		}
	}
	buf.WriteString("\n}\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// Names returns the tables present in the document, known tables first in
// export order.
func (d Document) Names() []string {
	names := make([]string, 0, len(d))
	for _, name := range Tables {
		if _, ok := d[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Has reports whether the document carries the table.
func (d Document) Has(name string) bool {
	_, ok := d[name]
	return ok
}

func isArray(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}
