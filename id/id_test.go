package id_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/xraph/tally/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"ProductID", id.NewProductID, "prod_"},
		{"CustomerID", id.NewCustomerID, "cust_"},
		{"SupplierID", id.NewSupplierID, "supp_"},
		{"SaleID", id.NewSaleID, "sale_"},
		{"PurchaseID", id.NewPurchaseID, "pur_"},
		{"InvoiceID", id.NewInvoiceID, "inv_"},
		{"CourseID", id.NewCourseID, "crs_"},
		{"BatchID", id.NewBatchID, "bat_"},
		{"StudentID", id.NewStudentID, "stu_"},
		{"AdmissionID", id.NewAdmissionID, "adm_"},
		{"EnrollmentID", id.NewEnrollmentID, "enr_"},
		{"PaymentID", id.NewPaymentID, "pay_"},
		{"VoucherID", id.NewVoucherID, "vch_"},
		{"TicketID", id.NewTicketID, "tkt_"},
		{"TechnicianID", id.NewTechnicianID, "tech_"},
		{"ServiceInvoiceID", id.NewServiceInvoiceID, "sinv_"},
		{"SessionID", id.NewSessionID, "att_"},
		{"RecordID", id.NewRecordID, "attr_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"ProductID", id.NewProductID, id.ParseProductID},
		{"EnrollmentID", id.NewEnrollmentID, id.ParseEnrollmentID},
		{"PaymentID", id.NewPaymentID, id.ParsePaymentID},
		{"TicketID", id.NewTicketID, id.ParseTicketID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed != original {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		parseFn func(string) (id.ID, error)
	}{
		{"ParseProductID rejects pay_", id.NewPaymentID().String(), id.ParseProductID},
		{"ParseEnrollmentID rejects stu_", id.NewStudentID().String(), id.ParseEnrollmentID},
		{"ParsePaymentID rejects vch_", id.NewVoucherID().String(), id.ParsePaymentID},
		{"ParseTicketID rejects sinv_", id.NewServiceInvoiceID().String(), id.ParseTicketID},
		{"ParseProductID rejects legacy", "1712345678901", id.ParseProductID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.parseFn(tt.input); err == nil {
				t.Errorf("expected error for cross-type parse of %q, got nil", tt.input)
			}
		})
	}
}

func TestParseLenient(t *testing.T) {
	typed := id.NewCourseID()
	parsed, err := id.ParseLenient(typed.String())
	if err != nil {
		t.Fatalf("ParseLenient(%q) failed: %v", typed, err)
	}
	if parsed.IsLegacy() || parsed.Prefix() != id.PrefixCourse {
		t.Errorf("expected typed course ID, got %q (legacy=%v)", parsed, parsed.IsLegacy())
	}

	legacy, err := id.ParseLenient("1712345678901")
	if err != nil {
		t.Fatalf("ParseLenient(legacy) failed: %v", err)
	}
	if !legacy.IsLegacy() {
		t.Error("expected legacy ID")
	}
	if legacy.String() != "1712345678901" {
		t.Errorf("expected verbatim legacy string, got %q", legacy.String())
	}
	if legacy.Prefix() != "" {
		t.Errorf("expected empty prefix for legacy ID, got %q", legacy.Prefix())
	}

	again, _ := id.ParseAny("1712345678901")
	if again != legacy {
		t.Error("equal legacy strings should produce equal IDs")
	}

	if _, err := id.ParseLenient(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if i.String() != "" {
		t.Errorf("expected empty string, got %q", i.String())
	}
	if i.Prefix() != "" {
		t.Errorf("expected empty prefix, got %q", i.Prefix())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type row struct {
		ID       id.ID `json:"id"`
		Customer id.ID `json:"customerId"`
	}

	original := row{ID: id.NewSaleID()}
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var restored row
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if restored.ID != original.ID {
		t.Errorf("mismatch: %q != %q", restored.ID, original.ID)
	}
	if !restored.Customer.IsNil() {
		t.Error("expected empty customer ID to decode as nil")
	}

	var legacy row
	if err := json.Unmarshal([]byte(`{"id":"42","customerId":"1700000000000"}`), &legacy); err != nil {
		t.Fatalf("unmarshal legacy failed: %v", err)
	}
	if legacy.ID.String() != "42" || legacy.Customer.String() != "1700000000000" {
		t.Errorf("legacy IDs not preserved: %q %q", legacy.ID, legacy.Customer)
	}
}

func TestValueScan(t *testing.T) {
	original := id.NewTicketID()
	val, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned id.ID
	if scanErr := scanned.Scan(val); scanErr != nil {
		t.Fatalf("Scan failed: %v", scanErr)
	}
	if scanned.String() != original.String() {
		t.Errorf("mismatch: %q != %q", scanned.String(), original.String())
	}

	var nilID id.ID
	val, err = nilID.Value()
	if err != nil {
		t.Fatalf("Value(nil) failed: %v", err)
	}
	if val != nil {
		t.Errorf("expected nil value for nil ID, got %v", val)
	}

	var scanned2 id.ID
	if err := scanned2.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if !scanned2.IsNil() {
		t.Error("expected nil after scan of nil")
	}
}

func TestUniqueness(t *testing.T) {
	a := id.NewPaymentID()
	b := id.NewPaymentID()
	if a == b {
		t.Errorf("two consecutive NewPaymentID() calls returned the same ID: %q", a.String())
	}
}
