// Package payment defines money received against enrollments and the
// receipt vouchers issued for it.
package payment

import (
	"time"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

type Type string

const (
	TypeEnrollment   Type = "enrollment"
	TypeAdmission    Type = "admission"
	TypeRegistration Type = "registration"
	TypeExam         Type = "exam"
)

// IsFee reports whether the type only marks a fee as paid.
func (t Type) IsFee() bool {
	return t == TypeAdmission || t == TypeRegistration || t == TypeExam
}

type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
	MethodCheque   Method = "cheque"
)

// Payment is an immutable record of money received. Its Amount and Type
// are what a deletion reverses.
type Payment struct {
	types.Entity
	ID            id.PaymentID    `json:"id"`
	EnrollmentID  id.EnrollmentID `json:"enrollmentId"`
	StudentID     id.StudentID    `json:"studentId"`
	PaymentType   Type            `json:"paymentType" validate:"required,oneof=enrollment admission registration exam"`
	Amount        types.Money     `json:"amount" validate:"min=0"`
	PaymentMethod Method          `json:"paymentMethod" validate:"omitempty,oneof=cash card transfer cheque"`
	PaymentDate   time.Time       `json:"paymentDate"`
	VoucherNumber string          `json:"voucherNumber"`
	Description   string          `json:"description,omitempty"`
	ReceivedBy    string          `json:"receivedBy"`

	// FeeAlreadyPaid records that the fee flag was set before this payment
	// without any payment behind it, so deleting the payment keeps it set.
	FeeAlreadyPaid bool `json:"feeAlreadyPaid,omitempty"`
}

// Voucher is a receipt snapshot. Names are copied at generation time and
// never updated.
type Voucher struct {
	types.Entity
	ID              id.VoucherID `json:"id"`
	VoucherNumber   string       `json:"voucherNumber"`
	PaymentID       id.PaymentID `json:"paymentId"`
	StudentName     string       `json:"studentName"`
	CourseName      string       `json:"courseName"`
	BatchName       string       `json:"batchName"`
	PaymentType     Type         `json:"paymentType"`
	Amount          types.Money  `json:"amount"`
	PaymentMethod   Method       `json:"paymentMethod"`
	PaymentDate     time.Time    `json:"paymentDate"`
	ReceivedBy      string       `json:"receivedBy"`
	InstallmentInfo string       `json:"installmentInfo,omitempty"`

	// Missing names the joined records that could not be found when the
	// voucher was generated ("student", "enrollment", "course", "batch").
	Missing []string `json:"missing,omitempty"`
}
