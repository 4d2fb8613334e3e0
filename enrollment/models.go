// Package enrollment defines student enrollments in course batches and the
// admission applications that precede them.
package enrollment

import (
	"time"

	"github.com/xraph/tally/course"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/payment"
	"github.com/xraph/tally/types"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDropped   Status = "dropped"
	StatusSuspended Status = "suspended"
)

// Enrollment tracks what a student owes for one course batch.
// RemainingAmount is always TotalFee - PaidAmount; it is negative when the
// student has overpaid.
type Enrollment struct {
	types.Entity
	ID                  id.EnrollmentID `json:"id"`
	StudentID           id.StudentID    `json:"studentId"`
	CourseID            id.CourseID     `json:"courseId"`
	BatchID             id.BatchID      `json:"batchId"`
	EnrollmentDate      time.Time       `json:"enrollmentDate"`
	TotalFee            types.Money     `json:"totalFee"`
	PaidAmount          types.Money     `json:"paidAmount"`
	RemainingAmount     types.Money     `json:"remainingAmount"`
	AdmissionFeePaid    bool            `json:"admissionFeePaid"`
	RegistrationFeePaid bool            `json:"registrationFeePaid"`
	ExamFeePaid         bool            `json:"examFeePaid"`
	Status              Status          `json:"status"`
}

// IsActive reports whether the enrollment is active.
func (e *Enrollment) IsActive() bool {
	return e.Status == StatusActive
}

// ApplyPayment adds amount to the paid total.
func (e *Enrollment) ApplyPayment(amount types.Money) {
	e.PaidAmount = e.PaidAmount.Add(amount)
	e.RemainingAmount = e.RemainingAmount.Subtract(amount)
}

// ReversePayment is the exact inverse of ApplyPayment.
func (e *Enrollment) ReversePayment(amount types.Money) {
	e.PaidAmount = e.PaidAmount.Subtract(amount)
	e.RemainingAmount = e.RemainingAmount.Add(amount)
}

// Balanced reports whether RemainingAmount == TotalFee - PaidAmount.
func (e *Enrollment) Balanced() bool {
	return e.RemainingAmount == e.TotalFee.Subtract(e.PaidAmount)
}

// StatusChange moves an existing enrollment to Status.
type StatusChange struct {
	Status Status `json:"status" validate:"required,oneof=active completed dropped suspended"`
}

// Request describes a new enrollment. TotalFee, amounts and flags are
// derived from the course.
type Request struct {
	StudentID      id.StudentID        `json:"studentId"`
	CourseID       id.CourseID         `json:"courseId"`
	BatchID        id.BatchID          `json:"batchId"`
	Fees           course.FeeSelection `json:"fees"`
	Status         Status              `json:"status" validate:"omitempty,oneof=active completed dropped suspended"`
	EnrollmentDate time.Time           `json:"enrollmentDate"`

	// InitialPayment, when positive, is recorded as an enrollment-type
	// payment right after the enrollment is created.
	InitialPayment types.Money    `json:"initialPayment" validate:"min=0"`
	PaymentMethod  payment.Method `json:"paymentMethod" validate:"omitempty,oneof=cash card transfer cheque"`
	ReceivedBy     string         `json:"receivedBy"`
}

type AdmissionStatus string

const (
	AdmissionPending  AdmissionStatus = "pending"
	AdmissionApproved AdmissionStatus = "approved"
	AdmissionRejected AdmissionStatus = "rejected"
)

// Admission is an application to join a course batch.
type Admission struct {
	types.Entity
	ID            id.AdmissionID  `json:"id"`
	StudentID     id.StudentID    `json:"studentId"`
	CourseID      id.CourseID     `json:"courseId"`
	BatchID       id.BatchID      `json:"batchId"`
	AdmissionDate time.Time       `json:"admissionDate"`
	AdmissionFee  types.Money     `json:"admissionFee" validate:"min=0"`
	PaidAmount    types.Money     `json:"paidAmount" validate:"min=0"`
	Status        AdmissionStatus `json:"status" validate:"omitempty,oneof=pending approved rejected"`
}
