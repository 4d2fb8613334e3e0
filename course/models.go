// Package course defines training courses and their scheduled batches.
package course

import (
	"time"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Course carries the fee components an enrollment is priced from.
type Course struct {
	types.Entity
	ID              id.CourseID `json:"id"`
	Name            string      `json:"name" validate:"required"`
	Duration        int         `json:"duration" validate:"min=0"` // hours
	Price           types.Money `json:"price" validate:"min=0"`
	AdmissionFee    types.Money `json:"admissionFee" validate:"min=0"`
	RegistrationFee types.Money `json:"registrationFee" validate:"min=0"`
	ExamFee         types.Money `json:"examFee" validate:"min=0"`
	Description     string      `json:"description"`
	Materials       []string    `json:"materials"`
	Instructor      string      `json:"instructor"`
	MaxStudents     int         `json:"maxStudents" validate:"min=0"`
	Status          Status      `json:"status" validate:"omitempty,oneof=active inactive"`
}

// FeeSelection lists the optional fees included in an enrollment.
type FeeSelection struct {
	Admission    bool `json:"admission"`
	Registration bool `json:"registration"`
	Exam         bool `json:"exam"`
}

// TotalFee returns the course price plus the selected optional fees.
func (c *Course) TotalFee(sel FeeSelection) types.Money {
	total := c.Price
	if sel.Admission {
		total = total.Add(c.AdmissionFee)
	}
	if sel.Registration {
		total = total.Add(c.RegistrationFee)
	}
	if sel.Exam {
		total = total.Add(c.ExamFee)
	}
	return total
}

type BatchStatus string

const (
	BatchUpcoming  BatchStatus = "upcoming"
	BatchOngoing   BatchStatus = "ongoing"
	BatchCompleted BatchStatus = "completed"
	BatchCancelled BatchStatus = "cancelled"
)

// Batch is a scheduled run of a course. CurrentStudents is maintained by
// enrollment operations.
type Batch struct {
	types.Entity
	ID              id.BatchID  `json:"id"`
	CourseID        id.CourseID `json:"courseId"`
	BatchName       string      `json:"batchName" validate:"required"`
	StartDate       time.Time   `json:"startDate"`
	EndDate         time.Time   `json:"endDate"`
	Schedule        string      `json:"schedule"`
	MaxStudents     int         `json:"maxStudents" validate:"min=0"`
	CurrentStudents int         `json:"currentStudents" validate:"min=0"`
	Status          BatchStatus `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
}

// HasSeat reports whether one more student fits. A zero capacity means
// unlimited.
func (b *Batch) HasSeat() bool {
	return b.MaxStudents <= 0 || b.CurrentStudents < b.MaxStudents
}

// CanTransition reports whether the batch may move from its current status
// to next. Cancelled and completed are terminal.
func (b *Batch) CanTransition(next BatchStatus) bool {
	if b.Status == next {
		return true
	}
	switch b.Status {
	case BatchUpcoming, "":
		return next == BatchOngoing || next == BatchCancelled
	case BatchOngoing:
		return next == BatchCompleted || next == BatchCancelled
	default:
		return false
	}
}
