// Package student defines the profiles of training centre students.
package student

import (
	"time"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

type Student struct {
	types.Entity
	ID               id.StudentID `json:"id"`
	Name             string       `json:"name" validate:"required"`
	Email            string       `json:"email" validate:"omitempty,email"`
	Phone            string       `json:"phone"`
	Address          string       `json:"address"`
	DateOfBirth      *time.Time   `json:"dateOfBirth,omitempty"`
	EmergencyContact string       `json:"emergencyContact,omitempty"`
}
