// Package attendance defines class sessions of a batch and the attendance
// marks taken in them.
package attendance

import (
	"time"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

type Mark string

const (
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
	MarkLate    Mark = "late"
	MarkExcused Mark = "excused"
)

// Session is one class meeting of a batch.
type Session struct {
	types.Entity
	ID         id.SessionID `json:"id"`
	BatchID    id.BatchID   `json:"batchId"`
	Date       time.Time    `json:"date"`
	Topic      string       `json:"topic"`
	Duration   int          `json:"duration" validate:"min=0"` // minutes
	Instructor string       `json:"instructor"`
	Records    []Record     `json:"attendanceRecords"`
}

// Record is one student's mark in a session.
type Record struct {
	ID           id.RecordID     `json:"id"`
	EnrollmentID id.EnrollmentID `json:"enrollmentId"`
	StudentID    id.StudentID    `json:"studentId"`
	BatchID      id.BatchID      `json:"batchId"`
	Date         time.Time       `json:"date"`
	Status       Mark            `json:"status"`
	Notes        string          `json:"notes,omitempty"`
	MarkedBy     string          `json:"markedBy"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// RecordFor returns the index of the student's record, or -1.
func (s *Session) RecordFor(studentID id.StudentID) int {
	for i := range s.Records {
		if s.Records[i].StudentID == studentID {
			return i
		}
	}
	return -1
}

// Tally counts the marks of each kind in the session.
func (s *Session) Tally() map[Mark]int {
	out := make(map[Mark]int, 4)
	for _, r := range s.Records {
		out[r.Status]++
	}
	return out
}
