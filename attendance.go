package tally

import (
	"context"
	"fmt"

	"github.com/xraph/tally/attendance"
	"github.com/xraph/tally/enrollment"
	"github.com/xraph/tally/id"
)

// MarkRequest is one attendance mark.
type MarkRequest struct {
	StudentID id.StudentID    `json:"studentId"`
	Status    attendance.Mark `json:"status" validate:"required,oneof=present absent late excused"`
	Notes     string          `json:"notes,omitempty"`
	MarkedBy  string          `json:"markedBy"`
}

// CreateAttendanceSession schedules a class meeting of a batch. The batch
// must exist.
func (t *Tally) CreateAttendanceSession(ctx context.Context, s *attendance.Session) error {
	if _, err := t.store.GetBatch(ctx, s.BatchID); err != nil {
		return err
	}
	t.stamp(&s.ID, id.NewSessionID, &s.Entity)
	if s.Date.IsZero() {
		s.Date = t.now()
	}
	s.Records = nil
	if err := t.check(s); err != nil {
		return err
	}
	return t.store.CreateSession(ctx, s)
}

// MarkAttendance records a student's mark in a session. An existing mark
// is overwritten in place; otherwise a record is bound to the student's
// enrollment in the session's batch, and ErrEnrollmentNotFound is returned
// when there is none.
func (t *Tally) MarkAttendance(ctx context.Context, sessionID id.SessionID, req MarkRequest) (*attendance.Session, error) {
	if err := t.check(req); err != nil {
		return nil, err
	}
	if req.MarkedBy == "" {
		req.MarkedBy = "Admin"
	}

	var s *attendance.Session
	err := t.atomically(ctx, func() error {
		var err error
		s, err = t.store.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}

		now := t.now()
		if i := s.RecordFor(req.StudentID); i >= 0 {
			r := &s.Records[i]
			r.Status = req.Status
			r.Notes = req.Notes
			r.MarkedBy = req.MarkedBy
			r.CreatedAt = now
		} else {
			enrolled, err := t.store.ListEnrollments(ctx, enrollment.ListOpts{
				StudentID: req.StudentID,
				BatchID:   s.BatchID,
				Limit:     1,
			})
			if err != nil {
				return err
			}
			if len(enrolled) == 0 {
				return fmt.Errorf("%w: student %s in batch %s", ErrEnrollmentNotFound, req.StudentID, s.BatchID)
			}
			s.Records = append(s.Records, attendance.Record{
				ID:           id.NewRecordID(),
				EnrollmentID: enrolled[0].ID,
				StudentID:    req.StudentID,
				BatchID:      s.BatchID,
				Date:         s.Date,
				Status:       req.Status,
				Notes:        req.Notes,
				MarkedBy:     req.MarkedBy,
				CreatedAt:    now,
			})
		}

		s.TouchAt(now)
		return t.store.UpdateSession(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetAttendanceSession retrieves a session with its marks.
func (t *Tally) GetAttendanceSession(ctx context.Context, sessionID id.SessionID) (*attendance.Session, error) {
	return t.store.GetSession(ctx, sessionID)
}

// ListAttendanceSessions lists sessions in the order they were created.
func (t *Tally) ListAttendanceSessions(ctx context.Context, opts attendance.ListOpts) ([]*attendance.Session, error) {
	return t.store.ListSessions(ctx, opts)
}

// DeleteAttendanceSession removes a session and its marks.
func (t *Tally) DeleteAttendanceSession(ctx context.Context, sessionID id.SessionID) error {
	return t.store.DeleteSession(ctx, sessionID)
}
