package tally

import (
	"context"
	"fmt"

	"github.com/xraph/tally/course"
	"github.com/xraph/tally/enrollment"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/payment"
)

// Enroll creates an enrollment priced from the course and the selected
// fees, takes a seat in the batch and records the initial payment, if any,
// together with its voucher.
//
// A student may hold at most one active enrollment per course. Fee flags
// start false; selecting a fee only adds it to the total.
func (t *Tally) Enroll(ctx context.Context, req enrollment.Request) (*enrollment.Enrollment, error) {
	if req.Status == "" {
		req.Status = enrollment.StatusActive
	}
	if err := t.check(req); err != nil {
		return nil, err
	}

	var (
		e       *enrollment.Enrollment
		initial *recordedPayment
	)
	err := t.atomically(ctx, func() error {
		if req.Status == enrollment.StatusActive {
			if err := t.ensureNoActiveEnrollment(ctx, req.StudentID, req.CourseID); err != nil {
				return err
			}
		}

		c, err := t.store.GetCourse(ctx, req.CourseID)
		if err != nil {
			return err
		}
		b, err := t.store.GetBatch(ctx, req.BatchID)
		if err != nil {
			return err
		}
		if !b.HasSeat() {
			return fmt.Errorf("%w: %s has %d of %d seats taken", ErrBatchFull, b.BatchName, b.CurrentStudents, b.MaxStudents)
		}

		total := c.TotalFee(req.Fees)
		e = &enrollment.Enrollment{
			StudentID:       req.StudentID,
			CourseID:        req.CourseID,
			BatchID:         req.BatchID,
			EnrollmentDate:  req.EnrollmentDate,
			TotalFee:        total,
			RemainingAmount: total,
			Status:          req.Status,
		}
		t.stamp(&e.ID, id.NewEnrollmentID, &e.Entity)
		if e.EnrollmentDate.IsZero() {
			e.EnrollmentDate = t.now()
		}

		// The initial payment is checked before anything is written so a
		// refused payment leaves no enrollment or seat behind.
		var first *payment.Payment
		if req.InitialPayment.IsPositive() {
			method := req.PaymentMethod
			if method == "" {
				method = payment.MethodCash
			}
			first = &payment.Payment{
				EnrollmentID:  e.ID,
				StudentID:     e.StudentID,
				PaymentType:   payment.TypeEnrollment,
				Amount:        req.InitialPayment,
				PaymentMethod: method,
				PaymentDate:   e.EnrollmentDate,
				Description:   "Initial payment",
				ReceivedBy:    req.ReceivedBy,
			}
			if err := t.preparePayment(ctx, first); err != nil {
				return err
			}
			if err := t.checkPayment(e, first); err != nil {
				return err
			}
		}

		if err := t.store.CreateEnrollment(ctx, e); err != nil {
			return err
		}
		if err := t.takeSeat(ctx, b, 1); err != nil {
			return err
		}
		if first == nil {
			return nil
		}

		initial, err = t.applyPayment(ctx, e, first, true)
		if err != nil {
			return err
		}
		e = initial.enrollment
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("student enrolled",
		"enrollment_id", e.ID.String(),
		"student_id", e.StudentID.String(),
		"batch_id", e.BatchID.String(),
		"total_fee", e.TotalFee.String(),
	)
	t.plugins.EmitEnrolled(ctx, e)
	if initial != nil {
		t.announcePayment(ctx, initial)
	}
	return e, nil
}

// GetEnrollment retrieves an enrollment by ID.
func (t *Tally) GetEnrollment(ctx context.Context, enrollmentID id.EnrollmentID) (*enrollment.Enrollment, error) {
	return t.store.GetEnrollment(ctx, enrollmentID)
}

// ListEnrollments lists enrollments in insertion order.
func (t *Tally) ListEnrollments(ctx context.Context, opts enrollment.ListOpts) ([]*enrollment.Enrollment, error) {
	return t.store.ListEnrollments(ctx, opts)
}

// SetEnrollmentStatus changes an enrollment's status. Reactivating an
// enrollment is refused when the student already holds another active one
// in the same course. The batch seat is kept in every status.
func (t *Tally) SetEnrollmentStatus(ctx context.Context, enrollmentID id.EnrollmentID, status enrollment.Status) (*enrollment.Enrollment, error) {
	if err := t.check(enrollment.StatusChange{Status: status}); err != nil {
		return nil, err
	}

	var e *enrollment.Enrollment
	err := t.atomically(ctx, func() error {
		var err error
		e, err = t.store.GetEnrollment(ctx, enrollmentID)
		if err != nil {
			return err
		}
		if e.Status == status {
			return nil
		}
		if status == enrollment.StatusActive {
			if err := t.ensureNoActiveEnrollment(ctx, e.StudentID, e.CourseID); err != nil {
				return err
			}
		}
		e.Status = status
		e.TouchAt(t.now())
		return t.store.UpdateEnrollment(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEnrollment frees the enrollment's batch seat and removes it. An
// enrollment with recorded payments is refused with
// ErrEnrollmentHasPayments; see DeleteEnrollmentCascade. Deleting a missing
// enrollment is a no-op.
func (t *Tally) DeleteEnrollment(ctx context.Context, enrollmentID id.EnrollmentID) error {
	return t.deleteEnrollment(ctx, enrollmentID, false)
}

// DeleteEnrollmentCascade removes the enrollment's payments and then the
// enrollment itself.
func (t *Tally) DeleteEnrollmentCascade(ctx context.Context, enrollmentID id.EnrollmentID) error {
	return t.deleteEnrollment(ctx, enrollmentID, true)
}

func (t *Tally) deleteEnrollment(ctx context.Context, enrollmentID id.EnrollmentID, cascade bool) error {
	var (
		deleted  *enrollment.Enrollment
		payments []*payment.Payment
	)
	err := t.atomically(ctx, func() error {
		e, err := t.store.GetEnrollment(ctx, enrollmentID)
		if IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}

		payments, err = t.store.ListPayments(ctx, payment.ListOpts{EnrollmentID: enrollmentID})
		if err != nil {
			return err
		}
		if len(payments) > 0 && !cascade {
			return fmt.Errorf("%w: %d payments reference %s", ErrEnrollmentHasPayments, len(payments), enrollmentID)
		}
		for _, p := range payments {
			if err := t.store.DeletePayment(ctx, p.ID); err != nil {
				return err
			}
		}

		b, err := t.store.GetBatch(ctx, e.BatchID)
		switch {
		case IsNotFound(err):
			t.logger.Warn("enrollment references unknown batch",
				"enrollment_id", e.ID.String(),
				"batch_id", e.BatchID.String(),
			)
		case err != nil:
			return err
		default:
			if err := t.takeSeat(ctx, b, -1); err != nil {
				return err
			}
		}

		if err := t.store.DeleteEnrollment(ctx, enrollmentID); err != nil {
			return err
		}
		deleted = e
		return nil
	})
	if err != nil || deleted == nil {
		return err
	}

	t.logger.Info("enrollment deleted",
		"enrollment_id", deleted.ID.String(),
		"payments_removed", len(payments),
	)
	for _, p := range payments {
		t.plugins.EmitPaymentDeleted(ctx, p)
	}
	t.plugins.EmitEnrollmentDeleted(ctx, deleted)
	return nil
}

// ensureNoActiveEnrollment fails when the student already holds an active
// enrollment in the course.
func (t *Tally) ensureNoActiveEnrollment(ctx context.Context, studentID id.StudentID, courseID id.CourseID) error {
	existing, err := t.store.ListEnrollments(ctx, enrollment.ListOpts{
		StudentID: studentID,
		CourseID:  courseID,
		Status:    enrollment.StatusActive,
	})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return ErrDuplicateActiveEnrollment
	}
	return nil
}

// takeSeat adds delta to the batch's CurrentStudents, floored at zero. The
// caller holds the lock.
func (t *Tally) takeSeat(ctx context.Context, b *course.Batch, delta int) error {
	b.CurrentStudents = max(b.CurrentStudents+delta, 0)
	b.TouchAt(t.now())
	return t.store.UpdateBatch(ctx, b)
}
