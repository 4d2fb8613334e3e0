package tally

import (
	"context"
	"fmt"

	"github.com/xraph/tally/course"
	"github.com/xraph/tally/enrollment"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/student"
	"github.com/xraph/tally/types"
)

// ──────────────────────────────────────────────────
// Courses
// ──────────────────────────────────────────────────

// CreateCourse adds a course. An empty status means active.
func (t *Tally) CreateCourse(ctx context.Context, c *course.Course) error {
	t.stamp(&c.ID, id.NewCourseID, &c.Entity)
	if c.Status == "" {
		c.Status = course.StatusActive
	}
	if err := t.check(c); err != nil {
		return err
	}
	return t.store.CreateCourse(ctx, c)
}

func (t *Tally) GetCourse(ctx context.Context, courseID id.CourseID) (*course.Course, error) {
	return t.store.GetCourse(ctx, courseID)
}

func (t *Tally) ListCourses(ctx context.Context, opts course.ListOpts) ([]*course.Course, error) {
	return t.store.ListCourses(ctx, opts)
}

// UpdateCourse applies fn to the stored course. Fee changes do not reprice
// existing enrollments.
func (t *Tally) UpdateCourse(ctx context.Context, courseID id.CourseID, fn func(*course.Course)) (*course.Course, error) {
	return modify(ctx, t, courseID, t.store.GetCourse, t.store.UpdateCourse,
		func(c *course.Course) (*id.ID, *types.Entity) { return &c.ID, &c.Entity }, fn)
}

func (t *Tally) DeleteCourse(ctx context.Context, courseID id.CourseID) error {
	return t.store.DeleteCourse(ctx, courseID)
}

// ──────────────────────────────────────────────────
// Batches
// ──────────────────────────────────────────────────

// CreateBatch schedules a batch of an existing course. An empty status
// means upcoming and a zero capacity inherits the course's MaxStudents.
func (t *Tally) CreateBatch(ctx context.Context, b *course.Batch) error {
	c, err := t.store.GetCourse(ctx, b.CourseID)
	if err != nil {
		return err
	}

	t.stamp(&b.ID, id.NewBatchID, &b.Entity)
	if b.Status == "" {
		b.Status = course.BatchUpcoming
	}
	if b.MaxStudents == 0 {
		b.MaxStudents = c.MaxStudents
	}
	if err := t.check(b); err != nil {
		return err
	}
	return t.store.CreateBatch(ctx, b)
}

func (t *Tally) GetBatch(ctx context.Context, batchID id.BatchID) (*course.Batch, error) {
	return t.store.GetBatch(ctx, batchID)
}

func (t *Tally) ListBatches(ctx context.Context, opts course.BatchListOpts) ([]*course.Batch, error) {
	return t.store.ListBatches(ctx, opts)
}

// UpdateBatch applies fn to the stored batch. CurrentStudents is owned by
// the enrollment operations and cannot be changed here; status changes must
// follow upcoming → ongoing → completed, with cancellation allowed before
// completion.
func (t *Tally) UpdateBatch(ctx context.Context, batchID id.BatchID, fn func(*course.Batch)) (*course.Batch, error) {
	return modifyE(ctx, t, batchID, t.store.GetBatch, t.store.UpdateBatch,
		func(b *course.Batch) (*id.ID, *types.Entity) { return &b.ID, &b.Entity },
		func(b *course.Batch) error {
			before := *b
			fn(b)
			b.CurrentStudents = before.CurrentStudents
			if !before.CanTransition(b.Status) {
				return fmt.Errorf("%w: batch cannot move from %s to %s", ErrInvalidInput, before.Status, b.Status)
			}
			return nil
		})
}

func (t *Tally) DeleteBatch(ctx context.Context, batchID id.BatchID) error {
	return t.store.DeleteBatch(ctx, batchID)
}

// ──────────────────────────────────────────────────
// Students
// ──────────────────────────────────────────────────

func (t *Tally) CreateStudent(ctx context.Context, s *student.Student) error {
	t.stamp(&s.ID, id.NewStudentID, &s.Entity)
	if err := t.check(s); err != nil {
		return err
	}
	return t.store.CreateStudent(ctx, s)
}

func (t *Tally) GetStudent(ctx context.Context, studentID id.StudentID) (*student.Student, error) {
	return t.store.GetStudent(ctx, studentID)
}

func (t *Tally) ListStudents(ctx context.Context, opts student.ListOpts) ([]*student.Student, error) {
	return t.store.ListStudents(ctx, opts)
}

func (t *Tally) UpdateStudent(ctx context.Context, studentID id.StudentID, fn func(*student.Student)) (*student.Student, error) {
	return modify(ctx, t, studentID, t.store.GetStudent, t.store.UpdateStudent,
		func(s *student.Student) (*id.ID, *types.Entity) { return &s.ID, &s.Entity }, fn)
}

func (t *Tally) DeleteStudent(ctx context.Context, studentID id.StudentID) error {
	return t.store.DeleteStudent(ctx, studentID)
}

// ──────────────────────────────────────────────────
// Admissions
// ──────────────────────────────────────────────────

// CreateAdmission records an application. The admission date defaults to
// now, the fee to the course's admission fee and the status to pending.
func (t *Tally) CreateAdmission(ctx context.Context, a *enrollment.Admission) error {
	t.stamp(&a.ID, id.NewAdmissionID, &a.Entity)
	if a.AdmissionDate.IsZero() {
		a.AdmissionDate = t.now()
	}
	if a.Status == "" {
		a.Status = enrollment.AdmissionPending
	}
	if a.AdmissionFee.IsZero() && !a.CourseID.IsNil() {
		if c, err := t.store.GetCourse(ctx, a.CourseID); err == nil {
			a.AdmissionFee = c.AdmissionFee
		}
	}
	if err := t.check(a); err != nil {
		return err
	}
	return t.store.CreateAdmission(ctx, a)
}

func (t *Tally) GetAdmission(ctx context.Context, admissionID id.AdmissionID) (*enrollment.Admission, error) {
	return t.store.GetAdmission(ctx, admissionID)
}

func (t *Tally) ListAdmissions(ctx context.Context, opts enrollment.AdmissionListOpts) ([]*enrollment.Admission, error) {
	return t.store.ListAdmissions(ctx, opts)
}

func (t *Tally) UpdateAdmission(ctx context.Context, admissionID id.AdmissionID, fn func(*enrollment.Admission)) (*enrollment.Admission, error) {
	return modify(ctx, t, admissionID, t.store.GetAdmission, t.store.UpdateAdmission,
		func(a *enrollment.Admission) (*id.ID, *types.Entity) { return &a.ID, &a.Entity }, fn)
}

func (t *Tally) DeleteAdmission(ctx context.Context, admissionID id.AdmissionID) error {
	return t.store.DeleteAdmission(ctx, admissionID)
}
