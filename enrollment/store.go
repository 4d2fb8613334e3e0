package enrollment

import (
	"context"

	"github.com/xraph/tally/id"
)

type Store interface {
	Create(ctx context.Context, e *Enrollment) error
	Get(ctx context.Context, enrollmentID id.EnrollmentID) (*Enrollment, error)
	List(ctx context.Context, opts ListOpts) ([]*Enrollment, error)
	Update(ctx context.Context, e *Enrollment) error
	Delete(ctx context.Context, enrollmentID id.EnrollmentID) error
}

type AdmissionStore interface {
	Create(ctx context.Context, a *Admission) error
	Get(ctx context.Context, admissionID id.AdmissionID) (*Admission, error)
	List(ctx context.Context, opts AdmissionListOpts) ([]*Admission, error)
	Update(ctx context.Context, a *Admission) error
	Delete(ctx context.Context, admissionID id.AdmissionID) error
}

type ListOpts struct {
	StudentID id.StudentID
	CourseID  id.CourseID
	BatchID   id.BatchID
	Status    Status
	Limit     int
	Offset    int
}

type AdmissionListOpts struct {
	StudentID id.StudentID
	BatchID   id.BatchID
	Status    AdmissionStatus
	Limit     int
	Offset    int
}
