package student

import (
	"context"

	"github.com/xraph/tally/id"
)

type Store interface {
	Create(ctx context.Context, s *Student) error
	Get(ctx context.Context, studentID id.StudentID) (*Student, error)
	List(ctx context.Context, opts ListOpts) ([]*Student, error)
	Update(ctx context.Context, s *Student) error
	Delete(ctx context.Context, studentID id.StudentID) error
}

type ListOpts struct {
	Search string
	Limit  int
	Offset int
}
