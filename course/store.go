package course

import (
	"context"

	"github.com/xraph/tally/id"
)

type Store interface {
	Create(ctx context.Context, c *Course) error
	Get(ctx context.Context, courseID id.CourseID) (*Course, error)
	List(ctx context.Context, opts ListOpts) ([]*Course, error)
	Update(ctx context.Context, c *Course) error
	Delete(ctx context.Context, courseID id.CourseID) error
}

type BatchStore interface {
	Create(ctx context.Context, b *Batch) error
	Get(ctx context.Context, batchID id.BatchID) (*Batch, error)
	List(ctx context.Context, opts BatchListOpts) ([]*Batch, error)
	Update(ctx context.Context, b *Batch) error
	Delete(ctx context.Context, batchID id.BatchID) error
}

type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}

type BatchListOpts struct {
	CourseID id.CourseID
	Status   BatchStatus
	Limit    int
	Offset   int
}
