package supplier

import (
	"context"

	"github.com/xraph/tally/id"
)

type Store interface {
	Create(ctx context.Context, s *Supplier) error
	Get(ctx context.Context, supplierID id.SupplierID) (*Supplier, error)
	List(ctx context.Context, opts ListOpts) ([]*Supplier, error)
	Update(ctx context.Context, s *Supplier) error
	Delete(ctx context.Context, supplierID id.SupplierID) error
}

type ListOpts struct {
	Limit  int
	Offset int
}
