package product

import (
	"context"

	"github.com/xraph/tally/id"
)

type Store interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, productID id.ProductID) (*Product, error)
	List(ctx context.Context, opts ListOpts) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, productID id.ProductID) error
}

type ListOpts struct {
	Category   Category
	SupplierID id.SupplierID
	LowStock   bool
	Limit      int
	Offset     int
}
