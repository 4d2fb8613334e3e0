package purchase

import (
	"context"

	"github.com/xraph/tally/id"
)

type Store interface {
	Create(ctx context.Context, p *Purchase) error
	Get(ctx context.Context, purchaseID id.PurchaseID) (*Purchase, error)
	List(ctx context.Context, opts ListOpts) ([]*Purchase, error)
	Update(ctx context.Context, p *Purchase) error
	Delete(ctx context.Context, purchaseID id.PurchaseID) error
}

type ListOpts struct {
	SupplierID id.SupplierID
	Status     Status
	Limit      int
	Offset     int
}
