package sale

import (
	"context"
	"time"

	"github.com/xraph/tally/id"
)

type Store interface {
	Create(ctx context.Context, s *Sale) error
	Get(ctx context.Context, saleID id.SaleID) (*Sale, error)
	List(ctx context.Context, opts ListOpts) ([]*Sale, error)
	Delete(ctx context.Context, saleID id.SaleID) error
}

type ListOpts struct {
	CustomerID id.CustomerID
	Status     Status
	Start      time.Time
	End        time.Time
	Limit      int
	Offset     int
}
