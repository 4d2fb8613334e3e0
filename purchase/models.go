// Package purchase defines stock purchases from suppliers.
package purchase

import (
	"time"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// Purchase is a supplier order. Receiving it adds its quantities to stock.
type Purchase struct {
	types.Entity
	ID         id.PurchaseID `json:"id"`
	SupplierID id.SupplierID `json:"supplierId"`
	Items      []Item        `json:"items" validate:"required,min=1,dive"`
	Total      types.Money   `json:"total"`
	Status     Status        `json:"status" validate:"omitempty,oneof=pending received cancelled"`
	ReceivedAt *time.Time    `json:"receivedAt,omitempty"`
}

type Item struct {
	ProductID id.ProductID `json:"productId"`
	Quantity  int64        `json:"quantity" validate:"min=1"`
	UnitPrice types.Money  `json:"unitPrice" validate:"min=0"`
	Total     types.Money  `json:"total"`
}

// Price fills in zero line totals and a zero order total.
func (p *Purchase) Price() {
	var total types.Money
	for i := range p.Items {
		it := &p.Items[i]
		if it.Total.IsZero() {
			it.Total = it.UnitPrice.Multiply(it.Quantity)
		}
		total = total.Add(it.Total)
	}
	if p.Total.IsZero() {
		p.Total = total
	}
}
