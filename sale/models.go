// Package sale defines point-of-sale transactions.
package sale

import (
	"github.com/shopspring/decimal"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
)

// Sale is immutable once recorded. Completed sales have already moved stock
// and the customer's running total.
type Sale struct {
	types.Entity
	ID            id.SaleID     `json:"id"`
	CustomerID    id.CustomerID `json:"customerId"`
	Items         []Item        `json:"items" validate:"required,min=1,dive"`
	Subtotal      types.Money   `json:"subtotal"`
	Tax           types.Money   `json:"tax"`
	Discount      types.Money   `json:"discount" validate:"min=0"`
	Total         types.Money   `json:"total"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=cash card transfer"`
	Status        Status        `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
}

// Item is a sale line.
type Item struct {
	ProductID id.ProductID `json:"productId"`
	Quantity  int64        `json:"quantity" validate:"min=1"`
	UnitPrice types.Money  `json:"unitPrice" validate:"min=0"`
	Total     types.Money  `json:"total"`

	// Taken is the quantity actually removed from stock when the sale was
	// recorded, which is less than Quantity when stock ran out. Sales
	// restored from older backups leave it nil.
	Taken *int64 `json:"taken,omitempty"`
}

// Moved returns the stock the line took, which a deletion gives back.
func (it Item) Moved() int64 {
	if it.Taken != nil {
		return *it.Taken
	}
	return it.Quantity
}

// Completed reports whether the sale affects stock and customer totals.
func (s *Sale) Completed() bool {
	return s.Status == StatusCompleted
}

// Price fills in any totals left at zero: line totals from quantity and unit
// price, the subtotal from the lines, tax at the given rate, and the total as
// subtotal + tax - discount. Totals the caller already set are kept.
func (s *Sale) Price(taxRate decimal.Decimal) {
	var subtotal types.Money
	for i := range s.Items {
		it := &s.Items[i]
		if it.Total.IsZero() {
			it.Total = it.UnitPrice.Multiply(it.Quantity)
		}
		subtotal = subtotal.Add(it.Total)
	}
	if s.Subtotal.IsZero() {
		s.Subtotal = subtotal
	}
	if s.Tax.IsZero() {
		s.Tax = s.Subtotal.MulRate(taxRate)
	}
	if s.Total.IsZero() {
		s.Total = s.Subtotal.Add(s.Tax).Subtract(s.Discount)
	}
}

// Quantities returns the total quantity sold per product.
func (s *Sale) Quantities() map[id.ProductID]int64 {
	out := make(map[id.ProductID]int64, len(s.Items))
	for _, it := range s.Items {
		out[it.ProductID] += it.Quantity
	}
	return out
}
