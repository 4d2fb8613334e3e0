// Package invoice defines invoices issued for point-of-sale sales.
package invoice

import (
	"time"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/sale"
	"github.com/xraph/tally/types"
)

type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Invoice is a copy of a sale's lines and totals with payment terms.
type Invoice struct {
	types.Entity
	ID            id.InvoiceID  `json:"id"`
	InvoiceNumber string        `json:"invoiceNumber"`
	SaleID        id.SaleID     `json:"saleId"`
	CustomerID    id.CustomerID `json:"customerId"`
	Items         []sale.Item   `json:"items"`
	Subtotal      types.Money   `json:"subtotal"`
	Tax           types.Money   `json:"tax"`
	Discount      types.Money   `json:"discount"`
	Total         types.Money   `json:"total"`
	DueDate       time.Time     `json:"dueDate"`
	Status        Status        `json:"status" validate:"omitempty,oneof=draft sent paid overdue"`
}

// IsOverdue reports whether the invoice is unpaid past its due date.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.Status != StatusPaid && now.After(inv.DueDate)
}

// FromSale builds a draft invoice for s due at dueDate.
func FromSale(s *sale.Sale, number string, dueDate time.Time) *Invoice {
	items := make([]sale.Item, len(s.Items))
	copy(items, s.Items)
	for i := range items {
		items[i].Taken = nil
	}

	return &Invoice{
		InvoiceNumber: number,
		SaleID:        s.ID,
		CustomerID:    s.CustomerID,
		Items:         items,
		Subtotal:      s.Subtotal,
		Tax:           s.Tax,
		Discount:      s.Discount,
		Total:         s.Total,
		DueDate:       dueDate,
		Status:        StatusDraft,
	}
}
