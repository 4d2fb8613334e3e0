// Package supplier defines the vendors stock is purchased from.
package supplier

import (
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

type Supplier struct {
	types.Entity
	ID       id.SupplierID  `json:"id"`
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email" validate:"omitempty,email"`
	Phone    string         `json:"phone"`
	Address  string         `json:"address"`
	Products []id.ProductID `json:"products"`
}
