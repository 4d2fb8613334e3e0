// Package customer defines point-of-sale customers.
package customer

import (
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

// Customer is a buyer. TotalPurchases is the running total of completed
// sale totals and is maintained by the sale operations.
type Customer struct {
	types.Entity
	ID             id.CustomerID `json:"id"`
	Name           string        `json:"name" validate:"required"`
	Email          string        `json:"email" validate:"omitempty,email"`
	Phone          string        `json:"phone"`
	Address        string        `json:"address"`
	TotalPurchases types.Money   `json:"totalPurchases"`
}
