// Package product defines inventory items and their stock levels.
package product

import (
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

type Category string

const (
	CategoryLaptop    Category = "laptop"
	CategoryComponent Category = "component"
	CategoryCourse    Category = "course"
	CategoryAccessory Category = "accessory"
)

// Product is a stocked item. Stock never goes below zero.
type Product struct {
	types.Entity
	ID             id.ProductID  `json:"id"`
	Name           string        `json:"name" validate:"required"`
	Category       Category      `json:"category" validate:"omitempty,oneof=laptop component course accessory"`
	SKU            string        `json:"sku"`
	Description    string        `json:"description"`
	BuyingPrice    types.Money   `json:"buyingPrice" validate:"min=0"`
	SellingPrice   types.Money   `json:"sellingPrice" validate:"min=0"`
	Stock          int64         `json:"stock" validate:"min=0"`
	MinStock       int64         `json:"minStock" validate:"min=0"`
	SupplierID     id.SupplierID `json:"supplierId"`
	WarrantyPeriod int           `json:"warrantyPeriod"` // months
}

// IsLowStock reports whether the product is at or below its reorder level.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// AdjustStock adds delta to the stock, flooring the result at zero. It
// returns the previous stock level.
func (p *Product) AdjustStock(delta int64) int64 {
	before := p.Stock
	p.Stock = max(0, p.Stock+delta)
	return before
}

// Margin returns the per-unit profit at the current prices.
func (p *Product) Margin() types.Money {
	return p.SellingPrice.Subtract(p.BuyingPrice)
}
