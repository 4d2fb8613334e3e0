// Package report computes the dashboard summary across the shop, training
// centre and repair desk tables.
package report

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/xraph/tally/enrollment"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/payment"
	"github.com/xraph/tally/product"
	"github.com/xraph/tally/sale"
	"github.com/xraph/tally/service"
	"github.com/xraph/tally/types"
)

// TopSellerCount is the number of products listed in Summary.TopSellers.
const TopSellerCount = 5

// Source is the subset of store.Store a summary reads.
type Source interface {
	ListProducts(ctx context.Context, opts product.ListOpts) ([]*product.Product, error)
	ListSales(ctx context.Context, opts sale.ListOpts) ([]*sale.Sale, error)
	ListTickets(ctx context.Context, opts service.TicketListOpts) ([]*service.Ticket, error)
	ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error)
	ListEnrollments(ctx context.Context, opts enrollment.ListOpts) ([]*enrollment.Enrollment, error)
}

// Summary is a point-in-time view of the business.
type Summary struct {
	GeneratedAt time.Time `json:"generatedAt"`

	SalesCount     int         `json:"salesCount"`
	SalesRevenue   types.Money `json:"salesRevenue"`
	Profit         types.Money `json:"profit"`
	InventoryValue types.Money `json:"inventoryValue"`

	ServiceRevenue types.Money `json:"serviceRevenue"`
	PendingTickets int         `json:"pendingTickets"`

	CourseRevenue      types.Money `json:"courseRevenue"`
	OutstandingBalance types.Money `json:"outstandingBalance"`

	LowStock        []StockLine                `json:"lowStock"`
	TopSellers      []Seller                   `json:"topSellers"`
	UnitsByCategory map[product.Category]int64 `json:"unitsByCategory"`
}

// StockLine is a product at or below its reorder level.
type StockLine struct {
	ProductID id.ProductID `json:"productId"`
	Name      string       `json:"name"`
	Stock     int64        `json:"stock"`
	MinStock  int64        `json:"minStock"`
}

// Seller is a product ranked by units sold.
type Seller struct {
	ProductID id.ProductID `json:"productId"`
	Name      string       `json:"name"`
	Quantity  int64        `json:"quantity"`
	Revenue   types.Money  `json:"revenue"`
}

// Build computes a Summary from src. Only completed sales count; lines for
// products that no longer exist add to revenue but not to profit, rankings
// or categories.
func Build(ctx context.Context, src Source) (*Summary, error) {
	products, err := src.ListProducts(ctx, product.ListOpts{})
	if err != nil {
		return nil, err
	}
	sales, err := src.ListSales(ctx, sale.ListOpts{Status: sale.StatusCompleted})
	if err != nil {
		return nil, err
	}
	tickets, err := src.ListTickets(ctx, service.TicketListOpts{})
	if err != nil {
		return nil, err
	}
	payments, err := src.ListPayments(ctx, payment.ListOpts{})
	if err != nil {
		return nil, err
	}
	enrollments, err := src.ListEnrollments(ctx, enrollment.ListOpts{Status: enrollment.StatusActive})
	if err != nil {
		return nil, err
	}

	s := &Summary{
		GeneratedAt:     time.Now().UTC(),
		LowStock:        []StockLine{},
		TopSellers:      []Seller{},
		UnitsByCategory: map[product.Category]int64{},
	}

	byID := make(map[id.ProductID]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
		s.InventoryValue = s.InventoryValue.Add(p.BuyingPrice.Multiply(p.Stock))
		if p.IsLowStock() {
			s.LowStock = append(s.LowStock, StockLine{ProductID: p.ID, Name: p.Name, Stock: p.Stock, MinStock: p.MinStock})
		}
	}

	sold := map[id.ProductID]*Seller{}
	for _, sl := range sales {
		s.SalesCount++
		s.SalesRevenue = s.SalesRevenue.Add(sl.Total)
		for _, it := range sl.Items {
			p, ok := byID[it.ProductID]
			if !ok {
				continue
			}
			s.Profit = s.Profit.Add(it.UnitPrice.Subtract(p.BuyingPrice).Multiply(it.Quantity))
			s.UnitsByCategory[p.Category] += it.Quantity

			seller, ok := sold[p.ID]
			if !ok {
				seller = &Seller{ProductID: p.ID, Name: p.Name}
				sold[p.ID] = seller
			}
			seller.Quantity += it.Quantity
			seller.Revenue = seller.Revenue.Add(it.UnitPrice.Multiply(it.Quantity))
		}
	}
	for _, seller := range sold {
		s.TopSellers = append(s.TopSellers, *seller)
	}
	slices.SortFunc(s.TopSellers, func(a, b Seller) int {
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(s.TopSellers) > TopSellerCount {
		s.TopSellers = s.TopSellers[:TopSellerCount]
	}

	for _, t := range tickets {
		if t.Status.IsPending() {
			s.PendingTickets++
		}
		if t.CompletedDate != nil && t.Status != service.StatusCancelled {
			s.ServiceRevenue = s.ServiceRevenue.Add(t.ActualCost)
		}
	}

	for _, p := range payments {
		s.CourseRevenue = s.CourseRevenue.Add(p.Amount)
	}
	for _, e := range enrollments {
		if e.RemainingAmount.IsPositive() {
			s.OutstandingBalance = s.OutstandingBalance.Add(e.RemainingAmount)
		}
	}

	return s, nil
}
