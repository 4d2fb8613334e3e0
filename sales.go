package tally

import (
	"context"
	"fmt"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/invoice"
	"github.com/xraph/tally/sale"
	"github.com/xraph/tally/types"
)

// ──────────────────────────────────────────────────
// Sales
// ──────────────────────────────────────────────────

// RecordSale stores a sale. Missing totals are computed at the configured
// tax rate and an empty status means completed. A completed sale takes its
// quantities out of stock (floored at zero unless the StockReject policy is
// set) and adds its total to the customer's purchases. Unknown products and
// customers are skipped with a warning.
func (t *Tally) RecordSale(ctx context.Context, s *sale.Sale) error {
	t.stamp(&s.ID, id.NewSaleID, &s.Entity)
	if s.Status == "" {
		s.Status = sale.StatusCompleted
	}
	if s.PaymentMethod == "" {
		s.PaymentMethod = sale.MethodCash
	}
	s.Price(t.taxRate)
	if err := t.check(s); err != nil {
		return err
	}

	var moves []*stockMove
	err := t.atomically(ctx, func() error {
		if s.Completed() && t.stockPolicy == StockReject {
			if err := t.ensureStock(ctx, s.Quantities()); err != nil {
				return err
			}
		}

		for i := range s.Items {
			s.Items[i].Taken = nil
		}
		if s.Completed() {
			if err := t.measureSaleStock(ctx, s); err != nil {
				return err
			}
		}

		if err := t.store.CreateSale(ctx, s); err != nil {
			return err
		}
		if !s.Completed() {
			return nil
		}

		var err error
		moves, err = t.moveSaleStock(ctx, s, -1, "sale")
		if err != nil {
			return err
		}
		return t.addPurchases(ctx, s, s.Total)
	})
	if err != nil {
		return err
	}

	t.logger.Info("sale recorded",
		"sale_id", s.ID.String(),
		"customer_id", s.CustomerID.String(),
		"total", s.Total.String(),
		"status", string(s.Status),
	)
	t.announceStock(ctx, moves...)
	t.plugins.EmitSaleRecorded(ctx, s)
	return nil
}

// GetSale retrieves a sale by ID.
func (t *Tally) GetSale(ctx context.Context, saleID id.SaleID) (*sale.Sale, error) {
	return t.store.GetSale(ctx, saleID)
}

// ListSales lists sales in insertion order.
func (t *Tally) ListSales(ctx context.Context, opts sale.ListOpts) ([]*sale.Sale, error) {
	return t.store.ListSales(ctx, opts)
}

// DeleteSale reverses a completed sale's stock and customer effects and
// removes it. Deleting a missing sale is a no-op.
func (t *Tally) DeleteSale(ctx context.Context, saleID id.SaleID) error {
	var (
		deleted *sale.Sale
		moves   []*stockMove
	)
	err := t.atomically(ctx, func() error {
		s, err := t.store.GetSale(ctx, saleID)
		if IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}

		if s.Completed() {
			if moves, err = t.moveSaleStock(ctx, s, 1, "sale reversal"); err != nil {
				return err
			}
			if err := t.addPurchases(ctx, s, s.Total.Negate()); err != nil {
				return err
			}
		}
		if err := t.store.DeleteSale(ctx, saleID); err != nil {
			return err
		}
		deleted = s
		return nil
	})
	if err != nil || deleted == nil {
		return err
	}

	t.announceStock(ctx, moves...)
	t.plugins.EmitSaleDeleted(ctx, deleted)
	return nil
}

// ensureStock fails when any product lacks the requested quantity.
func (t *Tally) ensureStock(ctx context.Context, want map[id.ProductID]int64) error {
	for productID, qty := range want {
		p, err := t.store.GetProduct(ctx, productID)
		if IsNotFound(err) {
			continue
		}
		if err != nil {
			return err
		}
		if p.Stock < qty {
			return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientStock, p.Name, p.Stock, qty)
		}
	}
	return nil
}

// measureSaleStock sets each line's Taken to what the current stock can
// give, so the stock floor holds and a deletion returns exactly that. The
// caller holds the lock.
func (t *Tally) measureSaleStock(ctx context.Context, s *sale.Sale) error {
	left := make(map[id.ProductID]int64)
	for i := range s.Items {
		it := &s.Items[i]
		stock, seen := left[it.ProductID]
		if !seen {
			p, err := t.store.GetProduct(ctx, it.ProductID)
			if IsNotFound(err) {
				var none int64
				it.Taken = &none
				continue
			}
			if err != nil {
				return err
			}
			stock = p.Stock
		}

		taken := min(it.Quantity, stock)
		if taken < it.Quantity {
			t.logger.Warn("stock floored at zero",
				"sale_id", s.ID.String(),
				"product_id", it.ProductID.String(),
				"stock", stock,
				"quantity", it.Quantity,
			)
		}
		left[it.ProductID] = stock - taken
		it.Taken = &taken
	}
	return nil
}

// moveSaleStock applies sign × the stock each sale line moved.
func (t *Tally) moveSaleStock(ctx context.Context, s *sale.Sale, sign int64, reason string) ([]*stockMove, error) {
	moves := make([]*stockMove, 0, len(s.Items))
	for _, it := range s.Items {
		m, err := t.applyStock(ctx, it.ProductID, sign*it.Moved(), reason)
		if IsNotFound(err) {
			t.logger.Warn("sale references unknown product",
				"sale_id", s.ID.String(),
				"product_id", it.ProductID.String(),
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, nil
}

// addPurchases adds amount to the customer's running total, floored at
// zero.
func (t *Tally) addPurchases(ctx context.Context, s *sale.Sale, amount Money) error {
	if s.CustomerID.IsNil() {
		return nil
	}
	c, err := t.store.GetCustomer(ctx, s.CustomerID)
	if IsNotFound(err) {
		t.logger.Warn("sale references unknown customer",
			"sale_id", s.ID.String(),
			"customer_id", s.CustomerID.String(),
		)
		return nil
	}
	if err != nil {
		return err
	}

	c.TotalPurchases = c.TotalPurchases.Add(amount).FloorZero()
	c.TouchAt(t.now())
	return t.store.UpdateCustomer(ctx, c)
}

// ──────────────────────────────────────────────────
// Sale invoices
// ──────────────────────────────────────────────────

// GenerateInvoice issues a draft invoice copying the sale's lines and
// totals, due after the configured invoice terms.
func (t *Tally) GenerateInvoice(ctx context.Context, saleID id.SaleID) (*invoice.Invoice, error) {
	s, err := t.store.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	inv := invoice.FromSale(s, t.number("INV"), t.dueDate())
	t.stamp(&inv.ID, id.NewInvoiceID, &inv.Entity)
	if err := t.store.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	t.plugins.EmitInvoiceGenerated(ctx, inv)
	return inv, nil
}

// GetInvoice retrieves a sale invoice by ID.
func (t *Tally) GetInvoice(ctx context.Context, invID id.InvoiceID) (*invoice.Invoice, error) {
	return t.store.GetInvoice(ctx, invID)
}

// ListInvoices lists sale invoices.
func (t *Tally) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	return t.store.ListInvoices(ctx, opts)
}

// UpdateInvoice applies fn to the stored invoice, typically to change its
// status.
func (t *Tally) UpdateInvoice(ctx context.Context, invID id.InvoiceID, fn func(*invoice.Invoice)) (*invoice.Invoice, error) {
	return modify(ctx, t, invID, t.store.GetInvoice, t.store.UpdateInvoice,
		func(inv *invoice.Invoice) (*id.ID, *types.Entity) { return &inv.ID, &inv.Entity }, fn)
}

// DeleteInvoice removes an invoice.
func (t *Tally) DeleteInvoice(ctx context.Context, invID id.InvoiceID) error {
	return t.store.DeleteInvoice(ctx, invID)
}
