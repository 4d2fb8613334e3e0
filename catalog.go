package tally

import (
	"context"

	"github.com/xraph/tally/customer"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/product"
	"github.com/xraph/tally/supplier"
	"github.com/xraph/tally/types"
)

// ──────────────────────────────────────────────────
// Products
// ──────────────────────────────────────────────────

// CreateProduct adds a product to the catalogue.
func (t *Tally) CreateProduct(ctx context.Context, p *product.Product) error {
	t.stamp(&p.ID, id.NewProductID, &p.Entity)
	if err := t.check(p); err != nil {
		return err
	}
	return t.store.CreateProduct(ctx, p)
}

// GetProduct retrieves a product by ID.
func (t *Tally) GetProduct(ctx context.Context, productID id.ProductID) (*product.Product, error) {
	return t.store.GetProduct(ctx, productID)
}

// ListProducts lists products in insertion order.
func (t *Tally) ListProducts(ctx context.Context, opts product.ListOpts) ([]*product.Product, error) {
	return t.store.ListProducts(ctx, opts)
}

// UpdateProduct applies fn to the stored product.
func (t *Tally) UpdateProduct(ctx context.Context, productID id.ProductID, fn func(*product.Product)) (*product.Product, error) {
	return modify(ctx, t, productID, t.store.GetProduct, t.store.UpdateProduct,
		func(p *product.Product) (*id.ID, *types.Entity) { return &p.ID, &p.Entity }, fn)
}

// DeleteProduct removes a product. Deleting a missing product is a no-op.
func (t *Tally) DeleteProduct(ctx context.Context, productID id.ProductID) error {
	return t.store.DeleteProduct(ctx, productID)
}

// AdjustStock adds delta to the product's stock, flooring it at zero.
func (t *Tally) AdjustStock(ctx context.Context, productID id.ProductID, delta int64) (*product.Product, error) {
	var move *stockMove
	err := t.atomically(ctx, func() error {
		var err error
		move, err = t.applyStock(ctx, productID, delta, "adjustment")
		return err
	})
	if err != nil {
		return nil, err
	}

	t.announceStock(ctx, move)
	return move.product, nil
}

// LowStockProducts lists products at or below their reorder level.
func (t *Tally) LowStockProducts(ctx context.Context) ([]*product.Product, error) {
	return t.store.ListProducts(ctx, product.ListOpts{LowStock: true})
}

// stockMove records one stock change so it can be announced after the
// lock is released.
type stockMove struct {
	product *product.Product
	before  int64
	reason  string
}

// applyStock adds delta to a product's stock, floored at zero. The caller
// holds the lock.
func (t *Tally) applyStock(ctx context.Context, productID id.ProductID, delta int64, reason string) (*stockMove, error) {
	p, err := t.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	before := p.AdjustStock(delta)
	p.TouchAt(t.now())
	if err := t.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}

	if before+delta < 0 {
		t.logger.Warn("stock floored at zero",
			"product_id", productID.String(),
			"stock", before,
			"delta", delta,
			"reason", reason,
		)
	}
	return &stockMove{product: p, before: before, reason: reason}, nil
}

func (t *Tally) announceStock(ctx context.Context, moves ...*stockMove) {
	for _, m := range moves {
		if m == nil {
			continue
		}
		t.plugins.EmitStockChanged(ctx, m.product.ID, m.before, m.product.Stock, m.reason)
		if m.product.IsLowStock() && m.product.Stock < m.before {
			t.plugins.EmitLowStock(ctx, m.product)
		}
	}
}

// ──────────────────────────────────────────────────
// Customers
// ──────────────────────────────────────────────────

// CreateCustomer adds a customer. TotalPurchases is kept as given so
// imported customers retain their history.
func (t *Tally) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	t.stamp(&c.ID, id.NewCustomerID, &c.Entity)
	if err := t.check(c); err != nil {
		return err
	}
	return t.store.CreateCustomer(ctx, c)
}

// GetCustomer retrieves a customer by ID.
func (t *Tally) GetCustomer(ctx context.Context, customerID id.CustomerID) (*customer.Customer, error) {
	return t.store.GetCustomer(ctx, customerID)
}

// ListCustomers lists customers in insertion order.
func (t *Tally) ListCustomers(ctx context.Context, opts customer.ListOpts) ([]*customer.Customer, error) {
	return t.store.ListCustomers(ctx, opts)
}

// UpdateCustomer applies fn to the stored customer.
func (t *Tally) UpdateCustomer(ctx context.Context, customerID id.CustomerID, fn func(*customer.Customer)) (*customer.Customer, error) {
	return modify(ctx, t, customerID, t.store.GetCustomer, t.store.UpdateCustomer,
		func(c *customer.Customer) (*id.ID, *types.Entity) { return &c.ID, &c.Entity }, fn)
}

// DeleteCustomer removes a customer. Their sales keep the dangling ID.
func (t *Tally) DeleteCustomer(ctx context.Context, customerID id.CustomerID) error {
	return t.store.DeleteCustomer(ctx, customerID)
}

// ──────────────────────────────────────────────────
// Suppliers
// ──────────────────────────────────────────────────

func (t *Tally) CreateSupplier(ctx context.Context, s *supplier.Supplier) error {
	t.stamp(&s.ID, id.NewSupplierID, &s.Entity)
	if err := t.check(s); err != nil {
		return err
	}
	return t.store.CreateSupplier(ctx, s)
}

func (t *Tally) GetSupplier(ctx context.Context, supplierID id.SupplierID) (*supplier.Supplier, error) {
	return t.store.GetSupplier(ctx, supplierID)
}

func (t *Tally) ListSuppliers(ctx context.Context, opts supplier.ListOpts) ([]*supplier.Supplier, error) {
	return t.store.ListSuppliers(ctx, opts)
}

func (t *Tally) UpdateSupplier(ctx context.Context, supplierID id.SupplierID, fn func(*supplier.Supplier)) (*supplier.Supplier, error) {
	return modify(ctx, t, supplierID, t.store.GetSupplier, t.store.UpdateSupplier,
		func(s *supplier.Supplier) (*id.ID, *types.Entity) { return &s.ID, &s.Entity }, fn)
}

func (t *Tally) DeleteSupplier(ctx context.Context, supplierID id.SupplierID) error {
	return t.store.DeleteSupplier(ctx, supplierID)
}
