package tally

import (
	"context"
	"fmt"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/purchase"
)

// RecordPurchase stores a supplier order. An empty status means pending. A
// purchase recorded as received books its quantities into stock at once.
func (t *Tally) RecordPurchase(ctx context.Context, p *purchase.Purchase) error {
	t.stamp(&p.ID, id.NewPurchaseID, &p.Entity)
	if p.Status == "" {
		p.Status = purchase.StatusPending
	}
	p.Price()
	if err := t.check(p); err != nil {
		return err
	}

	var moves []*stockMove
	err := t.atomically(ctx, func() error {
		if p.Status == purchase.StatusReceived {
			at := t.now()
			p.ReceivedAt = &at
		}
		if err := t.store.CreatePurchase(ctx, p); err != nil {
			return err
		}
		if p.Status != purchase.StatusReceived {
			return nil
		}
		var err error
		moves, err = t.movePurchaseStock(ctx, p)
		return err
	})
	if err != nil {
		return err
	}

	t.announceStock(ctx, moves...)
	if p.Status == purchase.StatusReceived {
		t.plugins.EmitPurchaseReceived(ctx, p)
	}
	return nil
}

// ReceivePurchase marks a pending purchase received and books its stock.
// A purchase is received at most once.
func (t *Tally) ReceivePurchase(ctx context.Context, purchaseID id.PurchaseID) (*purchase.Purchase, error) {
	var (
		p     *purchase.Purchase
		moves []*stockMove
	)
	err := t.atomically(ctx, func() error {
		var err error
		p, err = t.store.GetPurchase(ctx, purchaseID)
		if err != nil {
			return err
		}
		switch p.Status {
		case purchase.StatusReceived:
			return ErrAlreadyReceived
		case purchase.StatusCancelled:
			return fmt.Errorf("%w: purchase is cancelled", ErrInvalidInput)
		}

		at := t.now()
		p.Status = purchase.StatusReceived
		p.ReceivedAt = &at
		p.TouchAt(at)
		if err := t.store.UpdatePurchase(ctx, p); err != nil {
			return err
		}
		moves, err = t.movePurchaseStock(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("purchase received",
		"purchase_id", p.ID.String(),
		"supplier_id", p.SupplierID.String(),
		"items", len(p.Items),
	)
	t.announceStock(ctx, moves...)
	t.plugins.EmitPurchaseReceived(ctx, p)
	return p, nil
}

// GetPurchase retrieves a purchase by ID.
func (t *Tally) GetPurchase(ctx context.Context, purchaseID id.PurchaseID) (*purchase.Purchase, error) {
	return t.store.GetPurchase(ctx, purchaseID)
}

// ListPurchases lists purchases in insertion order.
func (t *Tally) ListPurchases(ctx context.Context, opts purchase.ListOpts) ([]*purchase.Purchase, error) {
	return t.store.ListPurchases(ctx, opts)
}

// DeletePurchase removes a purchase record. Stock already booked stays.
func (t *Tally) DeletePurchase(ctx context.Context, purchaseID id.PurchaseID) error {
	return t.store.DeletePurchase(ctx, purchaseID)
}

func (t *Tally) movePurchaseStock(ctx context.Context, p *purchase.Purchase) ([]*stockMove, error) {
	moves := make([]*stockMove, 0, len(p.Items))
	for _, it := range p.Items {
		m, err := t.applyStock(ctx, it.ProductID, it.Quantity, "purchase")
		if IsNotFound(err) {
			t.logger.Warn("purchase references unknown product",
				"purchase_id", p.ID.String(),
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
