// Package plugin provides an extensible plugin system for Tally.
// Plugins can hook into lifecycle and propagation events to extend
// functionality. Hooks run after the engine has committed the change.
package plugin

import (
	"context"

	"github.com/xraph/tally/enrollment"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/invoice"
	"github.com/xraph/tally/payment"
	"github.com/xraph/tally/product"
	"github.com/xraph/tally/purchase"
	"github.com/xraph/tally/sale"
	"github.com/xraph/tally/service"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts. engine is the *tally.Tally.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine any) error
}

// OnShutdown is called when the engine stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnSaleRecorded is called after a sale and its stock and customer effects
// are stored.
type OnSaleRecorded interface {
	Plugin
	OnSaleRecorded(ctx context.Context, s *sale.Sale) error
}

// OnSaleDeleted is called after a sale has been reversed and removed.
type OnSaleDeleted interface {
	Plugin
	OnSaleDeleted(ctx context.Context, s *sale.Sale) error
}

// OnStockChanged is called for every stock movement.
type OnStockChanged interface {
	Plugin
	OnStockChanged(ctx context.Context, productID id.ProductID, before, after int64, reason string) error
}

// OnLowStock is called when a movement leaves a product at or below its
// reorder level.
type OnLowStock interface {
	Plugin
	OnLowStock(ctx context.Context, p *product.Product) error
}

// OnPurchaseReceived is called when purchased stock is booked in.
type OnPurchaseReceived interface {
	Plugin
	OnPurchaseReceived(ctx context.Context, p *purchase.Purchase) error
}

// OnInvoiceGenerated is called when a sale invoice is issued.
type OnInvoiceGenerated interface {
	Plugin
	OnInvoiceGenerated(ctx context.Context, inv *invoice.Invoice) error
}

// ──────────────────────────────────────────────────
// Training centre hooks
// ──────────────────────────────────────────────────

// OnEnrolled is called after an enrollment has taken its seat.
type OnEnrolled interface {
	Plugin
	OnEnrolled(ctx context.Context, e *enrollment.Enrollment) error
}

// OnEnrollmentDeleted is called after an enrollment has released its seat.
type OnEnrollmentDeleted interface {
	Plugin
	OnEnrollmentDeleted(ctx context.Context, e *enrollment.Enrollment) error
}

// OnPaymentRecorded is called after a course payment is applied.
type OnPaymentRecorded interface {
	Plugin
	OnPaymentRecorded(ctx context.Context, p *payment.Payment) error
}

// OnPaymentDeleted is called after a course payment has been reversed.
type OnPaymentDeleted interface {
	Plugin
	OnPaymentDeleted(ctx context.Context, p *payment.Payment) error
}

// OnVoucherGenerated is called when a new voucher is stored.
type OnVoucherGenerated interface {
	Plugin
	OnVoucherGenerated(ctx context.Context, v *payment.Voucher) error
}

// ──────────────────────────────────────────────────
// Repair desk hooks
// ──────────────────────────────────────────────────

// OnTicketStatusChanged is called when a ticket moves between statuses.
type OnTicketStatusChanged interface {
	Plugin
	OnTicketStatusChanged(ctx context.Context, t *service.Ticket, from service.Status) error
}

// OnServiceInvoiceGenerated is called when a repair is billed.
type OnServiceInvoiceGenerated interface {
	Plugin
	OnServiceInvoiceGenerated(ctx context.Context, inv *service.Invoice) error
}

// ──────────────────────────────────────────────────
// Backup hooks
// ──────────────────────────────────────────────────

// OnBackupImported is called after a backup replaced the listed tables.
type OnBackupImported interface {
	Plugin
	OnBackupImported(ctx context.Context, tables []string) error
}
