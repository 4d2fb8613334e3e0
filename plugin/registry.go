package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/tally/enrollment"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/invoice"
	"github.com/xraph/tally/payment"
	"github.com/xraph/tally/product"
	"github.com/xraph/tally/purchase"
	"github.com/xraph/tally/sale"
	"github.com/xraph/tally/service"
)

// DefaultTimeout bounds each hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// Implemented hook interfaces are discovered once at registration.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                    []OnInit
	onShutdown                []OnShutdown
	onSaleRecorded            []OnSaleRecorded
	onSaleDeleted             []OnSaleDeleted
	onStockChanged            []OnStockChanged
	onLowStock                []OnLowStock
	onPurchaseReceived        []OnPurchaseReceived
	onInvoiceGenerated        []OnInvoiceGenerated
	onEnrolled                []OnEnrolled
	onEnrollmentDeleted       []OnEnrollmentDeleted
	onPaymentRecorded         []OnPaymentRecorded
	onPaymentDeleted          []OnPaymentDeleted
	onVoucherGenerated        []OnVoucherGenerated
	onTicketStatusChanged     []OnTicketStatusChanged
	onServiceInvoiceGenerated []OnServiceInvoiceGenerated
	onBackupImported          []OnBackupImported
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	r.timeout = d
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)
	var hooks []string

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
		hooks = append(hooks, "OnInit")
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
		hooks = append(hooks, "OnShutdown")
	}
	if v, ok := p.(OnSaleRecorded); ok {
		r.onSaleRecorded = append(r.onSaleRecorded, v)
		hooks = append(hooks, "OnSaleRecorded")
	}
	if v, ok := p.(OnSaleDeleted); ok {
		r.onSaleDeleted = append(r.onSaleDeleted, v)
		hooks = append(hooks, "OnSaleDeleted")
	}
	if v, ok := p.(OnStockChanged); ok {
		r.onStockChanged = append(r.onStockChanged, v)
		hooks = append(hooks, "OnStockChanged")
	}
	if v, ok := p.(OnLowStock); ok {
		r.onLowStock = append(r.onLowStock, v)
		hooks = append(hooks, "OnLowStock")
	}
	if v, ok := p.(OnPurchaseReceived); ok {
		r.onPurchaseReceived = append(r.onPurchaseReceived, v)
		hooks = append(hooks, "OnPurchaseReceived")
	}
	if v, ok := p.(OnInvoiceGenerated); ok {
		r.onInvoiceGenerated = append(r.onInvoiceGenerated, v)
		hooks = append(hooks, "OnInvoiceGenerated")
	}
	if v, ok := p.(OnEnrolled); ok {
		r.onEnrolled = append(r.onEnrolled, v)
		hooks = append(hooks, "OnEnrolled")
	}
	if v, ok := p.(OnEnrollmentDeleted); ok {
		r.onEnrollmentDeleted = append(r.onEnrollmentDeleted, v)
		hooks = append(hooks, "OnEnrollmentDeleted")
	}
	if v, ok := p.(OnPaymentRecorded); ok {
		r.onPaymentRecorded = append(r.onPaymentRecorded, v)
		hooks = append(hooks, "OnPaymentRecorded")
	}
	if v, ok := p.(OnPaymentDeleted); ok {
		r.onPaymentDeleted = append(r.onPaymentDeleted, v)
		hooks = append(hooks, "OnPaymentDeleted")
	}
	if v, ok := p.(OnVoucherGenerated); ok {
		r.onVoucherGenerated = append(r.onVoucherGenerated, v)
		hooks = append(hooks, "OnVoucherGenerated")
	}
	if v, ok := p.(OnTicketStatusChanged); ok {
		r.onTicketStatusChanged = append(r.onTicketStatusChanged, v)
		hooks = append(hooks, "OnTicketStatusChanged")
	}
	if v, ok := p.(OnServiceInvoiceGenerated); ok {
		r.onServiceInvoiceGenerated = append(r.onServiceInvoiceGenerated, v)
		hooks = append(hooks, "OnServiceInvoiceGenerated")
	}
	if v, ok := p.(OnBackupImported); ok {
		r.onBackupImported = append(r.onBackupImported, v)
		hooks = append(hooks, "OnBackupImported")
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", hooks,
	)

	return nil
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// emit calls fn for every plugin in list. Failures are logged, never
// returned.
func emit[T Plugin](ctx context.Context, r *Registry, hook string, list *[]T, fn func(T) error) {
	r.mu.RLock()
	plugins := *list
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return fn(p)
		}); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine any) {
	emit(ctx, r, "OnInit", &r.onInit, func(p OnInit) error {
		return p.OnInit(ctx, engine)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(ctx, r, "OnShutdown", &r.onShutdown, func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitSaleRecorded emits a sale recorded event.
func (r *Registry) EmitSaleRecorded(ctx context.Context, s *sale.Sale) {
	emit(ctx, r, "OnSaleRecorded", &r.onSaleRecorded, func(p OnSaleRecorded) error {
		return p.OnSaleRecorded(ctx, s)
	})
}

// EmitSaleDeleted emits a sale deleted event.
func (r *Registry) EmitSaleDeleted(ctx context.Context, s *sale.Sale) {
	emit(ctx, r, "OnSaleDeleted", &r.onSaleDeleted, func(p OnSaleDeleted) error {
		return p.OnSaleDeleted(ctx, s)
	})
}

// EmitStockChanged emits a stock movement.
func (r *Registry) EmitStockChanged(ctx context.Context, productID id.ProductID, before, after int64, reason string) {
	emit(ctx, r, "OnStockChanged", &r.onStockChanged, func(p OnStockChanged) error {
		return p.OnStockChanged(ctx, productID, before, after, reason)
	})
}

// EmitLowStock emits a low stock warning.
func (r *Registry) EmitLowStock(ctx context.Context, prod *product.Product) {
	emit(ctx, r, "OnLowStock", &r.onLowStock, func(p OnLowStock) error {
		return p.OnLowStock(ctx, prod)
	})
}

// EmitPurchaseReceived emits a purchase received event.
func (r *Registry) EmitPurchaseReceived(ctx context.Context, pur *purchase.Purchase) {
	emit(ctx, r, "OnPurchaseReceived", &r.onPurchaseReceived, func(p OnPurchaseReceived) error {
		return p.OnPurchaseReceived(ctx, pur)
	})
}

// EmitInvoiceGenerated emits a sale invoice event.
func (r *Registry) EmitInvoiceGenerated(ctx context.Context, inv *invoice.Invoice) {
	emit(ctx, r, "OnInvoiceGenerated", &r.onInvoiceGenerated, func(p OnInvoiceGenerated) error {
		return p.OnInvoiceGenerated(ctx, inv)
	})
}

// EmitEnrolled emits an enrollment event.
func (r *Registry) EmitEnrolled(ctx context.Context, e *enrollment.Enrollment) {
	emit(ctx, r, "OnEnrolled", &r.onEnrolled, func(p OnEnrolled) error {
		return p.OnEnrolled(ctx, e)
	})
}

// EmitEnrollmentDeleted emits an enrollment deleted event.
func (r *Registry) EmitEnrollmentDeleted(ctx context.Context, e *enrollment.Enrollment) {
	emit(ctx, r, "OnEnrollmentDeleted", &r.onEnrollmentDeleted, func(p OnEnrollmentDeleted) error {
		return p.OnEnrollmentDeleted(ctx, e)
	})
}

// EmitPaymentRecorded emits a payment recorded event.
func (r *Registry) EmitPaymentRecorded(ctx context.Context, pay *payment.Payment) {
	emit(ctx, r, "OnPaymentRecorded", &r.onPaymentRecorded, func(p OnPaymentRecorded) error {
		return p.OnPaymentRecorded(ctx, pay)
	})
}

// EmitPaymentDeleted emits a payment deleted event.
func (r *Registry) EmitPaymentDeleted(ctx context.Context, pay *payment.Payment) {
	emit(ctx, r, "OnPaymentDeleted", &r.onPaymentDeleted, func(p OnPaymentDeleted) error {
		return p.OnPaymentDeleted(ctx, pay)
	})
}

// EmitVoucherGenerated emits a voucher generated event.
func (r *Registry) EmitVoucherGenerated(ctx context.Context, v *payment.Voucher) {
	emit(ctx, r, "OnVoucherGenerated", &r.onVoucherGenerated, func(p OnVoucherGenerated) error {
		return p.OnVoucherGenerated(ctx, v)
	})
}

// EmitTicketStatusChanged emits a ticket status transition.
func (r *Registry) EmitTicketStatusChanged(ctx context.Context, t *service.Ticket, from service.Status) {
	emit(ctx, r, "OnTicketStatusChanged", &r.onTicketStatusChanged, func(p OnTicketStatusChanged) error {
		return p.OnTicketStatusChanged(ctx, t, from)
	})
}

// EmitServiceInvoiceGenerated emits a service invoice event.
func (r *Registry) EmitServiceInvoiceGenerated(ctx context.Context, inv *service.Invoice) {
	emit(ctx, r, "OnServiceInvoiceGenerated", &r.onServiceInvoiceGenerated, func(p OnServiceInvoiceGenerated) error {
		return p.OnServiceInvoiceGenerated(ctx, inv)
	})
}

// EmitBackupImported emits a backup imported event.
func (r *Registry) EmitBackupImported(ctx context.Context, tables []string) {
	emit(ctx, r, "OnBackupImported", &r.onBackupImported, func(p OnBackupImported) error {
		return p.OnBackupImported(ctx, tables)
	})
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the engine.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
