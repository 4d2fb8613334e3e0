// Package observability provides a metrics extension for Tally that records
// propagation event counts through a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/tally/enrollment"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/invoice"
	"github.com/xraph/tally/payment"
	"github.com/xraph/tally/plugin"
	"github.com/xraph/tally/product"
	"github.com/xraph/tally/purchase"
	"github.com/xraph/tally/sale"
	"github.com/xraph/tally/service"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                    = (*MetricsExtension)(nil)
	_ plugin.OnInit                    = (*MetricsExtension)(nil)
	_ plugin.OnSaleRecorded            = (*MetricsExtension)(nil)
	_ plugin.OnSaleDeleted             = (*MetricsExtension)(nil)
	_ plugin.OnStockChanged            = (*MetricsExtension)(nil)
	_ plugin.OnLowStock                = (*MetricsExtension)(nil)
	_ plugin.OnPurchaseReceived        = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceGenerated        = (*MetricsExtension)(nil)
	_ plugin.OnEnrolled                = (*MetricsExtension)(nil)
	_ plugin.OnEnrollmentDeleted       = (*MetricsExtension)(nil)
	_ plugin.OnPaymentRecorded         = (*MetricsExtension)(nil)
	_ plugin.OnPaymentDeleted          = (*MetricsExtension)(nil)
	_ plugin.OnVoucherGenerated        = (*MetricsExtension)(nil)
	_ plugin.OnTicketStatusChanged     = (*MetricsExtension)(nil)
	_ plugin.OnServiceInvoiceGenerated = (*MetricsExtension)(nil)
	_ plugin.OnBackupImported          = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide propagation metrics.
// Register it as a Tally plugin to track shop, training and repair activity.
type MetricsExtension struct {
	factory MetricFactory

	// Inventory metrics
	SalesRecorded     Counter
	SalesDeleted      Counter
	SaleTotal         Histogram
	UnitsMoved        Counter
	LowStockAlerts    Counter
	PurchasesReceived Counter
	InvoicesGenerated Counter
	BackupsImported   Counter

	// Training centre metrics
	Enrollments        Counter
	EnrollmentsDeleted Counter
	PaymentsRecorded   Counter
	PaymentsDeleted    Counter
	PaymentAmount      Histogram
	VouchersGenerated  Counter
	VouchersIncomplete Counter

	// Repair desk metrics
	TicketsCompleted        Counter
	TicketsDelivered        Counter
	TicketsCancelled        Counter
	ServiceInvoiceGenerated Counter
	ServiceInvoiceTotal     Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Inventory metrics
		SalesRecorded:     factory.Counter("tally.sale.recorded"),
		SalesDeleted:      factory.Counter("tally.sale.deleted"),
		SaleTotal:         factory.Histogram("tally.sale.total_amount"),
		UnitsMoved:        factory.Counter("tally.stock.units_moved"),
		LowStockAlerts:    factory.Counter("tally.stock.low"),
		PurchasesReceived: factory.Counter("tally.purchase.received"),
		InvoicesGenerated: factory.Counter("tally.invoice.generated"),
		BackupsImported:   factory.Counter("tally.backup.imported"),

		// Training centre metrics
		Enrollments:        factory.Counter("tally.enrollment.created"),
		EnrollmentsDeleted: factory.Counter("tally.enrollment.deleted"),
		PaymentsRecorded:   factory.Counter("tally.payment.recorded"),
		PaymentsDeleted:    factory.Counter("tally.payment.deleted"),
		PaymentAmount:      factory.Histogram("tally.payment.amount"),
		VouchersGenerated:  factory.Counter("tally.voucher.generated"),
		VouchersIncomplete: factory.Counter("tally.voucher.incomplete"),

		// Repair desk metrics
		TicketsCompleted:        factory.Counter("tally.ticket.completed"),
		TicketsDelivered:        factory.Counter("tally.ticket.delivered"),
		TicketsCancelled:        factory.Counter("tally.ticket.cancelled"),
		ServiceInvoiceGenerated: factory.Counter("tally.service_invoice.generated"),
		ServiceInvoiceTotal:     factory.Histogram("tally.service_invoice.total_amount"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	return nil
}

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnSaleRecorded implements plugin.OnSaleRecorded.
func (m *MetricsExtension) OnSaleRecorded(_ context.Context, s *sale.Sale) error {
	m.SalesRecorded.Inc()
	m.SaleTotal.Observe(s.Total.Decimal().InexactFloat64())
	return nil
}

// OnSaleDeleted implements plugin.OnSaleDeleted.
func (m *MetricsExtension) OnSaleDeleted(_ context.Context, _ *sale.Sale) error {
	m.SalesDeleted.Inc()
	return nil
}

// OnStockChanged implements plugin.OnStockChanged.
func (m *MetricsExtension) OnStockChanged(_ context.Context, _ id.ProductID, before, after int64, _ string) error {
	moved := after - before
	if moved < 0 {
		moved = -moved
	}
	m.UnitsMoved.Add(float64(moved))
	return nil
}

// OnLowStock implements plugin.OnLowStock.
func (m *MetricsExtension) OnLowStock(_ context.Context, _ *product.Product) error {
	m.LowStockAlerts.Inc()
	return nil
}

// OnPurchaseReceived implements plugin.OnPurchaseReceived.
func (m *MetricsExtension) OnPurchaseReceived(_ context.Context, _ *purchase.Purchase) error {
	m.PurchasesReceived.Inc()
	return nil
}

// OnInvoiceGenerated implements plugin.OnInvoiceGenerated.
func (m *MetricsExtension) OnInvoiceGenerated(_ context.Context, _ *invoice.Invoice) error {
	m.InvoicesGenerated.Inc()
	return nil
}

// OnBackupImported implements plugin.OnBackupImported.
func (m *MetricsExtension) OnBackupImported(_ context.Context, _ []string) error {
	m.BackupsImported.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Training centre hooks
// ──────────────────────────────────────────────────

// OnEnrolled implements plugin.OnEnrolled.
func (m *MetricsExtension) OnEnrolled(_ context.Context, _ *enrollment.Enrollment) error {
	m.Enrollments.Inc()
	return nil
}

// OnEnrollmentDeleted implements plugin.OnEnrollmentDeleted.
func (m *MetricsExtension) OnEnrollmentDeleted(_ context.Context, _ *enrollment.Enrollment) error {
	m.EnrollmentsDeleted.Inc()
	return nil
}

// OnPaymentRecorded implements plugin.OnPaymentRecorded.
func (m *MetricsExtension) OnPaymentRecorded(_ context.Context, p *payment.Payment) error {
	m.PaymentsRecorded.Inc()
	m.PaymentAmount.Observe(p.Amount.Decimal().InexactFloat64())
	return nil
}

// OnPaymentDeleted implements plugin.OnPaymentDeleted.
func (m *MetricsExtension) OnPaymentDeleted(_ context.Context, _ *payment.Payment) error {
	m.PaymentsDeleted.Inc()
	return nil
}

// OnVoucherGenerated implements plugin.OnVoucherGenerated.
func (m *MetricsExtension) OnVoucherGenerated(_ context.Context, v *payment.Voucher) error {
	m.VouchersGenerated.Inc()
	if len(v.Missing) > 0 {
		m.VouchersIncomplete.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Repair desk hooks
// ──────────────────────────────────────────────────

// OnTicketStatusChanged implements plugin.OnTicketStatusChanged.
func (m *MetricsExtension) OnTicketStatusChanged(_ context.Context, t *service.Ticket, _ service.Status) error {
	switch t.Status {
	case service.StatusCompleted:
		m.TicketsCompleted.Inc()
	case service.StatusDelivered:
		m.TicketsDelivered.Inc()
	case service.StatusCancelled:
		m.TicketsCancelled.Inc()
	}
	return nil
}

// OnServiceInvoiceGenerated implements plugin.OnServiceInvoiceGenerated.
func (m *MetricsExtension) OnServiceInvoiceGenerated(_ context.Context, inv *service.Invoice) error {
	m.ServiceInvoiceGenerated.Inc()
	m.ServiceInvoiceTotal.Observe(inv.Total.Decimal().InexactFloat64())
	return nil
}
