// Package audithook bridges Tally propagation events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not depend on
// any audit product. Callers inject a RecorderFunc adapter at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

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

// Compile-time interface checks.
var (
	_ plugin.Plugin                    = (*Extension)(nil)
	_ plugin.OnSaleRecorded            = (*Extension)(nil)
	_ plugin.OnSaleDeleted             = (*Extension)(nil)
	_ plugin.OnStockChanged            = (*Extension)(nil)
	_ plugin.OnLowStock                = (*Extension)(nil)
	_ plugin.OnPurchaseReceived        = (*Extension)(nil)
	_ plugin.OnInvoiceGenerated        = (*Extension)(nil)
	_ plugin.OnEnrolled                = (*Extension)(nil)
	_ plugin.OnEnrollmentDeleted       = (*Extension)(nil)
	_ plugin.OnPaymentRecorded         = (*Extension)(nil)
	_ plugin.OnPaymentDeleted          = (*Extension)(nil)
	_ plugin.OnVoucherGenerated        = (*Extension)(nil)
	_ plugin.OnTicketStatusChanged     = (*Extension)(nil)
	_ plugin.OnServiceInvoiceGenerated = (*Extension)(nil)
	_ plugin.OnBackupImported          = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Tally events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnSaleRecorded implements plugin.OnSaleRecorded.
func (e *Extension) OnSaleRecorded(ctx context.Context, s *sale.Sale) error {
	return e.record(ctx, ActionSaleRecorded, SeverityInfo, OutcomeSuccess,
		ResourceSale, s.ID.String(), CategoryInventory, nil,
		"customer_id", s.CustomerID.String(),
		"total", s.Total.String(),
		"status", string(s.Status),
		"items", len(s.Items),
	)
}

// OnSaleDeleted implements plugin.OnSaleDeleted.
func (e *Extension) OnSaleDeleted(ctx context.Context, s *sale.Sale) error {
	return e.record(ctx, ActionSaleDeleted, SeverityWarning, OutcomeSuccess,
		ResourceSale, s.ID.String(), CategoryInventory, nil,
		"total", s.Total.String(),
	)
}

// OnStockChanged implements plugin.OnStockChanged.
func (e *Extension) OnStockChanged(ctx context.Context, productID id.ProductID, before, after int64, reason string) error {
	return e.record(ctx, ActionStockChanged, SeverityInfo, OutcomeSuccess,
		ResourceProduct, productID.String(), CategoryInventory, nil,
		"before", before,
		"after", after,
		"reason", reason,
	)
}

// OnLowStock implements plugin.OnLowStock.
func (e *Extension) OnLowStock(ctx context.Context, p *product.Product) error {
	return e.record(ctx, ActionLowStock, SeverityWarning, OutcomeSuccess,
		ResourceProduct, p.ID.String(), CategoryInventory, nil,
		"name", p.Name,
		"stock", p.Stock,
		"min_stock", p.MinStock,
	)
}

// OnPurchaseReceived implements plugin.OnPurchaseReceived.
func (e *Extension) OnPurchaseReceived(ctx context.Context, p *purchase.Purchase) error {
	return e.record(ctx, ActionPurchaseReceived, SeverityInfo, OutcomeSuccess,
		ResourcePurchase, p.ID.String(), CategoryInventory, nil,
		"supplier_id", p.SupplierID.String(),
		"total", p.Total.String(),
	)
}

// OnInvoiceGenerated implements plugin.OnInvoiceGenerated.
func (e *Extension) OnInvoiceGenerated(ctx context.Context, inv *invoice.Invoice) error {
	return e.record(ctx, ActionInvoiceGenerated, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, inv.ID.String(), CategoryBilling, nil,
		"invoice_number", inv.InvoiceNumber,
		"sale_id", inv.SaleID.String(),
		"total", inv.Total.String(),
	)
}

// OnBackupImported implements plugin.OnBackupImported.
func (e *Extension) OnBackupImported(ctx context.Context, tables []string) error {
	return e.record(ctx, ActionBackupImported, SeverityWarning, OutcomeSuccess,
		ResourceBackup, "", CategoryData, nil,
		"tables", strings.Join(tables, ","),
	)
}

// ──────────────────────────────────────────────────
// Training centre hooks
// ──────────────────────────────────────────────────

// OnEnrolled implements plugin.OnEnrolled.
func (e *Extension) OnEnrolled(ctx context.Context, en *enrollment.Enrollment) error {
	return e.record(ctx, ActionEnrollmentCreated, SeverityInfo, OutcomeSuccess,
		ResourceEnrollment, en.ID.String(), CategoryTraining, nil,
		"student_id", en.StudentID.String(),
		"batch_id", en.BatchID.String(),
		"total_fee", en.TotalFee.String(),
	)
}

// OnEnrollmentDeleted implements plugin.OnEnrollmentDeleted.
func (e *Extension) OnEnrollmentDeleted(ctx context.Context, en *enrollment.Enrollment) error {
	return e.record(ctx, ActionEnrollmentDeleted, SeverityWarning, OutcomeSuccess,
		ResourceEnrollment, en.ID.String(), CategoryTraining, nil,
		"student_id", en.StudentID.String(),
		"paid_amount", en.PaidAmount.String(),
	)
}

// OnPaymentRecorded implements plugin.OnPaymentRecorded.
func (e *Extension) OnPaymentRecorded(ctx context.Context, p *payment.Payment) error {
	return e.record(ctx, ActionPaymentRecorded, SeverityInfo, OutcomeSuccess,
		ResourcePayment, p.ID.String(), CategoryPayment, nil,
		"enrollment_id", p.EnrollmentID.String(),
		"type", string(p.PaymentType),
		"amount", p.Amount.String(),
		"voucher_number", p.VoucherNumber,
	)
}

// OnPaymentDeleted implements plugin.OnPaymentDeleted.
func (e *Extension) OnPaymentDeleted(ctx context.Context, p *payment.Payment) error {
	return e.record(ctx, ActionPaymentDeleted, SeverityWarning, OutcomeSuccess,
		ResourcePayment, p.ID.String(), CategoryPayment, nil,
		"enrollment_id", p.EnrollmentID.String(),
		"amount", p.Amount.String(),
	)
}

// OnVoucherGenerated implements plugin.OnVoucherGenerated.
func (e *Extension) OnVoucherGenerated(ctx context.Context, v *payment.Voucher) error {
	outcome := OutcomeSuccess
	if len(v.Missing) > 0 {
		outcome = OutcomePartial
	}
	return e.record(ctx, ActionVoucherGenerated, SeverityInfo, outcome,
		ResourceVoucher, v.VoucherNumber, CategoryPayment, nil,
		"payment_id", v.PaymentID.String(),
		"missing", strings.Join(v.Missing, ","),
	)
}

// ──────────────────────────────────────────────────
// Repair desk hooks
// ──────────────────────────────────────────────────

// OnTicketStatusChanged implements plugin.OnTicketStatusChanged.
func (e *Extension) OnTicketStatusChanged(ctx context.Context, t *service.Ticket, from service.Status) error {
	return e.record(ctx, ActionTicketStatusChanged, SeverityInfo, OutcomeSuccess,
		ResourceTicket, t.ID.String(), CategoryService, nil,
		"ticket_number", t.TicketNumber,
		"from", string(from),
		"to", string(t.Status),
	)
}

// OnServiceInvoiceGenerated implements plugin.OnServiceInvoiceGenerated.
func (e *Extension) OnServiceInvoiceGenerated(ctx context.Context, inv *service.Invoice) error {
	return e.record(ctx, ActionServiceInvoiceGenerated, SeverityInfo, OutcomeSuccess,
		ResourceServiceInvoice, inv.ID.String(), CategoryBilling, nil,
		"invoice_number", inv.InvoiceNumber,
		"ticket_id", inv.ServiceTicketID.String(),
		"total", inv.Total.String(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
