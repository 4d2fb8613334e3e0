package audithook

// Action constants for audit events.
const (
	// Inventory actions
	ActionSaleRecorded     = "sale.recorded"
	ActionSaleDeleted      = "sale.deleted"
	ActionStockChanged     = "stock.changed"
	ActionLowStock         = "stock.low"
	ActionPurchaseReceived = "purchase.received"
	ActionInvoiceGenerated = "invoice.generated"
	ActionBackupImported   = "backup.imported"

	// Training centre actions
	ActionEnrollmentCreated = "enrollment.created"
	ActionEnrollmentDeleted = "enrollment.deleted"
	ActionPaymentRecorded   = "payment.recorded"
	ActionPaymentDeleted    = "payment.deleted"
	ActionVoucherGenerated  = "voucher.generated"

	// Repair desk actions
	ActionTicketStatusChanged     = "ticket.status_changed"
	ActionServiceInvoiceGenerated = "service_invoice.generated"
)

// Resource constants for audit events.
const (
	ResourceSale           = "sale"
	ResourceProduct        = "product"
	ResourcePurchase       = "purchase"
	ResourceInvoice        = "invoice"
	ResourceEnrollment     = "enrollment"
	ResourcePayment        = "payment"
	ResourceVoucher        = "voucher"
	ResourceTicket         = "service_ticket"
	ResourceServiceInvoice = "service_invoice"
	ResourceBackup         = "backup"
)

// Category constants for audit events.
const (
	CategoryInventory = "inventory"
	CategoryBilling   = "billing"
	CategoryTraining  = "training"
	CategoryPayment   = "payment"
	CategoryService   = "service"
	CategoryData      = "data"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
