// Package service defines the repair desk: tickets, technicians and service
// invoices.
package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

type Status string

const (
	StatusReceived        Status = "received"
	StatusDiagnosed       Status = "diagnosed"
	StatusWaitingApproval Status = "waiting_approval"
	StatusInProgress      Status = "in_progress"
	StatusCompleted       Status = "completed"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
)

// IsPending reports whether work on the ticket is still outstanding.
func (s Status) IsPending() bool {
	switch s {
	case StatusReceived, StatusDiagnosed, StatusWaitingApproval, StatusInProgress:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type DeviceType string

const (
	DeviceLaptop  DeviceType = "laptop"
	DeviceDesktop DeviceType = "desktop"
	DeviceTablet  DeviceType = "tablet"
	DevicePhone   DeviceType = "phone"
	DeviceOther   DeviceType = "other"
)

// Ticket is a device repair job. Parts leave stock when the ticket first
// reaches StatusCompleted.
type Ticket struct {
	types.Entity
	ID                      id.TicketID     `json:"id"`
	TicketNumber            string          `json:"ticketNumber"`
	CustomerID              id.CustomerID   `json:"customerId"`
	DeviceType              DeviceType      `json:"deviceType" validate:"omitempty,oneof=laptop desktop tablet phone other"`
	Brand                   string          `json:"brand"`
	Model                   string          `json:"model"`
	SerialNumber            string          `json:"serialNumber,omitempty"`
	IssueDescription        string          `json:"issueDescription" validate:"required"`
	Diagnosis               string          `json:"diagnosis,omitempty"`
	EstimatedCost           types.Money     `json:"estimatedCost" validate:"min=0"`
	ActualCost              types.Money     `json:"actualCost" validate:"min=0"`
	LaborCost               types.Money     `json:"laborCost" validate:"min=0"`
	PartsCost               types.Money     `json:"partsCost" validate:"min=0"`
	Status                  Status          `json:"status" validate:"omitempty,oneof=received diagnosed waiting_approval in_progress completed delivered cancelled"`
	Priority                Priority        `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssignedTechnician      id.TechnicianID `json:"assignedTechnician,omitzero"`
	PartsUsed               []Part          `json:"partsUsed" validate:"dive"`
	TimeSpent               float64         `json:"timeSpent"`      // hours
	WarrantyPeriod          int             `json:"warrantyPeriod"` // days
	ReceivedDate            time.Time       `json:"receivedDate"`
	EstimatedCompletionDate *time.Time      `json:"estimatedCompletionDate,omitempty"`
	CompletedDate           *time.Time      `json:"completedDate,omitempty"`
	DeliveredDate           *time.Time      `json:"deliveredDate,omitempty"`
	Notes                   []string        `json:"notes"`
	CustomerApproved        bool            `json:"customerApproved"`
}

// Part is a stocked product consumed by a repair.
type Part struct {
	ProductID id.ProductID `json:"productId"`
	Quantity  int64        `json:"quantity" validate:"min=1"`
	UnitCost  types.Money  `json:"unitCost" validate:"min=0"`
	Total     types.Money  `json:"total"`
}

// PartsTotal returns the sum of part line totals, computing missing ones.
func (t *Ticket) PartsTotal() types.Money {
	var total types.Money
	for _, p := range t.PartsUsed {
		line := p.Total
		if line.IsZero() {
			line = p.UnitCost.Multiply(p.Quantity)
		}
		total = total.Add(line)
	}
	return total
}

type TechnicianStatus string

const (
	TechnicianActive   TechnicianStatus = "active"
	TechnicianInactive TechnicianStatus = "inactive"
)

type Technician struct {
	types.Entity
	ID                    id.TechnicianID  `json:"id"`
	Name                  string           `json:"name" validate:"required"`
	Email                 string           `json:"email" validate:"omitempty,email"`
	Phone                 string           `json:"phone"`
	Specializations       []string         `json:"specializations"`
	HourlyRate            types.Money      `json:"hourlyRate" validate:"min=0"`
	Status                TechnicianStatus `json:"status" validate:"omitempty,oneof=active inactive"`
	TotalTicketsCompleted int              `json:"totalTicketsCompleted"`
	AverageRating         float64          `json:"averageRating"`
}

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// Invoice bills a repair ticket.
type Invoice struct {
	types.Entity
	ID              id.ServiceInvoiceID `json:"id"`
	InvoiceNumber   string              `json:"invoiceNumber"`
	ServiceTicketID id.TicketID         `json:"serviceTicketId"`
	CustomerID      id.CustomerID       `json:"customerId"`
	LaborCost       types.Money         `json:"laborCost"`
	PartsCost       types.Money         `json:"partsCost"`
	Subtotal        types.Money         `json:"subtotal"`
	Tax             types.Money         `json:"tax"`
	Discount        types.Money         `json:"discount"`
	Total           types.Money         `json:"total"`
	DueDate         time.Time           `json:"dueDate"`
	Status          InvoiceStatus       `json:"status" validate:"omitempty,oneof=draft sent paid overdue"`
}

// InvoiceFor bills labor and parts of t plus tax at taxRate.
func InvoiceFor(t *Ticket, number string, taxRate decimal.Decimal, dueDate time.Time) *Invoice {
	subtotal := t.LaborCost.Add(t.PartsCost)
	tax := subtotal.MulRate(taxRate)

	return &Invoice{
		InvoiceNumber:   number,
		ServiceTicketID: t.ID,
		CustomerID:      t.CustomerID,
		LaborCost:       t.LaborCost,
		PartsCost:       t.PartsCost,
		Subtotal:        subtotal,
		Tax:             tax,
		Total:           subtotal.Add(tax),
		DueDate:         dueDate,
		Status:          InvoiceDraft,
	}
}
