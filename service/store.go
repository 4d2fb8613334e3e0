package service

import (
	"context"

	"github.com/xraph/tally/id"
)

type TicketStore interface {
	Create(ctx context.Context, t *Ticket) error
	Get(ctx context.Context, ticketID id.TicketID) (*Ticket, error)
	List(ctx context.Context, opts TicketListOpts) ([]*Ticket, error)
	Update(ctx context.Context, t *Ticket) error
	Delete(ctx context.Context, ticketID id.TicketID) error
}

type TechnicianStore interface {
	Create(ctx context.Context, t *Technician) error
	Get(ctx context.Context, technicianID id.TechnicianID) (*Technician, error)
	List(ctx context.Context, opts TechnicianListOpts) ([]*Technician, error)
	Update(ctx context.Context, t *Technician) error
	Delete(ctx context.Context, technicianID id.TechnicianID) error
}

type InvoiceStore interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, invID id.ServiceInvoiceID) (*Invoice, error)
	List(ctx context.Context, opts InvoiceListOpts) ([]*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, invID id.ServiceInvoiceID) error
}

type TicketListOpts struct {
	CustomerID   id.CustomerID
	TechnicianID id.TechnicianID
	Status       Status
	PendingOnly  bool
	Limit        int
	Offset       int
}

type TechnicianListOpts struct {
	Status TechnicianStatus
	Limit  int
	Offset int
}

type InvoiceListOpts struct {
	CustomerID id.CustomerID
	TicketID   id.TicketID
	Status     InvoiceStatus
	Limit      int
	Offset     int
}
