package tally

import (
	"context"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/service"
	"github.com/xraph/tally/types"
)

// ──────────────────────────────────────────────────
// Service tickets
// ──────────────────────────────────────────────────

// OpenServiceTicket books a device in at the repair desk. The ticket gets
// an ST- number and a received date; an empty status means received and an
// empty priority means medium. A ticket opened as completed consumes its
// parts at once.
func (t *Tally) OpenServiceTicket(ctx context.Context, tk *service.Ticket) error {
	t.stamp(&tk.ID, id.NewTicketID, &tk.Entity)
	tk.TicketNumber = t.number("ST")
	if tk.ReceivedDate.IsZero() {
		tk.ReceivedDate = t.now()
	}
	if tk.Status == "" {
		tk.Status = service.StatusReceived
	}
	if tk.Priority == "" {
		tk.Priority = service.PriorityMedium
	}
	tk.CompletedDate = nil
	tk.DeliveredDate = nil
	if err := t.check(tk); err != nil {
		return err
	}

	var moves []*stockMove
	err := t.atomically(ctx, func() error {
		if err := t.store.CreateTicket(ctx, tk); err != nil {
			return err
		}
		var err error
		if moves, err = t.settleTicket(ctx, tk); err != nil {
			return err
		}
		if tk.CompletedDate == nil && tk.DeliveredDate == nil {
			return nil
		}
		return t.store.UpdateTicket(ctx, tk)
	})
	if err != nil {
		return err
	}

	t.logger.Info("service ticket opened",
		"ticket_id", tk.ID.String(),
		"ticket_number", tk.TicketNumber,
		"customer_id", tk.CustomerID.String(),
	)
	t.announceStock(ctx, moves...)
	return nil
}

// UpdateServiceTicket applies fn to the stored ticket. The first time the
// ticket reaches completed its parts leave stock (floored at zero), the
// completion date is stamped, the actual cost becomes labor plus parts and
// the assigned technician's completed count goes up. Later updates never
// consume parts again. Reaching delivered stamps the delivery date.
func (t *Tally) UpdateServiceTicket(ctx context.Context, ticketID id.TicketID, fn func(*service.Ticket)) (*service.Ticket, error) {
	var (
		tk    *service.Ticket
		from  service.Status
		moves []*stockMove
	)
	err := t.atomically(ctx, func() error {
		var err error
		tk, err = t.store.GetTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		before := *tk
		from = tk.Status

		fn(tk)
		tk.ID = before.ID
		tk.TicketNumber = before.TicketNumber
		tk.CreatedAt = before.CreatedAt
		tk.CompletedDate = before.CompletedDate
		tk.DeliveredDate = before.DeliveredDate
		tk.TouchAt(t.now())
		if err := t.check(tk); err != nil {
			return err
		}

		if moves, err = t.settleTicket(ctx, tk); err != nil {
			return err
		}
		return t.store.UpdateTicket(ctx, tk)
	})
	if err != nil {
		return nil, err
	}

	t.announceStock(ctx, moves...)
	if tk.Status != from {
		t.logger.Info("service ticket status changed",
			"ticket_id", tk.ID.String(),
			"from", string(from),
			"to", string(tk.Status),
		)
		t.plugins.EmitTicketStatusChanged(ctx, tk, from)
	}
	return tk, nil
}

// settleTicket applies the effects of the ticket's status that have not
// been applied yet. The caller holds the lock.
func (t *Tally) settleTicket(ctx context.Context, tk *service.Ticket) ([]*stockMove, error) {
	var moves []*stockMove
	completing := tk.Status == service.StatusCompleted && tk.CompletedDate == nil
	if completing {
		for _, part := range tk.PartsUsed {
			m, err := t.applyStock(ctx, part.ProductID, -part.Quantity, "service")
			if IsNotFound(err) {
				t.logger.Warn("service ticket references unknown product",
					"ticket_id", tk.ID.String(),
					"product_id", part.ProductID.String(),
				)
				continue
			}
			if err != nil {
				return nil, err
			}
			moves = append(moves, m)
		}

		at := t.now()
		tk.CompletedDate = &at
		if tk.PartsCost.IsZero() {
			tk.PartsCost = tk.PartsTotal()
		}
		tk.ActualCost = tk.LaborCost.Add(tk.PartsCost)

		if err := t.creditTechnician(ctx, tk); err != nil {
			return nil, err
		}
	}

	if tk.Status == service.StatusDelivered && tk.DeliveredDate == nil {
		at := t.now()
		tk.DeliveredDate = &at
	}
	return moves, nil
}

func (t *Tally) creditTechnician(ctx context.Context, tk *service.Ticket) error {
	if tk.AssignedTechnician.IsNil() {
		return nil
	}
	tech, err := t.store.GetTechnician(ctx, tk.AssignedTechnician)
	if IsNotFound(err) {
		t.logger.Warn("service ticket references unknown technician",
			"ticket_id", tk.ID.String(),
			"technician_id", tk.AssignedTechnician.String(),
		)
		return nil
	}
	if err != nil {
		return err
	}
	tech.TotalTicketsCompleted++
	tech.TouchAt(t.now())
	return t.store.UpdateTechnician(ctx, tech)
}

// GetServiceTicket retrieves a ticket by ID.
func (t *Tally) GetServiceTicket(ctx context.Context, ticketID id.TicketID) (*service.Ticket, error) {
	return t.store.GetTicket(ctx, ticketID)
}

// ListServiceTickets lists tickets in the order they were opened.
func (t *Tally) ListServiceTickets(ctx context.Context, opts service.TicketListOpts) ([]*service.Ticket, error) {
	return t.store.ListTickets(ctx, opts)
}

// PendingServiceTickets lists tickets whose work is still outstanding.
func (t *Tally) PendingServiceTickets(ctx context.Context) ([]*service.Ticket, error) {
	return t.store.ListTickets(ctx, service.TicketListOpts{PendingOnly: true})
}

// DeleteServiceTicket removes a ticket. Consumed parts are not restocked.
func (t *Tally) DeleteServiceTicket(ctx context.Context, ticketID id.TicketID) error {
	return t.store.DeleteTicket(ctx, ticketID)
}

// ──────────────────────────────────────────────────
// Technicians
// ──────────────────────────────────────────────────

func (t *Tally) CreateTechnician(ctx context.Context, tech *service.Technician) error {
	t.stamp(&tech.ID, id.NewTechnicianID, &tech.Entity)
	if tech.Status == "" {
		tech.Status = service.TechnicianActive
	}
	if err := t.check(tech); err != nil {
		return err
	}
	return t.store.CreateTechnician(ctx, tech)
}

func (t *Tally) GetTechnician(ctx context.Context, technicianID id.TechnicianID) (*service.Technician, error) {
	return t.store.GetTechnician(ctx, technicianID)
}

func (t *Tally) ListTechnicians(ctx context.Context, opts service.TechnicianListOpts) ([]*service.Technician, error) {
	return t.store.ListTechnicians(ctx, opts)
}

func (t *Tally) UpdateTechnician(ctx context.Context, technicianID id.TechnicianID, fn func(*service.Technician)) (*service.Technician, error) {
	return modify(ctx, t, technicianID, t.store.GetTechnician, t.store.UpdateTechnician,
		func(tech *service.Technician) (*id.ID, *types.Entity) { return &tech.ID, &tech.Entity }, fn)
}

func (t *Tally) DeleteTechnician(ctx context.Context, technicianID id.TechnicianID) error {
	return t.store.DeleteTechnician(ctx, technicianID)
}

// ──────────────────────────────────────────────────
// Service invoices
// ──────────────────────────────────────────────────

// GenerateServiceInvoice bills the ticket's labor and parts plus tax at the
// configured rate. The invoice is a draft numbered SRV-, due after the
// configured invoice terms.
func (t *Tally) GenerateServiceInvoice(ctx context.Context, ticketID id.TicketID) (*service.Invoice, error) {
	tk, err := t.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if tk.PartsCost.IsZero() {
		tk.PartsCost = tk.PartsTotal()
	}

	inv := service.InvoiceFor(tk, t.number("SRV"), t.taxRate, t.dueDate())
	t.stamp(&inv.ID, id.NewServiceInvoiceID, &inv.Entity)
	if err := t.store.CreateServiceInvoice(ctx, inv); err != nil {
		return nil, err
	}

	t.logger.Info("service invoice generated",
		"invoice_id", inv.ID.String(),
		"ticket_id", tk.ID.String(),
		"total", inv.Total.String(),
	)
	t.plugins.EmitServiceInvoiceGenerated(ctx, inv)
	return inv, nil
}

func (t *Tally) GetServiceInvoice(ctx context.Context, invID id.ServiceInvoiceID) (*service.Invoice, error) {
	return t.store.GetServiceInvoice(ctx, invID)
}

func (t *Tally) ListServiceInvoices(ctx context.Context, opts service.InvoiceListOpts) ([]*service.Invoice, error) {
	return t.store.ListServiceInvoices(ctx, opts)
}

func (t *Tally) UpdateServiceInvoice(ctx context.Context, invID id.ServiceInvoiceID, fn func(*service.Invoice)) (*service.Invoice, error) {
	return modify(ctx, t, invID, t.store.GetServiceInvoice, t.store.UpdateServiceInvoice,
		func(inv *service.Invoice) (*id.ID, *types.Entity) { return &inv.ID, &inv.Entity }, fn)
}

func (t *Tally) DeleteServiceInvoice(ctx context.Context, invID id.ServiceInvoiceID) error {
	return t.store.DeleteServiceInvoice(ctx, invID)
}
