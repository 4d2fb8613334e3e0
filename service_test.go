package tally_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tally"
	"github.com/xraph/tally/service"
)

func openTicket(t *testing.T, tl *tally.Tally, parts ...service.Part) *service.Ticket {
	t.Helper()
	tk := &service.Ticket{
		DeviceType:       service.DeviceLaptop,
		Brand:            "Dell",
		IssueDescription: "No display",
		LaborCost:        tally.Major(25),
		PartsUsed:        parts,
	}
	require.NoError(t, tl.OpenServiceTicket(context.Background(), tk))
	return tk
}

func TestOpenServiceTicket(t *testing.T) {
	tl, _ := newTally(t)
	p := mustProduct(t, tl, "Screen", 2)

	tk := openTicket(t, tl, service.Part{ProductID: p.ID, Quantity: 1, UnitCost: tally.Major(70)})
	assert.Regexp(t, `^ST-\d+$`, tk.TicketNumber)
	assert.Equal(t, service.StatusReceived, tk.Status)
	assert.Equal(t, service.PriorityMedium, tk.Priority)
	assert.False(t, tk.ReceivedDate.IsZero())
	assert.Equal(t, int64(2), stockOf(t, tl, p.ID), "opening a ticket leaves stock alone")
}

func TestTicketCompletionConsumesPartsOnce(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)

	screen := mustProduct(t, tl, "Screen", 5)
	hinge := mustProduct(t, tl, "Hinge", 1)
	tech := &service.Technician{Name: "Jamal"}
	require.NoError(t, tl.CreateTechnician(ctx, tech))

	tk := openTicket(t, tl,
		service.Part{ProductID: screen.ID, Quantity: 2, UnitCost: tally.Major(70)},
		service.Part{ProductID: hinge.ID, Quantity: 3, UnitCost: tally.Major(5)},
	)
	_, err := tl.UpdateServiceTicket(ctx, tk.ID, func(tk *service.Ticket) {
		tk.AssignedTechnician = tech.ID
		tk.Status = service.StatusInProgress
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), stockOf(t, tl, screen.ID))

	done, err := tl.UpdateServiceTicket(ctx, tk.ID, func(tk *service.Ticket) { tk.Status = service.StatusCompleted })
	require.NoError(t, err)
	assert.Equal(t, int64(3), stockOf(t, tl, screen.ID))
	assert.Equal(t, int64(0), stockOf(t, tl, hinge.ID), "parts floor stock at zero")
	require.NotNil(t, done.CompletedDate)
	assert.Equal(t, tally.Major(155), done.PartsCost)
	assert.Equal(t, tally.Major(180), done.ActualCost)

	for _, status := range []service.Status{service.StatusCompleted, service.StatusInProgress, service.StatusCompleted} {
		_, err := tl.UpdateServiceTicket(ctx, tk.ID, func(tk *service.Ticket) {
			tk.Status = status
			tk.Notes = append(tk.Notes, "checked again")
		})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), stockOf(t, tl, screen.ID))

	got, err := tl.GetTechnician(ctx, tech.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalTicketsCompleted)

	delivered, err := tl.UpdateServiceTicket(ctx, tk.ID, func(tk *service.Ticket) { tk.Status = service.StatusDelivered })
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredDate)
	assert.Equal(t, done.CompletedDate, delivered.CompletedDate)
}

func TestPendingServiceTickets(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)

	open := openTicket(t, tl)
	closed := openTicket(t, tl)
	_, err := tl.UpdateServiceTicket(ctx, closed.ID, func(tk *service.Ticket) { tk.Status = service.StatusCancelled })
	require.NoError(t, err)

	pending, err := tl.PendingServiceTickets(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, open.ID, pending[0].ID)
}

func TestGenerateServiceInvoice(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)
	p := mustProduct(t, tl, "Battery", 3)

	tk := openTicket(t, tl, service.Part{ProductID: p.ID, Quantity: 1, UnitCost: tally.Major(75)})
	inv, err := tl.GenerateServiceInvoice(ctx, tk.ID)
	require.NoError(t, err)

	assert.Regexp(t, `^SRV-\d+$`, inv.InvoiceNumber)
	assert.Equal(t, tally.Major(25), inv.LaborCost)
	assert.Equal(t, tally.Major(75), inv.PartsCost)
	assert.Equal(t, tally.Major(100), inv.Subtotal)
	assert.Equal(t, tally.Major(10), inv.Tax)
	assert.Equal(t, tally.Major(110), inv.Total)
	assert.Equal(t, service.InvoiceDraft, inv.Status)
	assert.Equal(t, tk.ID, inv.ServiceTicketID)

	list, err := tl.ListServiceInvoices(ctx, service.InvoiceListOpts{TicketID: tk.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOpenDuplicateTicketLeavesStock(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)

	p := mustProduct(t, tl, "Fan", 7)
	tech := &service.Technician{Name: "Jamal"}
	require.NoError(t, tl.CreateTechnician(ctx, tech))

	completed := func() *service.Ticket {
		return &service.Ticket{
			DeviceType:         service.DeviceLaptop,
			Brand:              "Asus",
			IssueDescription:   "Overheats",
			Status:             service.StatusCompleted,
			AssignedTechnician: tech.ID,
			PartsUsed:          []service.Part{{ProductID: p.ID, Quantity: 3, UnitCost: tally.Major(8)}},
		}
	}

	first := completed()
	require.NoError(t, tl.OpenServiceTicket(ctx, first))
	assert.Equal(t, int64(4), stockOf(t, tl, p.ID))
	stored, err := tl.GetServiceTicket(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CompletedDate)

	dup := completed()
	dup.ID = first.ID
	require.ErrorIs(t, tl.OpenServiceTicket(ctx, dup), tally.ErrAlreadyExists)

	assert.Equal(t, int64(4), stockOf(t, tl, p.ID))
	got, err := tl.GetTechnician(ctx, tech.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalTicketsCompleted)
}
