package models_test

import (
	"errors"
	"testing"
	"time"

	"evento/internal/clock"
	"evento/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	end   = start.Add(4 * time.Hour)
	alice = models.User{ID: "user-a", Name: "alice"}
	bob   = models.User{ID: "user-b", Name: "bob"}
)

func newEvent(t *testing.T) *models.Event {
	t.Helper()
	ev, err := models.NewEvent("event-1", "Concert", "Open air", start, end, clock.NewFixed(start.Add(-720*time.Hour)))
	require.NoError(t, err)
	return ev
}

func seats(tickets []models.Ticket) []int {
	out := make([]int, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.SeatNumber())
	}
	return out
}

func TestNewEvent(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ev, err := models.NewEvent("event-1", "Concert", "Open air", start, end, clock.NewFixed(now))
	require.NoError(t, err)

	assert.Equal(t, "event-1", ev.ID())
	assert.Equal(t, "Concert", ev.Name())
	assert.Equal(t, "Open air", ev.Description())
	assert.Equal(t, start, ev.StartDate())
	assert.Equal(t, end, ev.EndDate())
	assert.Equal(t, now, ev.CreatedAt())
	assert.Equal(t, now, ev.UpdatedAt())
	assert.Equal(t, 0, ev.TicketCount())
	assert.Empty(t, ev.AvailableTickets())
}

func TestNewEvent_Validation(t *testing.T) {
	cases := []struct {
		name        string
		evName      string
		description string
		start, end  time.Time
		field       string
	}{
		{"empty name", "", "desc", start, end, "name"},
		{"whitespace name", "   ", "desc", start, end, "name"},
		{"empty description", "Concert", "", start, end, "description"},
		{"whitespace description", "Concert", "\t\n", start, end, "description"},
		{"end before start", "Concert", "desc", end, start, "endDate"},
		{"equal dates", "Concert", "desc", start, start, "endDate"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := models.NewEvent("event-9", tc.evName, tc.description, tc.start, tc.end, nil)
			assert.Nil(t, ev)
			require.ErrorIs(t, err, models.ErrValidation)

			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, "event-9", verr.EventID)
			assert.Contains(t, err.Error(), "event-9")
		})
	}
}

func TestSetters_UpdatedAt(t *testing.T) {
	clk := clock.NewManual(start.Add(-720 * time.Hour))
	ev, err := models.NewEvent("event-1", "Concert", "Open air", start, end, clk)
	require.NoError(t, err)
	created := ev.UpdatedAt()

	clk.Advance(time.Minute)
	require.NoError(t, ev.SetName("Festival"))
	assert.Equal(t, "Festival", ev.Name())
	assert.Equal(t, created.Add(time.Minute), ev.UpdatedAt())

	clk.Advance(time.Minute)
	require.NoError(t, ev.SetDescription("Indoor"))
	assert.Equal(t, created.Add(2*time.Minute), ev.UpdatedAt())

	// date changes keep the previous UpdatedAt
	clk.Advance(time.Minute)
	require.NoError(t, ev.SetDate(start.Add(time.Hour), end.Add(time.Hour)))
	assert.Equal(t, created.Add(2*time.Minute), ev.UpdatedAt())
	assert.Equal(t, created, ev.CreatedAt())
}

func TestSetters_RejectInvalidInput(t *testing.T) {
	ev := newEvent(t)
	before := ev.UpdatedAt()

	assert.ErrorIs(t, ev.SetName(" "), models.ErrValidation)
	assert.ErrorIs(t, ev.SetDescription(""), models.ErrValidation)
	assert.ErrorIs(t, ev.SetDate(end, start), models.ErrValidation)

	assert.Equal(t, "Concert", ev.Name())
	assert.Equal(t, "Open air", ev.Description())
	assert.Equal(t, start, ev.StartDate())
	assert.Equal(t, end, ev.EndDate())
	assert.Equal(t, before, ev.UpdatedAt())
}

func TestAddTickets_SequentialSeats(t *testing.T) {
	ev := newEvent(t)

	require.NoError(t, ev.AddTickets(3, decimal.NewFromInt(10)))
	require.NoError(t, ev.AddTickets(2, decimal.NewFromInt(15)))

	tickets := ev.Tickets()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seats(tickets))
	assert.Equal(t, 5, ev.AvailableCount())
	for _, tk := range tickets[:3] {
		assert.True(t, decimal.NewFromInt(10).Equal(tk.Price()))
	}
	for _, tk := range tickets[3:] {
		assert.True(t, decimal.NewFromInt(15).Equal(tk.Price()))
		assert.Equal(t, "event-1", tk.EventID())
		assert.False(t, tk.Purchased())
	}
}

func TestAddTickets_ZeroAndNegative(t *testing.T) {
	ev := newEvent(t)

	require.NoError(t, ev.AddTickets(0, decimal.NewFromInt(10)))
	assert.Equal(t, 0, ev.TicketCount())

	assert.ErrorIs(t, ev.AddTickets(-1, decimal.NewFromInt(10)), models.ErrValidation)
	assert.ErrorIs(t, ev.AddTickets(2, decimal.NewFromInt(-1)), models.ErrValidation)
	assert.Equal(t, 0, ev.TicketCount())
}

func TestAddTickets_PriceMustFitStorage(t *testing.T) {
	ev := newEvent(t)

	err := ev.AddTickets(1, decimal.RequireFromString("10.005"))
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "at most 2 decimal places")
	assert.ErrorIs(t, ev.AddTickets(1, decimal.RequireFromString("10000000000")), models.ErrValidation)
	assert.Equal(t, 0, ev.TicketCount())

	require.NoError(t, ev.AddTickets(1, decimal.RequireFromString("10.500")))
	require.NoError(t, ev.AddTickets(1, decimal.RequireFromString("9999999999.99")))
	assert.Equal(t, "10.50", ev.Tickets()[0].Price().StringFixed(2))
}

func TestPurchaseAndCancelScenario(t *testing.T) {
	ev := newEvent(t)
	require.NoError(t, ev.AddTickets(5, decimal.NewFromInt(20)))

	require.NoError(t, ev.PurchaseTickets(alice, 3))
	assert.Equal(t, 2, ev.AvailableCount())
	assert.Len(t, ev.TicketsPurchasedBy(alice), 3)
	assert.Equal(t, []int{1, 2, 3}, seats(ev.TicketsPurchasedBy(alice)))
	for _, tk := range ev.TicketsPurchasedBy(alice) {
		assert.Equal(t, alice.ID, tk.UserID())
	}

	require.NoError(t, ev.CancelPurchasedTickets(alice, 2))
	assert.Equal(t, 4, ev.AvailableCount())
	assert.Len(t, ev.TicketsPurchasedBy(alice), 1)
	assert.Equal(t, 5, ev.TicketCount())

	for _, tk := range ev.AvailableTickets() {
		assert.Empty(t, tk.UserID())
	}
}

func TestPurchaseTickets_Insufficient(t *testing.T) {
	ev := newEvent(t)
	require.NoError(t, ev.AddTickets(2, decimal.NewFromInt(20)))
	require.NoError(t, ev.PurchaseTickets(bob, 1))

	err := ev.PurchaseTickets(alice, 2)
	require.ErrorIs(t, err, models.ErrInsufficientInventory)

	var ierr *models.InsufficientInventoryError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, 2, ierr.Requested)
	assert.Equal(t, 1, ierr.Available)
	assert.Contains(t, err.Error(), "alice")

	assert.Equal(t, 1, ev.AvailableCount())
	assert.Empty(t, ev.TicketsPurchasedBy(alice))
}

func TestCancelPurchasedTickets_Insufficient(t *testing.T) {
	ev := newEvent(t)
	require.NoError(t, ev.AddTickets(4, decimal.NewFromInt(20)))
	require.NoError(t, ev.PurchaseTickets(alice, 1))
	require.NoError(t, ev.PurchaseTickets(bob, 2))

	err := ev.CancelPurchasedTickets(alice, 2)
	require.ErrorIs(t, err, models.ErrInsufficientPurchasedTickets)
	assert.Contains(t, err.Error(), "alice")

	// bob's tickets do not count towards alice's cancellation
	assert.Len(t, ev.TicketsPurchasedBy(alice), 1)
	assert.Len(t, ev.TicketsPurchasedBy(bob), 2)
	assert.Equal(t, 1, ev.AvailableCount())
}

func TestPurchaseAndCancel_ZeroAndNegative(t *testing.T) {
	ev := newEvent(t)
	require.NoError(t, ev.AddTickets(1, decimal.NewFromInt(20)))

	require.NoError(t, ev.PurchaseTickets(alice, 0))
	require.NoError(t, ev.CancelPurchasedTickets(alice, 0))
	assert.ErrorIs(t, ev.PurchaseTickets(alice, -1), models.ErrValidation)
	assert.ErrorIs(t, ev.CancelPurchasedTickets(alice, -1), models.ErrValidation)
	assert.Equal(t, 1, ev.AvailableCount())
}

func TestCancelledSeatIsReused(t *testing.T) {
	ev := newEvent(t)
	require.NoError(t, ev.AddTickets(3, decimal.NewFromInt(20)))
	require.NoError(t, ev.PurchaseTickets(alice, 3))
	require.NoError(t, ev.CancelPurchasedTickets(alice, 1))

	require.NoError(t, ev.PurchaseTickets(bob, 1))
	assert.Equal(t, []int{1}, seats(ev.TicketsPurchasedBy(bob)))
	assert.Equal(t, []int{2, 3}, seats(ev.TicketsPurchasedBy(alice)))
}

func TestTicketLookup(t *testing.T) {
	ev := newEvent(t)
	require.NoError(t, ev.AddTickets(3, decimal.NewFromInt(20)))

	tk, ok := ev.Ticket(2)
	require.True(t, ok)
	assert.Equal(t, 2, tk.SeatNumber())

	_, ok = ev.Ticket(4)
	assert.False(t, ok)
	_, ok = ev.Ticket(0)
	assert.False(t, ok)
}

func TestReturnedTicketsAreCopies(t *testing.T) {
	ev := newEvent(t)
	require.NoError(t, ev.AddTickets(1, decimal.NewFromInt(20)))

	tickets := ev.Tickets()
	tickets[0] = models.Ticket{}
	assert.Equal(t, 1, ev.Tickets()[0].SeatNumber())
}

func TestSnapshotRoundTrip(t *testing.T) {
	ev := newEvent(t)
	require.NoError(t, ev.AddTickets(3, decimal.RequireFromString("12.50")))
	require.NoError(t, ev.PurchaseTickets(alice, 2))

	snap := ev.Snapshot()
	snap.Version = 7
	// stored order is not guaranteed
	snap.Tickets[0], snap.Tickets[2] = snap.Tickets[2], snap.Tickets[0]

	restored := models.RestoreEvent(snap, nil)
	assert.Equal(t, 7, restored.Version())
	assert.Equal(t, ev.Name(), restored.Name())
	assert.Equal(t, ev.CreatedAt(), restored.CreatedAt())
	assert.Equal(t, []int{1, 2, 3}, seats(restored.Tickets()))
	assert.Equal(t, []int{1, 2}, seats(restored.TicketsPurchasedBy(alice)))

	require.NoError(t, restored.AddTickets(1, decimal.NewFromInt(5)))
	assert.Equal(t, []int{1, 2, 3, 4}, seats(restored.Tickets()))
}
