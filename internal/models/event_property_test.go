package models_test

import (
	"testing"
	"time"

	"evento/internal/clock"
	"evento/internal/models"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

var propertyUsers = []models.User{
	{ID: "u1", Name: "one"},
	{ID: "u2", Name: "two"},
	{ID: "u3", Name: "three"},
}

func TestProperty_ValidConstruction(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[A-Za-z][A-Za-z ]{0,20}`).Draw(t, "name")
		desc := rapid.StringMatching(`[a-z][a-z .]{0,40}`).Draw(t, "description")
		offset := rapid.Int64Range(1, int64(365*24*time.Hour)).Draw(t, "duration")

		ev, err := models.NewEvent("e", name, desc, start, start.Add(time.Duration(offset)), nil)
		if err != nil {
			t.Fatalf("valid event rejected: %v", err)
		}
		if ev.AvailableCount() != 0 {
			t.Fatalf("fresh event has %d available tickets", ev.AvailableCount())
		}
	})
}

func TestProperty_StartNotBeforeEndRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		back := rapid.Int64Range(0, int64(365*24*time.Hour)).Draw(t, "back")
		_, err := models.NewEvent("e", "n", "d", start, start.Add(-time.Duration(back)), nil)
		if err == nil {
			t.Fatalf("end %v before start accepted", back)
		}
	})
}

func TestProperty_AddTicketsNumbersSeats(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ev, _ := models.NewEvent("e", "n", "d", start, end, clock.NewFixed(start))
		batches := rapid.SliceOfN(rapid.IntRange(0, 20), 1, 5).Draw(t, "batches")

		total := 0
		for _, n := range batches {
			if err := ev.AddTickets(n, decimal.NewFromInt(10)); err != nil {
				t.Fatalf("add tickets: %v", err)
			}
			total += n
		}
		for i, tk := range ev.Tickets() {
			if tk.SeatNumber() != i+1 {
				t.Fatalf("seat %d at position %d", tk.SeatNumber(), i)
			}
		}
		if ev.AvailableCount() != total {
			t.Fatalf("available %d, want %d", ev.AvailableCount(), total)
		}
	})
}

func TestProperty_PurchaseCancelRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ev, _ := models.NewEvent("e", "n", "d", start, end, clock.NewFixed(start))
		total := rapid.IntRange(0, 30).Draw(t, "total")
		_ = ev.AddTickets(total, decimal.NewFromInt(10))
		k := rapid.IntRange(0, total).Draw(t, "k")

		available, purchased := ev.AvailableCount(), ev.PurchasedCount()
		if err := ev.PurchaseTickets(propertyUsers[0], k); err != nil {
			t.Fatalf("purchase: %v", err)
		}
		if err := ev.CancelPurchasedTickets(propertyUsers[0], k); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if ev.AvailableCount() != available || ev.PurchasedCount() != purchased {
			t.Fatalf("counts changed: %d/%d -> %d/%d", available, purchased, ev.AvailableCount(), ev.PurchasedCount())
		}
	})
}

// Random operation sequences never break the inventory invariants and
// failed operations never change state.
func TestProperty_InventoryInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ev, _ := models.NewEvent("e", "n", "d", start, end, clock.NewFixed(start))

		t.Repeat(map[string]func(*rapid.T){
			"add": func(t *rapid.T) {
				n := rapid.IntRange(0, 10).Draw(t, "n")
				before := ev.TicketCount()
				if err := ev.AddTickets(n, decimal.NewFromInt(int64(n))); err != nil {
					t.Fatalf("add: %v", err)
				}
				if ev.TicketCount() != before+n {
					t.Fatalf("ticket count %d, want %d", ev.TicketCount(), before+n)
				}
			},
			"purchase": func(t *rapid.T) {
				user := rapid.SampledFrom(propertyUsers).Draw(t, "user")
				n := rapid.IntRange(0, 12).Draw(t, "n")
				before := ev.AvailableCount()
				err := ev.PurchaseTickets(user, n)
				if n > before {
					if err == nil {
						t.Fatalf("purchase of %d with %d available succeeded", n, before)
					}
					if ev.AvailableCount() != before {
						t.Fatalf("failed purchase changed availability")
					}
					return
				}
				if err != nil {
					t.Fatalf("purchase: %v", err)
				}
				if ev.AvailableCount() != before-n {
					t.Fatalf("available %d, want %d", ev.AvailableCount(), before-n)
				}
			},
			"cancel": func(t *rapid.T) {
				user := rapid.SampledFrom(propertyUsers).Draw(t, "user")
				n := rapid.IntRange(0, 12).Draw(t, "n")
				owned := len(ev.TicketsPurchasedBy(user))
				available := ev.AvailableCount()
				err := ev.CancelPurchasedTickets(user, n)
				if n > owned {
					if err == nil {
						t.Fatalf("cancel of %d with %d owned succeeded", n, owned)
					}
					if ev.AvailableCount() != available {
						t.Fatalf("failed cancel changed availability")
					}
					return
				}
				if err != nil {
					t.Fatalf("cancel: %v", err)
				}
				if len(ev.TicketsPurchasedBy(user)) != owned-n {
					t.Fatalf("owned %d, want %d", len(ev.TicketsPurchasedBy(user)), owned-n)
				}
			},
			"": func(t *rapid.T) {
				if len(ev.AvailableTickets())+len(ev.PurchasedTickets()) != ev.TicketCount() {
					t.Fatalf("available + purchased != total")
				}
				owned := 0
				for _, u := range propertyUsers {
					owned += len(ev.TicketsPurchasedBy(u))
				}
				if owned != len(ev.PurchasedTickets()) {
					t.Fatalf("owned tickets %d, purchased %d", owned, len(ev.PurchasedTickets()))
				}
				for i, tk := range ev.Tickets() {
					if tk.SeatNumber() != i+1 {
						t.Fatalf("seat numbers not contiguous at %d", i)
					}
					if tk.Purchased() == (tk.UserID() == "") {
						t.Fatalf("seat %d purchased=%v owner=%q", tk.SeatNumber(), tk.Purchased(), tk.UserID())
					}
				}
			},
		})
	})
}
