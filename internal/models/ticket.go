package models

import (
	"github.com/shopspring/decimal"
)

// Ticket is a single seat owned by an Event. It can only be created and
// mutated through the owning Event.
type Ticket struct {
	eventID    string
	seatNumber int
	price      decimal.Decimal
	purchased  bool
	userID     string
}

func newTicket(eventID string, seatNumber int, price decimal.Decimal) *Ticket {
	return &Ticket{
		eventID:    eventID,
		seatNumber: seatNumber,
		price:      price,
	}
}

func (t Ticket) EventID() string { return t.eventID }
func (t Ticket) SeatNumber() int { return t.seatNumber }
func (t Ticket) Price() decimal.Decimal { return t.price }
func (t Ticket) Purchased() bool { return t.purchased }
func (t Ticket) UserID() string { return t.userID }
func (t Ticket) OwnedBy(user User) bool { return t.purchased && t.userID == user.ID }

// purchase does not re-check availability; Event does that once for the batch.
func (t *Ticket) purchase(user User) {
	t.purchased = true
	t.userID = user.ID
}

func (t *Ticket) cancel() {
	t.purchased = false
	t.userID = ""
}

// TicketSnapshot is the flat form of a Ticket used by persistence.
type TicketSnapshot struct {
	EventID    string
	SeatNumber int
	Price      decimal.Decimal
	Purchased  bool
	UserID     string
}

func (t Ticket) snapshot() TicketSnapshot {
	return TicketSnapshot{
		EventID:    t.eventID,
		SeatNumber: t.seatNumber,
		Price:      t.price,
		Purchased:  t.purchased,
		UserID:     t.userID,
	}
}
