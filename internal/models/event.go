package models

import (
	"sort"
	"strings"
	"time"

	"evento/internal/clock"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of decimal places a ticket price is stored with.
const PriceScale = 2

// maxPrice is the first value that no longer fits numeric(12,2).
var maxPrice = decimal.New(1, 12-PriceScale)

// Event is the aggregate root for a ticketed event. Every change to its
// tickets goes through the methods below, which check before they mutate.
//
// An Event is not safe for concurrent use. Callers serialize access through
// the persistence layer (version check) and, optionally, a per-event lock.
type Event struct {
	id          string
	name        string
	description string
	startDate   time.Time
	endDate     time.Time
	createdAt   time.Time
	updatedAt   time.Time
	version     int

	// ordered by seat number; seat numbers are unique
	tickets []*Ticket

	clock clock.Clock
}

// NewEvent validates the descriptive fields and date range and returns an
// event without tickets. A nil clock falls back to the system clock.
func NewEvent(id, name, description string, startDate, endDate time.Time, clk clock.Clock) (*Event, error) {
	if clk == nil {
		clk = clock.NewSystem()
	}
	e := &Event{id: id, clock: clk}
	if err := e.SetName(name); err != nil {
		return nil, err
	}
	if err := e.SetDescription(description); err != nil {
		return nil, err
	}
	if err := e.SetDate(startDate, endDate); err != nil {
		return nil, err
	}
	now := clk.Now()
	e.createdAt = now
	e.updatedAt = now
	return e, nil
}

func (e *Event) ID() string { return e.id }
func (e *Event) Name() string { return e.name }
func (e *Event) Description() string { return e.description }
func (e *Event) StartDate() time.Time { return e.startDate }
func (e *Event) EndDate() time.Time { return e.endDate }
func (e *Event) CreatedAt() time.Time { return e.createdAt }
func (e *Event) UpdatedAt() time.Time { return e.updatedAt }

// Version is the persisted revision this aggregate was loaded at.
func (e *Event) Version() int { return e.version }

// MarkPersisted records the revision a successful write stored.
func (e *Event) MarkPersisted(version int) { e.version = version }

func (e *Event) SetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{EventID: e.id, Field: "name", Reason: "can not have an empty name"}
	}
	e.name = name
	e.updatedAt = e.clock.Now()
	return nil
}

func (e *Event) SetDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return &ValidationError{EventID: e.id, Field: "description", Reason: "can not have an empty description"}
	}
	e.description = description
	e.updatedAt = e.clock.Now()
	return nil
}

// SetDate replaces the date range. Unlike the other setters it leaves
// UpdatedAt alone.
func (e *Event) SetDate(startDate, endDate time.Time) error {
	if !startDate.Before(endDate) {
		return &ValidationError{EventID: e.id, Field: "endDate", Reason: "must have an end date greater than start date"}
	}
	e.startDate = startDate
	e.endDate = endDate
	return nil
}

// AddTickets appends amount tickets at price, numbering seats from
// TicketCount()+1. Zero is a no-op.
func (e *Event) AddTickets(amount int, price decimal.Decimal) error {
	if amount < 0 {
		return &ValidationError{EventID: e.id, Field: "amount", Reason: "can not add a negative amount of tickets"}
	}
	if price.IsNegative() {
		return &ValidationError{EventID: e.id, Field: "price", Reason: "can not have tickets with a negative price"}
	}
	if !price.Equal(price.Round(PriceScale)) {
		return &ValidationError{EventID: e.id, Field: "price", Reason: "price can have at most 2 decimal places"}
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return &ValidationError{EventID: e.id, Field: "price", Reason: "price is too large"}
	}
	seat := len(e.tickets) + 1
	for i := 0; i < amount; i++ {
		e.tickets = append(e.tickets, newTicket(e.id, seat, price))
		seat++
	}
	return nil
}

// PurchaseTickets assigns amount available tickets to user, lowest seats
// first. Either every ticket is purchased or none is.
func (e *Event) PurchaseTickets(user User, amount int) error {
	if amount < 0 {
		return &ValidationError{EventID: e.id, Field: "amount", Reason: "can not purchase a negative amount of tickets"}
	}
	available := e.available()
	if len(available) < amount {
		return &InsufficientInventoryError{Requested: amount, Available: len(available), UserName: user.Name}
	}
	for _, t := range available[:amount] {
		t.purchase(user)
	}
	return nil
}

// CancelPurchasedTickets returns amount of user's tickets to the available
// pool. Tickets are never removed or renumbered.
func (e *Event) CancelPurchasedTickets(user User, amount int) error {
	if amount < 0 {
		return &ValidationError{EventID: e.id, Field: "amount", Reason: "can not cancel a negative amount of tickets"}
	}
	owned := e.ownedBy(user)
	if len(owned) < amount {
		return &InsufficientPurchasedTicketsError{Requested: amount, Purchased: len(owned), UserName: user.Name}
	}
	for _, t := range owned[:amount] {
		t.cancel()
	}
	return nil
}

// Tickets returns copies of every ticket in seat order.
func (e *Event) Tickets() []Ticket {
	return copyTickets(e.tickets)
}

func (e *Event) PurchasedTickets() []Ticket {
	out := make([]Ticket, 0, len(e.tickets))
	for _, t := range e.tickets {
		if t.purchased {
			out = append(out, *t)
		}
	}
	return out
}

func (e *Event) AvailableTickets() []Ticket {
	return copyTickets(e.available())
}

func (e *Event) TicketsPurchasedBy(user User) []Ticket {
	return copyTickets(e.ownedBy(user))
}

// Ticket looks up a single seat.
func (e *Event) Ticket(seatNumber int) (Ticket, bool) {
	i := sort.Search(len(e.tickets), func(i int) bool { return e.tickets[i].seatNumber >= seatNumber })
	if i < len(e.tickets) && e.tickets[i].seatNumber == seatNumber {
		return *e.tickets[i], true
	}
	return Ticket{}, false
}

func (e *Event) TicketCount() int { return len(e.tickets) }

func (e *Event) AvailableCount() int { return len(e.available()) }

func (e *Event) PurchasedCount() int { return len(e.tickets) - len(e.available()) }

func (e *Event) available() []*Ticket {
	out := make([]*Ticket, 0, len(e.tickets))
	for _, t := range e.tickets {
		if !t.purchased {
			out = append(out, t)
		}
	}
	return out
}

func (e *Event) ownedBy(user User) []*Ticket {
	var out []*Ticket
	for _, t := range e.tickets {
		if t.OwnedBy(user) {
			out = append(out, t)
		}
	}
	return out
}

func copyTickets(in []*Ticket) []Ticket {
	out := make([]Ticket, len(in))
	for i, t := range in {
		out[i] = *t
	}
	return out
}

// EventSnapshot is the flat state of an Event as stored by persistence.
type EventSnapshot struct {
	ID          string
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int
	Tickets     []TicketSnapshot
}

func (e *Event) Snapshot() EventSnapshot {
	s := EventSnapshot{
		ID:          e.id,
		Name:        e.name,
		Description: e.description,
		StartDate:   e.startDate,
		EndDate:     e.endDate,
		CreatedAt:   e.createdAt,
		UpdatedAt:   e.updatedAt,
		Version:     e.version,
		Tickets:     make([]TicketSnapshot, len(e.tickets)),
	}
	for i, t := range e.tickets {
		s.Tickets[i] = t.snapshot()
	}
	return s
}

// RestoreEvent rebuilds an aggregate from stored state without re-running
// validation. Tickets are re-parented to s.ID and sorted by seat.
func RestoreEvent(s EventSnapshot, clk clock.Clock) *Event {
	if clk == nil {
		clk = clock.NewSystem()
	}
	e := &Event{
		id:          s.ID,
		name:        s.Name,
		description: s.Description,
		startDate:   s.StartDate,
		endDate:     s.EndDate,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
		version:     s.Version,
		tickets:     make([]*Ticket, 0, len(s.Tickets)),
		clock:       clk,
	}
	for _, ts := range s.Tickets {
		e.tickets = append(e.tickets, &Ticket{
			eventID:    s.ID,
			seatNumber: ts.SeatNumber,
			price:      ts.Price,
			purchased:  ts.Purchased,
			userID:     ts.UserID,
		})
	}
	sort.Slice(e.tickets, func(i, j int) bool { return e.tickets[i].seatNumber < e.tickets[j].seatNumber })
	return e
}
