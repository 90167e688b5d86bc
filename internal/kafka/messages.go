package kafka

import (
	"time"

	"evento/internal/models"
)

const (
	TypeEventCreated     = "event.created"
	TypeEventUpdated     = "event.updated"
	TypeEventDeleted     = "event.deleted"
	TypeTicketsAdded     = "tickets.added"
	TypeTicketsPurchased = "tickets.purchased"
	TypeTicketsCanceled  = "tickets.canceled"
)

// Envelope is the value of every message the service publishes. Messages
// are keyed by event ID so all changes to one event land on one partition.
type Envelope struct {
	Type       string          `json:"type"`
	EventID    string          `json:"event_id"`
	Version    int             `json:"version"`
	OccurredAt time.Time       `json:"occurred_at"`
	Event      *EventPayload   `json:"event,omitempty"`
	Tickets    *TicketsPayload `json:"tickets,omitempty"`
}

type EventPayload struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Total       int       `json:"total_tickets"`
	Available   int       `json:"available_tickets"`
}

type TicketsPayload struct {
	UserID      string `json:"user_id,omitempty"`
	SeatNumbers []int  `json:"seat_numbers"`
	Price       string `json:"price,omitempty"`
	Available   int    `json:"available_tickets"`
}

func eventEnvelope(kind string, ev *models.Event, at time.Time) Envelope {
	return Envelope{
		Type:       kind,
		EventID:    ev.ID(),
		Version:    ev.Version(),
		OccurredAt: at,
		Event: &EventPayload{
			Name:        ev.Name(),
			Description: ev.Description(),
			StartDate:   ev.StartDate(),
			EndDate:     ev.EndDate(),
			Total:       ev.TicketCount(),
			Available:   ev.AvailableCount(),
		},
	}
}

func ticketsEnvelope(kind string, ev *models.Event, userID string, tickets []models.Ticket, at time.Time) Envelope {
	payload := &TicketsPayload{
		UserID:      userID,
		SeatNumbers: make([]int, 0, len(tickets)),
		Available:   ev.AvailableCount(),
	}
	for _, t := range tickets {
		payload.SeatNumbers = append(payload.SeatNumbers, t.SeatNumber())
	}
	if len(tickets) > 0 {
		payload.Price = tickets[0].Price().StringFixed(2)
	}
	return Envelope{
		Type:       kind,
		EventID:    ev.ID(),
		Version:    ev.Version(),
		OccurredAt: at,
		Tickets:    payload,
	}
}
