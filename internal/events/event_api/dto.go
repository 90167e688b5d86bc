package event_api

import (
	"time"

	"evento/internal/models"

	"github.com/shopspring/decimal"
)

type EventDTO struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Description           string    `json:"description"`
	StartDate             time.Time `json:"startDate"`
	EndDate               time.Time `json:"endDate"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
	TicketsCount          int       `json:"ticketsCount"`
	AvailableTicketsCount int       `json:"availableTicketsCount"`
	PurchasedTicketsCount int       `json:"purchasedTicketsCount"`
}

type EventDetailsDTO struct {
	EventDTO
	Tickets []TicketDTO `json:"tickets"`
}

type TicketDTO struct {
	SeatNumber int             `json:"seating"`
	Price      decimal.Decimal `json:"price"`
	Purchased  bool            `json:"purchased"`
}

type CreateEventRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	Tickets     int             `json:"tickets"`
	Price       decimal.Decimal `json:"price"`
}

type UpdateEventRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

type AddTicketsRequest struct {
	Amount int             `json:"amount"`
	Price  decimal.Decimal `json:"price"`
}

type TicketsAmountRequest struct {
	Amount int `json:"amount"`
}

func toEventDTO(ev *models.Event) EventDTO {
	return EventDTO{
		ID:                    ev.ID(),
		Name:                  ev.Name(),
		Description:           ev.Description(),
		StartDate:             ev.StartDate(),
		EndDate:               ev.EndDate(),
		CreatedAt:             ev.CreatedAt(),
		UpdatedAt:             ev.UpdatedAt(),
		TicketsCount:          ev.TicketCount(),
		AvailableTicketsCount: ev.AvailableCount(),
		PurchasedTicketsCount: ev.PurchasedCount(),
	}
}

func toTicketDTOs(tickets []models.Ticket) []TicketDTO {
	out := make([]TicketDTO, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, TicketDTO{SeatNumber: t.SeatNumber(), Price: t.Price(), Purchased: t.Purchased()})
	}
	return out
}

func toEventDetailsDTO(ev *models.Event) EventDetailsDTO {
	return EventDetailsDTO{EventDTO: toEventDTO(ev), Tickets: toTicketDTOs(ev.Tickets())}
}
