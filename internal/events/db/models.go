package db

import (
	"time"

	"evento/internal/clock"
	"evento/internal/models"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// EventRow is the stored form of an event aggregate.
type EventRow struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID          string       `bun:"id,pk"`
	Name        string       `bun:"name,notnull"`
	Description string       `bun:"description,notnull"`
	StartDate   time.Time    `bun:"start_date,notnull"`
	EndDate     time.Time    `bun:"end_date,notnull"`
	CreatedAt   time.Time    `bun:"created_at,notnull"`
	UpdatedAt   time.Time    `bun:"updated_at,notnull"`
	Version     int          `bun:"version,notnull"`
	Tickets     []*TicketRow `bun:"rel:has-many,join:id=event_id"`
}

type TicketRow struct {
	bun.BaseModel `bun:"table:tickets,alias:t"`

	EventID    string          `bun:"event_id,pk"`
	SeatNumber int             `bun:"seat_number,pk"`
	Price      decimal.Decimal `bun:"price,type:numeric(12,2),notnull"`
	Purchased  bool            `bun:"purchased,notnull"`
	UserID     string          `bun:"user_id,nullzero"`
}

func toRows(s models.EventSnapshot) (*EventRow, []*TicketRow) {
	row := &EventRow{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		StartDate:   s.StartDate.UTC(),
		EndDate:     s.EndDate.UTC(),
		CreatedAt:   s.CreatedAt.UTC(),
		UpdatedAt:   s.UpdatedAt.UTC(),
		Version:     s.Version,
	}
	tickets := make([]*TicketRow, 0, len(s.Tickets))
	for _, t := range s.Tickets {
		tickets = append(tickets, &TicketRow{
			EventID:    s.ID,
			SeatNumber: t.SeatNumber,
			Price:      t.Price,
			Purchased:  t.Purchased,
			UserID:     t.UserID,
		})
	}
	return row, tickets
}

func (r *EventRow) toEvent(clk clock.Clock) *models.Event {
	s := models.EventSnapshot{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		StartDate:   r.StartDate.UTC(),
		EndDate:     r.EndDate.UTC(),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		Version:     r.Version,
		Tickets:     make([]models.TicketSnapshot, 0, len(r.Tickets)),
	}
	for _, t := range r.Tickets {
		s.Tickets = append(s.Tickets, models.TicketSnapshot{
			EventID:    r.ID,
			SeatNumber: t.SeatNumber,
			Price:      t.Price,
			Purchased:  t.Purchased,
			UserID:     t.UserID,
		})
	}
	return models.RestoreEvent(s, clk)
}
