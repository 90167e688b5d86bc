package service

import (
	"context"
	"fmt"
	"time"

	"evento/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateEventInput struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	// Tickets is an optional first batch, all at Price.
	Tickets int
	Price   decimal.Decimal
}

// UpdateEventInput replaces name and description. Dates are optional; a
// missing bound keeps the event's current value.
type UpdateEventInput struct {
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

type EventService struct {
	store
}

func NewEventService(opts Options) *EventService {
	return &EventService{store: newStore(opts)}
}

func (s *EventService) Browse(ctx context.Context, name string) ([]*models.Event, error) {
	events, err := s.DB.BrowseEvents(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to browse events: %w", err)
	}
	return events, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.DB.GetEvent(ctx, id)
}

func (s *EventService) Create(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	ev, err := models.NewEvent(uuid.NewString(), in.Name, in.Description, in.StartDate, in.EndDate, s.Clock)
	if err != nil {
		return nil, err
	}
	if err := ev.AddTickets(in.Tickets, in.Price); err != nil {
		return nil, err
	}
	if err := s.DB.CreateEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.Logger.LogEvent("CREATE", ev.ID(), fmt.Sprintf("%q with %d tickets", ev.Name(), ev.TicketCount()))

	s.publish(ctx, "event created", ev.ID(), func(k KafkaPublisher) error {
		return k.PublishEventCreated(ctx, ev)
	})
	if ev.TicketCount() > 0 {
		s.publish(ctx, "tickets added", ev.ID(), func(k KafkaPublisher) error {
			return k.PublishTicketsAdded(ctx, ev, ev.Tickets())
		})
	}
	return ev, nil
}

func (s *EventService) Update(ctx context.Context, id string, in UpdateEventInput) (*models.Event, error) {
	ev, err := s.mutate(ctx, id, func(ev *models.Event) error {
		if err := ev.SetName(in.Name); err != nil {
			return err
		}
		if err := ev.SetDescription(in.Description); err != nil {
			return err
		}
		if in.StartDate == nil && in.EndDate == nil {
			return nil
		}
		start, end := ev.StartDate(), ev.EndDate()
		if in.StartDate != nil {
			start = *in.StartDate
		}
		if in.EndDate != nil {
			end = *in.EndDate
		}
		return ev.SetDate(start, end)
	})
	if err != nil {
		return nil, err
	}
	s.Logger.LogEvent("UPDATE", id, fmt.Sprintf("now %q", ev.Name()))

	s.publish(ctx, "event updated", id, func(k KafkaPublisher) error {
		return k.PublishEventUpdated(ctx, ev)
	})
	return ev, nil
}

// AddTickets returns the newly numbered tickets.
func (s *EventService) AddTickets(ctx context.Context, id string, amount int, price decimal.Decimal) ([]models.Ticket, error) {
	var before int
	ev, err := s.mutate(ctx, id, func(ev *models.Event) error {
		before = ev.TicketCount()
		return ev.AddTickets(amount, price)
	})
	if err != nil {
		return nil, err
	}
	added := ev.Tickets()[before:]
	s.Logger.LogEvent("ADD_TICKETS", id, fmt.Sprintf("%d tickets at %s", len(added), price.StringFixed(2)))

	if len(added) > 0 {
		s.publish(ctx, "tickets added", id, func(k KafkaPublisher) error {
			return k.PublishTicketsAdded(ctx, ev, added)
		})
	}
	return added, nil
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	release := s.lock(ctx, id)
	defer release()

	if err := s.DB.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.Logger.LogEvent("DELETE", id, "removed")
	if s.Notifier != nil {
		s.Notifier.BroadcastDeleted(id)
	}

	s.publish(ctx, "event deleted", id, func(k KafkaPublisher) error {
		return k.PublishEventDeleted(ctx, id)
	})
	return nil
}
