package service

import (
	"context"
	"errors"
	"fmt"

	"evento/internal/models"
)

var ErrTicketNotOwned = errors.New("ticket not found for user")

type PassGenerator interface {
	PNG(ticket models.Ticket) ([]byte, error)
}

type TicketService struct {
	store
	Passes PassGenerator
}

func NewTicketService(opts Options, passes PassGenerator) *TicketService {
	return &TicketService{store: newStore(opts), Passes: passes}
}

// Purchase assigns amount available tickets to user and returns them.
func (s *TicketService) Purchase(ctx context.Context, eventID string, user models.User, amount int) ([]models.Ticket, error) {
	var owned map[int]bool
	ev, err := s.mutate(ctx, eventID, func(ev *models.Event) error {
		owned = seatSet(ev.TicketsPurchasedBy(user))
		return ev.PurchaseTickets(user, amount)
	})
	if err != nil {
		return nil, err
	}

	var purchased []models.Ticket
	for _, t := range ev.TicketsPurchasedBy(user) {
		if !owned[t.SeatNumber()] {
			purchased = append(purchased, t)
		}
	}
	s.Logger.Info("TICKETS", fmt.Sprintf("User %s purchased %d tickets for event %s", user.ID, len(purchased), eventID))

	if len(purchased) > 0 {
		s.publish(ctx, "tickets purchased", eventID, func(k KafkaPublisher) error {
			return k.PublishTicketsPurchased(ctx, ev, user, purchased)
		})
	}
	return purchased, nil
}

// Cancel returns amount of user's tickets to the pool and returns the
// released seats.
func (s *TicketService) Cancel(ctx context.Context, eventID string, user models.User, amount int) ([]models.Ticket, error) {
	var owned map[int]bool
	ev, err := s.mutate(ctx, eventID, func(ev *models.Event) error {
		owned = seatSet(ev.TicketsPurchasedBy(user))
		return ev.CancelPurchasedTickets(user, amount)
	})
	if err != nil {
		return nil, err
	}

	still := seatSet(ev.TicketsPurchasedBy(user))
	var canceled []models.Ticket
	for _, t := range ev.AvailableTickets() {
		if owned[t.SeatNumber()] && !still[t.SeatNumber()] {
			canceled = append(canceled, t)
		}
	}
	s.Logger.Info("TICKETS", fmt.Sprintf("User %s canceled %d tickets for event %s", user.ID, len(canceled), eventID))

	if len(canceled) > 0 {
		s.publish(ctx, "tickets canceled", eventID, func(k KafkaPublisher) error {
			return k.PublishTicketsCanceled(ctx, ev, user, canceled)
		})
	}
	return canceled, nil
}

func (s *TicketService) UserTickets(ctx context.Context, eventID string, user models.User) ([]models.Ticket, error) {
	ev, err := s.DB.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return ev.TicketsPurchasedBy(user), nil
}

// Pass renders the QR pass for one of user's seats.
func (s *TicketService) Pass(ctx context.Context, eventID string, user models.User, seat int) ([]byte, error) {
	if s.Passes == nil {
		return nil, errors.New("ticket passes are not configured")
	}
	ev, err := s.DB.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ticket, ok := ev.Ticket(seat)
	if !ok || !ticket.OwnedBy(user) {
		return nil, fmt.Errorf("seat %d of event %s: %w", seat, eventID, ErrTicketNotOwned)
	}
	img, err := s.Passes.PNG(ticket)
	if err != nil {
		return nil, fmt.Errorf("failed to render pass: %w", err)
	}
	return img, nil
}
