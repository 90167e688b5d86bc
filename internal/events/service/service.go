package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evento/internal/clock"
	"evento/internal/logger"
	"evento/internal/models"
)

type DBLayer interface {
	CreateEvent(ctx context.Context, ev *models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	BrowseEvents(ctx context.Context, name string) ([]*models.Event, error)
	SaveEvent(ctx context.Context, ev *models.Event) error
	DeleteEvent(ctx context.Context, id string) error
	CountEvents(ctx context.Context) (int, error)
}

type EventLock interface {
	Acquire(ctx context.Context, eventID string) (func(), error)
}

type KafkaPublisher interface {
	PublishEventCreated(ctx context.Context, ev *models.Event) error
	PublishEventUpdated(ctx context.Context, ev *models.Event) error
	PublishEventDeleted(ctx context.Context, eventID string) error
	PublishTicketsAdded(ctx context.Context, ev *models.Event, added []models.Ticket) error
	PublishTicketsPurchased(ctx context.Context, ev *models.Event, user models.User, purchased []models.Ticket) error
	PublishTicketsCanceled(ctx context.Context, ev *models.Event, user models.User, canceled []models.Ticket) error
}

// InventoryNotifier receives the committed state of an event after every
// successful write.
type InventoryNotifier interface {
	Broadcast(ev *models.Event)
	BroadcastDeleted(eventID string)
}

// Options wires a service. Lock and Kafka may be nil; the version check in
// the database alone keeps writes correct.
type Options struct {
	DB          DBLayer
	Lock        EventLock
	Kafka       KafkaPublisher
	Notifier    InventoryNotifier
	Logger      *logger.Logger
	Clock       clock.Clock
	SaveRetries int
	// LockWait bounds how long a mutation waits for the event lock before
	// going ahead without it.
	LockWait time.Duration
}

type store struct {
	Options
}

func newStore(opts Options) store {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem()
	}
	if opts.SaveRetries < 1 {
		opts.SaveRetries = 3
	}
	if opts.LockWait <= 0 {
		opts.LockWait = 2 * time.Second
	}
	return store{Options: opts}
}

func (s *store) lock(ctx context.Context, eventID string) func() {
	if s.Lock == nil {
		return func() {}
	}
	lockCtx, cancel := context.WithTimeout(ctx, s.LockWait)
	defer cancel()
	release, err := s.Lock.Acquire(lockCtx, eventID)
	if err != nil {
		s.Logger.Warn("REDIS", fmt.Sprintf("Proceeding without lock for event %s: %v", eventID, err))
		return func() {}
	}
	return release
}

// mutate runs lock, load, fn, save for one event, reloading and re-running
// fn when the save loses a version race. fn must only touch ev. Subscribers
// are notified before the lock is released.
func (s *store) mutate(ctx context.Context, eventID string, fn func(ev *models.Event) error) (*models.Event, error) {
	release := s.lock(ctx, eventID)
	defer release()

	var lastErr error
	for attempt := 1; attempt <= s.SaveRetries; attempt++ {
		ev, err := s.DB.GetEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if err := fn(ev); err != nil {
			return nil, err
		}

		err = s.DB.SaveEvent(ctx, ev)
		if err == nil {
			s.notify(ev)
			return ev, nil
		}
		if !errors.Is(err, models.ErrConcurrentUpdate) {
			return nil, fmt.Errorf("failed to save event %s: %w", eventID, err)
		}
		lastErr = err
		s.Logger.Debug("EVENTS", fmt.Sprintf("Version conflict on event %s (attempt %d/%d)", eventID, attempt, s.SaveRetries))
	}
	return nil, fmt.Errorf("event %s: giving up after %d attempts: %w", eventID, s.SaveRetries, lastErr)
}

// publish never fails the caller; the write is already committed.
func (s *store) publish(ctx context.Context, what, eventID string, fn func(KafkaPublisher) error) {
	if s.Kafka == nil {
		return
	}
	if err := fn(s.Kafka); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("Kafka publish error (%s) for event %s: %v", what, eventID, err))
	}
}

func (s *store) notify(ev *models.Event) {
	if s.Notifier != nil {
		s.Notifier.Broadcast(ev)
	}
}

func seatSet(tickets []models.Ticket) map[int]bool {
	out := make(map[int]bool, len(tickets))
	for _, t := range tickets {
		out[t.SeatNumber()] = true
	}
	return out
}
