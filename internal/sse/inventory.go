package sse

import (
	"context"
	"sync"
	"time"

	"evento/internal/models"
)

const clientBuffer = 10

// InventoryUpdate is the live availability of one event as sent to stream
// clients.
type InventoryUpdate struct {
	EventID   string    `json:"eventId"`
	Version   int       `json:"version"`
	Tickets   int       `json:"ticketsCount"`
	Available int       `json:"availableTicketsCount"`
	Purchased int       `json:"purchasedTicketsCount"`
	Deleted   bool      `json:"deleted,omitempty"`
	At        time.Time `json:"at"`
}

func UpdateFor(ev *models.Event) InventoryUpdate {
	return InventoryUpdate{
		EventID:   ev.ID(),
		Version:   ev.Version(),
		Tickets:   ev.TicketCount(),
		Available: ev.AvailableCount(),
		Purchased: ev.PurchasedCount(),
		At:        ev.UpdatedAt(),
	}
}

// InventoryEmitter fans inventory updates out to per-event subscribers.
// Slow clients miss updates instead of blocking writers. Updates at or below
// the last version sent for an event are dropped, so clients only ever see
// versions increase.
type InventoryEmitter struct {
	mu          sync.RWMutex
	clients     map[string][]chan InventoryUpdate
	lastVersion map[string]int
	now         func() time.Time
}

func NewInventoryEmitter() *InventoryEmitter {
	return &InventoryEmitter{
		clients:     make(map[string][]chan InventoryUpdate),
		lastVersion: make(map[string]int),
		now:         time.Now,
	}
}

// Subscribe registers a client for eventID. The channel is closed once ctx
// is done or the event is deleted.
func (e *InventoryEmitter) Subscribe(ctx context.Context, eventID string) <-chan InventoryUpdate {
	ch := make(chan InventoryUpdate, clientBuffer)

	e.mu.Lock()
	e.clients[eventID] = append(e.clients[eventID], ch)
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.remove(eventID, ch)
	}()
	return ch
}

func (e *InventoryEmitter) Broadcast(ev *models.Event) {
	e.emit(UpdateFor(ev))
}

// BroadcastDeleted sends a final update and disconnects the event's clients.
func (e *InventoryEmitter) BroadcastDeleted(eventID string) {
	e.emit(InventoryUpdate{EventID: eventID, Deleted: true, At: e.now().UTC()})

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.clients[eventID] {
		close(ch)
	}
	delete(e.clients, eventID)
	delete(e.lastVersion, eventID)
}

func (e *InventoryEmitter) emit(update InventoryUpdate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !update.Deleted {
		if last, ok := e.lastVersion[update.EventID]; ok && update.Version <= last {
			return
		}
		e.lastVersion[update.EventID] = update.Version
	}
	for _, ch := range e.clients[update.EventID] {
		select {
		case ch <- update:
		default:
		}
	}
}

func (e *InventoryEmitter) remove(eventID string, ch chan InventoryUpdate) {
	e.mu.Lock()
	defer e.mu.Unlock()

	clients := e.clients[eventID]
	for i, c := range clients {
		if c == ch {
			e.clients[eventID] = append(clients[:i], clients[i+1:]...)
			close(ch)
			break
		}
	}
	if len(e.clients[eventID]) == 0 {
		delete(e.clients, eventID)
	}
}

func (e *InventoryEmitter) ClientCount(eventID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.clients[eventID])
}
