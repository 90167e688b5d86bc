package main

import (
	"testing"
	"time"

	"evento/internal/kafka"

	"github.com/stretchr/testify/assert"
)

func TestFormatEnvelope(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	line := formatEnvelope(kafka.Envelope{
		Type: kafka.TypeTicketsPurchased, EventID: "evt-1", Version: 3, OccurredAt: at,
		Tickets: &kafka.TicketsPayload{UserID: "u1", SeatNumbers: []int{4, 5}, Available: 7},
	})
	assert.Equal(t, "2026-03-01T12:00:00Z tickets.purchased  evt-1 v3 user=u1 seats=[4 5] available=7", line)

	line = formatEnvelope(kafka.Envelope{
		Type: kafka.TypeEventCreated, EventID: "evt-2", Version: 1, OccurredAt: at,
		Event: &kafka.EventPayload{Name: "Jazz", Total: 10, Available: 10},
	})
	assert.Equal(t, `2026-03-01T12:00:00Z event.created      evt-2 v1 "Jazz" 10/10 available`, line)
}

func TestSplitTopics(t *testing.T) {
	found, missing := splitTopics(
		[]string{"evento.events.created", "evento.tickets.purchased", "evento.tickets.canceled"},
		[]string{"evento.tickets.purchased", "other", "evento.events.created"},
	)
	assert.Equal(t, []string{"evento.events.created", "evento.tickets.purchased"}, found)
	assert.Equal(t, []string{"evento.tickets.canceled"}, missing)

	found, missing = splitTopics([]string{"a"}, nil)
	assert.Empty(t, found)
	assert.Equal(t, []string{"a"}, missing)
}
