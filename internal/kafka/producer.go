package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"evento/internal/config"
	"evento/internal/logger"
	"evento/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer MessageWriter
	Topics config.TopicConfig
	Logger *logger.Logger
	now    func() time.Time
}

// NewProducer returns a producer whose writer routes each message by its
// Topic field.
func NewProducer(brokers []string, topics config.TopicConfig, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return NewProducerWithWriter(writer, topics, log)
}

func NewProducerWithWriter(w MessageWriter, topics config.TopicConfig, log *logger.Logger) *Producer {
	return &Producer{Writer: w, Topics: topics, Logger: log, now: time.Now}
}

// PublishEventCreated streams the event creation to Kafka
func (p *Producer) PublishEventCreated(ctx context.Context, ev *models.Event) error {
	return p.publish(ctx, p.Topics.EventCreated, eventEnvelope(TypeEventCreated, ev, p.now().UTC()))
}

// PublishEventUpdated streams the event update to Kafka
func (p *Producer) PublishEventUpdated(ctx context.Context, ev *models.Event) error {
	return p.publish(ctx, p.Topics.EventUpdated, eventEnvelope(TypeEventUpdated, ev, p.now().UTC()))
}

// PublishEventDeleted streams the event removal to Kafka
func (p *Producer) PublishEventDeleted(ctx context.Context, eventID string) error {
	return p.publish(ctx, p.Topics.EventDeleted, Envelope{
		Type:       TypeEventDeleted,
		EventID:    eventID,
		OccurredAt: p.now().UTC(),
	})
}

func (p *Producer) PublishTicketsAdded(ctx context.Context, ev *models.Event, added []models.Ticket) error {
	return p.publish(ctx, p.Topics.TicketsAdded, ticketsEnvelope(TypeTicketsAdded, ev, "", added, p.now().UTC()))
}

func (p *Producer) PublishTicketsPurchased(ctx context.Context, ev *models.Event, user models.User, purchased []models.Ticket) error {
	return p.publish(ctx, p.Topics.TicketsPurchased, ticketsEnvelope(TypeTicketsPurchased, ev, user.ID, purchased, p.now().UTC()))
}

func (p *Producer) PublishTicketsCanceled(ctx context.Context, ev *models.Event, user models.User, canceled []models.Ticket) error {
	return p.publish(ctx, p.Topics.TicketsCanceled, ticketsEnvelope(TypeTicketsCanceled, ev, user.ID, canceled, p.now().UTC()))
}

func (p *Producer) publish(ctx context.Context, topic string, env Envelope) error {
	msgBytes, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", env.Type, err)
	}

	p.Logger.LogKafka("PUBLISH", topic, fmt.Sprintf("%s %s", env.Type, env.EventID))

	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(env.EventID),
		Value: msgBytes,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
