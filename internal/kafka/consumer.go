package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"evento/internal/logger"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
	log    *logger.Logger
}

// NewConsumer creates a consumer-group reader over the given topics
func NewConsumer(brokers []string, topics []string, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupTopics: topics,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
	})
	return &Consumer{reader: reader, log: log}
}

// Start reads until ctx is canceled. Undecodable messages are logged and
// skipped.
func (c *Consumer) Start(ctx context.Context, handler func(Envelope)) error {
	c.log.Info("KAFKA", "Kafka consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			c.log.Error("KAFKA", fmt.Sprintf("Error reading message: %v", err))
			continue
		}

		env, err := DecodeEnvelope(msg.Value)
		if err != nil {
			c.log.Warn("KAFKA", fmt.Sprintf("Failed to decode message at %s/%d@%d: %v", msg.Topic, msg.Partition, msg.Offset, err))
			continue
		}
		handler(env)
	}
}

func DecodeEnvelope(value []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return Envelope{}, err
	}
	if env.Type == "" || env.EventID == "" {
		return Envelope{}, errors.New("message is missing type or event id")
	}
	return env, nil
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
