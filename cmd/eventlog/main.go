package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"evento/internal/config"
	"evento/internal/kafka"
	"evento/internal/logger"

	"github.com/joho/godotenv"
)

// eventlog tails every domain event topic and prints one line per message.
func main() {
	group := flag.String("group", "evento-eventlog", "kafka consumer group")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.NewLogger(logger.Options{Service: "evento-eventlog", Level: cfg.Log.Level})
	defer log.Close()

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("CONFIG", "KAFKA_BROKERS must list at least one broker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	existing, err := kafka.ListTopics(ctx, cfg.Kafka.Brokers)
	if err != nil {
		log.Fatal("KAFKA", fmt.Sprintf("Failed to list topics: %v", err))
	}
	topics, missing := splitTopics(cfg.Kafka.Topics.All(), existing)
	for _, topic := range missing {
		log.Warn("KAFKA", fmt.Sprintf("Topic %s does not exist yet, skipping", topic))
	}
	if len(topics) == 0 {
		log.Fatal("KAFKA", "None of the configured topics exist")
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, topics, *group, log)
	defer consumer.Close()

	err = consumer.Start(ctx, func(env kafka.Envelope) {
		fmt.Println(formatEnvelope(env))
	})
	if err != nil {
		log.Error("KAFKA", err.Error())
	}
}

// splitTopics separates the wanted topics into those the broker knows and
// those it does not, keeping the wanted order.
func splitTopics(want, existing []string) (found, missing []string) {
	known := make(map[string]bool, len(existing))
	for _, t := range existing {
		known[t] = true
	}
	for _, t := range want {
		if known[t] {
			found = append(found, t)
		} else {
			missing = append(missing, t)
		}
	}
	return found, missing
}

func formatEnvelope(env kafka.Envelope) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-18s %s v%d", env.OccurredAt.Format("2006-01-02T15:04:05Z07:00"), env.Type, env.EventID, env.Version)
	if env.Event != nil {
		fmt.Fprintf(&b, " %q %d/%d available", env.Event.Name, env.Event.Available, env.Event.Total)
	}
	if env.Tickets != nil {
		if env.Tickets.UserID != "" {
			fmt.Fprintf(&b, " user=%s", env.Tickets.UserID)
		}
		fmt.Fprintf(&b, " seats=%v available=%d", env.Tickets.SeatNumbers, env.Tickets.Available)
	}
	return b.String()
}
