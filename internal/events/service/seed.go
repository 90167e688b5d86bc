package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Seed creates a demo catalogue when the store holds no events. It returns
// how many events were created.
func Seed(ctx context.Context, s *EventService) (int, error) {
	count, err := s.DB.CountEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	if count > 0 {
		s.Logger.Info("SEED", fmt.Sprintf("Skipping seed, %d events already exist", count))
		return 0, nil
	}

	base := s.Clock.Now().Truncate(24 * time.Hour).Add(24 * time.Hour)
	created := 0
	for i := 1; i <= 10; i++ {
		start := base.AddDate(0, 0, i).Add(18 * time.Hour)
		_, err := s.Create(ctx, CreateEventInput{
			Name:        fmt.Sprintf("Event %d", i),
			Description: fmt.Sprintf("Event %d description.", i),
			StartDate:   start,
			EndDate:     start.Add(time.Duration(2+i%3) * time.Hour),
			Tickets:     20,
			Price:       decimal.NewFromInt(int64(100 + 10*i)),
		})
		if err != nil {
			return created, fmt.Errorf("failed to seed event %d: %w", i, err)
		}
		created++
	}
	s.Logger.Info("SEED", fmt.Sprintf("Seeded %d events", created))
	return created, nil
}
