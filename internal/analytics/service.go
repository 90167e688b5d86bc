package analytics

import (
	"context"
	"fmt"

	"evento/internal/logger"

	"github.com/shopspring/decimal"
)

const defaultTopBuyers = 5

type Service struct {
	db     *DB
	logger *logger.Logger
}

func NewService(db *DB, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{db: db, logger: log}
}

// EventSales is the sales report for one event.
type EventSales struct {
	EventID          string          `json:"eventId"`
	Name             string          `json:"name"`
	TotalTickets     int             `json:"totalTickets"`
	SoldTickets      int             `json:"soldTickets"`
	AvailableTickets int             `json:"availableTickets"`
	Revenue          decimal.Decimal `json:"revenue"`
	PotentialRevenue decimal.Decimal `json:"potentialRevenue"`
	SellThrough      float64         `json:"sellThrough"`
	SalesByPrice     []PriceTier     `json:"salesByPrice"`
	TopBuyers        []BuyerStats    `json:"topBuyers"`
}

type PriceTier struct {
	Price       decimal.Decimal `json:"price"`
	Tickets     int             `json:"tickets"`
	TicketsSold int             `json:"ticketsSold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type BuyerStats struct {
	UserID  string          `bun:"user_id" json:"userId"`
	Tickets int             `bun:"tickets" json:"tickets"`
	Spent   decimal.Decimal `bun:"spent" json:"spent"`
}

type EventSummary struct {
	EventID     string          `json:"eventId"`
	Name        string          `json:"name"`
	SoldTickets int             `json:"soldTickets"`
	Tickets     int             `json:"tickets"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// Overview is the sales summary across all events.
type Overview struct {
	Events       []EventSummary  `json:"events"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalSold    int             `json:"totalSold"`
}

func (s *Service) GetEventSales(ctx context.Context, eventID string) (*EventSales, error) {
	name, err := s.db.EventName(ctx, eventID)
	if err != nil {
		return nil, err
	}

	totals, err := s.db.TicketTotals(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("ticket totals: %w", err)
	}
	tiers, err := s.db.PriceTiers(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("price tiers: %w", err)
	}
	buyers, err := s.db.TopBuyers(ctx, eventID, defaultTopBuyers)
	if err != nil {
		return nil, fmt.Errorf("top buyers: %w", err)
	}

	sales := &EventSales{
		EventID:          eventID,
		Name:             name,
		TotalTickets:     totals.Total,
		SoldTickets:      totals.Sold,
		AvailableTickets: totals.Total - totals.Sold,
		Revenue:          totals.Revenue.Round(2),
		PotentialRevenue: totals.Potential.Round(2),
		SalesByPrice:     make([]PriceTier, 0, len(tiers)),
		TopBuyers:        buyers,
	}
	if sales.TopBuyers == nil {
		sales.TopBuyers = []BuyerStats{}
	}
	if totals.Total > 0 {
		sales.SellThrough = float64(totals.Sold) / float64(totals.Total)
	}
	for _, t := range tiers {
		sales.SalesByPrice = append(sales.SalesByPrice, PriceTier{
			Price:       t.Price.Round(2),
			Tickets:     t.Total,
			TicketsSold: t.Sold,
			Revenue:     t.Revenue.Round(2),
		})
	}

	s.logger.Debug("ANALYTICS", fmt.Sprintf("event %s: %d/%d sold, revenue %s", eventID, totals.Sold, totals.Total, sales.Revenue.StringFixed(2)))
	return sales, nil
}

func (s *Service) GetOverview(ctx context.Context) (*Overview, error) {
	rows, err := s.db.EventTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("event totals: %w", err)
	}

	out := &Overview{Events: make([]EventSummary, 0, len(rows)), TotalRevenue: decimal.Zero}
	for _, r := range rows {
		out.Events = append(out.Events, EventSummary{
			EventID:     r.ID,
			Name:        r.Name,
			SoldTickets: r.Sold,
			Tickets:     r.Total,
			Revenue:     r.Revenue.Round(2),
		})
		out.TotalRevenue = out.TotalRevenue.Add(r.Revenue)
		out.TotalSold += r.Sold
	}
	out.TotalRevenue = out.TotalRevenue.Round(2)
	return out, nil
}
