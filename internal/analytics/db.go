package analytics

import (
	"context"
	"database/sql"
	"errors"

	eventdb "evento/internal/events/db"
	"evento/internal/models"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// DB runs read-only aggregate queries over the events and tickets tables.
type DB struct {
	bun *bun.DB
}

func NewDB(db *bun.DB) *DB {
	return &DB{bun: db}
}

type ticketTotals struct {
	Total     int             `bun:"total"`
	Sold      int             `bun:"sold"`
	Revenue   decimal.Decimal `bun:"revenue"`
	Potential decimal.Decimal `bun:"potential"`
}

type tierRow struct {
	Price   decimal.Decimal `bun:"price"`
	Total   int             `bun:"total"`
	Sold    int             `bun:"sold"`
	Revenue decimal.Decimal `bun:"revenue"`
}

type eventRow struct {
	ID      string          `bun:"id"`
	Name    string          `bun:"name"`
	Total   int             `bun:"total"`
	Sold    int             `bun:"sold"`
	Revenue decimal.Decimal `bun:"revenue"`
}

// EventName returns models.ErrEventNotFound for an unknown id.
func (db *DB) EventName(ctx context.Context, eventID string) (string, error) {
	var name string
	err := db.bun.NewSelect().
		Model((*eventdb.EventRow)(nil)).
		Column("name").
		Where("id = ?", eventID).
		Scan(ctx, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrEventNotFound
	}
	return name, err
}

func (db *DB) TicketTotals(ctx context.Context, eventID string) (ticketTotals, error) {
	var totals ticketTotals
	err := db.bun.NewSelect().
		Model((*eventdb.TicketRow)(nil)).
		ColumnExpr("COUNT(*) AS total").
		ColumnExpr("COALESCE(SUM(CASE WHEN t.purchased THEN 1 ELSE 0 END), 0) AS sold").
		ColumnExpr("COALESCE(SUM(CASE WHEN t.purchased THEN t.price ELSE 0 END), 0) AS revenue").
		ColumnExpr("COALESCE(SUM(t.price), 0) AS potential").
		Where("t.event_id = ?", eventID).
		Scan(ctx, &totals)
	return totals, err
}

func (db *DB) PriceTiers(ctx context.Context, eventID string) ([]tierRow, error) {
	var tiers []tierRow
	err := db.bun.NewSelect().
		Model((*eventdb.TicketRow)(nil)).
		ColumnExpr("t.price AS price").
		ColumnExpr("COUNT(*) AS total").
		ColumnExpr("COALESCE(SUM(CASE WHEN t.purchased THEN 1 ELSE 0 END), 0) AS sold").
		ColumnExpr("COALESCE(SUM(CASE WHEN t.purchased THEN t.price ELSE 0 END), 0) AS revenue").
		Where("t.event_id = ?", eventID).
		GroupExpr("t.price").
		OrderExpr("t.price ASC").
		Scan(ctx, &tiers)
	return tiers, err
}

// EventTotals aggregates every event, including those without tickets.
func (db *DB) EventTotals(ctx context.Context) ([]eventRow, error) {
	var rows []eventRow
	err := db.bun.NewRaw(`
		SELECT e.id, e.name,
			COUNT(t.seat_number) AS total,
			COALESCE(SUM(CASE WHEN t.purchased THEN 1 ELSE 0 END), 0) AS sold,
			COALESCE(SUM(CASE WHEN t.purchased THEN t.price ELSE 0 END), 0) AS revenue
		FROM events e
		LEFT JOIN tickets t ON t.event_id = e.id
		GROUP BY e.id, e.name, e.start_date
		ORDER BY e.start_date ASC, e.id ASC`).
		Scan(ctx, &rows)
	return rows, err
}

// TopBuyers ranks users by purchased seats for one event.
func (db *DB) TopBuyers(ctx context.Context, eventID string, limit int) ([]BuyerStats, error) {
	var rows []BuyerStats
	err := db.bun.NewSelect().
		Model((*eventdb.TicketRow)(nil)).
		ColumnExpr("t.user_id AS user_id").
		ColumnExpr("COUNT(*) AS tickets").
		ColumnExpr("COALESCE(SUM(t.price), 0) AS spent").
		Where("t.event_id = ?", eventID).
		Where("t.purchased = ?", true).
		GroupExpr("t.user_id").
		OrderExpr("tickets DESC, t.user_id ASC").
		Limit(limit).
		Scan(ctx, &rows)
	return rows, err
}
