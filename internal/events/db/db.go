package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"evento/internal/clock"
	"evento/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun   *bun.DB
	Clock clock.Clock
}

func NewDB(bunDB *bun.DB, clk clock.Clock) *DB {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &DB{Bun: bunDB, Clock: clk}
}

// CreateEvent inserts the event and its tickets in one transaction and marks
// the aggregate as version 1.
func (d *DB) CreateEvent(ctx context.Context, ev *models.Event) error {
	row, tickets := toRows(ev.Snapshot())
	row.Version = 1

	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		if len(tickets) > 0 {
			if _, err := tx.NewInsert().Model(&tickets).Exec(ctx); err != nil {
				return fmt.Errorf("insert tickets: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	ev.MarkPersisted(row.Version)
	return nil
}

// GetEvent loads the aggregate with every ticket in seat order.
func (d *DB) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	row := new(EventRow)
	err := d.Bun.NewSelect().
		Model(row).
		Relation("Tickets", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("t.seat_number ASC")
		}).
		Where("e.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, models.ErrEventNotFound)
	}
	if err != nil {
		return nil, err
	}
	return row.toEvent(d.Clock), nil
}

// BrowseEvents matches name as a case-insensitive substring. An empty name
// returns every event. Results are ordered by start date.
func (d *DB) BrowseEvents(ctx context.Context, name string) ([]*models.Event, error) {
	var rows []*EventRow
	q := d.Bun.NewSelect().
		Model(&rows).
		Relation("Tickets", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("t.seat_number ASC")
		}).
		Order("e.start_date ASC", "e.id ASC")
	if name = strings.TrimSpace(name); name != "" {
		q = q.Where("LOWER(e.name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	events := make([]*models.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toEvent(d.Clock))
	}
	return events, nil
}

// SaveEvent writes the aggregate if nobody else saved it since it was
// loaded. On success the aggregate's version is bumped.
func (d *DB) SaveEvent(ctx context.Context, ev *models.Event) error {
	row, tickets := toRows(ev.Snapshot())

	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*EventRow)(nil)).
			Set("name = ?", row.Name).
			Set("description = ?", row.Description).
			Set("start_date = ?", row.StartDate).
			Set("end_date = ?", row.EndDate).
			Set("updated_at = ?", row.UpdatedAt).
			Set("version = version + 1").
			Where("id = ?", row.ID).
			Where("version = ?", row.Version).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			exists, err := tx.NewSelect().Model((*EventRow)(nil)).Where("id = ?", row.ID).Exists(ctx)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("event %s: %w", row.ID, models.ErrEventNotFound)
			}
			return fmt.Errorf("event %s at version %d: %w", row.ID, row.Version, models.ErrConcurrentUpdate)
		}

		if len(tickets) == 0 {
			return nil
		}
		_, err = tx.NewInsert().
			Model(&tickets).
			On("CONFLICT (event_id, seat_number) DO UPDATE").
			Set("price = EXCLUDED.price").
			Set("purchased = EXCLUDED.purchased").
			Set("user_id = EXCLUDED.user_id").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("upsert tickets: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	ev.MarkPersisted(row.Version + 1)
	return nil
}

func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*TicketRow)(nil)).Where("event_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete tickets: %w", err)
		}
		res, err := tx.NewDelete().Model((*EventRow)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("event %s: %w", id, models.ErrEventNotFound)
		}
		return nil
	})
}

func (d *DB) CountEvents(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().Model((*EventRow)(nil)).Count(ctx)
}

// CreateSchema creates the tables from the row models. Production schemas
// come from the migrations; this is for tests and local SQLite runs.
func (d *DB) CreateSchema(ctx context.Context) error {
	for _, model := range []interface{}{(*EventRow)(nil), (*TicketRow)(nil)} {
		if _, err := d.Bun.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}
