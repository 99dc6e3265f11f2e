package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/EventLink/server/internal/domain/events"
	"github.com/EventLink/server/internal/domain/users"
	"github.com/jackc/pgx/v5"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	db dbtx
}

const eventColumns = `e.id, e.title, COALESCE(e.description, ''), e.time, e.location, e.organizer_id, e.created_at`

func (r *EventRepository) List(ctx context.Context, filter events.Filter) ([]events.Event, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE ($1::text = '' OR e.description ILIKE '%' || $1::text || '%')
 ORDER BY e.id ASC
`, escapeILIKEPattern(filter.Category))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) Create(ctx context.Context, e events.NewEvent) (events.Event, error) {
	row := r.db.QueryRow(ctx, `
INSERT INTO events AS e (title, description, time, location, organizer_id)
VALUES ($1, NULLIF($2, ''), $3, $4, $5)
RETURNING `+eventColumns,
		e.Title, e.Description, e.Time, e.Location, e.OrganizerID,
	)
	event, err := scanEvent(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return events.Event{}, fmt.Errorf("organizer %d: %w", e.OrganizerID, users.ErrNotFound)
		}
		return events.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (events.Event, error) {
	row := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Update(ctx context.Context, id int64, c events.Changes) (events.Event, error) {
	row := r.db.QueryRow(ctx, `
UPDATE events AS e
   SET title       = COALESCE($2::text, e.title),
       description = CASE WHEN $3::text IS NULL THEN e.description ELSE NULLIF($3::text, '') END,
       location    = COALESCE($4::text, e.location),
       time        = COALESCE($5::timestamptz, e.time)
 WHERE e.id = $1
RETURNING `+eventColumns,
		id, c.Title, c.Description, c.Location, c.Time,
	)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func scanEvent(row pgx.Row) (events.Event, error) {
	var e events.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Time, &e.Location, &e.OrganizerID, &e.CreatedAt)
	return e, err
}

func collectEvents(rows pgx.Rows) ([]events.Event, error) {
	defer rows.Close()

	items := make([]events.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}

// escapeILIKEPattern makes % _ and \ match literally inside an ILIKE pattern.
func escapeILIKEPattern(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
