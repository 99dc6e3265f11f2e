package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/EventLink/server/internal/domain/events"
	"github.com/EventLink/server/internal/domain/rsvps"
	"github.com/jackc/pgx/v5"
)

var _ rsvps.Repository = (*RSVPRepository)(nil)

type RSVPRepository struct {
	db dbtx
}

func (r *RSVPRepository) Create(ctx context.Context, userID, eventID int64) (rsvps.RSVP, error) {
	var rsvp rsvps.RSVP
	err := r.db.QueryRow(ctx, `
INSERT INTO rsvps (user_id, event_id)
VALUES ($1, $2)
RETURNING id, user_id, event_id, timestamp`,
		userID, eventID,
	).Scan(&rsvp.ID, &rsvp.UserID, &rsvp.EventID, &rsvp.Timestamp)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return rsvps.RSVP{}, rsvps.ErrConflict
		case isForeignKeyViolation(err):
			return rsvps.RSVP{}, events.ErrNotFound
		}
		return rsvps.RSVP{}, fmt.Errorf("insert rsvp: %w", err)
	}
	return rsvp, nil
}

func (r *RSVPRepository) Get(ctx context.Context, userID, eventID int64) (rsvps.RSVP, error) {
	var rsvp rsvps.RSVP
	err := r.db.QueryRow(ctx, `
SELECT id, user_id, event_id, timestamp
  FROM rsvps
 WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	).Scan(&rsvp.ID, &rsvp.UserID, &rsvp.EventID, &rsvp.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rsvps.RSVP{}, rsvps.ErrNotFound
		}
		return rsvps.RSVP{}, fmt.Errorf("get rsvp: %w", err)
	}
	return rsvp, nil
}

func (r *RSVPRepository) Delete(ctx context.Context, userID, eventID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rsvps WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	if err != nil {
		return fmt.Errorf("delete rsvp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return rsvps.ErrNotFound
	}
	return nil
}

func (r *RSVPRepository) ListAttendees(ctx context.Context, eventID int64) ([]rsvps.Attendee, error) {
	rows, err := r.db.Query(ctx, `
SELECT u.id, u.username, u.email, r.timestamp
  FROM rsvps r
  JOIN users u ON u.id = r.user_id
 WHERE r.event_id = $1
 ORDER BY r.id ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	attendees := make([]rsvps.Attendee, 0)
	for rows.Next() {
		var a rsvps.Attendee
		if err := rows.Scan(&a.UserID, &a.Username, &a.Email, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendees: %w", err)
	}
	return attendees, nil
}

func (r *RSVPRepository) ListEventsForUser(ctx context.Context, userID int64) ([]events.Event, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+eventColumns+`
  FROM rsvps r
  JOIN events e ON e.id = r.event_id
 WHERE r.user_id = $1
 ORDER BY r.id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list rsvped events: %w", err)
	}
	return collectEvents(rows)
}
