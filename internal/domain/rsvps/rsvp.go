package rsvps

import (
	"context"
	"errors"
	"time"

	"github.com/EventLink/server/internal/domain/events"
)

var (
	ErrNotFound = errors.New("rsvp not found")
	ErrConflict = errors.New("rsvp already exists")
)

// RSVP records a user's intent to attend an event. A user holds at most one
// RSVP per event.
type RSVP struct {
	ID        int64
	UserID    int64
	EventID   int64
	Timestamp time.Time
}

type Attendee struct {
	UserID    int64
	Username  string
	Email     string
	Timestamp time.Time
}

// Repository persists RSVPs. Create returns ErrConflict for a duplicate pair
// and events.ErrNotFound when the event row is missing.
type Repository interface {
	Create(ctx context.Context, userID, eventID int64) (RSVP, error)
	Get(ctx context.Context, userID, eventID int64) (RSVP, error)
	Delete(ctx context.Context, userID, eventID int64) error
	ListAttendees(ctx context.Context, eventID int64) ([]Attendee, error)
	ListEventsForUser(ctx context.Context, userID int64) ([]events.Event, error)
}

// EventFinder is satisfied by *events.Service.
type EventFinder interface {
	Get(ctx context.Context, id int64) (events.Event, error)
}
