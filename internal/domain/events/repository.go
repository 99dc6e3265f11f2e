package events

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("event not found")
	ErrForbidden = errors.New("only the organizer may modify this event")
)

type Event struct {
	ID          int64
	Title       string
	Description string
	Time        time.Time
	Location    string
	OrganizerID int64
	CreatedAt   time.Time
}

// Filter narrows List. An empty Category matches every event.
type Filter struct {
	Category string
}

type NewEvent struct {
	Title       string
	Description string
	Location    string
	Time        time.Time
	OrganizerID int64
}

// Changes holds the fields of a partial update; nil fields are left alone.
type Changes struct {
	Title       *string
	Description *string
	Location    *string
	Time        *time.Time
}

// Repository persists events. List returns events ordered by id ascending,
// matching Category as a case-insensitive literal substring of the description.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Event, error)
	Create(ctx context.Context, event NewEvent) (Event, error)
	GetByID(ctx context.Context, id int64) (Event, error)
	Update(ctx context.Context, id int64, changes Changes) (Event, error)
}
