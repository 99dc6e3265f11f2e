package api

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/EventLink/server/internal/domain/events"
	"github.com/EventLink/server/internal/domain/rsvps"
	"github.com/EventLink/server/internal/domain/users"
)

// memStore backs all three repositories in memory.
type memStore struct {
	mu     sync.Mutex
	users  []users.User
	events []events.Event
	rsvps  []rsvps.RSVP
}

type memUsers struct{ s *memStore }
type memEvents struct{ s *memStore }
type memRSVPs struct{ s *memStore }

func (m memUsers) Create(_ context.Context, nu users.NewUser) (users.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Username == nu.Username || u.Email == nu.Email {
			return users.User{}, users.ErrConflict
		}
	}
	u := users.User{
		ID:           int64(len(m.s.users) + 1),
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		CreatedAt:    time.Now(),
	}
	m.s.users = append(m.s.users, u)
	return u, nil
}

func (m memUsers) GetByUsername(_ context.Context, username string) (users.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (m memUsers) GetByID(_ context.Context, id int64) (users.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (m memEvents) List(_ context.Context, filter events.Filter) ([]events.Event, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	needle := strings.ToLower(filter.Category)
	var out []events.Event
	for _, e := range m.s.events {
		if needle == "" || strings.Contains(strings.ToLower(e.Description), needle) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m memEvents) Create(_ context.Context, ne events.NewEvent) (events.Event, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e := events.Event{
		ID:          int64(len(m.s.events) + 1),
		Title:       ne.Title,
		Description: ne.Description,
		Time:        ne.Time,
		Location:    ne.Location,
		OrganizerID: ne.OrganizerID,
		CreatedAt:   time.Now(),
	}
	m.s.events = append(m.s.events, e)
	return e, nil
}

func (m memEvents) GetByID(_ context.Context, id int64) (events.Event, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, e := range m.s.events {
		if e.ID == id {
			return e, nil
		}
	}
	return events.Event{}, events.ErrNotFound
}

func (m memEvents) Update(_ context.Context, id int64, c events.Changes) (events.Event, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, e := range m.s.events {
		if e.ID != id {
			continue
		}
		if c.Title != nil {
			e.Title = *c.Title
		}
		if c.Description != nil {
			e.Description = *c.Description
		}
		if c.Location != nil {
			e.Location = *c.Location
		}
		if c.Time != nil {
			e.Time = *c.Time
		}
		m.s.events[i] = e
		return e, nil
	}
	return events.Event{}, events.ErrNotFound
}

func (m memRSVPs) Create(_ context.Context, userID, eventID int64) (rsvps.RSVP, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, r := range m.s.rsvps {
		if r.UserID == userID && r.EventID == eventID {
			return rsvps.RSVP{}, rsvps.ErrConflict
		}
	}
	r := rsvps.RSVP{ID: int64(len(m.s.rsvps) + 1), UserID: userID, EventID: eventID, Timestamp: time.Now()}
	m.s.rsvps = append(m.s.rsvps, r)
	return r, nil
}

func (m memRSVPs) Get(_ context.Context, userID, eventID int64) (rsvps.RSVP, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, r := range m.s.rsvps {
		if r.UserID == userID && r.EventID == eventID {
			return r, nil
		}
	}
	return rsvps.RSVP{}, rsvps.ErrNotFound
}

func (m memRSVPs) Delete(_ context.Context, userID, eventID int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, r := range m.s.rsvps {
		if r.UserID == userID && r.EventID == eventID {
			m.s.rsvps = append(m.s.rsvps[:i], m.s.rsvps[i+1:]...)
			return nil
		}
	}
	return rsvps.ErrNotFound
}

func (m memRSVPs) ListAttendees(_ context.Context, eventID int64) ([]rsvps.Attendee, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []rsvps.Attendee
	for _, r := range m.s.rsvps {
		if r.EventID != eventID {
			continue
		}
		for _, u := range m.s.users {
			if u.ID == r.UserID {
				out = append(out, rsvps.Attendee{UserID: u.ID, Username: u.Username, Email: u.Email, Timestamp: r.Timestamp})
			}
		}
	}
	return out, nil
}

func (m memRSVPs) ListEventsForUser(_ context.Context, userID int64) ([]events.Event, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []events.Event
	for _, r := range m.s.rsvps {
		if r.UserID != userID {
			continue
		}
		for _, e := range m.s.events {
			if e.ID == r.EventID {
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
