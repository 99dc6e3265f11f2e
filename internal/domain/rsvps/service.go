package rsvps

import (
	"context"
	"fmt"

	"github.com/EventLink/server/internal/domain/events"
	"github.com/EventLink/server/internal/domain/users"
)

type Service struct {
	repo   Repository
	events EventFinder
}

func NewService(repo Repository, finder EventFinder) *Service {
	return &Service{repo: repo, events: finder}
}

// Create records that user attends eventID.
func (s *Service) Create(ctx context.Context, user users.User, eventID int64) (RSVP, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return RSVP{}, err
	}

	rsvp, err := s.repo.Create(ctx, user.ID, eventID)
	if err != nil {
		return RSVP{}, fmt.Errorf("create rsvp: %w", err)
	}
	return rsvp, nil
}

func (s *Service) Get(ctx context.Context, userID, eventID int64) (RSVP, error) {
	return s.repo.Get(ctx, userID, eventID)
}

// Cancel removes the caller's RSVP for eventID.
func (s *Service) Cancel(ctx context.Context, user users.User, eventID int64) error {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, user.ID, eventID)
}

// ListAttendees returns the users attending eventID in RSVP order.
func (s *Service) ListAttendees(ctx context.Context, eventID int64) ([]Attendee, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListAttendees(ctx, eventID)
}

// ListForUser returns the events userID has RSVPed to.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]events.Event, error) {
	return s.repo.ListEventsForUser(ctx, userID)
}
