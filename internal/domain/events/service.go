package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/EventLink/server/internal/domain/users"
	"github.com/EventLink/server/internal/sanitize"
	"github.com/EventLink/server/internal/validation"
)

// CreateParams is the event creation payload. OrganizerID is accepted for
// compatibility with older clients and ignored; the organizer is always the
// authenticated user.
type CreateParams struct {
	Title       string `json:"title" validate:"required,max=150"`
	Description string `json:"description" validate:"max=10000"`
	Location    string `json:"location" validate:"required,max=200"`
	Time        string `json:"time"`
	OrganizerID *int64 `json:"organizer_id" validate:"-"`
}

// UpdateParams is a partial update; omitted fields keep their value.
type UpdateParams struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=150"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Location    *string `json:"location" validate:"omitempty,notblank,max=200"`
	Time        *string `json:"time"`
}

type Service struct {
	repo     Repository
	validate *validation.Validator
	now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validation.New(), now: time.Now}
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Event, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	return s.repo.List(ctx, filter)
}

// Create stores an event owned by organizer.
func (s *Service) Create(ctx context.Context, organizer users.User, params CreateParams) (Event, error) {
	if organizer.ID <= 0 {
		return Event{}, users.ErrInvalidToken
	}

	params.Title = sanitize.Text(params.Title)
	params.Location = sanitize.Text(params.Location)
	params.Description = sanitize.Text(params.Description)
	if err := s.validate.Struct(params); err != nil {
		return Event{}, err
	}

	when, err := ParseEventTime(params.Time, s.now())
	if err != nil {
		return Event{}, err
	}

	event, err := s.repo.Create(ctx, NewEvent{
		Title:       params.Title,
		Description: params.Description,
		Location:    params.Location,
		Time:        when,
		OrganizerID: organizer.ID,
	})
	if err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Event, error) {
	if id <= 0 {
		return Event{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Update applies params to an event owned by actor.
func (s *Service) Update(ctx context.Context, actor users.User, id int64, params UpdateParams) (Event, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if existing.OrganizerID != actor.ID {
		return Event{}, ErrForbidden
	}

	params.Title = sanitizeOptional(params.Title, sanitize.Text)
	params.Location = sanitizeOptional(params.Location, sanitize.Text)
	params.Description = sanitizeOptional(params.Description, sanitize.Text)
	if err := s.validate.Struct(params); err != nil {
		return Event{}, err
	}

	changes := Changes{
		Title:       params.Title,
		Description: params.Description,
		Location:    params.Location,
	}
	if params.Time != nil {
		if strings.TrimSpace(*params.Time) == "" {
			return Event{}, validation.FieldError("time", "is required")
		}
		when, err := ParseEventTime(*params.Time, s.now())
		if err != nil {
			return Event{}, err
		}
		changes.Time = &when
	}

	event, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return Event{}, fmt.Errorf("update event %d: %w", id, err)
	}
	return event, nil
}

func sanitizeOptional(value *string, clean func(string) string) *string {
	if value == nil {
		return nil
	}
	cleaned := clean(*value)
	return &cleaned
}
