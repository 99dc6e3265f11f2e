package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/EventLink/server/internal/api/middleware"
	"github.com/EventLink/server/internal/api/problem"
	"github.com/EventLink/server/internal/audit"
	"github.com/EventLink/server/internal/domain/events"
	"github.com/EventLink/server/internal/domain/users"
	"github.com/EventLink/server/internal/metrics"
)

type EventsHandler struct {
	Service *events.Service
	Audit   *audit.Logger
}

func NewEventsHandler(service *events.Service, auditLog *audit.Logger) *EventsHandler {
	return &EventsHandler{Service: service, Audit: auditLog}
}

type eventSummary struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
}

type eventDetail struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Time        time.Time `json:"time"`
	Location    string    `json:"location"`
	OrganizerID int64     `json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type eventWriteResponse struct {
	Msg   string `json:"msg"`
	Event int64  `json:"event"`
}

func toEventDetail(e events.Event) eventDetail {
	return eventDetail{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Time:        e.Time.UTC(),
		Location:    e.Location,
		OrganizerID: e.OrganizerID,
		CreatedAt:   e.CreatedAt.UTC(),
	}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context(), events.Filter{Category: r.URL.Query().Get("category")})
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, "", err)
		return
	}

	items := make([]eventSummary, 0, len(list))
	for _, e := range list {
		items = append(items, eventSummary{ID: e.ID, Title: e.Title, Location: e.Location})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizer, ok := middleware.UserFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "Missing Authorization Header", nil)
		return
	}

	var params events.CreateParams
	if err := decodeJSON(r, &params); err != nil {
		writeBodyError(w, r, err)
		return
	}
	if params.OrganizerID != nil && *params.OrganizerID != organizer.ID {
		middleware.LoggerFromContext(r.Context()).Warn().
			Int64("supplied_organizer_id", *params.OrganizerID).
			Msg("ignoring client-supplied organizer_id")
	}

	event, err := h.Service.Create(r.Context(), organizer, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	metrics.EventsCreated.Inc()
	h.Audit.FromRequest(r, "event.create", organizer.Username, "event", strconv.FormatInt(event.ID, 10), audit.StatusSuccess, nil)
	writeJSON(w, http.StatusCreated, eventWriteResponse{Msg: "Event created", Event: event.ID})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "Invalid event id", err)
		return
	}

	event, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDetail(event))
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "Missing Authorization Header", nil)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "Invalid event id", err)
		return
	}

	var params events.UpdateParams
	if err := decodeJSON(r, &params); err != nil {
		writeBodyError(w, r, err)
		return
	}

	event, err := h.Service.Update(r.Context(), actor, id, params)
	if err != nil {
		if errors.Is(err, events.ErrForbidden) {
			h.Audit.FromRequest(r, "event.update", actor.Username, "event", strconv.FormatInt(id, 10), audit.StatusFailure, map[string]string{"reason": "not organizer"})
		}
		h.writeError(w, r, err)
		return
	}
	h.Audit.FromRequest(r, "event.update", actor.Username, "event", strconv.FormatInt(event.ID, 10), audit.StatusSuccess, nil)
	writeJSON(w, http.StatusOK, eventWriteResponse{Msg: "Event updated", Event: event.ID})
}

func (h *EventsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case writeValidationError(w, r, err):
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, "Event not found", err)
	case errors.Is(err, events.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, "Only the organizer can modify this event", err)
	case errors.Is(err, users.ErrInvalidToken), errors.Is(err, users.ErrNotFound):
		problem.Write(w, r, http.StatusUnauthorized, "Invalid token", err)
	default:
		problem.Write(w, r, http.StatusInternalServerError, "", err)
	}
}
