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
	"github.com/EventLink/server/internal/domain/rsvps"
	"github.com/EventLink/server/internal/metrics"
)

type RSVPsHandler struct {
	Service *rsvps.Service
	Audit   *audit.Logger
}

func NewRSVPsHandler(service *rsvps.Service, auditLog *audit.Logger) *RSVPsHandler {
	return &RSVPsHandler{Service: service, Audit: auditLog}
}

type rsvpCreatedResponse struct {
	Msg       string    `json:"msg"`
	RSVP      int64     `json:"rsvp"`
	Timestamp time.Time `json:"timestamp"`
}

type attendeeResponse struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

type savedEventResponse struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Time     time.Time `json:"time"`
}

func (h *RSVPsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "Missing Authorization Header", nil)
		return
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "Invalid event id", err)
		return
	}

	rsvp, err := h.Service.Create(r.Context(), user, eventID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	metrics.RSVPChanges.WithLabelValues("created").Inc()
	h.Audit.FromRequest(r, "rsvp.create", user.Username, "event", strconv.FormatInt(eventID, 10), audit.StatusSuccess, nil)
	writeJSON(w, http.StatusCreated, rsvpCreatedResponse{
		Msg:       "RSVP created",
		RSVP:      rsvp.ID,
		Timestamp: rsvp.Timestamp.UTC(),
	})
}

func (h *RSVPsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "Missing Authorization Header", nil)
		return
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "Invalid event id", err)
		return
	}

	if err := h.Service.Cancel(r.Context(), user, eventID); err != nil {
		h.writeError(w, r, err)
		return
	}

	metrics.RSVPChanges.WithLabelValues("cancelled").Inc()
	h.Audit.FromRequest(r, "rsvp.cancel", user.Username, "event", strconv.FormatInt(eventID, 10), audit.StatusSuccess, nil)
	writeJSON(w, http.StatusOK, messageResponse{Msg: "RSVP cancelled"})
}

func (h *RSVPsHandler) Attendees(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "Invalid event id", err)
		return
	}

	attendees, err := h.Service.ListAttendees(r.Context(), eventID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]attendeeResponse, 0, len(attendees))
	for _, a := range attendees {
		items = append(items, attendeeResponse{
			UserID:    a.UserID,
			Username:  a.Username,
			Email:     a.Email,
			Timestamp: a.Timestamp.UTC(),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

// Mine lists the events the caller has RSVPed to.
func (h *RSVPsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "Missing Authorization Header", nil)
		return
	}

	saved, err := h.Service.ListForUser(r.Context(), user.ID)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, "", err)
		return
	}

	items := make([]savedEventResponse, 0, len(saved))
	for _, e := range saved {
		items = append(items, savedEventResponse{ID: e.ID, Title: e.Title, Location: e.Location, Time: e.Time.UTC()})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *RSVPsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, "Event not found", err)
	case errors.Is(err, rsvps.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, "RSVP not found", err)
	case errors.Is(err, rsvps.ErrConflict):
		problem.Write(w, r, http.StatusConflict, "RSVP already exists", err)
	default:
		problem.Write(w, r, http.StatusInternalServerError, "", err)
	}
}
