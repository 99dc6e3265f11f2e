package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/EventLink/server/internal/api/middleware"
	"github.com/EventLink/server/internal/api/problem"
	"github.com/EventLink/server/internal/audit"
	"github.com/EventLink/server/internal/domain/users"
	"github.com/EventLink/server/internal/metrics"
)

type AuthHandler struct {
	Service *users.Service
	Audit   *audit.Logger
}

func NewAuthHandler(service *users.Service, auditLog *audit.Logger) *AuthHandler {
	return &AuthHandler{Service: service, Audit: auditLog}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type meResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var params users.RegisterParams
	if err := decodeJSON(r, &params); err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "invalid").Inc()
		writeBodyError(w, r, err)
		return
	}

	user, err := h.Service.Register(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrConflict):
			metrics.AuthAttempts.WithLabelValues("register", "conflict").Inc()
			h.Audit.FromRequest(r, "user.register", params.Username, "user", "", audit.StatusFailure, map[string]string{"reason": "conflict"})
			problem.Write(w, r, http.StatusBadRequest, "User already exists", err)
		case writeValidationError(w, r, err):
			metrics.AuthAttempts.WithLabelValues("register", "invalid").Inc()
		default:
			metrics.AuthAttempts.WithLabelValues("register", "error").Inc()
			problem.Write(w, r, http.StatusInternalServerError, "", err)
		}
		return
	}

	metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	h.Audit.FromRequest(r, "user.register", user.Username, "user", strconv.FormatInt(user.ID, 10), audit.StatusSuccess, nil)
	middleware.LoggerFromContext(r.Context()).Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user registered")
	writeJSON(w, http.StatusCreated, messageResponse{Msg: "User registered successfully"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		writeBodyError(w, r, err)
		return
	}

	token, err := h.Service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
			h.Audit.FromRequest(r, "auth.login", req.Username, "", "", audit.StatusFailure, nil)
			problem.Write(w, r, http.StatusUnauthorized, "Invalid credentials", err)
			return
		}
		metrics.AuthAttempts.WithLabelValues("login", "error").Inc()
		problem.Write(w, r, http.StatusInternalServerError, "", err)
		return
	}

	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	h.Audit.FromRequest(r, "auth.login", req.Username, "", "", audit.StatusSuccess, nil)
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token})
}

// Me returns the authenticated caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "Missing Authorization Header", nil)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}
