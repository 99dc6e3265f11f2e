package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/EventLink/server/internal/api/handlers"
	"github.com/EventLink/server/internal/api/middleware"
	"github.com/EventLink/server/internal/audit"
	"github.com/EventLink/server/internal/domain/events"
	"github.com/EventLink/server/internal/domain/rsvps"
	"github.com/EventLink/server/internal/domain/users"
	"github.com/EventLink/server/internal/metrics"
	"github.com/rs/zerolog"
)

// Deps are the services the router exposes.
type Deps struct {
	Users  *users.Service
	Events *events.Service
	RSVPs  *rsvps.Service
	Health *handlers.HealthChecker
	Logger zerolog.Logger
	Build  BuildInfo
	// RequireHTTPS enables HSTS on TLS connections.
	RequireHTTPS bool
}

func NewRouter(deps Deps) http.Handler {
	auditLog := audit.NewLogger(deps.Logger)
	authHandler := handlers.NewAuthHandler(deps.Users, auditLog)
	eventsHandler := handlers.NewEventsHandler(deps.Events, auditLog)
	rsvpsHandler := handlers.NewRSVPsHandler(deps.RSVPs, auditLog)
	requireAuth := middleware.BearerAuth(deps.Users)

	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	if deps.Health != nil {
		mux.Handle("/health", deps.Health.Health())
		mux.Handle("/readyz", deps.Health.Readyz())
	}
	mux.Handle("/metrics", methodMux(map[string]http.Handler{http.MethodGet: metrics.Handler()}))
	mux.Handle("/version", methodMux(map[string]http.Handler{http.MethodGet: deps.Build.Handler()}))
	mux.Handle("/api/openapi.json", methodMux(map[string]http.Handler{http.MethodGet: OpenAPIHandler()}))

	mux.Handle("/api/auth/register", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Register),
	}))
	mux.Handle("/api/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Login),
	}))
	mux.Handle("/api/auth/me", methodMux(map[string]http.Handler{
		http.MethodGet: requireAuth(http.HandlerFunc(authHandler.Me)),
	}))

	eventsCollection := methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
		http.MethodPost: requireAuth(http.HandlerFunc(eventsHandler.Create)),
	})
	mux.Handle("/api/events", eventsCollection)
	mux.Handle("/api/events/{$}", eventsCollection)
	mux.Handle("/api/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Get),
		http.MethodPut: requireAuth(http.HandlerFunc(eventsHandler.Update)),
	}))
	mux.Handle("/api/events/{id}/rsvp", methodMux(map[string]http.Handler{
		http.MethodPost:   requireAuth(http.HandlerFunc(rsvpsHandler.Create)),
		http.MethodDelete: requireAuth(http.HandlerFunc(rsvpsHandler.Cancel)),
	}))
	mux.Handle("/api/events/{id}/attendees", methodMux(map[string]http.Handler{
		http.MethodGet: requireAuth(http.HandlerFunc(rsvpsHandler.Attendees)),
	}))
	mux.Handle("/api/users/me/rsvps", methodMux(map[string]http.Handler{
		http.MethodGet: requireAuth(http.HandlerFunc(rsvpsHandler.Mine)),
	}))

	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRouteError(w, http.StatusNotFound, "Resource not found")
	}))

	var handler http.Handler = mux
	handler = middleware.RequestSize(middleware.DefaultMaxBodySize)(handler)
	handler = middleware.SecurityHeaders(deps.RequireHTTPS)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(handler)
	handler = middleware.CorrelationID(deps.Logger)(handler)
	handler = middleware.Tracing(handler)
	return handler
}

type routeError struct {
	Error string `json:"error"`
}

func writeRouteError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(routeError{Error: msg})
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		writeRouteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
