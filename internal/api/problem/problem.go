package problem

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/json"

// Body is the JSON error envelope. Msg is always safe to show to clients.
type Body struct {
	Msg    string            `json:"msg"`
	Status int               `json:"status"`
	Errors map[string]string `json:"errors,omitempty"`
}

type Option func(*Body)

// WithErrors attaches per-field messages.
func WithErrors(errs map[string]string) Option {
	return func(b *Body) {
		b.Errors = errs
	}
}

// Write logs err with the request-scoped logger and writes a JSON error body.
// err never reaches the client.
func Write(w http.ResponseWriter, r *http.Request, status int, msg string, err error, opts ...Option) {
	body := Body{Msg: msg, Status: status}
	for _, opt := range opts {
		opt(&body)
	}
	if body.Msg == "" {
		body.Msg = http.StatusText(status)
	}

	if r != nil {
		logger := zerolog.Ctx(r.Context())
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400 && err != nil:
			event = logger.Warn()
		}
		if event != nil {
			event.Err(err).
				Int("status", status).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg(body.Msg)
		}
	}

	WriteBody(w, body)
}

func WriteBody(w http.ResponseWriter, body Body) {
	payload, err := json.Marshal(body)
	if err != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"msg":"Internal Server Error","status":500}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(body.Status)
	_, _ = w.Write(payload)
}
