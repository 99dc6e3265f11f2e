package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/EventLink/server/internal/api/problem"
	"github.com/EventLink/server/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type messageResponse struct {
	Msg string `json:"msg"`
}

// bodyError is returned by decodeJSON; its message is safe to show clients.
type bodyError struct {
	msg string
	err error
}

func (e *bodyError) Error() string { return e.msg }

func (e *bodyError) Unwrap() error { return e.err }

// decodeJSON reads exactly one JSON object into dst, rejecting unknown
// fields and trailing data.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return &bodyError{msg: "Request body is required"}
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var (
			syntaxErr   *json.SyntaxError
			typeErr     *json.UnmarshalTypeError
			maxBytesErr *http.MaxBytesError
		)
		switch {
		case errors.Is(err, io.EOF):
			return &bodyError{msg: "Request body is required", err: err}
		case errors.As(err, &maxBytesErr):
			return &bodyError{msg: fmt.Sprintf("Request body must not exceed %d bytes", maxBytesErr.Limit), err: err}
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return &bodyError{msg: "Malformed JSON", err: err}
		case errors.As(err, &typeErr):
			return &bodyError{msg: fmt.Sprintf("Field %q has the wrong type", typeErr.Field), err: err}
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return &bodyError{msg: fmt.Sprintf("Unknown field %s", field), err: err}
		default:
			return &bodyError{msg: "Invalid request body", err: err}
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &bodyError{msg: "Request body must contain a single JSON object", err: err}
	}
	return nil
}

func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	var be *bodyError
	if errors.As(err, &be) {
		problem.Write(w, r, http.StatusBadRequest, be.msg, err)
		return
	}
	problem.Write(w, r, http.StatusBadRequest, "Invalid request body", err)
}

// writeValidationError reports per-field messages; it returns false when err
// is not a validation failure.
func writeValidationError(w http.ResponseWriter, r *http.Request, err error) bool {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return false
	}
	problem.Write(w, r, http.StatusBadRequest, "Invalid input", err, problem.WithErrors(verr.Fields))
	return true
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}
