package events

import (
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"

	"github.com/EventLink/server/internal/validation"
)

// ParseEventTime accepts RFC 3339 timestamps and falls back to natural
// language ("tomorrow 7pm", "in 3 days") relative to now. Empty input is now.
func ParseEventTime(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	cfg := &dps.Configuration{CurrentTime: now}
	parsed, err := dps.Parse(cfg, raw)
	if err != nil || parsed.Time.IsZero() {
		return time.Time{}, validation.FieldError("time", "must be an RFC 3339 timestamp or a recognizable date")
	}
	return parsed.Time, nil
}
