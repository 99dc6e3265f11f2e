package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/EventLink/server/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, serverURL string) (*Service, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	cfg := config.EmailConfig{
		Enabled:      true,
		From:         "no-reply@example.com",
		ResendAPIKey: "test-api-key",
	}
	svc, err := NewService(cfg, "https://events.example.com", zerolog.New(&logs))
	require.NoError(t, err)

	baseURL, err := url.Parse(serverURL)
	require.NoError(t, err)
	svc.resendClient.BaseURL = baseURL
	return svc, &logs
}

func TestSendWelcome_Success(t *testing.T) {
	var got resend.SendEmailRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "email-123"})
	}))
	defer server.Close()

	svc, logs := newTestService(t, server.URL)
	require.NoError(t, svc.SendWelcome(context.Background(), "alice@example.com", "alice"))

	assert.Equal(t, "no-reply@example.com", got.From)
	assert.Equal(t, []string{"alice@example.com"}, got.To)
	assert.Equal(t, welcomeSubject, got.Subject)
	assert.Contains(t, got.Html, "Welcome, alice!")
	assert.Contains(t, got.Html, `href="https://events.example.com"`)
	assert.Contains(t, logs.String(), "email-123")
}

func TestSendWelcome_EscapesUsername(t *testing.T) {
	var got resend.SendEmailRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "email-456"})
	}))
	defer server.Close()

	svc, _ := newTestService(t, server.URL)
	require.NoError(t, svc.SendWelcome(context.Background(), "bob@example.com", "<b>bob</b>"))
	assert.NotContains(t, got.Html, "<b>bob</b>")
	assert.Contains(t, got.Html, "&lt;b&gt;bob&lt;/b&gt;")
}

func TestSendWelcome_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-RateLimit-Limit", "100")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "60")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Rate limit exceeded"})
	}))
	defer server.Close()

	svc, _ := newTestService(t, server.URL)
	err := svc.SendWelcome(context.Background(), "alice@example.com", "alice")
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "rate limit")
}

func TestSendWelcome_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	svc, _ := newTestService(t, server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.SendWelcome(ctx, "alice@example.com", "alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled) || strings.Contains(err.Error(), "context canceled"), "got %v", err)
}

func TestSendWelcome_Disabled(t *testing.T) {
	var logs bytes.Buffer
	svc, err := NewService(config.EmailConfig{Enabled: false}, "", zerolog.New(&logs))
	require.NoError(t, err)
	assert.Nil(t, svc.resendClient)

	require.NoError(t, svc.SendWelcome(context.Background(), "alice@example.com", "alice"))
	assert.Contains(t, logs.String(), "skipping welcome email")
}

func TestSendWelcome_InvalidRecipient(t *testing.T) {
	svc, err := NewService(config.EmailConfig{}, "", zerolog.Nop())
	require.NoError(t, err)

	for _, to := range []string{"", "not-an-email", "alice@example.com\r\nBcc: eve@example.com"} {
		assert.Error(t, svc.SendWelcome(context.Background(), to, "alice"), "to=%q", to)
	}
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(config.EmailConfig{Enabled: true, From: "bad", ResendAPIKey: "k"}, "", zerolog.Nop())
	assert.Error(t, err)

	_, err = NewService(config.EmailConfig{Enabled: true, From: "a@example.com"}, "", zerolog.Nop())
	assert.Error(t, err)

	_, err = NewService(config.EmailConfig{}, "javascript:alert(1)", zerolog.Nop())
	assert.Error(t, err)
}

func TestSendViaResend_NilClient(t *testing.T) {
	svc := &Service{logger: zerolog.Nop()}
	err := svc.sendViaResend(context.Background(), "a@example.com", "s", "b")
	assert.EqualError(t, err, "resend client not initialized")
}
