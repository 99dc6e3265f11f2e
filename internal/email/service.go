package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/EventLink/server/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

const welcomeSubject = "Welcome to EventLink"

// Service sends transactional email through Resend. When email is disabled it
// only logs what would have been sent.
type Service struct {
	config       config.EmailConfig
	baseURL      string
	templates    *template.Template
	resendClient *resend.Client
	logger       zerolog.Logger
}

// WelcomeData holds data for rendering the welcome template.
type WelcomeData struct {
	Username    string
	BaseURL     string
	CurrentYear int
}

// NewService creates an email service. baseURL is linked from the welcome
// mail and may be empty.
func NewService(cfg config.EmailConfig, baseURL string, logger zerolog.Logger) (*Service, error) {
	if cfg.Enabled {
		if err := validateEmailAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender email in config: %w", err)
		}
		if strings.TrimSpace(cfg.ResendAPIKey) == "" {
			return nil, fmt.Errorf("resend api key is required when email is enabled")
		}
	}
	if baseURL != "" {
		if err := validateLinkURL(baseURL); err != nil {
			return nil, fmt.Errorf("invalid base url: %w", err)
		}
	}

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	svc := &Service{
		config:    cfg,
		baseURL:   baseURL,
		templates: templates,
		logger:    logger.With().Str("component", "email").Logger(),
	}
	if cfg.Enabled {
		svc.resendClient = resend.NewClient(cfg.ResendAPIKey)
	}
	return svc, nil
}

// SendWelcome sends the post-registration welcome mail.
func (s *Service) SendWelcome(ctx context.Context, to, username string) error {
	if err := validateEmailAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}

	if !s.config.Enabled {
		s.logger.Info().
			Str("to", to).
			Str("username", username).
			Msg("email service disabled, skipping welcome email")
		return nil
	}

	body, err := s.render("welcome.html", WelcomeData{
		Username:    username,
		BaseURL:     s.baseURL,
		CurrentYear: time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.sendViaResend(ctx, to, welcomeSubject, body)
}

func (s *Service) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// validateEmailAddress rejects header injection and anything net/mail cannot
// parse as a bare address.
func validateEmailAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("email address is empty")
	}
	if strings.ContainsAny(addr, "\r\n") {
		return fmt.Errorf("email address contains newline characters")
	}
	if _, err := mail.ParseAddress(addr); err != nil {
		return fmt.Errorf("invalid email address format: %w", err)
	}
	return nil
}

func validateLinkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
