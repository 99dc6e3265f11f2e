package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/EventLink/server/internal/auth"
	"github.com/EventLink/server/internal/validation"
	"github.com/rs/zerolog"
)

const welcomeMailTimeout = 10 * time.Second

// RegisterParams is the registration payload.
type RegisterParams struct {
	Username string `json:"username" validate:"required,min=3,max=80,username"`
	Password string `json:"password" validate:"required,max=128"`
	Email    string `json:"email" validate:"required,email,max=120"`
}

// Service registers users, logs them in and resolves bearer tokens.
type Service struct {
	store    CredentialStore
	tokens   TokenIssuer
	mailer   Mailer
	validate *validation.Validator
	logger   zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates a user service. mailer may be nil.
func NewService(store CredentialStore, tokens TokenIssuer, mailer Mailer, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		tokens:   tokens,
		mailer:   mailer,
		validate: validation.New(),
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

// Register validates and stores a new user. No token is issued.
func (s *Service) Register(ctx context.Context, params RegisterParams) (User, error) {
	params.Username = strings.TrimSpace(params.Username)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))

	if err := s.validate.Struct(params); err != nil {
		return User{}, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.Create(ctx, NewUser{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return User{}, ErrConflict
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}

	s.sendWelcome(ctx, user)
	return user, nil
}

// sendWelcome never fails registration; delivery errors are only logged.
func (s *Service) sendWelcome(ctx context.Context, user User) {
	if s.mailer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, welcomeMailTimeout)
	defer cancel()

	if err := s.mailer.SendWelcome(ctx, user.Email, user.Username); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("welcome email failed")
	}
}

// Login checks credentials and returns a bearer token. Unknown users and
// wrong passwords both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Burn the same hashing cost as a real check.
			_ = auth.VerifyPassword(password, s.dummy())
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("verify password for user %d: %w", user.ID, err)
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Authenticate verifies token and loads the user it names.
func (s *Service) Authenticate(ctx context.Context, token string) (User, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidToken
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword("eventlink-dummy-password")
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to prepare dummy hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
