package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrConflict           = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// User is a registered account. Users are immutable after registration.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser is the row inserted by CredentialStore.Create.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
}

// CredentialStore persists users. Create returns ErrConflict when the
// username or email is taken; lookups return ErrNotFound.
type CredentialStore interface {
	Create(ctx context.Context, user NewUser) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
}

// TokenIssuer issues and verifies bearer tokens bound to a username.
type TokenIssuer interface {
	Issue(identity string) (string, error)
	Verify(token string) (string, error)
}

// Mailer delivers the welcome message sent after registration.
type Mailer interface {
	SendWelcome(ctx context.Context, to, username string) error
}
