package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongRole          = errors.New("wrong role for this account")
)

// Default values assigned at registration.
const (
	DefaultRole = "user"
	DefaultPlan = "free"
	PlanPro     = "pro"
)

// User represents a registered user
// swagger:model User
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	City         *string   `json:"city"`
	Interests    []string  `json:"interests"`
	Role         string    `json:"role"`
	Plan         string    `json:"plan"`
	CreatedAt    time.Time `json:"created_at"`
}

// Preferences is the preference snapshot consumed by event retrieval: the
// user's saved city and interest categories.
type Preferences struct {
	City      *string  `json:"city"`
	Interests []string `json:"interests"`
}

// PasswordHasher handles password hashing and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID int64, email, role string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user's
// identity claims.
type TokenVerifier interface {
	Verify(token string) (userID int64, role string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	// Create persists a new user and assigns its ID. Returns
	// ErrDuplicateEmail when the email is already registered.
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	UpdatePreferences(ctx context.Context, id int64, city *string, interests []string) error
	UpdatePlan(ctx context.Context, id int64, plan string) error
	// ListByCity returns users whose saved city matches exactly.
	ListByCity(ctx context.Context, city string) ([]*User, error)
}

// UserService defines the business logic for accounts and preferences.
type UserService interface {
	Register(ctx context.Context, name, email, password, role string) (*User, error)
	// Login verifies credentials and returns a signed token plus the user.
	// loginAs optionally pins the expected role; a mismatch is ErrWrongRole.
	Login(ctx context.Context, email, password, loginAs string) (string, *User, error)
	GetPreferences(ctx context.Context, email string) (*Preferences, error)
	UpdatePreferences(ctx context.Context, email string, city *string, interests []string) error
	// UpgradePlan marks the user's plan as "pro" and returns a checkout URL.
	UpgradePlan(ctx context.Context, email string) (string, error)
}
