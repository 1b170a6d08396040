package user

import (
	"context"
	"time"
)

const (
	EventUserRegistered = "UserRegistered"
	EventUserLoggedIn   = "UserLoggedIn"
	EventUserLoggedOut  = "UserLoggedOut"
)

// UserRegistered is emitted when a new account is created
type UserRegistered struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}

// UserLoggedIn is emitted when a user successfully logs in
type UserLoggedIn struct {
	UserID    string    `json:"user_id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	LoggedAt  time.Time `json:"logged_at"`
}

// UserLoggedOut is emitted when a user logs out
type UserLoggedOut struct {
	UserID   string    `json:"user_id"`
	LoggedAt time.Time `json:"logged_at"`
}

// EventPublisher pushes audit events to the event stream. Publishing is
// best-effort: the caller logs failures and moves on.
type EventPublisher interface {
	Publish(ctx context.Context, key, eventType string, event any) error
}
