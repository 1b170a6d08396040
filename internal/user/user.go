// Package user implements the server-side user domain: registration,
// authentication, and profile maintenance over a relational store, with
// audit events published for each lifecycle change.
package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDeactivated    = errors.New("user account is deactivated")
)

// Roles assigned by the server. The client never decides roles.
const (
	RoleBuyer = "buyer"
	RoleAdmin = "admin"
)

// User is the relational user record.
type User struct {
	ID            string
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	PasswordHash  string
	DateOfBirth   string
	Address       string
	City          string
	Province      string
	PostalCode    string
	Role          string
	IsActive      bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLogin     time.Time // zero when the user has never logged in
}

// FullName returns the display name composed from first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Store is the persistence port for users. The Postgres implementation
// lives in internal/infrastructure/store.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
	SetLastLogin(ctx context.Context, id string, at time.Time) error
}

// ProfileUpdate carries the mutable profile fields. Nil pointers leave the
// column untouched.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	DateOfBirth *string
	Address     *string
	City        *string
	Province    *string
	PostalCode  *string
}

// Registration is the signup payload after transport-level validation.
type Registration struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Password    string
	DateOfBirth string
	Address     string
	City        string
	Province    string
	PostalCode  string
}
