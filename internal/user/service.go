package user

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/homeware-storefront/internal/auth"
)

// Service handles user domain operations
type Service struct {
	store  Store
	events EventPublisher // nil disables audit events
}

// NewService creates a new user service
func NewService(store Store, events EventPublisher) *Service {
	return &Service{store: store, events: events}
}

// Register creates a new buyer account. The store reports duplicate emails
// as ErrEmailExists.
func (s *Service) Register(ctx context.Context, reg Registration) (*User, error) {
	return s.registerWithRole(ctx, reg, RoleBuyer)
}

// RegisterAdmin creates a new admin account. Only operational tooling calls
// this; the signup endpoint always registers buyers.
func (s *Service) RegisterAdmin(ctx context.Context, reg Registration) (*User, error) {
	return s.registerWithRole(ctx, reg, RoleAdmin)
}

func (s *Service) registerWithRole(ctx context.Context, reg Registration, role string) (*User, error) {
	passwordHash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &User{
		ID:           uuid.New().String(),
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Email:        reg.Email,
		Phone:        reg.Phone,
		PasswordHash: passwordHash,
		DateOfBirth:  reg.DateOfBirth,
		Address:      reg.Address,
		City:         reg.City,
		Province:     reg.Province,
		PostalCode:   reg.PostalCode,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}

	s.publish(ctx, u.ID, EventUserRegistered, UserRegistered{
		UserID:       u.ID,
		Email:        u.Email,
		Role:         u.Role,
		RegisteredAt: now,
	})

	return u, nil
}

// Authenticate verifies credentials and stamps the last login. It returns
// ErrInvalidCredentials for both an unknown email and a wrong password so
// callers cannot distinguish the two.
func (s *Service) Authenticate(ctx context.Context, email, password, ipAddress, userAgent string) (*User, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrUserDeactivated
	}

	now := time.Now()
	if err := s.store.SetLastLogin(ctx, u.ID, now); err != nil {
		log.Printf("[User] Failed to record last login for %s: %v", u.ID, err)
	}
	u.LastLogin = now

	s.publish(ctx, u.ID, EventUserLoggedIn, UserLoggedIn{
		UserID:    u.ID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		LoggedAt:  now,
	})

	return u, nil
}

// RecordLogout emits the logout audit event. Best-effort only.
func (s *Service) RecordLogout(ctx context.Context, userID string) {
	s.publish(ctx, userID, EventUserLoggedOut, UserLoggedOut{
		UserID:   userID,
		LoggedAt: time.Now(),
	})
}

// GetByID loads a user by ID.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.store.FindByID(ctx, id)
}

// UpdateProfile applies a partial profile update and returns the fresh record.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, error) {
	return s.store.UpdateProfile(ctx, userID, update)
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(currentPassword, u.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.store.SetPasswordHash(ctx, userID, hash)
}

func (s *Service) publish(ctx context.Context, key, eventType string, event any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, eventType, event); err != nil {
		log.Printf("[User] Failed to publish %s event: %v", eventType, err)
	}
}
