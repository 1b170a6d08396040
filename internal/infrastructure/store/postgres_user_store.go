// Package store provides the Postgres-backed user persistence used by the
// auth API.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/example/homeware-storefront/internal/user"
)

const uniqueViolation = "23505"

// PostgresUserStore implements user.Store over a users table.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// EnsureSchema creates the users table when it does not exist.
func (s *PostgresUserStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id             TEXT PRIMARY KEY,
			first_name     VARCHAR(50) NOT NULL,
			last_name      VARCHAR(50) NOT NULL,
			email          VARCHAR(255) NOT NULL UNIQUE,
			phone          VARCHAR(50) NOT NULL,
			password_hash  TEXT NOT NULL,
			date_of_birth  VARCHAR(10),
			address        VARCHAR(255),
			city           VARCHAR(100),
			province       VARCHAR(50),
			postal_code    VARCHAR(10),
			role           VARCHAR(20) NOT NULL DEFAULT 'buyer',
			is_active      BOOLEAN NOT NULL DEFAULT TRUE,
			email_verified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at     TIMESTAMPTZ NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL,
			last_login     TIMESTAMPTZ
		)`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

// Create inserts a new user. A duplicate email maps to user.ErrEmailExists.
func (s *PostgresUserStore) Create(ctx context.Context, u *user.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (
			id, first_name, last_name, email, phone, password_hash,
			date_of_birth, address, city, province, postal_code,
			role, is_active, email_verified, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.Phone, u.PasswordHash,
		nullable(u.DateOfBirth), nullable(u.Address), nullable(u.City),
		nullable(u.Province), nullable(u.PostalCode),
		u.Role, u.IsActive, u.EmailVerified, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return user.ErrEmailExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByID loads a user by id. Deactivated users are returned too;
// enforcement belongs to the user service.
func (s *PostgresUserStore) FindByID(ctx context.Context, id string) (*user.User, error) {
	return s.findOne(ctx, "id = $1", id)
}

// FindByEmail loads a user by email, regardless of active state.
func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.findOne(ctx, "email = $1", email)
}

func (s *PostgresUserStore) findOne(ctx context.Context, where string, arg any) (*user.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email, phone, password_hash,
			COALESCE(date_of_birth, ''), COALESCE(address, ''), COALESCE(city, ''),
			COALESCE(province, ''), COALESCE(postal_code, ''),
			role, is_active, email_verified, created_at, updated_at, last_login
		 FROM users WHERE `+where, arg)

	var u user.User
	var lastLogin sql.NullTime
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PasswordHash,
		&u.DateOfBirth, &u.Address, &u.City, &u.Province, &u.PostalCode,
		&u.Role, &u.IsActive, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt, &lastLogin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if lastLogin.Valid {
		u.LastLogin = lastLogin.Time
	}
	return &u, nil
}

// UpdateProfile applies the non-nil fields and returns the fresh record.
func (s *PostgresUserStore) UpdateProfile(ctx context.Context, id string, update user.ProfileUpdate) (*user.User, error) {
	sets := []string{"updated_at = $1"}
	args := []any{time.Now()}

	add := func(column string, value *string) {
		if value != nil {
			args = append(args, *value)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	add("first_name", update.FirstName)
	add("last_name", update.LastName)
	add("phone", update.Phone)
	add("date_of_birth", update.DateOfBirth)
	add("address", update.Address)
	add("city", update.City)
	add("province", update.Province)
	add("postal_code", update.PostalCode)

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, user.ErrUserNotFound
	}

	return s.FindByID(ctx, id)
}

// SetPasswordHash replaces the stored password hash.
func (s *PostgresUserStore) SetPasswordHash(ctx context.Context, id, hash string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3",
		hash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// SetLastLogin stamps the last successful login.
func (s *PostgresUserStore) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET last_login = $1 WHERE id = $2", at, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
