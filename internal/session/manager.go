// Package session owns the client's authenticated identity: credential
// submission against the auth API, persistence of the token and user record,
// and role-based redirect decisions.
package session

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/example/homeware-storefront/internal/storage"
)

// Storage keys for the persisted session. Token and user are written and
// cleared together; one without the other reads back as not authenticated.
const (
	TokenKey = "authToken"
	UserKey  = "user"
)

// User is the authenticated user record as persisted client-side.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	LoginTime time.Time `json:"loginTime"`
}

// State is the session lifecycle state.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

// AuthAPI is the surface of the auth API the manager needs. *Client
// implements it; tests substitute fakes.
type AuthAPI interface {
	Signup(ctx context.Context, form SignupForm) (*AuthData, error)
	Login(ctx context.Context, email, password string) (*AuthData, error)
	Logout(ctx context.Context, token string) error
}

// Manager owns the current session. All state changes go through its lock,
// so two racing submissions cannot interleave a partial token/user pair:
// whichever response commits last wins whole.
type Manager struct {
	mu        sync.Mutex
	storage   storage.Storage
	api       AuthAPI
	token     string
	user      *User
	state     State
	observers []func()
}

// NewManager hydrates the session from storage. A missing, partial, or
// corrupt persisted session reads back as anonymous; hydration never fails.
func NewManager(ctx context.Context, st storage.Storage, api AuthAPI) *Manager {
	m := &Manager{storage: st, api: api}
	m.hydrate(ctx)
	return m
}

func (m *Manager) hydrate(ctx context.Context) {
	tokenBytes, tokenOK, err := m.storage.Get(ctx, TokenKey)
	if err != nil {
		log.Printf("[Session] Failed to load token: %v", err)
		return
	}
	userBytes, userOK, err := m.storage.Get(ctx, UserKey)
	if err != nil {
		log.Printf("[Session] Failed to load user: %v", err)
		return
	}
	if !tokenOK || !userOK {
		return
	}

	var user User
	if err := json.Unmarshal(userBytes, &user); err != nil {
		log.Printf("[Session] Discarding corrupt user record: %v", err)
		return
	}

	m.token = string(tokenBytes)
	m.user = &user
	m.state = StateAuthenticated
}

// OnChange registers an observer called after every session change (login,
// signup, logout). Greeting banners and nav bars subscribe here.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

// Signup validates the form, submits it, and on acceptance stores the new
// session. Validation failures return *ValidationError before any network
// call; rejection leaves local state untouched.
func (m *Manager) Signup(ctx context.Context, form SignupForm) (*User, error) {
	if verr := ValidateSignup(form); verr != nil {
		return nil, verr
	}

	prev := m.beginAuth()

	data, err := m.api.Signup(ctx, form)
	if err != nil {
		m.restoreState(prev)
		return nil, err
	}

	user := m.commit(ctx, data)
	m.notify()
	return user, nil
}

// Login submits credentials and on success stores the session and returns
// the server-assigned role. Failure does not alter any previously stored
// session.
func (m *Manager) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}

	prev := m.beginAuth()

	data, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.restoreState(prev)
		return "", err
	}

	user := m.commit(ctx, data)
	m.notify()
	return user.Role, nil
}

// Logout notifies the server best-effort, then unconditionally clears local
// state. It always succeeds locally regardless of network outcome.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	if token != "" {
		if err := m.api.Logout(ctx, token); err != nil {
			log.Printf("[Session] Logout notification failed: %v", err)
		}
	}

	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.state = StateAnonymous
	if err := m.storage.Remove(ctx, TokenKey); err != nil {
		log.Printf("[Session] Failed to remove token: %v", err)
	}
	if err := m.storage.Remove(ctx, UserKey); err != nil {
		log.Printf("[Session] Failed to remove user: %v", err)
	}
	m.mu.Unlock()

	m.notify()
}

// IsAuthenticated reports whether both token and user are present.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != "" && m.user != nil
}

// CurrentUser returns a copy of the authenticated user, if any.
func (m *Manager) CurrentUser() (User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return User{}, false
	}
	return *m.user, true
}

// Token returns the current credential string, empty when anonymous.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// State returns the session lifecycle state. Callers disable submit buttons
// while it reports StateAuthenticating.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// RedirectTarget maps a role to its landing page: admins to the admin
// dashboard, everyone else to the buyer dashboard.
func RedirectTarget(role string) string {
	if role == "admin" {
		return "admin-dashboard.html"
	}
	return "buyer-dashboard.html"
}

func (m *Manager) beginAuth() State {
	m.mu.Lock()
	prev := m.state
	m.state = StateAuthenticating
	m.mu.Unlock()
	return prev
}

func (m *Manager) restoreState(prev State) {
	m.mu.Lock()
	// Another submission may have committed meanwhile; its outcome wins.
	if m.state == StateAuthenticating {
		m.state = prev
	}
	m.mu.Unlock()
}

// commit stores the accepted session. Persistence failures are logged and
// swallowed; the in-memory session stays authoritative.
func (m *Manager) commit(ctx context.Context, data *AuthData) *User {
	user := data.User
	if user.LoginTime.IsZero() {
		user.LoginTime = time.Now()
	}

	m.mu.Lock()
	m.token = data.Token
	m.user = &user
	m.state = StateAuthenticated

	if err := m.storage.Set(ctx, TokenKey, []byte(data.Token)); err != nil {
		log.Printf("[Session] Failed to persist token: %v", err)
	}
	if userBytes, err := json.Marshal(user); err == nil {
		if err := m.storage.Set(ctx, UserKey, userBytes); err != nil {
			log.Printf("[Session] Failed to persist user: %v", err)
		}
	} else {
		log.Printf("[Session] Failed to encode user: %v", err)
	}
	m.mu.Unlock()

	return &user
}

func (m *Manager) notify() {
	m.mu.Lock()
	observers := make([]func(), len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}
