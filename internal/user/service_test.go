package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/homeware-storefront/internal/auth"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	mu    sync.Mutex
	users map[string]*User // id -> user
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*User)}
}

func (f *fakeStore) Create(ctx context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return ErrEmailExists
		}
	}
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeStore) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.Phone != nil {
		u.Phone = *update.Phone
	}
	if update.City != nil {
		u.City = *update.City
	}
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

func (f *fakeStore) SetPasswordHash(ctx context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeStore) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.LastLogin = at
	return nil
}

// recordingPublisher captures published audit events.
type recordingPublisher struct {
	types []string
}

func (r *recordingPublisher) Publish(ctx context.Context, key, eventType string, event any) error {
	r.types = append(r.types, eventType)
	return nil
}

func registration() Registration {
	return Registration{
		FirstName: "Vukile",
		LastName:  "Ndlovu",
		Email:     "vukile@example.com",
		Phone:     "+27 82 555 0100",
		Password:  "Sup3rSecret",
	}
}

func newTestService() (*Service, *fakeStore, *recordingPublisher) {
	store := newFakeStore()
	events := &recordingPublisher{}
	return NewService(store, events), store, events
}

// ============================================
// Register Tests
// ============================================

func TestService_Register_Success(t *testing.T) {
	service, _, events := newTestService()
	ctx := context.Background()

	u, err := service.Register(ctx, registration())

	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, RoleBuyer, u.Role)
	assert.True(t, u.IsActive)
	assert.Equal(t, "Vukile Ndlovu", u.FullName())
	assert.NotEqual(t, "Sup3rSecret", u.PasswordHash)
	assert.Equal(t, []string{EventUserRegistered}, events.types)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	_, err := service.Register(ctx, registration())
	require.NoError(t, err)

	_, err = service.Register(ctx, registration())
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestService_Register_ShortPassword(t *testing.T) {
	service, _, events := newTestService()
	ctx := context.Background()

	reg := registration()
	reg.Password = "short"

	_, err := service.Register(ctx, reg)

	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
	assert.Empty(t, events.types)
}

func TestService_RegisterAdmin(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	u, err := service.RegisterAdmin(ctx, registration())

	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)
}

// ============================================
// Authenticate Tests
// ============================================

func TestService_Authenticate_Success(t *testing.T) {
	service, store, events := newTestService()
	ctx := context.Background()

	registered, err := service.Register(ctx, registration())
	require.NoError(t, err)

	u, err := service.Authenticate(ctx, "vukile@example.com", "Sup3rSecret", "127.0.0.1", "test-agent")

	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)
	assert.False(t, u.LastLogin.IsZero())
	assert.Contains(t, events.types, EventUserLoggedIn)

	stored, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.LastLogin.IsZero())
}

func TestService_Authenticate_WrongPassword(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	_, err := service.Register(ctx, registration())
	require.NoError(t, err)

	_, err = service.Authenticate(ctx, "vukile@example.com", "wrongpass", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Authenticate_UnknownEmail(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	// Unknown email and wrong password are indistinguishable
	_, err := service.Authenticate(ctx, "nobody@example.com", "whatever1", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Authenticate_DeactivatedAccount(t *testing.T) {
	service, store, _ := newTestService()
	ctx := context.Background()

	u, err := service.Register(ctx, registration())
	require.NoError(t, err)
	store.users[u.ID].IsActive = false

	_, err = service.Authenticate(ctx, "vukile@example.com", "Sup3rSecret", "", "")
	assert.ErrorIs(t, err, ErrUserDeactivated)
}

// ============================================
// Profile / Password Tests
// ============================================

func TestService_UpdateProfile(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	u, err := service.Register(ctx, registration())
	require.NoError(t, err)

	city := "Durban"
	updated, err := service.UpdateProfile(ctx, u.ID, ProfileUpdate{City: &city})

	require.NoError(t, err)
	assert.Equal(t, "Durban", updated.City)
	assert.Equal(t, "Vukile", updated.FirstName)
}

func TestService_ChangePassword_Success(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	u, err := service.Register(ctx, registration())
	require.NoError(t, err)

	err = service.ChangePassword(ctx, u.ID, "Sup3rSecret", "NewSecret99")
	require.NoError(t, err)

	_, err = service.Authenticate(ctx, "vukile@example.com", "NewSecret99", "", "")
	assert.NoError(t, err)

	_, err = service.Authenticate(ctx, "vukile@example.com", "Sup3rSecret", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_ChangePassword_WrongCurrent(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	u, err := service.Register(ctx, registration())
	require.NoError(t, err)

	err = service.ChangePassword(ctx, u.ID, "wrongcurrent", "NewSecret99")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_NilPublisher_DoesNotPanic(t *testing.T) {
	service := NewService(newFakeStore(), nil)
	ctx := context.Background()

	u, err := service.Register(ctx, registration())
	require.NoError(t, err)

	service.RecordLogout(ctx, u.ID)

	_, err = service.Authenticate(ctx, "vukile@example.com", "Sup3rSecret", "", "")
	assert.NoError(t, err)
}
