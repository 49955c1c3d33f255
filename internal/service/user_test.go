package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DukeRupert/sdview/internal/auth"
	"github.com/DukeRupert/sdview/internal/domain"
	"github.com/DukeRupert/sdview/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Fakes
// =============================================================================

type fakeUserStore struct {
	mu        sync.Mutex
	users     map[string]repository.User
	revoked   map[string]time.Time
	createErr error
	lookupErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:   make(map[string]repository.User),
		revoked: make(map[string]time.Time),
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, arg repository.CreateUserParams) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return repository.User{}, f.createErr
	}
	u := repository.User{
		ID:           uuid.New(),
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		Name:         arg.Name,
		Roles:        arg.Roles,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[u.Email] = u
	return u, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return repository.User{}, f.lookupErr
	}
	u, ok := f.users[email]
	if !ok {
		return repository.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return repository.User{}, sql.ErrNoRows
}

func (f *fakeUserStore) RevokeToken(_ context.Context, arg repository.RevokeTokenParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[arg.TokenHash] = arg.ExpiresAt
	return nil
}

func (f *fakeUserStore) IsTokenRevoked(_ context.Context, tokenHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[tokenHash]
	return ok, nil
}

func (f *fakeUserStore) DeleteExpiredRevokedTokens(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, exp := range f.revoked {
		if exp.Before(time.Now()) {
			delete(f.revoked, k)
			n++
		}
	}
	return n, nil
}

func newTestUserService(t *testing.T) (UserService, *fakeUserStore) {
	t.Helper()
	tokens, err := auth.NewTokenIssuer([]byte("service-test-secret"), time.Hour)
	require.NoError(t, err)
	store := newFakeUserStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUserService(store, tokens, logger), store
}

func registerParams() domain.RegisterParams {
	return domain.RegisterParams{
		Email:    "  Lead@Example.COM ",
		Password: "Sh4tdownLead",
		Name:     "Shift Lead",
	}
}

// =============================================================================
// Register
// =============================================================================

func TestUserService_Register(t *testing.T) {
	svc, store := newTestUserService(t)

	user, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)

	assert.Equal(t, "lead@example.com", user.Email)
	assert.Equal(t, "Shift Lead", user.Name)
	assert.Equal(t, []domain.Role{domain.RoleViewer}, user.Roles)
	assert.Empty(t, user.PasswordHash)

	stored := store.users["lead@example.com"]
	assert.NotEqual(t, "Sh4tdownLead", stored.PasswordHash)
	assert.Contains(t, stored.PasswordHash, "$2a$12$")
}

func TestUserService_Register_Duplicate(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerParams())
	require.NoError(t, err)

	params := registerParams()
	params.Email = "LEAD@example.com"
	_, err = svc.Register(ctx, params)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestUserService_Register_UniqueViolation(t *testing.T) {
	svc, store := newTestUserService(t)
	store.createErr = errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`)

	_, err := svc.Register(context.Background(), registerParams())
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestUserService_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*domain.RegisterParams)
	}{
		{"missing email", func(p *domain.RegisterParams) { p.Email = "" }},
		{"email without domain dot", func(p *domain.RegisterParams) { p.Email = "lead@example" }},
		{"missing name", func(p *domain.RegisterParams) { p.Name = "   " }},
		{"short password", func(p *domain.RegisterParams) { p.Password = "Ab1" }},
		{"password without digit", func(p *domain.RegisterParams) { p.Password = "Abcdefghij" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestUserService(t)
			params := registerParams()
			tt.modify(&params)

			_, err := svc.Register(context.Background(), params)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
			assert.Empty(t, store.users)
		})
	}
}

// =============================================================================
// Login / Authenticate / Logout
// =============================================================================

func TestUserService_LoginAndAuthenticate(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerParams())
	require.NoError(t, err)

	result, err := svc.Login(ctx, "LEAD@example.com", "Sh4tdownLead")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, registered.ID, result.User.ID)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	user, claims, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "lead@example.com", claims.Email)
	assert.Equal(t, []domain.Role{domain.RoleViewer}, claims.Roles)
	assert.Empty(t, user.PasswordHash)
}

func TestUserService_Login_InvalidCredentials(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerParams())
	require.NoError(t, err)

	_, errWrong := svc.Login(ctx, "lead@example.com", "Wr0ngPassword")
	_, errUnknown := svc.Login(ctx, "nobody@example.com", "Sh4tdownLead")

	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(errWrong))
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(errUnknown))
	assert.Equal(t, domain.ErrorMessage(errWrong), domain.ErrorMessage(errUnknown))
}

func TestUserService_Login_StoreError(t *testing.T) {
	svc, store := newTestUserService(t)
	store.lookupErr = errors.New("connection refused")

	_, err := svc.Login(context.Background(), "lead@example.com", "Sh4tdownLead")
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
}

func TestUserService_Logout_RevokesToken(t *testing.T) {
	svc, store := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerParams())
	require.NoError(t, err)
	result, err := svc.Login(ctx, "lead@example.com", "Sh4tdownLead")
	require.NoError(t, err)

	_, claims, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	assert.Len(t, store.revoked, 1)
	assert.NotContains(t, store.revoked, claims.ID)

	_, _, err = svc.Authenticate(ctx, result.Token)
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))

	// Revoking twice is fine.
	require.NoError(t, svc.Logout(ctx, claims))
	require.NoError(t, svc.Logout(ctx, nil))
}

func TestUserService_Authenticate_Invalid(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, _, err := svc.Authenticate(context.Background(), "garbage")
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
}

func TestUserService_Authenticate_DeletedUser(t *testing.T) {
	svc, store := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerParams())
	require.NoError(t, err)
	result, err := svc.Login(ctx, "lead@example.com", "Sh4tdownLead")
	require.NoError(t, err)

	delete(store.users, "lead@example.com")

	_, _, err = svc.Authenticate(ctx, result.Token)
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc, _ := newTestUserService(t)

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestUserService_DeleteExpiredRevocations(t *testing.T) {
	svc, store := newTestUserService(t)
	store.revoked["old"] = time.Now().Add(-time.Minute)
	store.revoked["live"] = time.Now().Add(time.Hour)

	n, err := svc.DeleteExpiredRevocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, store.revoked, "live")
}

// =============================================================================
// Helpers
// =============================================================================

func TestRepoUserToDomain_Roles(t *testing.T) {
	u := repoUserToDomain(repository.User{
		ID:    uuid.New(),
		Roles: []string{"manager", "VIEWER", "bogus"},
	})
	assert.Equal(t, []domain.Role{domain.RoleManager, domain.RoleViewer}, u.Roles)
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"lead@example.com", true},
		{"", false},
		{"@example.com", false},
		{"lead@", false},
		{"lead@@example.com", false},
		{"lead@example", false},
		{"lead..x@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := validateEmail(tt.email)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
