// Package service contains the business logic layer.
//
// Services orchestrate interactions between repositories, external APIs,
// and domain logic. They are responsible for:
// - Input validation
// - Business rule enforcement
// - Error translation (database errors -> domain errors)
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/DukeRupert/sdview/internal/auth"
	"github.com/DukeRupert/sdview/internal/domain"
	"github.com/DukeRupert/sdview/internal/metrics"
	"github.com/DukeRupert/sdview/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// Configuration Constants
// =============================================================================

const (
	// BcryptCost is the cost factor for bcrypt password hashing.
	//
	// SECURITY NOTE: This should NOT be configurable at runtime. If you need
	// to change it, do so here and redeploy.
	BcryptCost = 12

	// MinPasswordLength is the minimum password length.
	MinPasswordLength = 8

	// MaxPasswordLength is the bcrypt input limit.
	MaxPasswordLength = 72
)

// dummyHash is compared against when the email is unknown so both login
// failure paths cost one bcrypt comparison.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// commonPasswords are rejected even when they satisfy the character rules.
var commonPasswords = map[string]struct{}{
	"password1":   {},
	"password12":  {},
	"password123": {},
	"qwerty123":   {},
	"letmein1":    {},
	"welcome1":    {},
	"admin123":    {},
	"abc12345":    {},
	"iloveyou1":   {},
	"changeme1":   {},
}

// =============================================================================
// Interface Definition
// =============================================================================

// UserService defines the interface for user-related operations.
type UserService interface {
	// Register creates a new user account with the VIEWER role.
	// Returns domain.ECONFLICT if email already exists.
	// Returns domain.EINVALID for validation errors.
	Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error)

	// Login checks credentials and issues a bearer token.
	// Returns domain.EUNAUTHORIZED for invalid credentials.
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)

	// Logout revokes the token described by claims until it expires.
	Logout(ctx context.Context, claims *auth.Claims) error

	// Authenticate verifies a raw bearer token and loads its user.
	// Returns domain.EUNAUTHORIZED for invalid, expired or revoked tokens.
	Authenticate(ctx context.Context, token string) (*domain.User, *auth.Claims, error)

	// GetByID retrieves a user by their ID.
	// Returns domain.ENOTFOUND if user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// DeleteExpiredRevocations removes revocation entries whose tokens have
	// expired anyway.
	DeleteExpiredRevocations(ctx context.Context) (int64, error)
}

// UserStore is the subset of repository.Queries used by the user service.
type UserStore interface {
	CreateUser(ctx context.Context, arg repository.CreateUserParams) (repository.User, error)
	GetUserByEmail(ctx context.Context, email string) (repository.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (repository.User, error)
	RevokeToken(ctx context.Context, arg repository.RevokeTokenParams) error
	IsTokenRevoked(ctx context.Context, tokenHash string) (bool, error)
	DeleteExpiredRevokedTokens(ctx context.Context) (int64, error)
}

// =============================================================================
// Implementation
// =============================================================================

type userService struct {
	store  UserStore
	tokens *auth.TokenIssuer
	logger *slog.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(store UserStore, tokens *auth.TokenIssuer, logger *slog.Logger) UserService {
	return &userService{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new user account with the provided parameters.
//
// Flow:
// 1. Normalize and validate input
// 2. Check if email already exists
// 3. Hash the password with bcrypt
// 4. Create the user record
//
// The password is hashed even on duplicate email so both outcomes take the
// same time.
func (s *userService) Register(ctx context.Context, params domain.RegisterParams) (*domain.User, error) {
	const op = "UserService.Register"

	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	params.Name = strings.TrimSpace(params.Name)

	if err := validateEmail(params.Email); err != nil {
		return nil, domain.Wrap(err, domain.EINVALID, op, domain.ErrorMessage(err))
	}
	if params.Name == "" {
		return nil, domain.Invalid(op, "Name is required")
	}
	if err := validatePassword(params.Password); err != nil {
		return nil, domain.Wrap(err, domain.EINVALID, op, domain.ErrorMessage(err))
	}

	_, err := s.store.GetUserByEmail(ctx, params.Email)
	if err == nil {
		_, _ = bcrypt.GenerateFromPassword([]byte(params.Password), BcryptCost)
		return nil, domain.Conflict(op, "Email already registered")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Internal(err, op, "Failed to check email availability")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), BcryptCost)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to hash password")
	}

	repoUser, err := s.store.CreateUser(ctx, repository.CreateUserParams{
		Email:        params.Email,
		PasswordHash: string(passwordHash),
		Name:         params.Name,
		Roles:        []string{string(domain.RoleViewer)},
	})
	if err != nil {
		// Unique constraint violation from a concurrent registration
		if strings.Contains(err.Error(), "unique") || strings.Contains(err.Error(), "duplicate") {
			return nil, domain.Conflict(op, "Email already registered")
		}
		return nil, domain.Internal(err, op, "Failed to create user")
	}

	user := repoUserToDomain(repoUser)
	user.PasswordHash = ""

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login authenticates a user and issues a signed token.
//
// The same error message is returned for unknown email and wrong password.
func (s *userService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	const op = "UserService.Login"

	email = strings.ToLower(strings.TrimSpace(email))

	repoUser, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			metrics.LoginAttempt("unknown_user")
			return nil, domain.Unauthorized(op, "Invalid email or password")
		}
		return nil, domain.Internal(err, op, "Failed to retrieve user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(repoUser.PasswordHash), []byte(password)); err != nil {
		metrics.LoginAttempt("bad_password")
		return nil, domain.Unauthorized(op, "Invalid email or password")
	}

	user := repoUserToDomain(repoUser)
	user.PasswordHash = ""

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to issue token")
	}

	metrics.LoginAttempt("success")
	s.logger.Info("user logged in", "user_id", user.ID, "email", user.Email)

	return &domain.LoginResult{
		User:      user,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout records the token ID as revoked. Revoking an already revoked token
// is not an error.
func (s *userService) Logout(ctx context.Context, claims *auth.Claims) error {
	const op = "UserService.Logout"

	if claims == nil || claims.ID == "" {
		return nil
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	err := s.store.RevokeToken(ctx, repository.RevokeTokenParams{
		TokenHash: claims.RevocationKey(),
		UserID:    claims.UserID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return domain.Internal(err, op, "Failed to revoke token")
	}

	s.logger.Debug("token revoked", "user_id", claims.UserID)
	return nil
}

// Authenticate verifies token and returns the user it was issued to.
func (s *userService) Authenticate(ctx context.Context, token string) (*domain.User, *auth.Claims, error) {
	const op = "UserService.Authenticate"

	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, nil, domain.Wrap(err, domain.EUNAUTHORIZED, op, "Token expired")
		}
		return nil, nil, domain.Wrap(err, domain.EUNAUTHORIZED, op, "Invalid token")
	}

	revoked, err := s.store.IsTokenRevoked(ctx, claims.RevocationKey())
	if err != nil {
		return nil, nil, domain.Internal(err, op, "Failed to check token")
	}
	if revoked {
		return nil, nil, domain.Unauthorized(op, "Token revoked")
	}

	repoUser, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.Unauthorized(op, "Invalid token")
		}
		return nil, nil, domain.Internal(err, op, "Failed to retrieve user")
	}

	user := repoUserToDomain(repoUser)
	user.PasswordHash = ""
	return user, claims, nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "UserService.GetByID"

	repoUser, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", id.String())
		}
		return nil, domain.Internal(err, op, "Failed to retrieve user")
	}

	user := repoUserToDomain(repoUser)
	user.PasswordHash = ""
	return user, nil
}

// DeleteExpiredRevocations removes expired revocation entries.
func (s *userService) DeleteExpiredRevocations(ctx context.Context) (int64, error) {
	const op = "UserService.DeleteExpiredRevocations"

	n, err := s.store.DeleteExpiredRevokedTokens(ctx)
	if err != nil {
		return 0, domain.Internal(err, op, "Failed to delete expired revocations")
	}
	if n > 0 {
		s.logger.Info("deleted expired revocations", "count", n)
	}
	return n, nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// repoUserToDomain converts a repository.User to a domain.User. Unknown roles
// are dropped.
func repoUserToDomain(u repository.User) *domain.User {
	roles := make([]domain.Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		role := domain.Role(strings.ToUpper(r))
		if role.IsValid() {
			roles = append(roles, role)
		}
	}

	return &domain.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Roles:        roles,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// validateEmail validates an email address format.
//
// Checks:
// - Basic format validation (exactly one @, domain has a dot)
// - Length limits (RFC 5321: 254 chars max)
func validateEmail(email string) error {
	if email == "" {
		return domain.Invalid("", "Email is required")
	}
	if len(email) > 254 {
		return domain.Invalid("", "Email must be 254 characters or less")
	}
	if strings.Count(email, "@") != 1 {
		return domain.Invalid("", "Email must contain exactly one @ symbol")
	}

	local, host, _ := strings.Cut(email, "@")
	if local == "" {
		return domain.Invalid("", "Email cannot start with @")
	}
	if host == "" {
		return domain.Invalid("", "Email cannot end with @")
	}
	if !strings.Contains(host, ".") {
		return domain.Invalid("", "Email domain must contain a dot")
	}
	if strings.Contains(email, "..") {
		return domain.Invalid("", "Email cannot contain consecutive dots")
	}
	return nil
}

// validatePassword validates password strength requirements.
//
// Rules:
// - Length between 8 and 72 characters (bcrypt limit)
// - At least one letter and one number
// - Not a well-known password
func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return domain.Invalid("", "Password must be at least 8 characters")
	}
	if len(password) > MaxPasswordLength {
		return domain.Invalid("", "Password must be 72 characters or less")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		return domain.Invalid("", "Password must contain at least one letter")
	}
	if !hasDigit {
		return domain.Invalid("", "Password must contain at least one number")
	}

	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		return domain.Invalid("", "Password is too common")
	}
	return nil
}
