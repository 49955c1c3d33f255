// Package domain contains core business types and interfaces.
//
// This file defines the User domain type and related types for authentication.
// These types are separate from the repository models so business logic does
// not depend on sql.Null* types.
package domain

import (
	"database/sql"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Role is an authorization role carried in access tokens.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleSupervisor Role = "SUPERVISOR"
	RoleViewer     Role = "VIEWER"
)

// roleRank orders roles; a role grants everything ranked at or below it.
var roleRank = map[Role]int{
	RoleViewer:     1,
	RoleSupervisor: 2,
	RoleManager:    3,
	RoleAdmin:      4,
}

// IsValid returns true if the role is a recognized value.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// Grants reports whether holding r satisfies a requirement for required.
// Unknown roles grant nothing.
func (r Role) Grants(required Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	want, ok := roleRank[required]
	return ok && have >= want
}

// AnyGrants reports whether any of roles grants required.
func AnyGrants(roles []Role, required Role) bool {
	return slices.ContainsFunc(roles, func(r Role) bool { return r.Grants(required) })
}

// User is a registered user.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string // Never expose this in API responses
	Name         string
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user holds role or one ranked above it
// (ADMIN > MANAGER > SUPERVISOR > VIEWER).
func (u *User) HasRole(role Role) bool {
	return AnyGrants(u.Roles, role)
}

// DisplayName returns the user's name or email if name is empty.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// RegisterParams contains the parameters for user registration.
type RegisterParams struct {
	Email    string
	Password string // Raw password, hashed by the service
	Name     string
}

// LoginResult contains the result of a successful login.
type LoginResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// NullStringValue safely extracts a string from sql.NullString.
func NullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// NullTimeValue returns the time or the zero value.
func NullTimeValue(nt sql.NullTime) time.Time {
	if nt.Valid {
		return nt.Time
	}
	return time.Time{}
}

// ToNullString converts a string to sql.NullString.
func ToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
