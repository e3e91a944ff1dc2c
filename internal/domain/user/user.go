// Package user contains the account entity and its role enum.
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planagain/todo-api/internal/domain"
)

// Role is the coarse authorization level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid returns true if the role is one of the defined constants.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Toggled returns the opposite role. Used by the admin role-toggle endpoint.
func (r Role) Toggled() Role {
	if r == RoleAdmin {
		return RoleUser
	}
	return RoleAdmin
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// User is an account that owns todos. PasswordHash is empty for accounts
// created through federated sign-in only; GoogleID is empty for local-only
// accounts. The two are linked when a Google sign-in arrives for an email
// that already has a local account.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	GoogleID     string
	AvatarURL    string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks business rules for the User entity.
func (u *User) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(u.Name) == "" {
		fields["name"] = domain.MsgRequired
	}
	if strings.TrimSpace(u.Email) == "" {
		fields["email"] = domain.MsgRequired
	}
	if !u.Role.IsValid() {
		fields["role"] = "invalid: " + string(u.Role)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
