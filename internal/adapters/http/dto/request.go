// Package dto defines the JSON request and response shapes of the HTTP API
// and the mapping from domain errors to error bodies.
package dto

import (
	"github.com/planagain/todo-api/internal/domain"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that all registration fields are present. Trimming and
// deeper rules live in the auth service.
func (r *RegisterRequest) Validate() error {
	fields := make(map[string]string)
	if r.Name == "" {
		fields["name"] = domain.MsgRequired
	}
	if r.Email == "" {
		fields["email"] = domain.MsgRequired
	}
	if r.Password == "" {
		fields["password"] = domain.MsgRequired
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// LoginRequest is the body of POST /auth/signin.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both credentials are present.
func (r *LoginRequest) Validate() error {
	fields := make(map[string]string)
	if r.Email == "" {
		fields["email"] = domain.MsgRequired
	}
	if r.Password == "" {
		fields["password"] = domain.MsgRequired
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// GoogleCallbackRequest is the body of POST /auth/google/callback. Credential
// is the provider-issued ID token; the server verifies it and derives the
// profile itself rather than trusting profile fields from the client.
type GoogleCallbackRequest struct {
	Credential string `json:"credential"`
}

// Validate checks that the credential is present.
func (r *GoogleCallbackRequest) Validate() error {
	if r.Credential == "" {
		return &domain.ValidationError{Fields: map[string]string{"credential": domain.MsgRequired}}
	}
	return nil
}

// UpdateProfileRequest is the body of PUT /user/profile.
type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// Validate checks that the name is present.
func (r *UpdateProfileRequest) Validate() error {
	if r.Name == "" {
		return &domain.ValidationError{Fields: map[string]string{"name": domain.MsgRequired}}
	}
	return nil
}

// CreateTodoRequest is the body of POST /api/todos/add-todo. Status is not
// accepted on create; new todos always start Upcoming.
type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	DueTime     string `json:"dueTime"`
}

// Validate defers to the domain entity, which owns the field rules.
func (r *CreateTodoRequest) Validate() error { return nil }

// UpdateTodoRequest is the body of PATCH /api/todos/{id}. Despite the PATCH
// verb the update is a full replace of all mutable fields, status included.
type UpdateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	DueTime     string `json:"dueTime"`
	Status      string `json:"status"`
}

// Validate defers to the domain entity, which owns the field rules.
func (r *UpdateTodoRequest) Validate() error { return nil }
