package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/planagain/todo-api/internal/domain"
	"github.com/planagain/todo-api/internal/domain/user"
	"github.com/planagain/todo-api/internal/ports"
)

// Compile-time check that UserService implements ports.UserService.
var _ ports.UserService = (*UserService)(nil)

// UserService implements ports.UserService: profile reads and updates for
// any signed-in user, plus the admin-only account listing and role toggle.
type UserService struct {
	users  ports.UserRepository
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users ports.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile sets the display name.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, name string) (*user.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"name": domain.MsgRequired}}
	}

	s.logger.InfoContext(ctx, "updating profile", slog.String("user_id", id.String()))

	updated, err := s.users.UpdateName(ctx, id, name)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update profile",
			slog.String("operation", "UpdateProfile"),
			slog.String("user_id", id.String()),
			slog.Any("error", err),
		)
		return nil, err
	}
	return updated, nil
}

// List returns all accounts. Admin only.
func (s *UserService) List(ctx context.Context, actor ports.Identity) ([]user.User, error) {
	if actor.Role != user.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.users.List(ctx)
}

// ToggleRole flips the target's role between user and admin. Admin only.
// Admins may toggle themselves; the last admin demoting itself is allowed,
// matching the original behavior.
func (s *UserService) ToggleRole(ctx context.Context, actor ports.Identity, targetID uuid.UUID) (*user.User, error) {
	if actor.Role != user.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "toggling role",
		slog.String("actor_id", actor.UserID.String()),
		slog.String("target_id", targetID.String()),
		slog.String("from", target.Role.String()),
		slog.String("to", target.Role.Toggled().String()),
	)

	updated, err := s.users.UpdateRole(ctx, targetID, target.Role.Toggled())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to toggle role",
			slog.String("operation", "ToggleRole"),
			slog.String("target_id", targetID.String()),
			slog.Any("error", err),
		)
		return nil, err
	}
	return updated, nil
}
