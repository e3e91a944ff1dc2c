// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port interfaces.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/planagain/todo-api/internal/domain/todo"
	"github.com/planagain/todo-api/internal/platform/telemetry"
	"github.com/planagain/todo-api/internal/ports"
)

// Compile-time check that TodoService implements ports.TodoService.
var _ ports.TodoService = (*TodoService)(nil)

// TodoService implements ports.TodoService. It normalizes and validates
// input, delegates persistence to the repository, and records per-operation
// metrics. Ownership scoping is enforced by passing the owner id into every
// repository call; the service never reads an owner from the entity alone.
type TodoService struct {
	repo    ports.TodoRepository
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// NewTodoService creates a TodoService. Metrics may be nil, in which case
// operation counters are skipped.
func NewTodoService(repo ports.TodoRepository, metrics *telemetry.Metrics, logger *slog.Logger) *TodoService {
	return &TodoService{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
	}
}

// Create validates and persists a new todo for the owner. The status is
// forced to Upcoming regardless of input; a task is never born completed.
func (s *TodoService) Create(ctx context.Context, ownerID uuid.UUID, t *todo.Todo) (*todo.Todo, error) {
	s.logger.InfoContext(ctx, "creating todo", slog.String("owner_id", ownerID.String()))

	t.OwnerID = ownerID
	t.Status = todo.StatusUpcoming

	t.Normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Insert(ctx, t)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create todo",
			slog.String("operation", "Create"),
			slog.String("owner_id", ownerID.String()),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.count(ctx, "create")
	return created, nil
}

// Get returns a single todo scoped to the owner.
func (s *TodoService) Get(ctx context.Context, ownerID, id uuid.UUID) (*todo.Todo, error) {
	t, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List executes the paginated listing and attaches the filter-independent
// stats. HasMore reports whether rows remain beyond the returned page.
func (s *TodoService) List(ctx context.Context, ownerID uuid.UUID, q todo.ListQuery) (*todo.Page, error) {
	items, total, err := s.repo.List(ctx, ownerID, q)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list todos",
			slog.String("operation", "List"),
			slog.String("owner_id", ownerID.String()),
			slog.Any("error", err),
		)
		return nil, err
	}

	stats, err := s.repo.Stats(ctx, ownerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to compute todo stats",
			slog.String("operation", "List"),
			slog.String("owner_id", ownerID.String()),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.count(ctx, "list")
	return &todo.Page{
		Items:   items,
		HasMore: q.Offset()+len(items) < total,
		Stats:   stats,
	}, nil
}

// Update fully replaces the mutable fields of the (id, owner) todo. The
// existence check runs first so a bad payload for someone else's todo still
// reports not-found, leaking nothing about foreign rows.
func (s *TodoService) Update(ctx context.Context, ownerID, id uuid.UUID, t *todo.Todo) (*todo.Todo, error) {
	s.logger.InfoContext(ctx, "updating todo",
		slog.String("owner_id", ownerID.String()),
		slog.String("todo_id", id.String()),
	)

	if _, err := s.repo.GetByID(ctx, ownerID, id); err != nil {
		return nil, err
	}

	t.ID = id
	t.OwnerID = ownerID

	t.Normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Replace(ctx, t)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update todo",
			slog.String("operation", "Update"),
			slog.String("owner_id", ownerID.String()),
			slog.String("todo_id", id.String()),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.count(ctx, "update")
	return updated, nil
}

// Delete hard-deletes the (id, owner) todo. A repeated delete surfaces
// domain.ErrNotFound from the repository.
func (s *TodoService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	s.logger.InfoContext(ctx, "deleting todo",
		slog.String("owner_id", ownerID.String()),
		slog.String("todo_id", id.String()),
	)

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}

	s.count(ctx, "delete")
	return nil
}

func (s *TodoService) count(ctx context.Context, operation string) {
	if s.metrics == nil {
		return
	}
	s.metrics.TodoOperationTotal.Add(ctx, 1,
		metric.WithAttributes(telemetry.AttrOperation.String(operation)))
}
