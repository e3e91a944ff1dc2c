package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planagain/todo-api/internal/domain"
	"github.com/planagain/todo-api/internal/domain/todo"
)

// sortColumns maps the sort field enum to real column names. The listing
// query only ever interpolates values from this map, never caller input.
var sortColumns = map[todo.SortField]string{
	todo.SortByTitle:       "title",
	todo.SortByDescription: "description",
	todo.SortByDueDate:     "due_date",
	todo.SortByDueTime:     "due_time",
	todo.SortByStatus:      "status",
	todo.SortByCreatedAt:   "created_at",
	todo.SortByUpdatedAt:   "updated_at",
}

const todoColumns = "id, owner_id, title, description, due_date, due_time, status, created_at, updated_at"

// TodoRepo implements ports.TodoRepository on PostgreSQL.
type TodoRepo struct {
	pool *pgxpool.Pool
}

// NewTodoRepo creates a todo repository backed by the given pool.
func NewTodoRepo(pool *pgxpool.Pool) *TodoRepo {
	return &TodoRepo{pool: pool}
}

// Insert persists a new todo and returns the stored record with the
// database-generated id and timestamps.
func (r *TodoRepo) Insert(ctx context.Context, t *todo.Todo) (*todo.Todo, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO todos (owner_id, title, description, due_date, due_time, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+todoColumns,
		t.OwnerID, t.Title, t.Description, t.DueDate, t.DueTime, t.Status,
	)

	stored, err := scanTodo(row)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	return stored, nil
}

// GetByID returns the todo with the given id belonging to the owner. A row
// owned by someone else is indistinguishable from a missing row.
func (r *TodoRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*todo.Todo, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)

	stored, err := scanTodo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return stored, nil
}

// List returns one page of the owner's todos matching the criteria plus the
// total matching count. The sort order always carries a secondary sort on id
// so repeated queries page through ties deterministically.
func (r *TodoRepo) List(ctx context.Context, ownerID uuid.UUID, q todo.ListQuery) ([]todo.Todo, int, error) {
	where, args := buildFilter(ownerID, q)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM todos "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count todos: %w", err)
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "due_date"
	}
	dir := "ASC"
	if q.SortOrder == todo.SortDesc {
		dir = "DESC"
	}

	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	args = append(args, q.Limit, q.Offset())

	query := fmt.Sprintf(
		"SELECT %s FROM todos %s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d",
		todoColumns, where, col, dir, limitPos, offsetPos,
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	items, err := collectTodos(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list todos: %w", err)
	}
	return items, total, nil
}

// Stats returns the owner's aggregate status counts in a single scan.
func (r *TodoRepo) Stats(ctx context.Context, ownerID uuid.UUID) (todo.Stats, error) {
	var s todo.Stats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = $2),
		       COUNT(*) FILTER (WHERE status = $3)
		FROM todos
		WHERE owner_id = $1`,
		ownerID, todo.StatusUpcoming, todo.StatusCompleted,
	).Scan(&s.Total, &s.Upcoming, &s.Completed)
	if err != nil {
		return todo.Stats{}, fmt.Errorf("todo stats: %w", err)
	}
	return s, nil
}

// AllByOwner returns every todo for the owner, ordered by due date and time
// as a coarse pre-sort; the notifier re-orders by the resolved due instant.
func (r *TodoRepo) AllByOwner(ctx context.Context, ownerID uuid.UUID) ([]todo.Todo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE owner_id = $1
		ORDER BY due_date ASC, due_time ASC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("all todos: %w", err)
	}
	defer rows.Close()

	items, err := collectTodos(rows)
	if err != nil {
		return nil, fmt.Errorf("all todos: %w", err)
	}
	return items, nil
}

// Replace overwrites the mutable fields of the (id, owner) row.
func (r *TodoRepo) Replace(ctx context.Context, t *todo.Todo) (*todo.Todo, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE todos
		SET title = $3, description = $4, due_date = $5, due_time = $6,
		    status = $7, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+todoColumns,
		t.ID, t.OwnerID, t.Title, t.Description, t.DueDate, t.DueTime, t.Status,
	)

	stored, err := scanTodo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("replace todo: %w", err)
	}
	return stored, nil
}

// Delete removes the (id, owner) row, reporting domain.ErrNotFound when
// nothing was deleted.
func (r *TodoRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM todos WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// buildFilter assembles the WHERE clause shared by the page and count
// queries. Search matches a case-insensitive infix on title or description.
func buildFilter(ownerID uuid.UUID, q todo.ListQuery) (string, []any) {
	clauses := []string{"owner_id = $1"}
	args := []any{ownerID}

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if q.Status != "" {
		args = append(args, q.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func scanTodo(row pgx.Row) (*todo.Todo, error) {
	var t todo.Todo
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description,
		&t.DueDate, &t.DueTime, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTodos(rows pgx.Rows) ([]todo.Todo, error) {
	items := make([]todo.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}
