package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planagain/todo-api/internal/domain"
	"github.com/planagain/todo-api/internal/domain/user"
)

const uniqueViolation = "23505"

const userColumns = "id, name, email, password_hash, google_id, avatar_url, role, created_at, updated_at"

// UserRepo implements ports.UserRepository on PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepo creates a user repository backed by the given pool.
func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Insert persists a new account, mapping a unique-email violation to
// domain.ErrConflict.
func (r *UserRepo) Insert(ctx context.Context, u *user.User) (*user.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, google_id, avatar_url, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		u.Name, u.Email, u.PasswordHash, u.GoogleID, u.AvatarURL, u.Role,
	)

	stored, err := scanUser(row)
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return stored, nil
}

// GetByID returns the account with the given id.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

// GetByEmail returns the account with the given email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

// GetByGoogleIDOrEmail returns the first account matching the google subject
// or the email. Subject match takes precedence so a re-used email cannot
// shadow an already-linked account.
func (r *UserRepo) GetByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*user.User, error) {
	return r.getOne(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE google_id = $1 OR email = $2
		ORDER BY (google_id = $1) DESC
		LIMIT 1`,
		googleID, email,
	)
}

// UpdateName sets the display name.
func (r *UserRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) (*user.User, error) {
	return r.getOne(ctx, `
		UPDATE users SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, name,
	)
}

// LinkGoogle attaches a google subject to an existing account, keeping the
// current avatar when the provider sent none.
func (r *UserRepo) LinkGoogle(ctx context.Context, id uuid.UUID, googleID, avatarURL string) (*user.User, error) {
	return r.getOne(ctx, `
		UPDATE users
		SET google_id = $2,
		    avatar_url = CASE WHEN $3 = '' THEN avatar_url ELSE $3 END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, googleID, avatarURL,
	)
}

// UpdateRole sets the role.
func (r *UserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role user.Role) (*user.User, error) {
	return r.getOne(ctx, `
		UPDATE users SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, role,
	)
}

// List returns all accounts ordered by creation time.
func (r *UserRepo) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepo) getOne(ctx context.Context, query string, args ...any) (*user.User, error) {
	stored, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return stored, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.GoogleID, &u.AvatarURL, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
