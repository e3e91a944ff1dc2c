package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/planagain/todo-api/internal/domain/todo"
	"github.com/planagain/todo-api/internal/domain/user"
)

// TodoRepository is the outbound port for todo persistence. Every read and
// write is scoped by (id, owner); implementations must treat an owner
// mismatch identically to a missing row (domain.ErrNotFound).
type TodoRepository interface {
	// Insert persists a new todo and returns it with generated id and
	// timestamps populated.
	Insert(ctx context.Context, t *todo.Todo) (*todo.Todo, error)

	// GetByID returns the todo with the given id belonging to the owner.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*todo.Todo, error)

	// List returns one page of todos matching the criteria together with the
	// total number of matching rows (for the hasMore computation). Results
	// are ordered by the requested sort field with a stable secondary sort
	// on id to keep pagination deterministic.
	List(ctx context.Context, ownerID uuid.UUID, q todo.ListQuery) ([]todo.Todo, int, error)

	// Stats returns the owner's aggregate status counts, independent of any
	// listing filter.
	Stats(ctx context.Context, ownerID uuid.UUID) (todo.Stats, error)

	// AllByOwner returns every todo for the owner, unfiltered and unpaged.
	// Used by the due-window notifier, which filters and orders in memory.
	AllByOwner(ctx context.Context, ownerID uuid.UUID) ([]todo.Todo, error)

	// Replace overwrites the mutable fields of the (id, owner) row and
	// returns the stored record with the bumped UpdatedAt.
	Replace(ctx context.Context, t *todo.Todo) (*todo.Todo, error)

	// Delete removes the (id, owner) row. Returns domain.ErrNotFound when no
	// row was deleted, so a repeated delete surfaces as an error.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// UserRepository is the outbound port for account persistence.
type UserRepository interface {
	// Insert persists a new account. Returns domain.ErrConflict when the
	// email is already registered.
	Insert(ctx context.Context, u *user.User) (*user.User, error)

	// GetByID returns the account with the given id.
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)

	// GetByEmail returns the account with the given email.
	GetByEmail(ctx context.Context, email string) (*user.User, error)

	// GetByGoogleIDOrEmail returns the first account matching either the
	// google subject or the email. Used by federated sign-in to link an
	// existing local account instead of creating a duplicate.
	GetByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*user.User, error)

	// UpdateName sets the display name.
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*user.User, error)

	// LinkGoogle attaches a google subject (and avatar, when non-empty) to
	// an existing account.
	LinkGoogle(ctx context.Context, id uuid.UUID, googleID, avatarURL string) (*user.User, error)

	// UpdateRole sets the role.
	UpdateRole(ctx context.Context, id uuid.UUID, role user.Role) (*user.User, error)

	// List returns all accounts ordered by creation time.
	List(ctx context.Context) ([]user.User, error)
}

// SessionStore is the outbound port for server-side session state. Sessions
// back the revocation check on top of the signed token: logout deletes the
// session, invalidating otherwise-valid JWTs immediately.
type SessionStore interface {
	// Create stores a new session for the user and returns its id.
	Create(ctx context.Context, userID uuid.UUID) (string, error)

	// UserID returns the user the session belongs to, with ok=false when the
	// session does not exist or has expired.
	UserID(ctx context.Context, sessionID string) (uuid.UUID, bool, error)

	// Delete removes the session.
	Delete(ctx context.Context, sessionID string) error
}

// GoogleClaims is the subset of a verified Google ID token the auth flow needs.
type GoogleClaims struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// TokenVerifier verifies federated sign-in tokens against the identity
// provider. Returns domain.ErrUnauthenticated for invalid or expired tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleClaims, error)
}
