package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/planagain/todo-api/internal/domain/todo"
	"github.com/planagain/todo-api/internal/domain/user"
)

// TodoService defines the service port for todo operations. Every method
// takes the owner explicitly; ownership scoping is a mandatory parameter
// threaded through the whole stack, never ambient state, so that isolation
// stays mechanically checkable. A lookup for a todo belonging to a different
// owner fails with domain.ErrNotFound, never domain.ErrForbidden.
type TodoService interface {
	// Create validates and persists a new todo for the owner with
	// Status=Upcoming. Returns domain.ErrValidation on missing, blank, or
	// malformed fields (due date is a strict YYYY-MM-DD calendar parse).
	Create(ctx context.Context, ownerID uuid.UUID, t *todo.Todo) (*todo.Todo, error)

	// Get returns a single todo scoped to the owner.
	// Returns domain.ErrNotFound if no (id, owner) match exists.
	Get(ctx context.Context, ownerID, id uuid.UUID) (*todo.Todo, error)

	// List executes the paginated/filtered/sorted listing and computes the
	// filter-independent per-owner stats.
	List(ctx context.Context, ownerID uuid.UUID, q todo.ListQuery) (*todo.Page, error)

	// Update fully replaces the mutable fields (title, description, dueDate,
	// dueTime, status) and bumps UpdatedAt. Returns domain.ErrNotFound if no
	// (id, owner) match exists; domain.ErrValidation under the same field
	// rules as Create plus a valid status enum value.
	Update(ctx context.Context, ownerID, id uuid.UUID, t *todo.Todo) (*todo.Todo, error)

	// Delete hard-deletes the todo. Returns domain.ErrNotFound if no
	// (id, owner) match exists; a second delete of the same id reports
	// domain.ErrNotFound rather than silently succeeding.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// NotificationService computes the due-window feed.
type NotificationService interface {
	// Feed returns the owner's Upcoming todos whose combined due instant
	// falls strictly inside (now, now+window), plus all Completed todos,
	// ordered ascending by combined instant. Read-only: crossing the window
	// never transitions a todo's status.
	Feed(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]todo.Todo, error)
}

// Session pairs an authenticated user with the signed token issued for it.
type Session struct {
	User  user.User
	Token string
}

// Identity is the resolved caller attached to a request by the auth
// middleware. Core operations must refuse to run without one.
type Identity struct {
	UserID    uuid.UUID
	Name      string
	Email     string
	Role      user.Role
	SessionID string
}

// AuthService handles registration, sign-in (local and federated), session
// resolution, and logout.
type AuthService interface {
	// Register creates a local-credential account and issues a session.
	// Returns domain.ErrValidation on missing fields and domain.ErrConflict
	// when the email is already registered.
	Register(ctx context.Context, name, email, password string) (*Session, error)

	// Login verifies local credentials and issues a session.
	// Returns domain.ErrUnauthenticated on unknown email or bad password.
	Login(ctx context.Context, email, password string) (*Session, error)

	// GoogleSignIn verifies a Google ID token, finds the account by google id
	// or email (linking or creating as needed), and issues a session.
	GoogleSignIn(ctx context.Context, idToken string) (*Session, error)

	// Resolve validates a signed token and its server-side session, returning
	// the caller identity. Returns domain.ErrUnauthenticated when the token
	// is missing, malformed, expired, or the session has been revoked.
	Resolve(ctx context.Context, token string) (*Identity, error)

	// Logout revokes the server-side session. Resolving the same token
	// afterwards fails even though the JWT itself has not expired.
	Logout(ctx context.Context, sessionID string) error
}

// UserService covers profile updates and the minimal admin surface.
type UserService interface {
	// Get returns a user by id. Returns domain.ErrNotFound if unknown.
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)

	// UpdateProfile sets the display name (trimmed, required).
	UpdateProfile(ctx context.Context, id uuid.UUID, name string) (*user.User, error)

	// List returns all accounts. The actor must be an admin; returns
	// domain.ErrForbidden otherwise.
	List(ctx context.Context, actor Identity) ([]user.User, error)

	// ToggleRole flips the target's role between user and admin. The actor
	// must be an admin. Returns domain.ErrNotFound on unknown target.
	ToggleRole(ctx context.Context, actor Identity, targetID uuid.UUID) (*user.User, error)
}
