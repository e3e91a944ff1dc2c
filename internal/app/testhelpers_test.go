package app_test

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planagain/todo-api/internal/domain"
	"github.com/planagain/todo-api/internal/domain/todo"
	"github.com/planagain/todo-api/internal/domain/user"
	"github.com/planagain/todo-api/internal/ports"
)

var testTime = time.Date(2026, 2, 12, 15, 4, 5, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeTodoRepo is an in-memory ports.TodoRepository with the same scoping,
// filtering, and ordering semantics as the real storage adapter.
type fakeTodoRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]todo.Todo

	insertErr error
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{items: make(map[uuid.UUID]todo.Todo)}
}

func (f *fakeTodoRepo) Insert(_ context.Context, t *todo.Todo) (*todo.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return nil, f.insertErr
	}

	stored := *t
	stored.ID = uuid.New()
	stored.CreatedAt = testTime
	stored.UpdatedAt = testTime
	f.items[stored.ID] = stored
	return &stored, nil
}

func (f *fakeTodoRepo) GetByID(_ context.Context, ownerID, id uuid.UUID) (*todo.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.items[id]
	if !ok || t.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTodoRepo) List(_ context.Context, ownerID uuid.UUID, q todo.ListQuery) ([]todo.Todo, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matching := f.matching(ownerID, q)
	sortTodos(matching, q.SortBy, q.SortOrder)

	total := len(matching)
	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return append([]todo.Todo(nil), matching[start:end]...), total, nil
}

func (f *fakeTodoRepo) Stats(_ context.Context, ownerID uuid.UUID) (todo.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var s todo.Stats
	for _, t := range f.items {
		if t.OwnerID != ownerID {
			continue
		}
		s.Total++
		switch t.Status {
		case todo.StatusUpcoming:
			s.Upcoming++
		case todo.StatusCompleted:
			s.Completed++
		}
	}
	return s, nil
}

func (f *fakeTodoRepo) AllByOwner(_ context.Context, ownerID uuid.UUID) ([]todo.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []todo.Todo
	for _, t := range f.items {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTodoRepo) Replace(_ context.Context, t *todo.Todo) (*todo.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.items[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return nil, domain.ErrNotFound
	}

	stored := *t
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = existing.UpdatedAt.Add(time.Second)
	f.items[stored.ID] = stored
	return &stored, nil
}

func (f *fakeTodoRepo) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.items[id]
	if !ok || t.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeTodoRepo) matching(ownerID uuid.UUID, q todo.ListQuery) []todo.Todo {
	var out []todo.Todo
	for _, t := range f.items {
		if t.OwnerID != ownerID {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.Search != "" {
			needle := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(t.Title), needle) &&
				!strings.Contains(strings.ToLower(t.Description), needle) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func sortTodos(items []todo.Todo, by todo.SortField, order todo.SortOrder) {
	key := func(t todo.Todo) string {
		switch by {
		case todo.SortByTitle:
			return t.Title
		case todo.SortByDescription:
			return t.Description
		case todo.SortByDueTime:
			return t.DueTime
		case todo.SortByStatus:
			return string(t.Status)
		case todo.SortByCreatedAt:
			return t.CreatedAt.Format(time.RFC3339Nano)
		case todo.SortByUpdatedAt:
			return t.UpdatedAt.Format(time.RFC3339Nano)
		default:
			return t.DueDate
		}
	}

	sort.Slice(items, func(i, j int) bool {
		ki, kj := key(items[i]), key(items[j])
		if ki != kj {
			if order == todo.SortDesc {
				return ki > kj
			}
			return ki < kj
		}
		return items[i].ID.String() < items[j].ID.String()
	})
}

// fakeUserRepo is an in-memory ports.UserRepository with a unique-email
// constraint.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]user.User)}
}

func (f *fakeUserRepo) Insert(_ context.Context, u *user.User) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, domain.ErrConflict
		}
	}

	stored := *u
	stored.ID = uuid.New()
	stored.CreatedAt = testTime
	stored.UpdatedAt = testTime
	f.users[stored.ID] = stored
	return &stored, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByGoogleIDOrEmail(_ context.Context, googleID, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.GoogleID != "" && u.GoogleID == googleID {
			return &u, nil
		}
	}
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) UpdateName(_ context.Context, id uuid.UUID, name string) (*user.User, error) {
	return f.update(id, func(u *user.User) { u.Name = name })
}

func (f *fakeUserRepo) LinkGoogle(_ context.Context, id uuid.UUID, googleID, avatarURL string) (*user.User, error) {
	return f.update(id, func(u *user.User) {
		u.GoogleID = googleID
		if avatarURL != "" {
			u.AvatarURL = avatarURL
		}
	})
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role user.Role) (*user.User, error) {
	return f.update(id, func(u *user.User) { u.Role = role })
}

func (f *fakeUserRepo) List(_ context.Context) ([]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]user.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (f *fakeUserRepo) update(id uuid.UUID, fn func(*user.User)) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = u.UpdatedAt.Add(time.Second)
	f.users[id] = u
	return &u, nil
}

// fakeSessionStore is an in-memory ports.SessionStore.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]uuid.UUID
	next     int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]uuid.UUID)}
}

func (f *fakeSessionStore) Create(_ context.Context, userID uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.next++
	id := fmt.Sprintf("session-%d", f.next)
	f.sessions[id] = userID
	return id, nil
}

func (f *fakeSessionStore) UserID(_ context.Context, sessionID string) (uuid.UUID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	userID, ok := f.sessions[sessionID]
	return userID, ok, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.sessions, sessionID)
	return nil
}

// fakeVerifier is a canned ports.TokenVerifier.
type fakeVerifier struct {
	claims *ports.GoogleClaims
	err    error
}

func (f *fakeVerifier) Verify(context.Context, string) (*ports.GoogleClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}
