package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/planagain/todo-api/internal/adapters/http/middleware"
	"github.com/planagain/todo-api/internal/domain/todo"
	"github.com/planagain/todo-api/internal/domain/user"
	"github.com/planagain/todo-api/internal/ports"
)

var testTime = time.Date(2026, 2, 12, 15, 4, 5, 0, time.UTC)

func withChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// asUser attaches a resolved identity, simulating the auth middleware.
func asUser(r *http.Request, id ports.Identity) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), &id))
}

func testIdentity(role user.Role) ports.Identity {
	return ports.Identity{
		UserID:    uuid.New(),
		Name:      "Alice",
		Email:     "alice@example.com",
		Role:      role,
		SessionID: "session-1",
	}
}

func validTodo(owner uuid.UUID) todo.Todo {
	return todo.Todo{
		ID:          uuid.New(),
		OwnerID:     owner,
		Title:       "Buy groceries",
		Description: "Milk, eggs, bread",
		DueDate:     "2099-01-01",
		DueTime:     "09:00",
		Status:      todo.StatusUpcoming,
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON body: %v", err)
	}
	return buf
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var result T
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	return result
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

// fakeTodoService is a canned ports.TodoService recording the owner each
// call was scoped to.
type fakeTodoService struct {
	createFn func(owner uuid.UUID, t *todo.Todo) (*todo.Todo, error)
	getFn    func(owner, id uuid.UUID) (*todo.Todo, error)
	listFn   func(owner uuid.UUID, q todo.ListQuery) (*todo.Page, error)
	updateFn func(owner, id uuid.UUID, t *todo.Todo) (*todo.Todo, error)
	deleteFn func(owner, id uuid.UUID) error
}

func (f *fakeTodoService) Create(_ context.Context, owner uuid.UUID, t *todo.Todo) (*todo.Todo, error) {
	return f.createFn(owner, t)
}

func (f *fakeTodoService) Get(_ context.Context, owner, id uuid.UUID) (*todo.Todo, error) {
	return f.getFn(owner, id)
}

func (f *fakeTodoService) List(_ context.Context, owner uuid.UUID, q todo.ListQuery) (*todo.Page, error) {
	return f.listFn(owner, q)
}

func (f *fakeTodoService) Update(_ context.Context, owner, id uuid.UUID, t *todo.Todo) (*todo.Todo, error) {
	return f.updateFn(owner, id, t)
}

func (f *fakeTodoService) Delete(_ context.Context, owner, id uuid.UUID) error {
	return f.deleteFn(owner, id)
}

// fakeNotifier is a canned ports.NotificationService.
type fakeNotifier struct {
	feedFn func(owner uuid.UUID, now time.Time) ([]todo.Todo, error)
}

func (f *fakeNotifier) Feed(_ context.Context, owner uuid.UUID, now time.Time) ([]todo.Todo, error) {
	return f.feedFn(owner, now)
}

// fakeAuthService is a canned ports.AuthService.
type fakeAuthService struct {
	registerFn func(name, email, password string) (*ports.Session, error)
	loginFn    func(email, password string) (*ports.Session, error)
	googleFn   func(idToken string) (*ports.Session, error)
	resolveFn  func(token string) (*ports.Identity, error)
	logoutFn   func(sessionID string) error
}

func (f *fakeAuthService) Register(_ context.Context, name, email, password string) (*ports.Session, error) {
	return f.registerFn(name, email, password)
}

func (f *fakeAuthService) Login(_ context.Context, email, password string) (*ports.Session, error) {
	return f.loginFn(email, password)
}

func (f *fakeAuthService) GoogleSignIn(_ context.Context, idToken string) (*ports.Session, error) {
	return f.googleFn(idToken)
}

func (f *fakeAuthService) Resolve(_ context.Context, token string) (*ports.Identity, error) {
	return f.resolveFn(token)
}

func (f *fakeAuthService) Logout(_ context.Context, sessionID string) error {
	return f.logoutFn(sessionID)
}

// fakeUserService is a canned ports.UserService.
type fakeUserService struct {
	getFn    func(id uuid.UUID) (*user.User, error)
	updateFn func(id uuid.UUID, name string) (*user.User, error)
	listFn   func(actor ports.Identity) ([]user.User, error)
	toggleFn func(actor ports.Identity, targetID uuid.UUID) (*user.User, error)
}

func (f *fakeUserService) Get(_ context.Context, id uuid.UUID) (*user.User, error) {
	return f.getFn(id)
}

func (f *fakeUserService) UpdateProfile(_ context.Context, id uuid.UUID, name string) (*user.User, error) {
	return f.updateFn(id, name)
}

func (f *fakeUserService) List(_ context.Context, actor ports.Identity) ([]user.User, error) {
	return f.listFn(actor)
}

func (f *fakeUserService) ToggleRole(_ context.Context, actor ports.Identity, targetID uuid.UUID) (*user.User, error) {
	return f.toggleFn(actor, targetID)
}
