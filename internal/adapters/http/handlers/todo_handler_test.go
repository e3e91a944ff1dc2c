package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planagain/todo-api/internal/adapters/http/dto"
	"github.com/planagain/todo-api/internal/adapters/http/handlers"
	"github.com/planagain/todo-api/internal/domain"
	"github.com/planagain/todo-api/internal/domain/todo"
	"github.com/planagain/todo-api/internal/domain/user"
)

func TestTodoHandler_Create(t *testing.T) {
	t.Parallel()

	id := testIdentity(user.RoleUser)

	var gotOwner uuid.UUID
	svc := &fakeTodoService{
		createFn: func(owner uuid.UUID, in *todo.Todo) (*todo.Todo, error) {
			gotOwner = owner
			out := validTodo(owner)
			out.Title = in.Title
			return &out, nil
		},
	}
	h := handlers.NewTodoHandler(svc, &fakeNotifier{})

	body := jsonBody(t, dto.CreateTodoRequest{
		Title:       "Buy groceries",
		Description: "Milk, eggs, bread",
		DueDate:     "2099-01-01",
		DueTime:     "09:00",
	})
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/todos/add-todo", body), id)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	requireStatus(t, rec, http.StatusCreated)
	assert.Equal(t, id.UserID, gotOwner)

	resp := decodeJSON[dto.MutationResponse](t, rec)
	assert.Equal(t, "Todo created successfully", resp.Message)
	require.NotNil(t, resp.Todo)
	assert.Equal(t, "Buy groceries", resp.Todo.Title)
}

func TestTodoHandler_Create_ValidationError(t *testing.T) {
	t.Parallel()

	svc := &fakeTodoService{
		createFn: func(_ uuid.UUID, _ *todo.Todo) (*todo.Todo, error) {
			return nil, &domain.ValidationError{Fields: map[string]string{"title": "title is required"}}
		},
	}
	h := handlers.NewTodoHandler(svc, &fakeNotifier{})

	body := jsonBody(t, dto.CreateTodoRequest{DueDate: "2099-01-01"})
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/todos/add-todo", body), testIdentity(user.RoleUser))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	requireStatus(t, rec, http.StatusBadRequest)
	resp := decodeJSON[dto.ErrorResponse](t, rec)
	assert.Equal(t, "validation failed", resp.Message)
	assert.Equal(t, "title is required", resp.Fields["title"])
}

func TestTodoHandler_Create_Unauthenticated(t *testing.T) {
	t.Parallel()

	h := handlers.NewTodoHandler(&fakeTodoService{}, &fakeNotifier{})

	body := jsonBody(t, dto.CreateTodoRequest{Title: "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/todos/add-todo", body)
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	requireStatus(t, rec, http.StatusUnauthorized)
}

func TestTodoHandler_Create_MalformedJSON(t *testing.T) {
	t.Parallel()

	h := handlers.NewTodoHandler(&fakeTodoService{}, &fakeNotifier{})

	req := httptest.NewRequest(http.MethodPost, "/api/todos/add-todo", strings.NewReader("{not json"))
	req = asUser(req, testIdentity(user.RoleUser))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	requireStatus(t, rec, http.StatusBadRequest)
}

func TestTodoHandler_List(t *testing.T) {
	t.Parallel()

	id := testIdentity(user.RoleUser)

	var gotQuery todo.ListQuery
	svc := &fakeTodoService{
		listFn: func(owner uuid.UUID, q todo.ListQuery) (*todo.Page, error) {
			gotQuery = q
			item := validTodo(owner)
			return &todo.Page{
				Items:   []todo.Todo{item},
				HasMore: true,
				Stats:   todo.Stats{Total: 15, Upcoming: 12, Completed: 3},
			}, nil
		},
	}
	h := handlers.NewTodoHandler(svc, &fakeNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/todos/?page=2&limit=5&search=groceries&status=Upcoming&sortBy=title&sortOrder=desc", nil)
	req = asUser(req, id)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, 2, gotQuery.Page)
	assert.Equal(t, 5, gotQuery.Limit)
	assert.Equal(t, "groceries", gotQuery.Search)
	assert.Equal(t, todo.SortByTitle, gotQuery.SortBy)
	assert.Equal(t, todo.SortDesc, gotQuery.SortOrder)

	resp := decodeJSON[dto.ListTodosResponse](t, rec)
	assert.True(t, resp.HasMore)
	assert.Len(t, resp.Todos, 1)
	assert.Equal(t, 15, resp.Stats.Total)
	assert.Equal(t, 12, resp.Stats.Upcoming)
	assert.Equal(t, 3, resp.Stats.Completed)
}

func TestTodoHandler_List_DefaultsOnMissingParams(t *testing.T) {
	t.Parallel()

	var gotQuery todo.ListQuery
	svc := &fakeTodoService{
		listFn: func(_ uuid.UUID, q todo.ListQuery) (*todo.Page, error) {
			gotQuery = q
			return &todo.Page{Items: []todo.Todo{}}, nil
		},
	}
	h := handlers.NewTodoHandler(svc, &fakeNotifier{})

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/todos/", nil), testIdentity(user.RoleUser))
	rec := httptest.NewRecorder()

	h.List(rec, req)

	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, 1, gotQuery.Page)
	assert.Equal(t, 10, gotQuery.Limit)
	assert.Equal(t, todo.SortByDueDate, gotQuery.SortBy)
	assert.Equal(t, todo.SortAsc, gotQuery.SortOrder)

	// An empty page still serializes todos as [], never null.
	assert.Contains(t, rec.Body.String(), `"todos":[]`)
}

func TestTodoHandler_List_InvalidStatusFilter(t *testing.T) {
	t.Parallel()

	h := handlers.NewTodoHandler(&fakeTodoService{}, &fakeNotifier{})

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/todos/?status=Done", nil), testIdentity(user.RoleUser))
	rec := httptest.NewRecorder()

	h.List(rec, req)

	requireStatus(t, rec, http.StatusBadRequest)
	resp := decodeJSON[dto.ErrorResponse](t, rec)
	assert.Contains(t, resp.Fields, "status")
}

func TestTodoHandler_Notifications(t *testing.T) {
	t.Parallel()

	id := testIdentity(user.RoleUser)

	svc := &fakeNotifier{
		feedFn: func(owner uuid.UUID, now time.Time) ([]todo.Todo, error) {
			assert.WithinDuration(t, time.Now(), now, time.Minute)
			return []todo.Todo{validTodo(owner)}, nil
		},
	}
	h := handlers.NewTodoHandler(&fakeTodoService{}, svc)

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/todos/notifications", nil), id)
	rec := httptest.NewRecorder()

	h.Notifications(rec, req)

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.NotificationsResponse](t, rec)
	assert.Len(t, resp.Todos, 1)
}

func TestTodoHandler_Get(t *testing.T) {
	t.Parallel()

	id := testIdentity(user.RoleUser)
	stored := validTodo(id.UserID)

	svc := &fakeTodoService{
		getFn: func(owner, todoID uuid.UUID) (*todo.Todo, error) {
			if owner == id.UserID && todoID == stored.ID {
				return &stored, nil
			}
			return nil, domain.ErrNotFound
		},
	}
	h := handlers.NewTodoHandler(svc, &fakeNotifier{})

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/todos/"+stored.ID.String(), nil)
		req = asUser(withChiParams(req, map[string]string{"id": stored.ID.String()}), id)
		rec := httptest.NewRecorder()

		h.Get(rec, req)

		requireStatus(t, rec, http.StatusOK)
		resp := decodeJSON[dto.TodoResponse](t, rec)
		assert.Equal(t, stored.ID.String(), resp.ID)
		assert.Equal(t, stored.Title, resp.Title)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		other := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/api/todos/"+other, nil)
		req = asUser(withChiParams(req, map[string]string{"id": other}), id)
		rec := httptest.NewRecorder()

		h.Get(rec, req)

		requireStatus(t, rec, http.StatusNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/todos/not-a-uuid", nil)
		req = asUser(withChiParams(req, map[string]string{"id": "not-a-uuid"}), id)
		rec := httptest.NewRecorder()

		h.Get(rec, req)

		requireStatus(t, rec, http.StatusBadRequest)
	})
}

func TestTodoHandler_Update(t *testing.T) {
	t.Parallel()

	id := testIdentity(user.RoleUser)
	stored := validTodo(id.UserID)

	var gotStatus todo.Status
	svc := &fakeTodoService{
		updateFn: func(owner, todoID uuid.UUID, in *todo.Todo) (*todo.Todo, error) {
			if todoID != stored.ID {
				return nil, domain.ErrNotFound
			}
			gotStatus = in.Status
			out := stored
			out.Title = in.Title
			out.Status = in.Status
			return &out, nil
		},
	}
	h := handlers.NewTodoHandler(svc, &fakeNotifier{})

	body := jsonBody(t, dto.UpdateTodoRequest{
		Title:       "Buy groceries and fruit",
		Description: "Milk, eggs, bread",
		DueDate:     "2099-01-01",
		DueTime:     "09:00",
		Status:      "Completed",
	})
	req := httptest.NewRequest(http.MethodPatch, "/api/todos/"+stored.ID.String(), body)
	req = asUser(withChiParams(req, map[string]string{"id": stored.ID.String()}), id)
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, todo.StatusCompleted, gotStatus)

	resp := decodeJSON[dto.MutationResponse](t, rec)
	assert.Equal(t, "Todo updated successfully", resp.Message)
	require.NotNil(t, resp.Todo)
	assert.Equal(t, "Buy groceries and fruit", resp.Todo.Title)
	assert.Equal(t, "Completed", resp.Todo.Status)
}

func TestTodoHandler_Delete(t *testing.T) {
	t.Parallel()

	id := testIdentity(user.RoleUser)
	stored := validTodo(id.UserID)

	svc := &fakeTodoService{
		deleteFn: func(owner, todoID uuid.UUID) error {
			if owner == id.UserID && todoID == stored.ID {
				return nil
			}
			return domain.ErrNotFound
		},
	}
	h := handlers.NewTodoHandler(svc, &fakeNotifier{})

	t.Run("owned todo", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodDelete, "/api/todos/"+stored.ID.String(), nil)
		req = asUser(withChiParams(req, map[string]string{"id": stored.ID.String()}), id)
		rec := httptest.NewRecorder()

		h.Delete(rec, req)

		requireStatus(t, rec, http.StatusOK)
		resp := decodeJSON[dto.MutationResponse](t, rec)
		assert.Equal(t, "Todo deleted successfully", resp.Message)
		assert.Nil(t, resp.Todo)
	})

	t.Run("someone else's todo", func(t *testing.T) {
		t.Parallel()

		other := testIdentity(user.RoleUser)
		req := httptest.NewRequest(http.MethodDelete, "/api/todos/"+stored.ID.String(), nil)
		req = asUser(withChiParams(req, map[string]string{"id": stored.ID.String()}), other)
		rec := httptest.NewRecorder()

		h.Delete(rec, req)

		requireStatus(t, rec, http.StatusNotFound)
	})
}
