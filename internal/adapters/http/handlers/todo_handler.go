package handlers

import (
	"net/http"
	"time"

	"github.com/planagain/todo-api/internal/adapters/http/dto"
	"github.com/planagain/todo-api/internal/domain/todo"
	"github.com/planagain/todo-api/internal/ports"
)

// TodoHandler handles the per-user todo CRUD and listing endpoints. Every
// operation is scoped to the authenticated caller.
type TodoHandler struct {
	todos    ports.TodoService
	notifier ports.NotificationService
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(todos ports.TodoService, notifier ports.NotificationService) *TodoHandler {
	return &TodoHandler{todos: todos, notifier: notifier}
}

// Create handles POST /api/todos/add-todo.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := caller(w, r)
	if id == nil {
		return
	}

	var req dto.CreateTodoRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.todos.Create(r.Context(), id.UserID, &todo.Todo{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		DueTime:     req.DueTime,
	})
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	resp := dto.NewTodoResponse(created)
	writeJSON(w, http.StatusCreated, dto.MutationResponse{
		Message: "Todo created successfully",
		Todo:    &resp,
	})
}

// List handles GET /api/todos with query params page, limit, search, status,
// sortBy, sortOrder.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	id := caller(w, r)
	if id == nil {
		return
	}

	params := r.URL.Query()
	q, err := todo.NewListQuery(
		queryInt(r, "page"),
		queryInt(r, "limit"),
		params.Get("search"),
		params.Get("status"),
		params.Get("sortBy"),
		params.Get("sortOrder"),
	)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	page, err := h.todos.List(r.Context(), id.UserID, q)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListTodosResponse(page))
}

// Notifications handles GET /api/todos/notifications.
func (h *TodoHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	id := caller(w, r)
	if id == nil {
		return
	}

	feed, err := h.notifier.Feed(r.Context(), id.UserID, time.Now())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NotificationsResponse{
		Todos: dto.NewTodoResponses(feed),
	})
}

// Get handles GET /api/todos/{id}.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := caller(w, r)
	if id == nil {
		return
	}

	todoID, err := parseUUID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	t, err := h.todos.Get(r.Context(), id.UserID, todoID)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewTodoResponse(t))
}

// Update handles PATCH /api/todos/{id}. The body fully replaces the mutable
// fields, status included.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := caller(w, r)
	if id == nil {
		return
	}

	todoID, err := parseUUID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.UpdateTodoRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.todos.Update(r.Context(), id.UserID, todoID, &todo.Todo{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		DueTime:     req.DueTime,
		Status:      todo.Status(req.Status),
	})
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	resp := dto.NewTodoResponse(updated)
	writeJSON(w, http.StatusOK, dto.MutationResponse{
		Message: "Todo updated successfully",
		Todo:    &resp,
	})
}

// Delete handles DELETE /api/todos/{id}. Deleting an id that was already
// deleted reports 404, not success.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := caller(w, r)
	if id == nil {
		return
	}

	todoID, err := parseUUID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.todos.Delete(r.Context(), id.UserID, todoID); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MutationResponse{
		Message: "Todo deleted successfully",
	})
}
