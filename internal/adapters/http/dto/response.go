package dto

import (
	"time"

	"github.com/planagain/todo-api/internal/domain/todo"
	"github.com/planagain/todo-api/internal/domain/user"
)

// TodoResponse is the wire form of a stored todo.
type TodoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate"`
	DueTime     string    `json:"dueTime"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTodoResponse maps a domain todo to its wire form. The owner id is
// deliberately omitted; callers only ever see their own todos.
func NewTodoResponse(t *todo.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		DueTime:     t.DueTime,
		Status:      t.Status.String(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTodoResponses maps a slice of domain todos, returning an empty (not
// nil) slice so the JSON field is always an array.
func NewTodoResponses(items []todo.Todo) []TodoResponse {
	out := make([]TodoResponse, len(items))
	for i := range items {
		out[i] = NewTodoResponse(&items[i])
	}
	return out
}

// StatsResponse holds the filter-independent per-owner counters.
type StatsResponse struct {
	Total     int `json:"total"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
}

// ListTodosResponse is the body of GET /api/todos.
type ListTodosResponse struct {
	Todos   []TodoResponse `json:"todos"`
	HasMore bool           `json:"hasMore"`
	Stats   StatsResponse  `json:"stats"`
}

// NewListTodosResponse maps a listing page to its wire form.
func NewListTodosResponse(p *todo.Page) ListTodosResponse {
	return ListTodosResponse{
		Todos:   NewTodoResponses(p.Items),
		HasMore: p.HasMore,
		Stats: StatsResponse{
			Total:     p.Stats.Total,
			Upcoming:  p.Stats.Upcoming,
			Completed: p.Stats.Completed,
		},
	}
}

// NotificationsResponse is the body of GET /api/todos/notifications.
type NotificationsResponse struct {
	Todos []TodoResponse `json:"todos"`
}

// MutationResponse is the body of todo create/update/delete endpoints.
type MutationResponse struct {
	Message string        `json:"message"`
	Todo    *TodoResponse `json:"todo,omitempty"`
}

// UserResponse is the wire form of an account. The password hash never
// leaves the server.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserResponse maps a domain user to its wire form.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.AvatarURL,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// AuthResponse is the body of register, sign-in, and federated callback.
// The token is also set as an HTTP-only cookie; it is echoed in the body for
// clients that prefer header-based auth.
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

// UserInfoResponse is the body of GET /auth/user-info.
type UserInfoResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

// LogoutResponse is the body of POST /auth/logout.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListUsersResponse is the body of the admin GET /user endpoint.
type ListUsersResponse struct {
	Success bool           `json:"success"`
	Users   []UserResponse `json:"users"`
}

// NewListUsersResponse maps accounts to their wire form.
func NewListUsersResponse(users []user.User) ListUsersResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = NewUserResponse(&users[i])
	}
	return ListUsersResponse{Success: true, Users: out}
}
