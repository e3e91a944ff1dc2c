package handlers

import (
	"net/http"

	"github.com/planagain/todo-api/internal/adapters/http/dto"
	"github.com/planagain/todo-api/internal/ports"
)

// UserHandler handles profile updates and the minimal admin surface.
type UserHandler struct {
	users ports.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// UpdateProfile handles PUT /user/profile. Callers can only update their own
// profile; the target id always comes from the session, never the body.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := caller(w, r)
	if id == nil {
		return
	}

	var req dto.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), id.UserID, req.Name)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserInfoResponse{
		Success: true,
		User:    dto.NewUserResponse(updated),
	})
}

// List handles GET /user. Admin only; the service enforces the role check.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	id := caller(w, r)
	if id == nil {
		return
	}

	users, err := h.users.List(r.Context(), *id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListUsersResponse(users))
}

// ToggleRole handles PATCH /user/{id}. Admin only; flips the target between
// user and admin.
func (h *UserHandler) ToggleRole(w http.ResponseWriter, r *http.Request) {
	id := caller(w, r)
	if id == nil {
		return
	}

	targetID, err := parseUUID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	updated, err := h.users.ToggleRole(r.Context(), *id, targetID)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserInfoResponse{
		Success: true,
		User:    dto.NewUserResponse(updated),
	})
}
