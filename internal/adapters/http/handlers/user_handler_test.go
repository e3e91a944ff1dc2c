package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planagain/todo-api/internal/adapters/http/dto"
	"github.com/planagain/todo-api/internal/adapters/http/handlers"
	"github.com/planagain/todo-api/internal/domain"
	"github.com/planagain/todo-api/internal/domain/user"
	"github.com/planagain/todo-api/internal/ports"
)

func TestUserHandler_UpdateProfile(t *testing.T) {
	t.Parallel()

	id := testIdentity(user.RoleUser)

	var gotID uuid.UUID
	users := &fakeUserService{
		updateFn: func(targetID uuid.UUID, name string) (*user.User, error) {
			gotID = targetID
			u := testUser()
			u.ID = targetID
			u.Name = name
			return &u, nil
		},
	}
	h := handlers.NewUserHandler(users)

	body := jsonBody(t, dto.UpdateProfileRequest{Name: "Alice Cooper"})
	req := asUser(httptest.NewRequest(http.MethodPut, "/user/profile", body), id)
	rec := httptest.NewRecorder()

	h.UpdateProfile(rec, req)

	requireStatus(t, rec, http.StatusOK)

	// The target id comes from the session, never from the request.
	assert.Equal(t, id.UserID, gotID)

	resp := decodeJSON[dto.UserInfoResponse](t, rec)
	assert.Equal(t, "Alice Cooper", resp.User.Name)
}

func TestUserHandler_UpdateProfile_MissingName(t *testing.T) {
	t.Parallel()

	h := handlers.NewUserHandler(&fakeUserService{})

	body := jsonBody(t, dto.UpdateProfileRequest{Name: ""})
	req := asUser(httptest.NewRequest(http.MethodPut, "/user/profile", body), testIdentity(user.RoleUser))
	rec := httptest.NewRecorder()

	h.UpdateProfile(rec, req)

	requireStatus(t, rec, http.StatusBadRequest)
	resp := decodeJSON[dto.ErrorResponse](t, rec)
	assert.Contains(t, resp.Fields, "name")
}

func TestUserHandler_List(t *testing.T) {
	t.Parallel()

	t.Run("admin", func(t *testing.T) {
		t.Parallel()

		admin := testIdentity(user.RoleAdmin)
		users := &fakeUserService{
			listFn: func(actor ports.Identity) ([]user.User, error) {
				require.Equal(t, user.RoleAdmin, actor.Role)
				return []user.User{testUser(), testUser()}, nil
			},
		}
		h := handlers.NewUserHandler(users)

		req := asUser(httptest.NewRequest(http.MethodGet, "/user/", nil), admin)
		rec := httptest.NewRecorder()

		h.List(rec, req)

		requireStatus(t, rec, http.StatusOK)
		resp := decodeJSON[dto.ListUsersResponse](t, rec)
		assert.True(t, resp.Success)
		assert.Len(t, resp.Users, 2)
	})

	t.Run("non-admin", func(t *testing.T) {
		t.Parallel()

		users := &fakeUserService{
			listFn: func(_ ports.Identity) ([]user.User, error) {
				return nil, domain.ErrForbidden
			},
		}
		h := handlers.NewUserHandler(users)

		req := asUser(httptest.NewRequest(http.MethodGet, "/user/", nil), testIdentity(user.RoleUser))
		rec := httptest.NewRecorder()

		h.List(rec, req)

		requireStatus(t, rec, http.StatusForbidden)
	})
}

func TestUserHandler_ToggleRole(t *testing.T) {
	t.Parallel()

	admin := testIdentity(user.RoleAdmin)
	target := testUser()

	users := &fakeUserService{
		toggleFn: func(actor ports.Identity, targetID uuid.UUID) (*user.User, error) {
			if actor.Role != user.RoleAdmin {
				return nil, domain.ErrForbidden
			}
			if targetID != target.ID {
				return nil, domain.ErrNotFound
			}
			u := target
			u.Role = u.Role.Toggled()
			return &u, nil
		},
	}
	h := handlers.NewUserHandler(users)

	t.Run("promotes", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPatch, "/user/"+target.ID.String(), nil)
		req = asUser(withChiParams(req, map[string]string{"id": target.ID.String()}), admin)
		rec := httptest.NewRecorder()

		h.ToggleRole(rec, req)

		requireStatus(t, rec, http.StatusOK)
		resp := decodeJSON[dto.UserInfoResponse](t, rec)
		assert.Equal(t, "admin", resp.User.Role)
	})

	t.Run("unknown target", func(t *testing.T) {
		t.Parallel()

		other := uuid.NewString()
		req := httptest.NewRequest(http.MethodPatch, "/user/"+other, nil)
		req = asUser(withChiParams(req, map[string]string{"id": other}), admin)
		rec := httptest.NewRecorder()

		h.ToggleRole(rec, req)

		requireStatus(t, rec, http.StatusNotFound)
	})

	t.Run("non-admin actor", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPatch, "/user/"+target.ID.String(), nil)
		req = asUser(withChiParams(req, map[string]string{"id": target.ID.String()}), testIdentity(user.RoleUser))
		rec := httptest.NewRecorder()

		h.ToggleRole(rec, req)

		requireStatus(t, rec, http.StatusForbidden)
	})
}
