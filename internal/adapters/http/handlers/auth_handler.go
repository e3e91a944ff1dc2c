package handlers

import (
	"net/http"
	"time"

	"github.com/planagain/todo-api/internal/adapters/http/dto"
	"github.com/planagain/todo-api/internal/adapters/http/middleware"
	"github.com/planagain/todo-api/internal/ports"
)

// AuthHandler handles registration, sign-in (local and federated), session
// introspection, and logout. Issued tokens are set as an HTTP-only cookie
// and echoed in the response body.
type AuthHandler struct {
	auth         ports.AuthService
	users        ports.UserService
	cookieTTL    time.Duration
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie should be true
// whenever the service is reached over HTTPS.
func NewAuthHandler(auth ports.AuthService, users ports.UserService, cookieTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		users:        users,
		cookieTTL:    cookieTTL,
		secureCookie: secureCookie,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	h.setTokenCookie(w, session.Token)
	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		Success: true,
		Message: "Registration successful",
		User:    dto.NewUserResponse(&session.User),
		Token:   session.Token,
	})
}

// SignIn handles POST /auth/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	h.setTokenCookie(w, session.Token)
	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: "Login successful",
		User:    dto.NewUserResponse(&session.User),
		Token:   session.Token,
	})
}

// GoogleCallback handles POST /auth/google/callback. The credential is the
// provider ID token; profile fields are derived from its verified claims.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	var req dto.GoogleCallbackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.auth.GoogleSignIn(r.Context(), req.Credential)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	h.setTokenCookie(w, session.Token)
	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Success: true,
		Message: "Google authentication successful",
		User:    dto.NewUserResponse(&session.User),
		Token:   session.Token,
	})
}

// UserInfo handles GET /auth/user-info. Requires authentication.
func (h *AuthHandler) UserInfo(w http.ResponseWriter, r *http.Request) {
	id := caller(w, r)
	if id == nil {
		return
	}

	u, err := h.users.Get(r.Context(), id.UserID)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserInfoResponse{
		Success: true,
		User:    dto.NewUserResponse(u),
	})
}

// Logout handles POST /auth/logout. Requires authentication; revokes the
// server-side session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id := caller(w, r)
	if id == nil {
		return
	}

	if err := h.auth.Logout(r.Context(), id.SessionID); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	h.clearTokenCookie(w)
	writeJSON(w, http.StatusOK, dto.LogoutResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
