package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/planagain/todo-api/internal/domain"
	"github.com/planagain/todo-api/internal/domain/user"
	"github.com/planagain/todo-api/internal/ports"
)

// Compile-time check that AuthService implements ports.AuthService.
var _ ports.AuthService = (*AuthService)(nil)

// tokenClaims is the JWT payload. SessionID binds the token to a server-side
// session so logout can revoke it before expiry.
type tokenClaims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// AuthService implements ports.AuthService: local registration and sign-in
// with bcrypt, Google federated sign-in through the token verifier, and
// HS256-signed tokens paired with a revocable session.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	verifier ports.TokenVerifier // nil when federated sign-in is disabled
	secret   []byte
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewAuthService creates an AuthService. The verifier may be nil; Google
// sign-in then fails with domain.ErrUnauthenticated.
func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	verifier ports.TokenVerifier,
	secret string,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		verifier: verifier,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Register creates a local-credential account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*ports.Session, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	fields := make(map[string]string)
	if name == "" {
		fields["name"] = domain.MsgRequired
	}
	if email == "" {
		fields["email"] = domain.MsgRequired
	}
	if password == "" {
		fields["password"] = domain.MsgRequired
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	s.logger.InfoContext(ctx, "registering user", slog.String("email", email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	created, err := s.users.Insert(ctx, &user.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         user.RoleUser,
	})
	if errors.Is(err, domain.ErrConflict) {
		return nil, fmt.Errorf("user already exists with this email: %w", domain.ErrConflict)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to register user",
			slog.String("operation", "Register"),
			slog.Any("error", err),
		)
		return nil, err
	}

	return s.issueSession(ctx, created)
}

// Login verifies local credentials. Unknown email and wrong password produce
// the same domain.ErrUnauthenticated so responses cannot be used to probe
// which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if u.PasswordHash == "" {
		// Federated-only account; there is no password to check.
		return nil, domain.ErrUnauthenticated
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrUnauthenticated
	}

	s.logger.InfoContext(ctx, "user signed in", slog.String("user_id", u.ID.String()))
	return s.issueSession(ctx, u)
}

// GoogleSignIn verifies the provider ID token and resolves it to an account:
// an account already linked to the google subject, an existing local account
// with the same email (which gets linked), or a brand-new account.
func (s *AuthService) GoogleSignIn(ctx context.Context, idToken string) (*ports.Session, error) {
	if s.verifier == nil {
		return nil, fmt.Errorf("federated sign-in disabled: %w", domain.ErrUnauthenticated)
	}

	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))

	u, err := s.users.GetByGoogleIDOrEmail(ctx, claims.Subject, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		u, err = s.users.Insert(ctx, &user.User{
			Name:      claims.Name,
			Email:     email,
			GoogleID:  claims.Subject,
			AvatarURL: claims.Picture,
			Role:      user.RoleUser,
		})
		if err != nil {
			return nil, fmt.Errorf("creating federated account: %w", err)
		}
		s.logger.InfoContext(ctx, "created federated account", slog.String("user_id", u.ID.String()))

	case err != nil:
		return nil, fmt.Errorf("looking up federated account: %w", err)

	case u.GoogleID == "":
		// Existing local account with the same email; link it.
		u, err = s.users.LinkGoogle(ctx, u.ID, claims.Subject, claims.Picture)
		if err != nil {
			return nil, fmt.Errorf("linking federated account: %w", err)
		}
		s.logger.InfoContext(ctx, "linked google identity", slog.String("user_id", u.ID.String()))
	}

	return s.issueSession(ctx, u)
}

// Resolve validates a signed token and its server-side session.
func (s *AuthService) Resolve(ctx context.Context, token string) (*ports.Identity, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthenticated
	}

	claimedID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	// The session must still exist and belong to the token's user. A logged
	// out session fails here even though the JWT has not expired.
	sessionUserID, ok, err := s.sessions.UserID(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("checking session: %w", err)
	}
	if !ok || sessionUserID != claimedID {
		return nil, domain.ErrUnauthenticated
	}

	u, err := s.users.GetByID(ctx, claimedID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}

	return &ports.Identity{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		SessionID: claims.SessionID,
	}, nil
}

// Logout revokes the server-side session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

// issueSession creates the server-side session and signs a token bound to it.
func (s *AuthService) issueSession(ctx context.Context, u *user.User) (*ports.Session, error) {
	sessionID, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID:    u.ID.String(),
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &ports.Session{User: *u, Token: signed}, nil
}
