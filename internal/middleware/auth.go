package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tailor-backend/internal/auth"
	"tailor-backend/internal/logger"
	"tailor-backend/internal/models"
	"tailor-backend/internal/repositories"
)

// ProfileLoader fetches the profile attached to an authenticated session.
type ProfileLoader interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	users      repositories.UserStore
	profiles   ProfileLoader
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, users repositories.UserStore, profiles ProfileLoader) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		users:      users,
		profiles:   profiles,
	}
}

var ErrInvalidToken = errors.New("invalid or expired token")

// Resolve turns a bearer token into an authenticated session. The subject is
// re-read from the store so deleted accounts lose access at once, and the
// stored email must still match the token's.
func (m *AuthMiddleware) Resolve(ctx context.Context, token string) (auth.Session, error) {
	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		return auth.Anonymous(), ErrInvalidToken
	}
	user, err := m.users.Get(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return auth.Anonymous(), ErrInvalidToken
		}
		return auth.Anonymous(), err
	}
	if !strings.EqualFold(user.Email, claims.Email) {
		return auth.Anonymous(), ErrInvalidToken
	}
	var profile *models.UserProfile
	if m.profiles != nil {
		// A missing or unreadable profile still leaves the user signed in.
		if p, err := m.profiles.GetProfile(ctx, user.ID); err == nil {
			profile = p
		} else {
			logger.FromContext(ctx).Warn("profile lookup failed", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return auth.Authenticated(user, profile), nil
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Authenticate is a middleware that validates JWT tokens and stores the
// caller's session on the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			jsonError(w, "Authorization header required", http.StatusUnauthorized)
			return
		}
		token, ok := BearerToken(r)
		if !ok {
			jsonError(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}

		session, err := m.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrInvalidToken) {
				jsonError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}
			logger.FromContext(r.Context()).Error("session lookup failed", zap.Error(err))
			jsonError(w, "Authentication unavailable", http.StatusServiceUnavailable)
			return
		}

		ctx := auth.WithSession(r.Context(), session)
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.String("user_id", session.UserID())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
