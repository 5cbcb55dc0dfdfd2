package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/learnhub/learning-platform/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION
// Bearer tokens have the form "<user_id>.<secret>". The authenticator
// resolves the user and verifies the secret; handlers read the user ID
// from the request context.
// ══════════════════════════════════════════════════════════════════════════════

const contextKeyUserID contextKey = "user_id"

// Authenticator verifies a bearer token and returns the user ID.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// TokenStore looks up the bcrypt hash of a user's API secret.
type TokenStore interface {
	GetTokenHash(ctx context.Context, userID int64) (string, error)
}

// TokenAuthenticator validates "<user_id>.<secret>" tokens against bcrypt
// hashes from a TokenStore.
type TokenAuthenticator struct {
	store TokenStore
}

// NewTokenAuthenticator creates a new TokenAuthenticator.
func NewTokenAuthenticator(store TokenStore) *TokenAuthenticator {
	return &TokenAuthenticator{store: store}
}

// Authenticate implements Authenticator.
func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (int64, error) {
	idPart, secret, ok := strings.Cut(token, ".")
	if !ok {
		return 0, shared.ErrUnauthorized
	}

	userID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || userID <= 0 {
		return 0, shared.ErrUnauthorized
	}

	hash, err := a.store.GetTokenHash(ctx, userID)
	if err != nil {
		return 0, shared.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return 0, shared.ErrUnauthorized
	}

	return userID, nil
}

// StaticTokenStore serves token hashes from memory. Used in development
// and tests.
type StaticTokenStore struct {
	hashes map[int64]string
}

// NewStaticTokenStore creates a store from a userID -> bcrypt hash map.
func NewStaticTokenStore(hashes map[int64]string) *StaticTokenStore {
	return &StaticTokenStore{hashes: hashes}
}

// GetTokenHash implements TokenStore.
func (s *StaticTokenStore) GetTokenHash(_ context.Context, userID int64) (string, error) {
	hash, ok := s.hashes[userID]
	if !ok {
		return "", shared.ErrUnauthorized
	}
	return hash, nil
}

// HashSecret produces a bcrypt hash for an API secret.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// authenticated wraps a handler with bearer token authentication.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Authenticator == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "auth_unavailable", "Authentication is not configured")
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
			return
		}

		userID, err := s.deps.Authenticator.Authenticate(r.Context(), token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid credentials")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
		next(w, r.WithContext(ctx))
	}
}

// userIDFromContext returns the authenticated user ID, 0 when absent.
func userIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(contextKeyUserID).(int64); ok {
		return id
	}
	return 0
}
