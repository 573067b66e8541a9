package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ugurtm/ugur-backend/internal/auth"
)

// TokenVerifier turns a raw bearer token into the caller's identity.
// *auth.Tokens satisfies it.
type TokenVerifier interface {
	Verify(raw string) (auth.Identity, error)
}

type ctxKey int

const (
	identityKey ctxKey = iota
	identitySlotKey
)

// identitySlot lets the request logger see an identity that Authenticate
// stores in a context derived further down the chain.
type identitySlot struct {
	id  auth.Identity
	set bool
}

func withIdentitySlot(ctx context.Context, s *identitySlot) context.Context {
	return context.WithValue(ctx, identitySlotKey, s)
}

// Authenticate verifies an optional "Authorization: Bearer <token>" header.
// A request without the header passes through anonymously; a malformed or
// invalid token is rejected with 401.
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" {
				next.ServeHTTP(w, r)
				return
			}
			scheme, raw, ok := strings.Cut(h, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "malformed authorization header")
				return
			}
			id, err := v.Verify(strings.TrimSpace(raw))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			if s, ok := r.Context().Value(identitySlotKey).(*identitySlot); ok {
				s.id, s.set = id, true
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAuth rejects anonymous requests with 401. Wire it after Authenticate.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the authenticated caller, if any.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

// UserID returns the authenticated caller's user id, if any.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := IdentityFrom(ctx)
	return id.UserID, ok
}

// writeError emits the same error envelope the handlers use.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
