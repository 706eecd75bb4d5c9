package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "multitenantbooking/internal/delivery/http/helpers"
	"multitenantbooking/internal/domain"
)

type contextKey string

const (
	subjectIDKey contextKey = "subjectID"
	roleKey      contextKey = "role"
)

// SetSubject returns a context with the authenticated subject ID and role set.
func SetSubject(ctx context.Context, subjectID string, role domain.AccountRole) context.Context {
	ctx = context.WithValue(ctx, subjectIDKey, subjectID)
	return context.WithValue(ctx, roleKey, role)
}

// SubjectFromContext returns the authenticated subject ID (the staff or client
// ID the account is tied to), if present.
func SubjectFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(subjectIDKey).(string)
	return id, ok
}

// RoleFromContext returns the authenticated account role, if present.
func RoleFromContext(ctx context.Context) (domain.AccountRole, bool) {
	role, ok := ctx.Value(roleKey).(domain.AccountRole)
	return role, ok
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the
// subject ID and role in the request context. If the token is missing or
// invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			subjectID, role, err := verifier.Verify(token)
			if err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			r = r.WithContext(SetSubject(r.Context(), subjectID, role))
			next(w, r)
		}
	}
}

// RequireRole wraps a handler so it only runs for the given role. Must run
// inside RequireAuth.
func RequireRole(role domain.AccountRole) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			got, ok := RoleFromContext(r.Context())
			if !ok || got != role {
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "insufficient role")
				return
			}
			next(w, r)
		}
	}
}
