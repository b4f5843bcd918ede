package middlewares

import (
	"context"
	"net/http"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/models"
	"github.com/avgordeev/user-portal/internal/session"
)

// SessionReader resolves a session cookie value to the stored identity and
// session id. A nil identity means no valid session.
type SessionReader interface {
	Get(ctx context.Context, cookieValue string) (*models.Identity, string, error)
}

// Principal is the resolved session attached to the request context.
type Principal struct {
	Identity models.Identity
	SID      string
}

// contextKey is an unexported type for keys in context
type contextKey struct{}

var principalKey = contextKey{}

// WithPrincipal stores the resolved principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the principal set by the auth middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// resolve looks up the session for the request. Missing cookie, bad token
// and expired session all come back as a nil identity.
func resolve(sessions SessionReader, r *http.Request) (*models.Identity, string) {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil, ""
	}

	identity, sid, err := sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		logger.Log.Errorw("session lookup failed", "err", err)
		return nil, ""
	}
	return identity, sid
}

// RequireAuth admits any authenticated user and redirects everyone else to
// the login page.
func RequireAuth(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, sid := resolve(sessions, r)
			if identity == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{Identity: *identity, SID: sid})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin admits only authenticated admins; everyone else gets 403.
// It resolves the session itself, so admin routes need no RequireAuth.
func RequireAdmin(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, sid := resolve(sessions, r)
			if identity == nil || identity.Role != models.RoleAdmin {
				http.Error(w, "Forbidden - Admins only", http.StatusForbidden)
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{Identity: *identity, SID: sid})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
