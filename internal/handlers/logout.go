package handlers

import (
	"context"
	"net/http"

	"github.com/avgordeev/user-portal/internal/middlewares"
	"github.com/avgordeev/user-portal/internal/session"
)

// SessionDestroyer removes a session from the store.
type SessionDestroyer interface {
	Destroy(ctx context.Context, sid string) error
}

// NewLogoutHandler destroys the session unconditionally and sends the user
// back to the login page.
func NewLogoutHandler(sessions SessionDestroyer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p, ok := middlewares.PrincipalFromContext(r.Context()); ok {
			_ = sessions.Destroy(r.Context(), p.SID)
		}
		http.SetCookie(w, session.ExpiredCookie())
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
