package handlers

import (
	"context"
	"net/http"

	"github.com/avgordeev/user-portal/internal/models"
	"github.com/avgordeev/user-portal/internal/session"
)

// SessionResolver resolves a session cookie to its identity, if any.
type SessionResolver interface {
	Get(ctx context.Context, cookieValue string) (*models.Identity, string, error)
}

// NewRootHandler routes / by session state: admins to the dashboard, users
// to their profile, everyone else to the login page.
func NewRootHandler(sessions SessionResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(session.CookieName); err == nil {
			identity, _, err := sessions.Get(r.Context(), cookie.Value)
			if err == nil && identity != nil {
				if identity.Role == models.RoleAdmin {
					http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
					return
				}
				http.Redirect(w, r, "/profile", http.StatusSeeOther)
				return
			}
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
