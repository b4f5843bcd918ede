package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/models"
	"github.com/avgordeev/user-portal/internal/services"
)

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
}

// SessionCreator establishes a session identity and returns the cookie to
// set on the response.
type SessionCreator interface {
	Create(ctx context.Context, identity models.Identity) (*http.Cookie, error)
}

type loginView struct {
	Error      string
	Registered bool
}

// NewLoginPageHandler serves the login form. The registered query flag
// shows the post-registration hint.
func NewLoginPageHandler(view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view.Render(w, "login.html", loginView{
			Registered: r.URL.Query().Get("registered") != "",
		})
	}
}

// NewLoginHandler authenticates the form credentials and establishes the
// session. Admins land on the dashboard, everyone else on their profile.
func NewLoginHandler(svc Loginer, sessions SessionCreator, view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			view.Render(w, "login.html", loginView{Error: "Invalid form submission."})
			return
		}

		user, err := svc.Login(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				view.Render(w, "login.html", loginView{Error: "Invalid credentials."})
				return
			}
			logger.Log.Errorw("login failed", "err", err)
			view.Render(w, "login.html", loginView{Error: "Server error."})
			return
		}

		cookie, err := sessions.Create(r.Context(), models.IdentityOf(user))
		if err != nil {
			logger.Log.Errorw("failed to create session", "err", err)
			view.Render(w, "login.html", loginView{Error: "Server error."})
			return
		}
		http.SetCookie(w, cookie)

		if user.Role == models.RoleAdmin {
			http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
	}
}
