package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/middlewares"
	"github.com/avgordeev/user-portal/internal/models"
	"github.com/avgordeev/user-portal/internal/services"
	"github.com/avgordeev/user-portal/internal/session"
)

// UserGetter defines the single-record lookup of the admin service.
type UserGetter interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// UserDeleter defines the delete operation of the admin service.
type UserDeleter interface {
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type adminUserView struct {
	User *models.User
}

// NewAdminUserHandler renders the detail view for one user.
func NewAdminUserHandler(svc UserGetter, view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.NotFound(w, r)
			return
		}

		user, err := svc.GetUser(r.Context(), id)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			logger.Log.Errorw("failed to load user detail", "err", err)
			http.Error(w, "Server error", http.StatusInternalServerError)
			return
		}

		view.Render(w, "admin-user.html", adminUserView{User: user})
	}
}

// NewDeleteUserHandler permanently removes a user. The outcome, including a
// miss on the id, is reported only through a one-shot flash; the dashboard
// redirect always happens.
func NewDeleteUserHandler(svc UserDeleter, flash FlashStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middlewares.PrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		err := deleteByParam(r, svc)
		if err != nil {
			if !errors.Is(err, services.ErrNotFound) {
				logger.Log.Errorw("failed to delete user", "err", err)
			}
			_ = flash.PutFlash(r.Context(), p.SID, session.FlashError, "Failed to delete user.")
		} else {
			_ = flash.PutFlash(r.Context(), p.SID, session.FlashSuccess, "User deleted successfully!")
		}

		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
	}
}

func deleteByParam(r *http.Request, svc UserDeleter) error {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return services.ErrNotFound
	}
	return svc.DeleteUser(r.Context(), id)
}
