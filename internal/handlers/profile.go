package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/middlewares"
	"github.com/avgordeev/user-portal/internal/models"
	"github.com/avgordeev/user-portal/internal/services"
	"github.com/avgordeev/user-portal/internal/session"
)

// ProfileProvider defines the self-service operations the profile pages
// need.
type ProfileProvider interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, patch models.ProfileUpdate) error
}

type profileView struct {
	User    *models.User
	Success string
	Error   string
}

// NewProfileHandler shows the session user's own record.
func NewProfileHandler(svc ProfileProvider, view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middlewares.PrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		user, err := svc.Get(r.Context(), p.Identity.UserID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				// The account vanished under an open session.
				http.SetCookie(w, session.ExpiredCookie())
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			logger.Log.Errorw("failed to load profile", "err", err)
			http.Error(w, "Server error", http.StatusInternalServerError)
			return
		}

		view.Render(w, "profile.html", profileView{User: user})
	}
}

// NewEditProfilePageHandler shows the edit form with any pending flash
// messages drained.
func NewEditProfilePageHandler(svc ProfileProvider, flash FlashStore, view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middlewares.PrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		user, err := svc.Get(r.Context(), p.Identity.UserID)
		if err != nil {
			logger.Log.Errorw("failed to load profile for edit", "err", err)
			http.Redirect(w, r, "/profile", http.StatusSeeOther)
			return
		}

		flashes := flash.TakeFlashes(r.Context(), p.SID)
		view.Render(w, "edit-profile.html", profileView{
			User:    user,
			Success: flashes.Success,
			Error:   flashes.Error,
		})
	}
}

// NewEditProfileHandler overwrites the profile fields and returns to the
// profile page. Role, email and password are untouched by this path.
func NewEditProfileHandler(svc ProfileProvider, view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middlewares.PrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/profile", http.StatusSeeOther)
			return
		}

		patch := models.ProfileUpdate{
			FullName: r.PostFormValue("fullName"),
			Phone:    formOptional(r, "phone"),
			Gender:   models.ParseGender(r.PostFormValue("gender")),
			DOB:      formDate(r, "dob"),
			Address:  formOptional(r, "address"),
		}

		if err := svc.Update(r.Context(), p.Identity.UserID, patch); err != nil {
			logger.Log.Errorw("failed to update profile", "err", err)
		}

		http.Redirect(w, r, "/profile", http.StatusSeeOther)
	}
}
