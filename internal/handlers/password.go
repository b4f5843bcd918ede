package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/middlewares"
	"github.com/avgordeev/user-portal/internal/services"
	"github.com/avgordeev/user-portal/internal/session"
)

// PasswordChanger defines the password-change operation of the profile
// service.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, id uuid.UUID, current, newPassword, confirm string) error
}

type passwordView struct {
	Success string
	Error   string
}

// NewChangePasswordPageHandler shows the change-password form with any
// pending one-shot messages drained.
func NewChangePasswordPageHandler(flash FlashStore, view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middlewares.PrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		flashes := flash.TakeFlashes(r.Context(), p.SID)
		view.Render(w, "change-password.html", passwordView{
			Success: flashes.Success,
			Error:   flashes.Error,
		})
	}
}

// NewChangePasswordHandler processes a password change. The outcome is
// reported via a one-shot flash on the redirected form, success and failure
// alike.
func NewChangePasswordHandler(svc PasswordChanger, flash FlashStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middlewares.PrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/profile/change-password", http.StatusSeeOther)
			return
		}

		err := svc.ChangePassword(r.Context(), p.Identity.UserID,
			r.PostFormValue("currentPassword"),
			r.PostFormValue("newPassword"),
			r.PostFormValue("confirmPassword"),
		)

		ctx := r.Context()
		switch {
		case err == nil:
			_ = flash.PutFlash(ctx, p.SID, session.FlashSuccess, "Password changed successfully.")
		case errors.Is(err, services.ErrInvalidCredentials):
			_ = flash.PutFlash(ctx, p.SID, session.FlashError, "Current password is incorrect.")
		case errors.Is(err, services.ErrPasswordMismatch):
			_ = flash.PutFlash(ctx, p.SID, session.FlashError, "New password and confirm password do not match.")
		default:
			logger.Log.Errorw("password change failed", "err", err)
			_ = flash.PutFlash(ctx, p.SID, session.FlashError, "Something went wrong. Try again.")
		}

		http.Redirect(w, r, "/profile/change-password", http.StatusSeeOther)
	}
}
