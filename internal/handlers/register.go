package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/models"
	"github.com/avgordeev/user-portal/internal/services"
)

// Registerer defines the interface that the registration service must
// implement.
type Registerer interface {
	Register(ctx context.Context, in services.RegisterInput) error
}

// registerView is the data bag for the registration form. Submitted values
// are echoed back so a failed attempt does not wipe the form.
type registerView struct {
	Error    string
	FullName string
	Email    string
	Phone    string
	Address  string
}

// NewRegisterPageHandler serves the empty registration form.
func NewRegisterPageHandler(view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view.Render(w, "register.html", registerView{})
	}
}

// NewRegisterHandler processes a registration form submission. Validation
// and conflict failures re-render the form with an inline message; success
// redirects to the login page.
func NewRegisterHandler(svc Registerer, view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			view.Render(w, "register.html", registerView{Error: "Invalid form submission."})
			return
		}

		in := services.RegisterInput{
			FullName: r.PostFormValue("fullName"),
			Email:    r.PostFormValue("email"),
			Password: r.PostFormValue("password"),
			Phone:    formOptional(r, "phone"),
			Gender:   models.ParseGender(r.PostFormValue("gender")),
			DOB:      formDate(r, "dob"),
			Address:  formOptional(r, "address"),
		}

		if err := svc.Register(r.Context(), in); err != nil {
			v := registerView{
				FullName: in.FullName,
				Email:    in.Email,
				Phone:    r.PostFormValue("phone"),
				Address:  r.PostFormValue("address"),
			}
			switch {
			case errors.Is(err, services.ErrMissingFields):
				v.Error = "Name, email and password required."
			case errors.Is(err, services.ErrInvalidEmail):
				v.Error = "Invalid email."
			case errors.Is(err, services.ErrWeakPassword):
				v.Error = "Password too weak."
			case errors.Is(err, services.ErrEmailTaken):
				v.Error = "Email already in use."
			default:
				logger.Log.Errorw("registration failed", "err", err)
				v.Error = "Server error."
			}
			view.Render(w, "register.html", v)
			return
		}

		http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
	}
}
