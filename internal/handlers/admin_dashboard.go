package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/middlewares"
	"github.com/avgordeev/user-portal/internal/models"
	"github.com/avgordeev/user-portal/internal/services"
)

// Dashboarder defines the composite dashboard query of the admin service.
type Dashboarder interface {
	Dashboard(ctx context.Context, filter models.ListFilter) (*services.DashboardData, error)
}

type dashboardQuery struct {
	Name   string
	Gender string
}

type dashboardView struct {
	Data           *services.DashboardData
	Query          dashboardQuery
	FromValue      string
	ToValue        string
	AgeBucketOrder []string
	Success        string
	Error          string
}

// NewDashboardHandler renders the filtered user list with the aggregate
// report. Query params: q (name substring), gender, from, to (YYYY-MM-DD,
// inclusive).
func NewDashboardHandler(svc Dashboarder, flash FlashStore, view Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := models.ListFilter{
			Name: strings.TrimSpace(q.Get("q")),
		}
		if g := q.Get("gender"); g != "" {
			filter.Gender = models.ParseGender(g)
		}
		filter.From = queryDate(q.Get("from"))
		filter.To = queryDate(q.Get("to"))

		data, err := svc.Dashboard(r.Context(), filter)
		if err != nil {
			logger.Log.Errorw("failed to build dashboard", "err", err)
			http.Error(w, "Server error", http.StatusInternalServerError)
			return
		}

		v := dashboardView{
			Data:           data,
			Query:          dashboardQuery{Name: q.Get("q"), Gender: q.Get("gender")},
			FromValue:      q.Get("from"),
			ToValue:        q.Get("to"),
			AgeBucketOrder: services.AgeBucketOrder,
		}
		if p, ok := middlewares.PrincipalFromContext(r.Context()); ok {
			flashes := flash.TakeFlashes(r.Context(), p.SID)
			v.Success = flashes.Success
			v.Error = flashes.Error
		}

		view.Render(w, "admin-dashboard.html", v)
	}
}

func queryDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
