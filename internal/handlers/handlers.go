// Package handlers maps HTTP routes onto the service flows. Every handler
// is a factory taking the interfaces it consumes, so tests can swap in
// mocks.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/avgordeev/user-portal/internal/session"
)

// Renderer turns a named view plus a data bag into an HTML response.
type Renderer interface {
	Render(w http.ResponseWriter, name string, data any)
}

// FlashStore is the one-shot message outbox carried in the session.
type FlashStore interface {
	PutFlash(ctx context.Context, sid string, kind session.FlashKind, msg string) error
	TakeFlashes(ctx context.Context, sid string) session.Flashes
}

// formOptional returns a trimmed form value, or nil when blank.
func formOptional(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.PostFormValue(name))
	if v == "" {
		return nil
	}
	return &v
}

// formDate parses a YYYY-MM-DD form value, or nil when blank or invalid.
func formDate(r *http.Request, name string) *time.Time {
	v := strings.TrimSpace(r.PostFormValue(name))
	if v == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	return &t
}
