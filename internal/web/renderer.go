package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/avgordeev/user-portal/internal/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

// TemplateRenderer renders named views from the embedded template set.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses the embedded templates.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	t, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{templates: t}, nil
}

// Render executes the named view with the given data bag. A template
// failure degrades to a generic 500; internals are never leaked.
func (r *TemplateRenderer) Render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		logger.Log.Errorw("failed to render template", "name", name, "err", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
	}
}
