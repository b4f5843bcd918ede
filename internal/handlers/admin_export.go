package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/avgordeev/user-portal/internal/logger"
)

// UserExporter defines the export operations of the admin service.
type UserExporter interface {
	ExportCSV(ctx context.Context, w io.Writer) error
	ExportPDF(ctx context.Context, w io.Writer) error
}

// NewExportCSVHandler streams all user records as a CSV attachment.
// The document is built before any headers go out, so a failed export
// yields a clean error response instead of a truncated file.
func NewExportCSVHandler(svc UserExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := svc.ExportCSV(r.Context(), &buf); err != nil {
			logger.Log.Errorw("csv export failed", "err", err)
			http.Error(w, "Export failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="users.csv"`)
		_, _ = w.Write(buf.Bytes())
	}
}

// NewExportPDFHandler streams all user records as a PDF attachment.
func NewExportPDFHandler(svc UserExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := svc.ExportPDF(r.Context(), &buf); err != nil {
			logger.Log.Errorw("pdf export failed", "err", err)
			http.Error(w, "PDF export failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="users.pdf"`)
		_, _ = w.Write(buf.Bytes())
	}
}
