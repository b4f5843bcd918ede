package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/middlewares"
	"github.com/avgordeev/user-portal/internal/services"
	"github.com/avgordeev/user-portal/internal/session"
)

// maxImportSize caps the multipart form memory for CSV uploads.
const maxImportSize = 32 << 20

// CSVImporter defines the bulk import operation.
type CSVImporter interface {
	ImportCSV(ctx context.Context, path string) (services.ImportResult, error)
}

// NewImportCSVHandler receives the multipart upload, spools it to a
// temporary file and hands the path to the import pipeline, which owns the
// file from there. One aggregate flash reports the whole batch.
func NewImportCSVHandler(svc CSVImporter, flash FlashStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middlewares.PrincipalFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		fail := func(err error) {
			logger.Log.Errorw("csv import failed", "err", err)
			_ = flash.PutFlash(r.Context(), p.SID, session.FlashError, "Import failed.")
			http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		}

		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			fail(err)
			return
		}

		upload, _, err := r.FormFile("file")
		if err != nil {
			fail(err)
			return
		}
		defer upload.Close()

		tmp, err := os.CreateTemp("", "users-import-*.csv")
		if err != nil {
			fail(err)
			return
		}
		if _, err := io.Copy(tmp, upload); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			fail(err)
			return
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			fail(err)
			return
		}

		result, err := svc.ImportCSV(r.Context(), tmp.Name())
		if err != nil {
			fail(err)
			return
		}

		_ = flash.PutFlash(r.Context(), p.SID, session.FlashSuccess,
			fmt.Sprintf("Import finished: %d imported, %d skipped.", result.Imported, result.Skipped))
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
	}
}
