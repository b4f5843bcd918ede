package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestExportCSVHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockUserExporter(ctrl)
	mockSvc.EXPECT().
		ExportCSV(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w io.Writer) error {
			_, err := w.Write([]byte("fullName,email\nAlice,alice@example.com\n"))
			return err
		})

	handler := NewExportCSVHandler(mockSvc)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/admin/export/csv", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="users.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "fullName,email\nAlice,alice@example.com\n", w.Body.String())
}

func TestExportCSVHandler_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockUserExporter(ctrl)
	mockSvc.EXPECT().
		ExportCSV(gomock.Any(), gomock.Any()).
		Return(errors.New("db down"))

	handler := NewExportCSVHandler(mockSvc)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/admin/export/csv", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestExportPDFHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockUserExporter(ctrl)
	mockSvc.EXPECT().
		ExportPDF(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w io.Writer) error {
			_, err := w.Write([]byte("%PDF-1.3 fake"))
			return err
		})

	handler := NewExportPDFHandler(mockSvc)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/admin/export/pdf", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="users.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3 fake", w.Body.String())
}

func TestExportPDFHandler_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockUserExporter(ctrl)
	mockSvc.EXPECT().
		ExportPDF(gomock.Any(), gomock.Any()).
		Return(errors.New("render failure"))

	handler := NewExportPDFHandler(mockSvc)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/admin/export/pdf", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
