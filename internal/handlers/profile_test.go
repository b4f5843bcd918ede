package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avgordeev/user-portal/internal/models"
	"github.com/avgordeev/user-portal/internal/services"
	"github.com/avgordeev/user-portal/internal/session"
)

func TestProfileHandler(t *testing.T) {
	identity := testUserIdentity()
	userRecord := &models.User{UserID: identity.UserID, FullName: "Alice", Email: identity.Email}

	t.Run("renders own record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockSvc := NewMockProfileProvider(ctrl)
		mockSvc.EXPECT().Get(gomock.Any(), identity.UserID).Return(userRecord, nil)

		view, captured := captureRenderer(ctrl)
		handler := NewProfileHandler(mockSvc, view)

		r := withPrincipal(httptest.NewRequest(http.MethodGet, "/profile", nil), identity, "sid-1")
		handler(httptest.NewRecorder(), r)

		assert.Equal(t, "profile.html", captured.name)
		v, ok := captured.data.(profileView)
		require.True(t, ok)
		assert.Equal(t, userRecord, v.User)
	})

	t.Run("vanished account clears the session cookie", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockSvc := NewMockProfileProvider(ctrl)
		mockSvc.EXPECT().Get(gomock.Any(), identity.UserID).Return(nil, services.ErrNotFound)

		view, _ := captureRenderer(ctrl)
		handler := NewProfileHandler(mockSvc, view)

		r := withPrincipal(httptest.NewRequest(http.MethodGet, "/profile", nil), identity, "sid-1")
		w := httptest.NewRecorder()
		handler(w, r)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, session.CookieName, cookies[0].Name)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})

	t.Run("infrastructure failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockSvc := NewMockProfileProvider(ctrl)
		mockSvc.EXPECT().Get(gomock.Any(), identity.UserID).Return(nil, errors.New("db down"))

		view, _ := captureRenderer(ctrl)
		handler := NewProfileHandler(mockSvc, view)

		r := withPrincipal(httptest.NewRequest(http.MethodGet, "/profile", nil), identity, "sid-1")
		w := httptest.NewRecorder()
		handler(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("no principal redirects to login", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		view, _ := captureRenderer(ctrl)
		handler := NewProfileHandler(NewMockProfileProvider(ctrl), view)

		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})
}

func TestEditProfilePageHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	identity := testUserIdentity()
	userRecord := &models.User{UserID: identity.UserID, FullName: "Alice"}

	mockSvc := NewMockProfileProvider(ctrl)
	mockSvc.EXPECT().Get(gomock.Any(), identity.UserID).Return(userRecord, nil)

	mockFlash := NewMockFlashStore(ctrl)
	mockFlash.EXPECT().
		TakeFlashes(gomock.Any(), "sid-1").
		Return(session.Flashes{Success: "Profile updated."})

	view, captured := captureRenderer(ctrl)
	handler := NewEditProfilePageHandler(mockSvc, mockFlash, view)

	r := withPrincipal(httptest.NewRequest(http.MethodGet, "/profile/edit", nil), identity, "sid-1")
	handler(httptest.NewRecorder(), r)

	assert.Equal(t, "edit-profile.html", captured.name)
	v, ok := captured.data.(profileView)
	require.True(t, ok)
	assert.Equal(t, userRecord, v.User)
	assert.Equal(t, "Profile updated.", v.Success)
	assert.Empty(t, v.Error)
}

func TestEditProfileHandler(t *testing.T) {
	identity := testUserIdentity()

	form := url.Values{
		"fullName": {"Alice Updated"},
		"phone":    {"54321"},
		"gender":   {"Female"},
		"dob":      {"1990-05-01"},
		"address":  {""},
	}

	tests := []struct {
		name      string
		updateErr error
	}{
		{"successful update", nil},
		{"update failure still redirects", errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSvc := NewMockProfileProvider(ctrl)
			mockSvc.EXPECT().
				Update(gomock.Any(), identity.UserID, gomock.Any()).
				DoAndReturn(func(_ any, _ any, patch models.ProfileUpdate) error {
					assert.Equal(t, "Alice Updated", patch.FullName)
					assert.Equal(t, models.GenderFemale, patch.Gender)
					require.NotNil(t, patch.Phone)
					assert.Equal(t, "54321", *patch.Phone)
					require.NotNil(t, patch.DOB)
					assert.Nil(t, patch.Address)
					return tt.updateErr
				})

			view, _ := captureRenderer(ctrl)
			handler := NewEditProfileHandler(mockSvc, view)

			r := withPrincipal(formRequest("/profile/edit", form), identity, "sid-1")
			w := httptest.NewRecorder()
			handler(w, r)

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/profile", w.Header().Get("Location"))
		})
	}
}
