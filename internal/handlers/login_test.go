package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avgordeev/user-portal/internal/models"
	"github.com/avgordeev/user-portal/internal/services"
	"github.com/avgordeev/user-portal/internal/session"
)

func TestLoginPageHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	view, captured := captureRenderer(ctrl)
	handler := NewLoginPageHandler(view)

	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, "login.html", captured.name)
	assert.Equal(t, loginView{}, captured.data)

	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/login?registered=1", nil))
	assert.Equal(t, loginView{Registered: true}, captured.data)
}

func TestLoginHandler(t *testing.T) {
	form := url.Values{
		"email":    {"alice@example.com"},
		"password": {"Str0ng!pass"},
	}

	userRecord := &models.User{UserID: uuid.New(), Email: "alice@example.com", Role: models.RoleUser}
	adminRecord := &models.User{UserID: uuid.New(), Email: "admin@example.com", Role: models.RoleAdmin}

	sessionCookie := &http.Cookie{Name: session.CookieName, Value: "token", Path: "/"}

	tests := []struct {
		name         string
		user         *models.User
		loginErr     error
		sessionErr   error
		wantCode     int
		wantLocation string
		wantError    string
	}{
		{
			name:         "user lands on profile",
			user:         userRecord,
			wantCode:     http.StatusSeeOther,
			wantLocation: "/profile",
		},
		{
			name:         "admin lands on dashboard",
			user:         adminRecord,
			wantCode:     http.StatusSeeOther,
			wantLocation: "/admin/dashboard",
		},
		{
			name:      "invalid credentials",
			loginErr:  services.ErrInvalidCredentials,
			wantCode:  http.StatusOK,
			wantError: "Invalid credentials.",
		},
		{
			name:      "login infrastructure failure",
			loginErr:  errors.New("db down"),
			wantCode:  http.StatusOK,
			wantError: "Server error.",
		},
		{
			name:       "session store failure",
			user:       userRecord,
			sessionErr: errors.New("redis down"),
			wantCode:   http.StatusOK,
			wantError:  "Server error.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSvc := NewMockLoginer(ctrl)
			mockSvc.EXPECT().
				Login(gomock.Any(), "alice@example.com", "Str0ng!pass").
				Return(tt.user, tt.loginErr)

			mockSessions := NewMockSessionCreator(ctrl)
			if tt.loginErr == nil {
				if tt.sessionErr != nil {
					mockSessions.EXPECT().
						Create(gomock.Any(), models.IdentityOf(tt.user)).
						Return(nil, tt.sessionErr)
				} else {
					mockSessions.EXPECT().
						Create(gomock.Any(), models.IdentityOf(tt.user)).
						Return(sessionCookie, nil)
				}
			}

			view, captured := captureRenderer(ctrl)
			handler := NewLoginHandler(mockSvc, mockSessions, view)

			w := httptest.NewRecorder()
			handler(w, formRequest("/login", form))

			assert.Equal(t, tt.wantCode, w.Code)

			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))

				cookies := w.Result().Cookies()
				require.Len(t, cookies, 1)
				assert.Equal(t, session.CookieName, cookies[0].Name)
				assert.Equal(t, "token", cookies[0].Value)
				return
			}

			assert.Equal(t, "login.html", captured.name)
			v, ok := captured.data.(loginView)
			require.True(t, ok)
			assert.Equal(t, tt.wantError, v.Error)
		})
	}
}
