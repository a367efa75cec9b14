package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"decor-store/internal/auth"
	"decor-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef-handler"

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	signer := auth.NewSigner(testSecret)
	user := &model.User{ID: "user-1", Username: "rina", PasswordHash: "$2a$10$hash"}
	session := &model.Session{ID: uuid.New(), UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour).UTC()}

	tests := []struct {
		name           string
		method         string
		body           string
		mockUser       *model.User
		mockSession    *model.Session
		mockError      error
		expectedStatus int
		expectService  bool
		expectMessage  string
	}{
		{
			name:           "Register",
			method:         "Register",
			body:           `{"username":"rina","password":"secret123"}`,
			mockUser:       user,
			mockSession:    session,
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Register with taken username",
			method:         "Register",
			body:           `{"username":"rina","password":"secret123"}`,
			mockError:      model.ErrUsernameTaken,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
			expectMessage:  "Username already exists",
		},
		{
			name:           "Login",
			method:         "Login",
			body:           `{"username":"rina","password":"secret123"}`,
			mockUser:       user,
			mockSession:    session,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Login with bad credentials",
			method:         "Login",
			body:           `{"username":"rina","password":"nope"}`,
			mockError:      model.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
			expectService:  true,
			expectMessage:  "Invalid username or password",
		},
		{
			name:           "Login with store failure",
			method:         "Login",
			body:           `{"username":"rina","password":"secret123"}`,
			mockError:      errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
			expectMessage:  "Internal Server Error",
		},
		{
			name:           "Login with invalid JSON",
			method:         "Login",
			body:           `username=rina`,
			expectedStatus: http.StatusBadRequest,
			expectMessage:  "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			handler := NewAuthHandler(mockService, signer, true, zerolog.Nop())

			if tt.expectService {
				mockService.On(tt.method, mock.Anything, mock.Anything).Return(tt.mockUser, tt.mockSession, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/"+strings.ToLower(tt.method), strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			if tt.method == "Register" {
				handler.Register(w, req)
			} else {
				handler.Login(w, req)
			}

			assert.Equal(t, tt.expectedStatus, w.Code)

			cookie := sessionCookie(t, w)
			if tt.expectMessage != "" {
				var resp model.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectMessage, resp.Message)
				assert.Nil(t, cookie)
			} else {
				assert.NotContains(t, w.Body.String(), "hash", "password hash must never be serialised")

				require.NotNil(t, cookie)
				assert.True(t, cookie.HttpOnly)
				assert.True(t, cookie.Secure)
				assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
				assert.Equal(t, "/", cookie.Path)

				id, err := signer.Parse(cookie.Value)
				require.NoError(t, err)
				assert.Equal(t, session.ID, id)
			}

			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	principal := &model.Principal{UserID: "user-1", Username: "rina", SessionID: uuid.New()}

	tests := []struct {
		name           string
		principal      *model.Principal
		mockError      error
		expectedStatus int
	}{
		{name: "With session", principal: principal, expectedStatus: http.StatusOK},
		{name: "Without session", expectedStatus: http.StatusOK},
		{name: "Store failure", principal: principal, mockError: errors.New("db down"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			handler := NewAuthHandler(mockService, auth.NewSigner(testSecret), false, zerolog.Nop())
			if tt.principal != nil {
				mockService.On("Logout", mock.Anything, tt.principal.SessionID).Return(tt.mockError)
			}

			req := withPrincipal(httptest.NewRequest(http.MethodPost, "/api/logout", nil), tt.principal)
			w := httptest.NewRecorder()

			handler.Logout(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				cookie := sessionCookie(t, w)
				require.NotNil(t, cookie)
				assert.Empty(t, cookie.Value)
				assert.Equal(t, -1, cookie.MaxAge)
			}
			if tt.principal == nil {
				mockService.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
			} else {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestAuthHandler_CurrentUser(t *testing.T) {
	principal := &model.Principal{UserID: "user-1", Username: "rina"}

	t.Run("Logged in", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("CurrentUser", mock.Anything, principal).Return(&model.User{ID: "user-1", Username: "rina"}, nil)
		handler := NewAuthHandler(mockService, auth.NewSigner(testSecret), false, zerolog.Nop())

		w := httptest.NewRecorder()
		handler.CurrentUser(w, withPrincipal(httptest.NewRequest(http.MethodGet, "/api/auth/user", nil), principal))

		require.Equal(t, http.StatusOK, w.Code)
		var got model.User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "rina", got.Username)
	})

	t.Run("Anonymous", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService, auth.NewSigner(testSecret), false, zerolog.Nop())

		w := httptest.NewRecorder()
		handler.CurrentUser(w, httptest.NewRequest(http.MethodGet, "/api/auth/user", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"message":"Unauthorized"}`, w.Body.String())
		mockService.AssertNotCalled(t, "CurrentUser", mock.Anything, mock.Anything)
	})
}
