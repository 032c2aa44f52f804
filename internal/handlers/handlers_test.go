package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coursehub/backend/internal/apperrors"
	"github.com/coursehub/backend/internal/middleware"
	"github.com/coursehub/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	teacherToken = "teacher-token"
	studentToken = "student-token"
)

var (
	teacher = models.Requester{UserID: 2, Role: models.RoleTeacher}
	student = models.Requester{UserID: 5, Role: models.RoleStudent}
)

// mockValidator maps fixed tokens to requesters
type mockValidator struct{}

func (mockValidator) ValidateAccessToken(tokenString string) (models.Requester, error) {
	switch tokenString {
	case teacherToken:
		return teacher, nil
	case studentToken:
		return student, nil
	}
	return models.Requester{}, errors.New("invalid token")
}

func authMiddlewares() (auth, optionalAuth func(http.Handler) http.Handler) {
	return middleware.AuthMiddleware(mockValidator{}), middleware.OptionalAuthMiddleware(mockValidator{})
}

func performRequest(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	resp     *models.AuthResponse
	err      error
	register *models.RegisterRequest
	login    *models.LoginRequest
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	m.register = req
	return m.resp, m.err
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	m.login = req
	return m.resp, m.err
}

func newAuthRouter(svc AuthService) http.Handler {
	r := chi.NewRouter()
	NewAuthHandler(svc, time.Hour, zap.NewNop()).RegisterRoutes(r)
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	okResp := &models.AuthResponse{
		Message: "User registered successfully",
		Token:   "jwt",
		User:    &models.User{ID: 1, Name: "Ann", Email: "ann@example.com", Role: models.RoleStudent},
	}

	tests := []struct {
		name            string
		body            any
		svcErr          error
		expectedStatus  int
		expectedMessage string
		expectedField   string
		expectCookie    bool
	}{
		{
			name:           "success",
			body:           map[string]any{"name": "Ann", "email": "ann@example.com", "password": "secret1"},
			expectedStatus: http.StatusCreated,
			expectCookie:   true,
		},
		{
			name:            "malformed body",
			body:            "{not json",
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "invalid request body",
		},
		{
			name:            "invalid email",
			body:            map[string]any{"name": "Ann", "email": "nope", "password": "secret1"},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "validation failed",
			expectedField:   "email",
		},
		{
			name:            "admin role rejected",
			body:            map[string]any{"name": "Ann", "email": "ann@example.com", "password": "secret1", "role": "admin"},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "validation failed",
			expectedField:   "role",
		},
		{
			name:            "duplicate email",
			body:            map[string]any{"name": "Ann", "email": "ann@example.com", "password": "secret1"},
			svcErr:          apperrors.Conflict("User already exists"),
			expectedStatus:  http.StatusConflict,
			expectedMessage: "User already exists",
		},
		{
			name:            "internal error hidden",
			body:            map[string]any{"name": "Ann", "email": "ann@example.com", "password": "secret1"},
			svcErr:          apperrors.Internal(errors.New("db down"), "failed to create user"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{resp: okResp, err: tt.svcErr}
			rec := performRequest(t, newAuthRouter(svc), http.MethodPost, "/auth/register", tt.body, "")

			assert.Equal(t, tt.expectedStatus, rec.Code)
			body := decodeResponse(t, rec)
			if tt.expectedMessage != "" {
				assert.Equal(t, tt.expectedMessage, body["message"])
			}
			if tt.expectedField != "" {
				errs, ok := body["errors"].(map[string]any)
				require.True(t, ok)
				assert.Contains(t, errs, tt.expectedField)
				assert.Nil(t, svc.register)
			}
			if tt.expectCookie {
				assert.Equal(t, "jwt", body["token"])
				cookie := rec.Result().Cookies()
				require.Len(t, cookie, 1)
				assert.Equal(t, "access_token", cookie[0].Name)
				assert.True(t, cookie[0].HttpOnly)
				assert.Equal(t, 3600, cookie[0].MaxAge)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockAuthService{resp: &models.AuthResponse{Message: "Login successful", Token: "jwt", User: &models.User{ID: 1}}}
		rec := performRequest(t, newAuthRouter(svc), http.MethodPost, "/auth/login",
			map[string]any{"email": "ann@example.com", "password": "secret1"}, "")

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, svc.login)
		assert.Equal(t, "ann@example.com", svc.login.Email)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := &mockAuthService{err: apperrors.Unauthenticated("Invalid credentials")}
		rec := performRequest(t, newAuthRouter(svc), http.MethodPost, "/auth/login",
			map[string]any{"email": "ann@example.com", "password": "wrong"}, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeResponse(t, rec)["message"])
		assert.Empty(t, rec.Result().Cookies())
	})
}

// mockProfileService is a mock implementation of ProfileService
type mockProfileService struct {
	user       *models.User
	err        error
	lastUserID int
	update     *models.UpdateProfileRequest
	change     *models.ChangePasswordRequest
}

func (m *mockProfileService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	m.lastUserID = userID
	return m.user, m.err
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	m.lastUserID = userID
	m.update = req
	return m.user, m.err
}

func (m *mockProfileService) ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error {
	m.lastUserID = userID
	m.change = req
	return m.err
}

func newProfileRouter(svc ProfileService) http.Handler {
	r := chi.NewRouter()
	auth, _ := authMiddlewares()
	NewProfileHandler(svc, zap.NewNop()).RegisterRoutes(r, auth)
	return r
}

func TestProfileHandler(t *testing.T) {
	t.Run("get requires token", func(t *testing.T) {
		rec := performRequest(t, newProfileRouter(&mockProfileService{}), http.MethodGet, "/auth/profile", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("get returns bare user", func(t *testing.T) {
		svc := &mockProfileService{user: &models.User{ID: 5, Name: "Sam", EnrolledCourses: []int{1, 3}}}
		rec := performRequest(t, newProfileRouter(svc), http.MethodGet, "/auth/profile", nil, studentToken)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, svc.lastUserID)
		body := decodeResponse(t, rec)
		assert.Equal(t, "Sam", body["name"])
		assert.NotContains(t, body, "passwordHash")
	})

	t.Run("update", func(t *testing.T) {
		svc := &mockProfileService{user: &models.User{ID: 5, Name: "Samuel"}}
		rec := performRequest(t, newProfileRouter(svc), http.MethodPut, "/auth/profile", map[string]any{"name": "Samuel"}, studentToken)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Profile updated successfully", decodeResponse(t, rec)["message"])
		require.NotNil(t, svc.update.Name)
		assert.Equal(t, "Samuel", *svc.update.Name)
	})

	t.Run("change password wrong current", func(t *testing.T) {
		svc := &mockProfileService{err: apperrors.Validation("Current password is incorrect")}
		rec := performRequest(t, newProfileRouter(svc), http.MethodPut, "/auth/change-password",
			map[string]any{"currentPassword": "old", "newPassword": "newsecret"}, studentToken)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Current password is incorrect", decodeResponse(t, rec)["message"])
	})

	t.Run("change password too short", func(t *testing.T) {
		svc := &mockProfileService{}
		rec := performRequest(t, newProfileRouter(svc), http.MethodPut, "/auth/change-password",
			map[string]any{"currentPassword": "old", "newPassword": "123"}, studentToken)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeResponse(t, rec)["errors"], "newPassword")
		assert.Nil(t, svc.change)
	})
}
