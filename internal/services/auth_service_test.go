package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coursehub/backend/internal/apperrors"
	"github.com/coursehub/backend/internal/auth/service"
	"github.com/coursehub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestNewAuthService(t *testing.T) {
	logger := zap.NewNop()
	userRepo := newMockUserRepository()
	tokenGen := service.NewTokenGenerator("secret", time.Hour)

	svc := NewAuthService(userRepo, tokenGen, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, userRepo, svc.userRepo)
	assert.Equal(t, tokenGen, svc.tokenGenerator)
	assert.Equal(t, logger, svc.logger)
}

func TestAuthService_Register(t *testing.T) {
	tokenGen := service.NewTokenGenerator("test-secret", time.Hour)

	tests := []struct {
		name         string
		req          *models.RegisterRequest
		userRepo     *mockUserRepository
		expectError  bool
		expectedKind apperrors.Kind
		expectedRole models.Role
	}{
		{
			name:         "success defaults to student",
			req:          &models.RegisterRequest{Name: "Ada", Email: "  Ada@Example.com ", Password: "secret1"},
			userRepo:     newMockUserRepository(),
			expectedRole: models.RoleStudent,
		},
		{
			name:         "success as teacher",
			req:          &models.RegisterRequest{Name: "Grace", Email: "grace@example.com", Password: "secret1", Role: models.RoleTeacher},
			userRepo:     newMockUserRepository(),
			expectedRole: models.RoleTeacher,
		},
		{
			name:         "admin cannot be self-assigned",
			req:          &models.RegisterRequest{Name: "Eve", Email: "eve@example.com", Password: "secret1", Role: models.RoleAdmin},
			userRepo:     newMockUserRepository(),
			expectError:  true,
			expectedKind: apperrors.KindValidation,
		},
		{
			name:         "unknown role",
			req:          &models.RegisterRequest{Name: "Eve", Email: "eve@example.com", Password: "secret1", Role: "owner"},
			userRepo:     newMockUserRepository(),
			expectError:  true,
			expectedKind: apperrors.KindValidation,
		},
		{
			name:         "short password",
			req:          &models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "12345"},
			userRepo:     newMockUserRepository(),
			expectError:  true,
			expectedKind: apperrors.KindValidation,
		},
		{
			name:         "blank name",
			req:          &models.RegisterRequest{Name: "   ", Email: "ada@example.com", Password: "secret1"},
			userRepo:     newMockUserRepository(),
			expectError:  true,
			expectedKind: apperrors.KindValidation,
		},
		{
			name:         "email already registered",
			req:          &models.RegisterRequest{Name: "Ada", Email: "ADA@example.com", Password: "secret1"},
			userRepo:     newMockUserRepository(&models.User{ID: 1, Email: "ada@example.com"}),
			expectError:  true,
			expectedKind: apperrors.KindConflict,
		},
		{
			name:         "existence check fails",
			req:          &models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"},
			userRepo:     &mockUserRepository{users: map[int]*models.User{}, existsErr: errors.New("database error")},
			expectError:  true,
			expectedKind: apperrors.KindInternal,
		},
		{
			name:         "create fails",
			req:          &models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"},
			userRepo:     &mockUserRepository{users: map[int]*models.User{}, createErr: apperrors.Conflict("user with this email already exists")},
			expectError:  true,
			expectedKind: apperrors.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(tt.userRepo, tokenGen, zap.NewNop())

			resp, err := svc.Register(context.Background(), tt.req)

			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, resp)
				assert.Equal(t, tt.expectedKind, apperrors.KindOf(err))
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, resp.Token)
			assert.Equal(t, tt.expectedRole, resp.User.Role)
			assert.True(t, resp.User.IsActive)
			assert.NotEqual(t, tt.req.Password, resp.User.PasswordHash)
			assert.Equal(t, normalizeEmail(tt.req.Email), resp.User.Email)

			requester, err := tokenGen.ValidateAccessToken(resp.Token)
			require.NoError(t, err)
			assert.Equal(t, resp.User.ID, requester.UserID)
			assert.Equal(t, tt.expectedRole, requester.Role)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	tokenGen := service.NewTokenGenerator("test-secret", time.Hour)
	hash := hashPassword(t, "secret1")

	tests := []struct {
		name         string
		req          *models.LoginRequest
		userRepo     *mockUserRepository
		expectError  bool
		expectedKind apperrors.Kind
	}{
		{
			name: "success with mixed case email",
			req:  &models.LoginRequest{Email: "Ada@Example.com", Password: "secret1"},
			userRepo: newMockUserRepository(&models.User{
				ID: 1, Email: "ada@example.com", PasswordHash: hash, Role: models.RoleStudent, IsActive: true, EnrolledCourses: []int{4},
			}),
		},
		{
			name:         "unknown email",
			req:          &models.LoginRequest{Email: "nobody@example.com", Password: "secret1"},
			userRepo:     newMockUserRepository(),
			expectError:  true,
			expectedKind: apperrors.KindUnauthenticated,
		},
		{
			name: "wrong password",
			req:  &models.LoginRequest{Email: "ada@example.com", Password: "wrong"},
			userRepo: newMockUserRepository(&models.User{
				ID: 1, Email: "ada@example.com", PasswordHash: hash, Role: models.RoleStudent, IsActive: true,
			}),
			expectError:  true,
			expectedKind: apperrors.KindUnauthenticated,
		},
		{
			name: "deactivated account",
			req:  &models.LoginRequest{Email: "ada@example.com", Password: "secret1"},
			userRepo: newMockUserRepository(&models.User{
				ID: 1, Email: "ada@example.com", PasswordHash: hash, Role: models.RoleStudent, IsActive: false,
			}),
			expectError:  true,
			expectedKind: apperrors.KindForbidden,
		},
		{
			name:         "empty credentials",
			req:          &models.LoginRequest{},
			userRepo:     newMockUserRepository(),
			expectError:  true,
			expectedKind: apperrors.KindUnauthenticated,
		},
		{
			name:         "repository failure",
			req:          &models.LoginRequest{Email: "ada@example.com", Password: "secret1"},
			userRepo:     &mockUserRepository{getErr: errors.New("database error")},
			expectError:  true,
			expectedKind: apperrors.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(tt.userRepo, tokenGen, zap.NewNop())

			resp, err := svc.Login(context.Background(), tt.req)

			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, resp)
				assert.Equal(t, tt.expectedKind, apperrors.KindOf(err))
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, resp.Token)
			assert.Equal(t, []int{4}, resp.User.EnrolledCourses)
		})
	}
}
