package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/coursehub/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register validates the registration data, creates the user and returns an access token.
	//
	// "req" parameter contains name, email, password and an optional role.
	//
	// If the email is taken, a Conflict error will be returned. Invalid data yields a Validation error.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	// Method Login checks the credentials and returns an access token.
	//
	// Unknown emails and wrong passwords yield the same Unauthenticated error.
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService  AuthService
	cookieMaxAge time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, tokenExpiry time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		authService:  authService,
		cookieMaxAge: tokenExpiry,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Creates a student or teacher account and returns an access token. The token is also set as an HTTP-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} ValidationErrorResponse "Invalid request body"
// @Failure 409 {object} MessageResponse "User already exists"
// @Failure 500 {object} MessageResponse "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err, "register user")
		return
	}

	h.setTokenCookie(w, resp.Token)
	h.RespondJSON(w, http.StatusCreated, resp)
}

// Login handles POST /auth/login
// @Summary Login user
// @Description Authenticates a user by email and password and returns an access token. The token is also set as an HTTP-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} ValidationErrorResponse "Invalid request body"
// @Failure 401 {object} MessageResponse "Invalid credentials"
// @Failure 403 {object} MessageResponse "Account is deactivated"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err, "login user")
		return
	}

	h.setTokenCookie(w, resp.Token)
	h.RespondJSON(w, http.StatusOK, resp)
}

// setTokenCookie stores the access token in an HTTP-only cookie
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
