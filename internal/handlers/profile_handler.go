package handlers

import (
	"context"
	"net/http"

	"github.com/coursehub/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProfileService is the interface that wraps methods for profile business logic.
type ProfileService interface {
	// Method GetProfile returns the user with the IDs of their enrolled courses.
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	// Method UpdateProfile applies the supplied name, bio and avatar.
	UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error)
	// Method ChangePassword replaces the password after checking the current one.
	ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error
}

// ProfileResponse is returned after a profile update
type ProfileResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	BaseHandler
	profileService ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		profileService: profileService,
	}
}

// RegisterRoutes registers all profile handler routes behind the auth middleware
func (h *ProfileHandler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	// Shares the /auth prefix with AuthHandler, so routes are registered flat
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Get("/auth/profile", h.GetProfile)
		r.Put("/auth/profile", h.UpdateProfile)
		r.Put("/auth/change-password", h.ChangePassword)
	})
}

// GetProfile handles GET /auth/profile
// @Summary Get current user profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} MessageResponse "Authentication required"
// @Failure 404 {object} MessageResponse "User not found"
// @Router /auth/profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}

	user, err := h.profileService.GetProfile(r.Context(), requester.UserID)
	if err != nil {
		h.RespondServiceError(w, r, err, "get profile")
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /auth/profile
// @Summary Update current user profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateProfileRequest true "Profile fields to change"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} ValidationErrorResponse "Invalid request body"
// @Failure 401 {object} MessageResponse "Authentication required"
// @Router /auth/profile [put]
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.profileService.UpdateProfile(r.Context(), requester.UserID, &req)
	if err != nil {
		h.RespondServiceError(w, r, err, "update profile")
		return
	}

	h.RespondJSON(w, http.StatusOK, ProfileResponse{Message: "Profile updated successfully", User: user})
}

// ChangePassword handles PUT /auth/change-password
// @Summary Change password
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} MessageResponse "Current password is incorrect"
// @Failure 401 {object} MessageResponse "Authentication required"
// @Router /auth/change-password [put]
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	if err := h.profileService.ChangePassword(r.Context(), requester.UserID, &req); err != nil {
		h.RespondServiceError(w, r, err, "change password")
		return
	}

	h.RespondJSON(w, http.StatusOK, MessageResponse{Message: "Password changed successfully"})
}
