package handlers

import (
	"context"
	"net/http"

	"github.com/coursehub/backend/internal/middleware"
	"github.com/coursehub/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProgressService is the interface that wraps methods for lesson progress business logic.
type ProgressService interface {
	// Method RecordLessonProgress upserts a lesson record and recomputes the course progress.
	//
	// If the user is not enrolled, a Forbidden error will be returned.
	RecordLessonProgress(ctx context.Context, userID int, req *models.LessonProgressRequest) (*models.LessonProgressResponse, error)
	// Method CourseProgress returns the enrollment with every lesson record of the course.
	CourseProgress(ctx context.Context, userID, courseID int) (*models.CourseProgressResponse, error)
	// Method UserProgress returns every enrollment of the user with aggregate statistics.
	UserProgress(ctx context.Context, userID int) (*models.UserProgressResponse, error)
	// Method Analytics returns course statistics for its instructor or an admin.
	Analytics(ctx context.Context, courseID int, requester models.Requester) (*models.AnalyticsResponse, error)
}

// ProgressHandler handles lesson progress HTTP requests
type ProgressHandler struct {
	BaseHandler
	progressService ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     BaseHandler{Logger: logger},
		progressService: progressService,
	}
}

// RegisterRoutes registers all progress handler routes behind the auth middleware
func (h *ProgressHandler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/progress", func(r chi.Router) {
		r.Use(auth)
		r.Put("/lesson", h.RecordLessonProgress)
		r.Get("/course/{courseId}", h.CourseProgress)
		r.Get("/my-progress", h.UserProgress)
		r.With(middleware.RequireRole(models.Role.CanAuthor)).Get("/analytics/{courseId}", h.Analytics)
	})
}

// RecordLessonProgress handles PUT /progress/lesson
// @Summary Record lesson progress
// @Description Creates or replaces the lesson record and recomputes the course progress from completed lessons.
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.LessonProgressRequest true "Lesson progress"
// @Success 200 {object} models.LessonProgressResponse
// @Failure 400 {object} ValidationErrorResponse "Invalid request body"
// @Failure 403 {object} MessageResponse "Not enrolled in this course"
// @Failure 404 {object} MessageResponse "Lesson not found in this course"
// @Router /progress/lesson [put]
func (h *ProgressHandler) RecordLessonProgress(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}

	var req models.LessonProgressRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.progressService.RecordLessonProgress(r.Context(), requester.UserID, &req)
	if err != nil {
		h.RespondServiceError(w, r, err, "update lesson progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// CourseProgress handles GET /progress/course/{courseId}
// @Summary Get own progress in a course
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.CourseProgressResponse
// @Failure 403 {object} MessageResponse "Not enrolled in this course"
// @Router /progress/course/{courseId} [get]
func (h *ProgressHandler) CourseProgress(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}
	courseID, ok := h.PathID(w, r, "courseId", "course")
	if !ok {
		return
	}

	resp, err := h.progressService.CourseProgress(r.Context(), requester.UserID, courseID)
	if err != nil {
		h.RespondServiceError(w, r, err, "get course progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// UserProgress handles GET /progress/my-progress
// @Summary Get own progress across courses
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserProgressResponse
// @Router /progress/my-progress [get]
func (h *ProgressHandler) UserProgress(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}

	resp, err := h.progressService.UserProgress(r.Context(), requester.UserID)
	if err != nil {
		h.RespondServiceError(w, r, err, "get user progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// Analytics handles GET /progress/analytics/{courseId}
// @Summary Get course analytics
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.AnalyticsResponse
// @Failure 403 {object} MessageResponse "Not authorized to view analytics for this course"
// @Failure 404 {object} MessageResponse "Course not found"
// @Router /progress/analytics/{courseId} [get]
func (h *ProgressHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}
	courseID, ok := h.PathID(w, r, "courseId", "course")
	if !ok {
		return
	}

	resp, err := h.progressService.Analytics(r.Context(), courseID, requester)
	if err != nil {
		h.RespondServiceError(w, r, err, "get progress analytics")
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}
