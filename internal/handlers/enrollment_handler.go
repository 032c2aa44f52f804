package handlers

import (
	"context"
	"net/http"

	"github.com/coursehub/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EnrollmentService is the interface that wraps methods for enrollment ledger business logic.
type EnrollmentService interface {
	// Method Enroll enrolls the user in the course with zero progress.
	//
	// If the user is already enrolled, a Conflict error will be returned.
	Enroll(ctx context.Context, requester models.Requester, courseID int) (*models.Enrollment, error)
	// Method Unenroll removes the user's enrollment in the course.
	Unenroll(ctx context.Context, userID, courseID int) error
	// Method SetProgress stores a clamped progress value.
	SetProgress(ctx context.Context, userID, courseID, value int) (*models.Enrollment, error)
	// Method Status reports whether the user is enrolled in the course.
	Status(ctx context.Context, userID, courseID int) (*models.EnrollmentStatusResponse, error)
	// Method MyCourses returns the user's enrollments with course summaries.
	MyCourses(ctx context.Context, userID int) ([]models.Enrollment, error)
}

// EnrollmentResponse is returned after an enrollment mutation
type EnrollmentResponse struct {
	Message    string             `json:"message"`
	Enrollment *models.Enrollment `json:"enrollment"`
}

// EnrollmentHandler handles enrollment-related HTTP requests
type EnrollmentHandler struct {
	BaseHandler
	enrollmentService EnrollmentService
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollmentService EnrollmentService, logger *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       BaseHandler{Logger: logger},
		enrollmentService: enrollmentService,
	}
}

// RegisterRoutes registers all enrollment handler routes behind the auth middleware
func (h *EnrollmentHandler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/enrollments", func(r chi.Router) {
		r.Use(auth)
		r.Post("/enroll", h.Enroll)
		r.Delete("/unenroll/{courseId}", h.Unenroll)
		r.Get("/my-courses", h.MyCourses)
		r.Get("/status/{courseId}", h.Status)
		r.Put("/progress/{courseId}", h.SetProgress)
	})
}

// Enroll handles POST /enrollments/enroll
// @Summary Enroll in course
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.EnrollRequest true "Course to enroll in"
// @Success 201 {object} EnrollmentResponse
// @Failure 400 {object} ValidationErrorResponse "Invalid request body"
// @Failure 404 {object} MessageResponse "Course not found"
// @Failure 409 {object} MessageResponse "Already enrolled in this course"
// @Router /enrollments/enroll [post]
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}

	var req models.EnrollRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	enrollment, err := h.enrollmentService.Enroll(r.Context(), requester, req.CourseID)
	if err != nil {
		h.RespondServiceError(w, r, err, "enroll in course")
		return
	}

	h.RespondJSON(w, http.StatusCreated, EnrollmentResponse{Message: "Successfully enrolled in course", Enrollment: enrollment})
}

// Unenroll handles DELETE /enrollments/unenroll/{courseId}
// @Summary Unenroll from course
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} MessageResponse "Enrollment not found"
// @Router /enrollments/unenroll/{courseId} [delete]
func (h *EnrollmentHandler) Unenroll(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}
	courseID, ok := h.PathID(w, r, "courseId", "course")
	if !ok {
		return
	}

	if err := h.enrollmentService.Unenroll(r.Context(), requester.UserID, courseID); err != nil {
		h.RespondServiceError(w, r, err, "unenroll from course")
		return
	}

	h.RespondJSON(w, http.StatusOK, MessageResponse{Message: "Successfully unenrolled from course"})
}

// MyCourses handles GET /enrollments/my-courses
// @Summary List own enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Enrollment
// @Router /enrollments/my-courses [get]
func (h *EnrollmentHandler) MyCourses(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}

	enrollments, err := h.enrollmentService.MyCourses(r.Context(), requester.UserID)
	if err != nil {
		h.RespondServiceError(w, r, err, "get enrolled courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, enrollments)
}

// Status handles GET /enrollments/status/{courseId}
// @Summary Get enrollment status
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.EnrollmentStatusResponse
// @Router /enrollments/status/{courseId} [get]
func (h *EnrollmentHandler) Status(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}
	courseID, ok := h.PathID(w, r, "courseId", "course")
	if !ok {
		return
	}

	status, err := h.enrollmentService.Status(r.Context(), requester.UserID, courseID)
	if err != nil {
		h.RespondServiceError(w, r, err, "check enrollment status")
		return
	}

	h.RespondJSON(w, http.StatusOK, status)
}

// SetProgress handles PUT /enrollments/progress/{courseId}
// @Summary Set course progress
// @Description Stores a progress value clamped to 0..100. Reaching 100 marks the enrollment completed.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Param request body models.SetProgressRequest true "Progress value"
// @Success 200 {object} EnrollmentResponse
// @Failure 400 {object} ValidationErrorResponse "Invalid request body"
// @Failure 404 {object} MessageResponse "Not enrolled in this course"
// @Router /enrollments/progress/{courseId} [put]
func (h *EnrollmentHandler) SetProgress(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}
	courseID, ok := h.PathID(w, r, "courseId", "course")
	if !ok {
		return
	}

	var req models.SetProgressRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	enrollment, err := h.enrollmentService.SetProgress(r.Context(), requester.UserID, courseID, *req.Progress)
	if err != nil {
		h.RespondServiceError(w, r, err, "update progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, EnrollmentResponse{Message: "Progress updated successfully", Enrollment: enrollment})
}
