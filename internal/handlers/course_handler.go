package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/coursehub/backend/internal/middleware"
	"github.com/coursehub/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CourseService is the interface that wraps methods for course catalog business logic.
type CourseService interface {
	// Method List returns a page of published courses matching the filter.
	List(ctx context.Context, filter models.CourseFilter) (*models.CourseListResponse, error)
	// Method Get returns a course with its lessons.
	//
	// "requester" parameter is nil for anonymous calls. Unpublished courses are only visible to their managers.
	Get(ctx context.Context, id int, requester *models.Requester) (*models.Course, error)
	// Method Create stores a new unpublished course owned by the requester.
	Create(ctx context.Context, requester models.Requester, req *models.CreateCourseRequest) (*models.Course, error)
	// Method Update applies the supplied fields to a course the requester manages.
	Update(ctx context.Context, id int, requester models.Requester, req *models.UpdateCourseRequest) (*models.Course, error)
	// Method Delete removes a course the requester manages.
	Delete(ctx context.Context, id int, requester models.Requester) error
	// Method InstructorCourses returns every course authored by the requester.
	InstructorCourses(ctx context.Context, requester models.Requester) ([]models.Course, error)
	// Method TogglePublish flips the publish flag of a course the requester manages.
	TogglePublish(ctx context.Context, id int, requester models.Requester) (*models.Course, error)
}

// CourseResponse is returned after a course mutation
type CourseResponse struct {
	Message string         `json:"message"`
	Course  *models.Course `json:"course"`
}

// CourseHandler handles course-related HTTP requests
type CourseHandler struct {
	BaseHandler
	courseService CourseService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   BaseHandler{Logger: logger},
		courseService: courseService,
	}
}

// RegisterRoutes registers all course handler routes
func (h *CourseHandler) RegisterRoutes(r chi.Router, auth, optionalAuth func(http.Handler) http.Handler) {
	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.ListCourses)
		r.With(optionalAuth).Get("/{id}", h.GetCourse)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Use(middleware.RequireRole(models.Role.CanAuthor))
			r.Post("/", h.CreateCourse)
			r.Get("/instructor/my-courses", h.InstructorCourses)
			r.Put("/{id}", h.UpdateCourse)
			r.Delete("/{id}", h.DeleteCourse)
			r.Patch("/{id}/toggle-publish", h.TogglePublish)
		})
	})
}

// ListCourses handles GET /courses
// @Summary List published courses
// @Description Returns a page of published courses, newest first. Search matches title and description.
// @Tags courses
// @Produce json
// @Param category query string false "Category"
// @Param difficulty query string false "Difficulty" Enums(beginner, intermediate, advanced)
// @Param search query string false "Search text"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} models.CourseListResponse
// @Failure 400 {object} MessageResponse "Invalid difficulty"
// @Router /courses [get]
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.CourseFilter{
		Category:   query.Get("category"),
		Difficulty: models.Difficulty(query.Get("difficulty")),
		Search:     query.Get("search"),
	}
	// Malformed numbers fall back to the defaults
	filter.Page, _ = strconv.Atoi(query.Get("page"))
	filter.Limit, _ = strconv.Atoi(query.Get("limit"))

	resp, err := h.courseService.List(r.Context(), filter)
	if err != nil {
		h.RespondServiceError(w, r, err, "list courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// GetCourse handles GET /courses/{id}
// @Summary Get course by ID
// @Description Returns a course with its lessons. Unpublished courses are visible to their instructor and admins only.
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} models.Course
// @Failure 400 {object} MessageResponse "Invalid course ID"
// @Failure 404 {object} MessageResponse "Course not found"
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id", "course")
	if !ok {
		return
	}

	var requester *models.Requester
	if req, ok := middleware.GetRequester(r.Context()); ok {
		requester = &req
	}

	course, err := h.courseService.Get(r.Context(), id, requester)
	if err != nil {
		h.RespondServiceError(w, r, err, "get course")
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// CreateCourse handles POST /courses
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateCourseRequest true "Course data"
// @Success 201 {object} CourseResponse
// @Failure 400 {object} ValidationErrorResponse "Invalid request body"
// @Failure 403 {object} MessageResponse "Insufficient permissions"
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}

	var req models.CreateCourseRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	course, err := h.courseService.Create(r.Context(), requester, &req)
	if err != nil {
		h.RespondServiceError(w, r, err, "create course")
		return
	}

	h.RespondJSON(w, http.StatusCreated, CourseResponse{Message: "Course created successfully", Course: course})
}

// InstructorCourses handles GET /courses/instructor/my-courses
// @Summary List the requester's own courses
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Course
// @Failure 403 {object} MessageResponse "Insufficient permissions"
// @Router /courses/instructor/my-courses [get]
func (h *CourseHandler) InstructorCourses(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}

	courses, err := h.courseService.InstructorCourses(r.Context(), requester)
	if err != nil {
		h.RespondServiceError(w, r, err, "get instructor courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// UpdateCourse handles PUT /courses/{id}
// @Summary Update course
// @Description Applies the supplied fields. A supplied lesson list replaces the existing one.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body models.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} CourseResponse
// @Failure 400 {object} ValidationErrorResponse "Invalid request body"
// @Failure 403 {object} MessageResponse "Not authorized to update this course"
// @Failure 404 {object} MessageResponse "Course not found"
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", "course")
	if !ok {
		return
	}

	var req models.UpdateCourseRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	course, err := h.courseService.Update(r.Context(), id, requester, &req)
	if err != nil {
		h.RespondServiceError(w, r, err, "update course")
		return
	}

	h.RespondJSON(w, http.StatusOK, CourseResponse{Message: "Course updated successfully", Course: course})
}

// DeleteCourse handles DELETE /courses/{id}
// @Summary Delete course
// @Description Deletes a course with its lessons, enrollments, progress records and quizzes.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} MessageResponse "Not authorized to delete this course"
// @Failure 404 {object} MessageResponse "Course not found"
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", "course")
	if !ok {
		return
	}

	if err := h.courseService.Delete(r.Context(), id, requester); err != nil {
		h.RespondServiceError(w, r, err, "delete course")
		return
	}

	h.RespondJSON(w, http.StatusOK, MessageResponse{Message: "Course deleted successfully"})
}

// TogglePublish handles PATCH /courses/{id}/toggle-publish
// @Summary Publish or unpublish course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} CourseResponse
// @Failure 403 {object} MessageResponse "Not authorized to modify this course"
// @Failure 404 {object} MessageResponse "Course not found"
// @Router /courses/{id}/toggle-publish [patch]
func (h *CourseHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", "course")
	if !ok {
		return
	}

	course, err := h.courseService.TogglePublish(r.Context(), id, requester)
	if err != nil {
		h.RespondServiceError(w, r, err, "toggle course publish status")
		return
	}

	message := "Course unpublished successfully"
	if course.IsPublished {
		message = "Course published successfully"
	}
	h.RespondJSON(w, http.StatusOK, CourseResponse{Message: message, Course: course})
}
