package handlers

import (
	"context"
	"net/http"

	"github.com/coursehub/backend/internal/middleware"
	"github.com/coursehub/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// QuizService is the interface that wraps methods for quiz engine business logic.
type QuizService interface {
	// Method ListForCourse returns summaries of the published quizzes of a course.
	ListForCourse(ctx context.Context, courseID int) ([]models.QuizSummary, error)
	// Method FetchForTaking returns a published quiz without its answer key.
	FetchForTaking(ctx context.Context, quizID int) (*models.PublicQuiz, error)
	// Method Submit scores the answers and stores a result.
	//
	// If the user has used every attempt, a LimitExceeded error will be returned.
	Submit(ctx context.Context, quizID, userID int, req *models.SubmitQuizRequest) (*models.SubmitQuizResponse, error)
	// Method Results returns the requester's own results of a quiz.
	Results(ctx context.Context, quizID, userID int) (*models.QuizResultsResponse, error)
	// Method Create stores a quiz for a course the requester manages.
	Create(ctx context.Context, requester models.Requester, req *models.CreateQuizRequest) (*models.Quiz, error)
	// Method Update applies the supplied fields to a quiz of a course the requester manages.
	Update(ctx context.Context, quizID int, requester models.Requester, req *models.UpdateQuizRequest) (*models.Quiz, error)
	// Method Delete removes a quiz of a course the requester manages.
	Delete(ctx context.Context, quizID int, requester models.Requester) error
}

// QuizResponse is returned after a quiz mutation
type QuizResponse struct {
	Message string       `json:"message"`
	Quiz    *models.Quiz `json:"quiz"`
}

// SubmitResponse is returned after a quiz submission
type SubmitResponse struct {
	Message string                     `json:"message"`
	Result  *models.SubmitQuizResponse `json:"result"`
}

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	BaseHandler
	quizService QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizService QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: BaseHandler{Logger: logger},
		quizService: quizService,
	}
}

// RegisterRoutes registers all quiz handler routes
func (h *QuizHandler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/quizzes", func(r chi.Router) {
		r.Get("/course/{courseId}", h.ListForCourse)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/{id}", h.GetQuiz)
			r.Post("/{id}/submit", h.SubmitQuiz)
			r.Get("/{id}/results", h.GetResults)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.Role.CanAuthor))
				r.Post("/", h.CreateQuiz)
				r.Put("/{id}", h.UpdateQuiz)
				r.Delete("/{id}", h.DeleteQuiz)
			})
		})
	})
}

// ListForCourse handles GET /quizzes/course/{courseId}
// @Summary List published quizzes of a course
// @Tags quizzes
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {array} models.QuizSummary
// @Router /quizzes/course/{courseId} [get]
func (h *QuizHandler) ListForCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.PathID(w, r, "courseId", "course")
	if !ok {
		return
	}

	quizzes, err := h.quizService.ListForCourse(r.Context(), courseID)
	if err != nil {
		h.RespondServiceError(w, r, err, "list quizzes")
		return
	}

	h.RespondJSON(w, http.StatusOK, quizzes)
}

// GetQuiz handles GET /quizzes/{id}
// @Summary Get quiz for taking
// @Description Returns a published quiz without correct answers, explanations or results.
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Success 200 {object} models.PublicQuiz
// @Failure 403 {object} MessageResponse "Quiz is not published"
// @Failure 404 {object} MessageResponse "Quiz not found"
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathID(w, r, "id", "quiz")
	if !ok {
		return
	}

	quiz, err := h.quizService.FetchForTaking(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, r, err, "get quiz")
		return
	}

	h.RespondJSON(w, http.StatusOK, quiz)
}

// SubmitQuiz handles POST /quizzes/{id}/submit
// @Summary Submit quiz answers
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Param request body models.SubmitQuizRequest true "Answers by question position"
// @Success 200 {object} SubmitResponse
// @Failure 403 {object} MessageResponse "Quiz is not published"
// @Failure 404 {object} MessageResponse "Quiz not found"
// @Failure 409 {object} MessageResponse "Maximum attempts reached"
// @Router /quizzes/{id}/submit [post]
func (h *QuizHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", "quiz")
	if !ok {
		return
	}

	var req models.SubmitQuizRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.quizService.Submit(r.Context(), id, requester.UserID, &req)
	if err != nil {
		h.RespondServiceError(w, r, err, "submit quiz")
		return
	}

	h.RespondJSON(w, http.StatusOK, SubmitResponse{Message: "Quiz submitted successfully", Result: result})
}

// GetResults handles GET /quizzes/{id}/results
// @Summary Get own quiz results
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Success 200 {object} models.QuizResultsResponse
// @Failure 404 {object} MessageResponse "Quiz not found"
// @Router /quizzes/{id}/results [get]
func (h *QuizHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", "quiz")
	if !ok {
		return
	}

	resp, err := h.quizService.Results(r.Context(), id, requester.UserID)
	if err != nil {
		h.RespondServiceError(w, r, err, "get quiz results")
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// CreateQuiz handles POST /quizzes
// @Summary Create quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateQuizRequest true "Quiz data"
// @Success 201 {object} QuizResponse
// @Failure 400 {object} ValidationErrorResponse "Invalid request body"
// @Failure 403 {object} MessageResponse "Not authorized to create quiz for this course"
// @Failure 404 {object} MessageResponse "Course not found"
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}

	var req models.CreateQuizRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	quiz, err := h.quizService.Create(r.Context(), requester, &req)
	if err != nil {
		h.RespondServiceError(w, r, err, "create quiz")
		return
	}

	h.RespondJSON(w, http.StatusCreated, QuizResponse{Message: "Quiz created successfully", Quiz: quiz})
}

// UpdateQuiz handles PUT /quizzes/{id}
// @Summary Update quiz
// @Description Applies the supplied fields. A supplied question list replaces the existing one. Results are kept.
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Param request body models.UpdateQuizRequest true "Fields to change"
// @Success 200 {object} QuizResponse
// @Failure 403 {object} MessageResponse "Not authorized to update this quiz"
// @Failure 404 {object} MessageResponse "Quiz not found"
// @Router /quizzes/{id} [put]
func (h *QuizHandler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", "quiz")
	if !ok {
		return
	}

	var req models.UpdateQuizRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	quiz, err := h.quizService.Update(r.Context(), id, requester, &req)
	if err != nil {
		h.RespondServiceError(w, r, err, "update quiz")
		return
	}

	h.RespondJSON(w, http.StatusOK, QuizResponse{Message: "Quiz updated successfully", Quiz: quiz})
}

// DeleteQuiz handles DELETE /quizzes/{id}
// @Summary Delete quiz
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quiz ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} MessageResponse "Not authorized to delete this quiz"
// @Failure 404 {object} MessageResponse "Quiz not found"
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.Requester(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id", "quiz")
	if !ok {
		return
	}

	if err := h.quizService.Delete(r.Context(), id, requester); err != nil {
		h.RespondServiceError(w, r, err, "delete quiz")
		return
	}

	h.RespondJSON(w, http.StatusOK, MessageResponse{Message: "Quiz deleted successfully"})
}
