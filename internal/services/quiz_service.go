package services

import (
	"context"
	"strings"
	"time"

	"github.com/coursehub/backend/internal/apperrors"
	"github.com/coursehub/backend/internal/models"
	"go.uber.org/zap"
)

const defaultQuestionPoints = 1

// QuizRepository is the interface that wraps methods for quizzes, quiz_questions and quiz_results tables data access
type QuizRepository interface {
	// Method Create inserts a quiz with its questions. IDs are filled on success.
	Create(ctx context.Context, quiz *models.Quiz) error
	// Method GetByID retrieves a quiz with its questions in order.
	//
	// If quiz with such ID does not exist, a NotFound error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Quiz, error)
	// Method ListPublishedByCourse retrieves summaries of the published quizzes of a course.
	ListPublishedByCourse(ctx context.Context, courseID int) ([]models.QuizSummary, error)
	// Method Update writes the quiz fields.
	//
	// "replaceQuestions" parameter is used to replace the questions with quiz.Questions. Results are kept.
	Update(ctx context.Context, quiz *models.Quiz, replaceQuestions bool) error
	// Method Delete removes a quiz with its questions and results.
	Delete(ctx context.Context, id int) error
	// Method CountResults counts the user's attempts of a quiz.
	CountResults(ctx context.Context, quizID, userID int) (int, error)
	// Method AddResult appends a result while the user has fewer than "maxAttempts" results.
	//
	// The attempt number of the stored result is returned. An exhausted quota yields a LimitExceeded error.
	AddResult(ctx context.Context, result *models.QuizResult, maxAttempts int) (int, error)
	// Method ListResults retrieves the user's results of a quiz, oldest first.
	ListResults(ctx context.Context, quizID, userID int) ([]models.QuizResult, error)
}

type quizService struct {
	quizRepo   QuizRepository
	courseRepo CourseRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewQuizService creates a new quiz service
func NewQuizService(quizRepo QuizRepository, courseRepo CourseRepository, logger *zap.Logger) *quizService {
	return &quizService{
		quizRepo:   quizRepo,
		courseRepo: courseRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// ListForCourse returns summaries of the published quizzes of a course
func (s *quizService) ListForCourse(ctx context.Context, courseID int) ([]models.QuizSummary, error) {
	return s.quizRepo.ListPublishedByCourse(ctx, courseID)
}

// FetchForTaking returns a published quiz without answer key and results
func (s *quizService) FetchForTaking(ctx context.Context, quizID int) (*models.PublicQuiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, apperrors.Forbidden("quiz is not published")
	}

	return quiz.ToPublic(), nil
}

// Submit scores the answers and appends a result.
//
// Unanswered or out-of-range answers count as incorrect. The attempt quota is checked
// here and again under a row lock when the result is stored.
func (s *quizService) Submit(ctx context.Context, quizID, userID int, req *models.SubmitQuizRequest) (*models.SubmitQuizResponse, error) {
	if req.TimeSpent < 0 {
		return nil, apperrors.Validation("timeSpent cannot be negative")
	}

	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, apperrors.Forbidden("quiz is not published")
	}

	attempts, err := s.quizRepo.CountResults(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}
	if attempts >= quiz.MaxAttempts {
		return nil, apperrors.LimitExceeded("maximum attempts reached")
	}

	score, percentage := models.Score(quiz.Questions, req.Answers)
	result := &models.QuizResult{
		QuizID:         quizID,
		UserID:         userID,
		Score:          score,
		TotalQuestions: len(quiz.Questions),
		Percentage:     percentage,
		TimeSpent:      req.TimeSpent,
		Answers:        req.Answers,
		CompletedAt:    s.now(),
	}
	if result.Answers == nil {
		result.Answers = []*int{}
	}

	attempt, err := s.quizRepo.AddResult(ctx, result, quiz.MaxAttempts)
	if err != nil {
		return nil, err
	}

	s.logger.Info("quiz submitted",
		zap.Int("quizId", quizID), zap.Int("userId", userID), zap.Int("attempt", attempt), zap.Int("percentage", percentage))

	return &models.SubmitQuizResponse{
		Score:          score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     percentage,
		Passed:         percentage >= quiz.PassingScore,
		TimeSpent:      req.TimeSpent,
		Attempt:        attempt,
	}, nil
}

// Results returns the requester's own results of a quiz
func (s *quizService) Results(ctx context.Context, quizID, userID int) (*models.QuizResultsResponse, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	results, err := s.quizRepo.ListResults(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	return &models.QuizResultsResponse{
		Quiz: models.QuizResultsHeader{
			Title:        quiz.Title,
			PassingScore: quiz.PassingScore,
			MaxAttempts:  quiz.MaxAttempts,
		},
		Results: results,
	}, nil
}

// Create stores a quiz for a course the requester manages
func (s *quizService) Create(ctx context.Context, requester models.Requester, req *models.CreateQuizRequest) (*models.Quiz, error) {
	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !requester.CanManage(course.InstructorID) {
		return nil, apperrors.Forbidden("not authorized to create quiz for this course")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.Validation("title is required")
	}

	questions, err := questionsFromInput(req.Questions)
	if err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		CourseID:     course.ID,
		Title:        title,
		Description:  req.Description,
		Questions:    questions,
		TimeLimit:    intOrDefault(req.TimeLimit, models.DefaultQuizTimeLimit),
		MaxAttempts:  intOrDefault(req.MaxAttempts, models.DefaultQuizMaxAttempts),
		PassingScore: intOrDefault(req.PassingScore, models.DefaultQuizPassingScore),
		IsPublished:  req.IsPublished,
	}
	if err := validateQuizSettings(quiz); err != nil {
		return nil, err
	}

	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, err
	}

	s.logger.Info("quiz created", zap.Int("quizId", quiz.ID), zap.Int("courseId", course.ID))
	return s.quizRepo.GetByID(ctx, quiz.ID)
}

// Update applies the supplied fields to a quiz of a course the requester manages.
//
// Supplied questions replace the existing ones. Results are never touched.
func (s *quizService) Update(ctx context.Context, quizID int, requester models.Requester, req *models.UpdateQuizRequest) (*models.Quiz, error) {
	quiz, err := s.authorizeQuiz(ctx, quizID, requester, "not authorized to update this quiz")
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.Validation("title cannot be empty")
		}
		quiz.Title = title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = *req.TimeLimit
	}
	if req.MaxAttempts != nil {
		quiz.MaxAttempts = *req.MaxAttempts
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.IsPublished != nil {
		quiz.IsPublished = *req.IsPublished
	}

	replaceQuestions := req.Questions != nil
	if replaceQuestions {
		if quiz.Questions, err = questionsFromInput(req.Questions); err != nil {
			return nil, err
		}
	}
	if err := validateQuizSettings(quiz); err != nil {
		return nil, err
	}

	if err := s.quizRepo.Update(ctx, quiz, replaceQuestions); err != nil {
		return nil, err
	}

	return s.quizRepo.GetByID(ctx, quizID)
}

// Delete removes a quiz of a course the requester manages
func (s *quizService) Delete(ctx context.Context, quizID int, requester models.Requester) error {
	if _, err := s.authorizeQuiz(ctx, quizID, requester, "not authorized to delete this quiz"); err != nil {
		return err
	}

	if err := s.quizRepo.Delete(ctx, quizID); err != nil {
		return err
	}

	s.logger.Info("quiz deleted", zap.Int("quizId", quizID), zap.Int("requesterId", requester.UserID))
	return nil
}

// authorizeQuiz loads a quiz and checks that the requester manages its course
func (s *quizService) authorizeQuiz(ctx context.Context, quizID int, requester models.Requester, deniedMessage string) (*models.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if !requester.CanManage(course.InstructorID) {
		return nil, apperrors.Forbidden("%s", deniedMessage)
	}

	return quiz, nil
}

// questionsFromInput converts and validates question inputs
func questionsFromInput(inputs []models.QuestionInput) ([]models.Question, error) {
	if len(inputs) == 0 {
		return nil, apperrors.Validation("quiz must have at least one question")
	}

	questions := make([]models.Question, 0, len(inputs))
	for i, in := range inputs {
		prompt := strings.TrimSpace(in.Prompt)
		if prompt == "" {
			return nil, apperrors.Validation("question %d: text is required", i+1)
		}
		if len(in.Options) < 2 {
			return nil, apperrors.Validation("question %d: at least two options are required", i+1)
		}
		if in.CorrectAnswer == nil || *in.CorrectAnswer < 0 || *in.CorrectAnswer >= len(in.Options) {
			return nil, apperrors.Validation("question %d: correct answer must reference an option", i+1)
		}
		if in.Points < 0 {
			return nil, apperrors.Validation("question %d: points cannot be negative", i+1)
		}

		points := in.Points
		if points == 0 {
			points = defaultQuestionPoints
		}
		questions = append(questions, models.Question{
			Prompt:        prompt,
			Options:       in.Options,
			CorrectAnswer: *in.CorrectAnswer,
			Points:        points,
			Explanation:   in.Explanation,
		})
	}
	return questions, nil
}

func validateQuizSettings(quiz *models.Quiz) error {
	if quiz.TimeLimit < 0 {
		return apperrors.Validation("timeLimit cannot be negative")
	}
	if quiz.MaxAttempts < 1 {
		return apperrors.Validation("maxAttempts must be at least 1")
	}
	if quiz.PassingScore < 0 || quiz.PassingScore > 100 {
		return apperrors.Validation("passingScore must be between 0 and 100")
	}
	return nil
}

func intOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
