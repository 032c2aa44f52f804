package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/coursehub/backend/internal/apperrors"
	"github.com/coursehub/backend/internal/models"
	"go.uber.org/zap"
)

type quizRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *sql.DB, logger *zap.Logger) *quizRepository {
	return &quizRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a quiz and its questions in one transaction
func (r *quizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	query := `
		INSERT INTO quizzes (course_id, title, description, time_limit, max_attempts, passing_score, is_published)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			quiz.CourseID, quiz.Title, quiz.Description, quiz.TimeLimit, quiz.MaxAttempts, quiz.PassingScore, quiz.IsPublished,
		)
		if err != nil {
			r.logger.Error("failed to create quiz", zap.Error(err), zap.Int("courseId", quiz.CourseID))
			return fmt.Errorf("failed to create quiz: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		quiz.ID = int(id)

		return insertQuestions(ctx, tx, quiz)
	})
}

func insertQuestions(ctx context.Context, tx *sql.Tx, quiz *models.Quiz) error {
	query := `
		INSERT INTO quiz_questions (quiz_id, position, prompt, options, correct_answer, points, explanation)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("failed to encode options: %w", err)
		}

		result, err := tx.ExecContext(ctx, query, quiz.ID, i, q.Prompt, options, q.CorrectAnswer, q.Points, q.Explanation)
		if err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		q.ID = int(id)
	}
	return nil
}

// GetByID retrieves a quiz with its questions in order
func (r *quizRepository) GetByID(ctx context.Context, id int) (*models.Quiz, error) {
	query := `
		SELECT id, course_id, title, description, time_limit, max_attempts, passing_score, is_published, created_at, updated_at
		FROM quizzes
		WHERE id = ?
	`

	var quiz models.Quiz
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&quiz.ID, &quiz.CourseID, &quiz.Title, &quiz.Description, &quiz.TimeLimit,
		&quiz.MaxAttempts, &quiz.PassingScore, &quiz.IsPublished, &quiz.CreatedAt, &quiz.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("quiz not found")
	}
	if err != nil {
		r.logger.Error("failed to get quiz", zap.Error(err), zap.Int("quizId", id))
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, prompt, options, correct_answer, points, COALESCE(explanation, '')
		FROM quiz_questions
		WHERE quiz_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		r.logger.Error("failed to query questions", zap.Error(err), zap.Int("quizId", id))
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	quiz.Questions = []models.Question{}
	for rows.Next() {
		var q models.Question
		var options []byte
		if err := rows.Scan(&q.ID, &q.Prompt, &options, &q.CorrectAnswer, &q.Points, &q.Explanation); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		if err := nullableJSON(options, &q.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options: %w", err)
		}
		quiz.Questions = append(quiz.Questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &quiz, nil
}

// ListPublishedByCourse retrieves summaries of the published quizzes of a course
func (r *quizRepository) ListPublishedByCourse(ctx context.Context, courseID int) ([]models.QuizSummary, error) {
	query := `
		SELECT q.id, q.course_id, q.title, q.description, q.time_limit, q.max_attempts, q.passing_score,
			(SELECT COUNT(*) FROM quiz_questions qq WHERE qq.quiz_id = q.id) AS question_count
		FROM quizzes q
		WHERE q.course_id = ? AND q.is_published = TRUE
		ORDER BY q.created_at, q.id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		r.logger.Error("failed to query quizzes", zap.Error(err), zap.Int("courseId", courseID))
		return nil, fmt.Errorf("failed to query quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := []models.QuizSummary{}
	for rows.Next() {
		var s models.QuizSummary
		if err := rows.Scan(&s.ID, &s.CourseID, &s.Title, &s.Description, &s.TimeLimit, &s.MaxAttempts, &s.PassingScore, &s.QuestionCount); err != nil {
			r.logger.Error("failed to scan quiz", zap.Error(err))
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		quizzes = append(quizzes, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return quizzes, nil
}

// Update writes the quiz fields and, when replaceQuestions is set, replaces its questions.
// Results are never touched.
func (r *quizRepository) Update(ctx context.Context, quiz *models.Quiz, replaceQuestions bool) error {
	query := `
		UPDATE quizzes
		SET title = ?, description = ?, time_limit = ?, max_attempts = ?, passing_score = ?, is_published = ?
		WHERE id = ?
	`

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			quiz.Title, quiz.Description, quiz.TimeLimit, quiz.MaxAttempts, quiz.PassingScore, quiz.IsPublished, quiz.ID,
		)
		if err != nil {
			r.logger.Error("failed to update quiz", zap.Error(err), zap.Int("quizId", quiz.ID))
			return fmt.Errorf("failed to update quiz: %w", err)
		}
		if err := requireAffected(result, "quiz not found"); err != nil {
			return err
		}

		if !replaceQuestions {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_questions WHERE quiz_id = ?`, quiz.ID); err != nil {
			r.logger.Error("failed to delete questions", zap.Error(err), zap.Int("quizId", quiz.ID))
			return fmt.Errorf("failed to delete questions: %w", err)
		}
		return insertQuestions(ctx, tx, quiz)
	})
}

// Delete removes a quiz. Questions and results cascade.
func (r *quizRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete quiz", zap.Error(err), zap.Int("quizId", id))
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	return requireAffected(result, "quiz not found")
}

// CountResults counts the user's attempts of a quiz
func (r *quizRepository) CountResults(ctx context.Context, quizID, userID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quiz_results WHERE quiz_id = ? AND user_id = ?`, quizID, userID).Scan(&count)
	if err != nil {
		r.logger.Error("failed to count results", zap.Error(err), zap.Int("quizId", quizID), zap.Int("userId", userID))
		return 0, fmt.Errorf("failed to count results: %w", err)
	}

	return count, nil
}

// AddResult appends a result unless the user already has maxAttempts results.
// The quiz row is locked while counting so concurrent submissions cannot exceed the limit.
// It returns the attempt number of the stored result.
func (r *quizRepository) AddResult(ctx context.Context, result *models.QuizResult, maxAttempts int) (int, error) {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return 0, fmt.Errorf("failed to encode answers: %w", err)
	}

	var attempt int
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		var quizID int
		err := tx.QueryRowContext(ctx, `SELECT id FROM quizzes WHERE id = ? FOR UPDATE`, result.QuizID).Scan(&quizID)
		if err == sql.ErrNoRows {
			return apperrors.NotFound("quiz not found")
		}
		if err != nil {
			return fmt.Errorf("failed to lock quiz: %w", err)
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM quiz_results WHERE quiz_id = ? AND user_id = ?`, result.QuizID, result.UserID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count results: %w", err)
		}
		if count >= maxAttempts {
			return apperrors.LimitExceeded("maximum attempts reached")
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO quiz_results (quiz_id, user_id, score, total_questions, percentage, time_spent, answers, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, result.QuizID, result.UserID, result.Score, result.TotalQuestions, result.Percentage, result.TimeSpent, answers, result.CompletedAt)
		if err != nil {
			return fmt.Errorf("failed to create result: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		result.ID = int(id)
		attempt = count + 1
		return nil
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			r.logger.Error("failed to add quiz result", zap.Error(err), zap.Int("quizId", result.QuizID), zap.Int("userId", result.UserID))
		}
		return 0, err
	}

	return attempt, nil
}

// ListResults retrieves the user's results of a quiz, oldest first
func (r *quizRepository) ListResults(ctx context.Context, quizID, userID int) ([]models.QuizResult, error) {
	query := `
		SELECT id, quiz_id, user_id, score, total_questions, percentage, time_spent, answers, completed_at
		FROM quiz_results
		WHERE quiz_id = ? AND user_id = ?
		ORDER BY completed_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, quizID, userID)
	if err != nil {
		r.logger.Error("failed to query results", zap.Error(err), zap.Int("quizId", quizID), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := []models.QuizResult{}
	for rows.Next() {
		var res models.QuizResult
		var answers []byte
		if err := rows.Scan(&res.ID, &res.QuizID, &res.UserID, &res.Score, &res.TotalQuestions, &res.Percentage, &res.TimeSpent, &answers, &res.CompletedAt); err != nil {
			r.logger.Error("failed to scan result", zap.Error(err))
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if err := nullableJSON(answers, &res.Answers); err != nil {
			return nil, fmt.Errorf("failed to decode answers: %w", err)
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}
