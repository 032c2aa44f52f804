package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coursehub/backend/internal/models"
	"go.uber.org/zap"
)

type progressRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProgressRepository creates a new lesson progress repository
func NewProgressRepository(db *sql.DB, logger *zap.Logger) *progressRepository {
	return &progressRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert creates or replaces the progress record of a (user, course, lesson) triple
func (r *progressRepository) Upsert(ctx context.Context, progress *models.LessonProgress) error {
	query := `
		INSERT INTO lesson_progress (user_id, course_id, lesson_id, completed, time_spent, notes, last_accessed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			id = LAST_INSERT_ID(id),
			completed = VALUES(completed),
			time_spent = VALUES(time_spent),
			notes = VALUES(notes),
			last_accessed = VALUES(last_accessed)
	`

	result, err := r.db.ExecContext(ctx, query,
		progress.UserID,
		progress.CourseID,
		progress.LessonID,
		progress.Completed,
		progress.TimeSpent,
		progress.Notes,
		progress.LastAccessed,
	)
	if err != nil {
		r.logger.Error("failed to upsert lesson progress", zap.Error(err),
			zap.Int("userId", progress.UserID), zap.Int("courseId", progress.CourseID), zap.Int("lessonId", progress.LessonID))
		return fmt.Errorf("failed to upsert lesson progress: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	progress.ID = int(id)
	return nil
}

// CountCompleted counts the user's completed lessons that still exist in the course
func (r *progressRepository) CountCompleted(ctx context.Context, userID, courseID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM lesson_progress lp
		JOIN lessons l ON l.id = lp.lesson_id AND l.course_id = lp.course_id
		WHERE lp.user_id = ? AND lp.course_id = ? AND lp.completed = TRUE
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&count); err != nil {
		r.logger.Error("failed to count completed lessons", zap.Error(err), zap.Int("userId", userID), zap.Int("courseId", courseID))
		return 0, fmt.Errorf("failed to count completed lessons: %w", err)
	}

	return count, nil
}

// ListByUserAndCourse retrieves the user's lesson records of a course, most recently accessed first
func (r *progressRepository) ListByUserAndCourse(ctx context.Context, userID, courseID int) ([]models.LessonProgress, error) {
	query := `
		SELECT id, user_id, course_id, lesson_id, completed, time_spent, COALESCE(notes, ''), last_accessed
		FROM lesson_progress
		WHERE user_id = ? AND course_id = ?
		ORDER BY last_accessed DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, courseID)
	if err != nil {
		r.logger.Error("failed to query lesson progress", zap.Error(err), zap.Int("userId", userID), zap.Int("courseId", courseID))
		return nil, fmt.Errorf("failed to query lesson progress: %w", err)
	}
	defer rows.Close()

	records := []models.LessonProgress{}
	for rows.Next() {
		var p models.LessonProgress
		if err := rows.Scan(&p.ID, &p.UserID, &p.CourseID, &p.LessonID, &p.Completed, &p.TimeSpent, &p.Notes, &p.LastAccessed); err != nil {
			r.logger.Error("failed to scan lesson progress", zap.Error(err))
			return nil, fmt.Errorf("failed to scan lesson progress: %w", err)
		}
		records = append(records, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// TotalTimeSpent sums the time spent across all of the user's lesson records
func (r *progressRepository) TotalTimeSpent(ctx context.Context, userID int) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(time_spent), 0) FROM lesson_progress WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		r.logger.Error("failed to sum time spent", zap.Error(err), zap.Int("userId", userID))
		return 0, fmt.Errorf("failed to sum time spent: %w", err)
	}

	return total, nil
}

// LessonCompletion counts, per lesson of the course, completed records out of all records
func (r *progressRepository) LessonCompletion(ctx context.Context, courseID int) ([]models.LessonCompletion, error) {
	query := `
		SELECT l.id, l.title,
			COALESCE(SUM(CASE WHEN lp.completed THEN 1 ELSE 0 END), 0) AS completed,
			COUNT(lp.id) AS total
		FROM lessons l
		LEFT JOIN lesson_progress lp ON lp.lesson_id = l.id AND lp.course_id = l.course_id
		WHERE l.course_id = ?
		GROUP BY l.id, l.title, l.lesson_order
		ORDER BY l.lesson_order, l.id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		r.logger.Error("failed to query lesson completion", zap.Error(err), zap.Int("courseId", courseID))
		return nil, fmt.Errorf("failed to query lesson completion: %w", err)
	}
	defer rows.Close()

	stats := []models.LessonCompletion{}
	for rows.Next() {
		var s models.LessonCompletion
		if err := rows.Scan(&s.LessonID, &s.Title, &s.Completed, &s.Total); err != nil {
			r.logger.Error("failed to scan lesson completion", zap.Error(err))
			return nil, fmt.Errorf("failed to scan lesson completion: %w", err)
		}
		s.CompletionRatio = models.CompletionRatio(s.Completed, s.Total)
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return stats, nil
}
