package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coursehub/backend/internal/apperrors"
	"github.com/coursehub/backend/internal/models"
	"go.uber.org/zap"
)

type enrollmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *sql.DB, logger *zap.Logger) *enrollmentRepository {
	return &enrollmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create records the enrollment, increments the course counter and adds the course
// to the user's enrolled list in one transaction.
// A unique key violation on (user_id, course_id) is reported as Conflict.
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO enrollments (user_id, course_id, progress, enrolled_at, last_accessed, is_active)
			VALUES (?, ?, ?, ?, ?, ?)
		`, enrollment.UserID, enrollment.CourseID, enrollment.Progress, enrollment.EnrolledAt, enrollment.LastAccessed, enrollment.IsActive)
		if err != nil {
			if isDuplicateKey(err) {
				return apperrors.Conflict("already enrolled in this course")
			}
			r.logger.Error("failed to create enrollment", zap.Error(err))
			return fmt.Errorf("failed to create enrollment: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		enrollment.ID = int(id)

		if _, err := tx.ExecContext(ctx, `UPDATE courses SET enrolled_count = enrolled_count + 1 WHERE id = ?`, enrollment.CourseID); err != nil {
			r.logger.Error("failed to increment enrolled count", zap.Error(err), zap.Int("courseId", enrollment.CourseID))
			return fmt.Errorf("failed to increment enrolled count: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT IGNORE INTO user_enrolled_courses (user_id, course_id) VALUES (?, ?)`, enrollment.UserID, enrollment.CourseID); err != nil {
			r.logger.Error("failed to add enrolled course", zap.Error(err), zap.Int("userId", enrollment.UserID))
			return fmt.Errorf("failed to add enrolled course: %w", err)
		}

		return nil
	})
}

// Delete removes the enrollment, decrements the course counter and removes the course
// from the user's enrolled list in one transaction
func (r *enrollmentRepository) Delete(ctx context.Context, userID, courseID int) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE user_id = ? AND course_id = ?`, userID, courseID)
		if err != nil {
			r.logger.Error("failed to delete enrollment", zap.Error(err))
			return fmt.Errorf("failed to delete enrollment: %w", err)
		}
		if err := requireAffected(result, "enrollment not found"); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE courses SET enrolled_count = GREATEST(enrolled_count - 1, 0) WHERE id = ?`, courseID); err != nil {
			r.logger.Error("failed to decrement enrolled count", zap.Error(err), zap.Int("courseId", courseID))
			return fmt.Errorf("failed to decrement enrolled count: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM user_enrolled_courses WHERE user_id = ? AND course_id = ?`, userID, courseID); err != nil {
			r.logger.Error("failed to remove enrolled course", zap.Error(err), zap.Int("userId", userID))
			return fmt.Errorf("failed to remove enrolled course: %w", err)
		}

		return nil
	})
}

// GetByUserAndCourse retrieves the enrollment of a user in a course
func (r *enrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID int) (*models.Enrollment, error) {
	query := `
		SELECT id, user_id, course_id, progress, enrolled_at, last_accessed, completed_at, is_active
		FROM enrollments
		WHERE user_id = ? AND course_id = ?
	`

	var e models.Enrollment
	var completedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(
		&e.ID, &e.UserID, &e.CourseID, &e.Progress, &e.EnrolledAt, &e.LastAccessed, &completedAt, &e.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("enrollment not found")
	}
	if err != nil {
		r.logger.Error("failed to get enrollment", zap.Error(err), zap.Int("userId", userID), zap.Int("courseId", courseID))
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	if completedAt.Valid {
		e.CompletedAt = &completedAt.Time
	}
	return &e, nil
}

// ListByUser retrieves every enrollment of the user with a course summary, newest first
func (r *enrollmentRepository) ListByUser(ctx context.Context, userID int) ([]models.Enrollment, error) {
	query := `
		SELECT e.id, e.user_id, e.course_id, e.progress, e.enrolled_at, e.last_accessed, e.completed_at, e.is_active,
			c.title, c.thumbnail, c.instructor_id, c.difficulty, c.duration,
			(SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id) AS total_lessons
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = ?
		ORDER BY e.enrolled_at DESC, e.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to query enrollments", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := []models.Enrollment{}
	for rows.Next() {
		var e models.Enrollment
		var completedAt sql.NullTime
		course := &models.CourseSummary{}
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.CourseID, &e.Progress, &e.EnrolledAt, &e.LastAccessed, &completedAt, &e.IsActive,
			&course.Title, &course.Thumbnail, &course.InstructorID, &course.Difficulty, &course.Duration, &course.TotalLessons,
		); err != nil {
			r.logger.Error("failed to scan enrollment", zap.Error(err))
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		if completedAt.Valid {
			e.CompletedAt = &completedAt.Time
		}
		course.ID = e.CourseID
		e.Course = course
		enrollments = append(enrollments, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return enrollments, nil
}

// UpdateProgress writes progress and last access time. completed_at is only written when
// it is still NULL, so a completion timestamp is never overwritten.
func (r *enrollmentRepository) UpdateProgress(ctx context.Context, enrollment *models.Enrollment) error {
	query := `
		UPDATE enrollments
		SET progress = ?, last_accessed = ?, completed_at = COALESCE(completed_at, ?)
		WHERE id = ?
	`

	var completedAt any
	if enrollment.CompletedAt != nil {
		completedAt = *enrollment.CompletedAt
	}

	result, err := r.db.ExecContext(ctx, query, enrollment.Progress, enrollment.LastAccessed, completedAt, enrollment.ID)
	if err != nil {
		r.logger.Error("failed to update enrollment progress", zap.Error(err), zap.Int("enrollmentId", enrollment.ID))
		return fmt.Errorf("failed to update enrollment progress: %w", err)
	}

	return requireAffected(result, "enrollment not found")
}

// Aggregate computes enrollment totals of a course
func (r *enrollmentRepository) Aggregate(ctx context.Context, courseID int) (models.EnrollmentAggregate, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN progress >= 100 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(progress), 0)
		FROM enrollments
		WHERE course_id = ?
	`

	var agg models.EnrollmentAggregate
	if err := r.db.QueryRowContext(ctx, query, courseID).Scan(&agg.TotalEnrollments, &agg.CompletedEnrollments, &agg.ProgressSum); err != nil {
		r.logger.Error("failed to aggregate enrollments", zap.Error(err), zap.Int("courseId", courseID))
		return models.EnrollmentAggregate{}, fmt.Errorf("failed to aggregate enrollments: %w", err)
	}

	return agg, nil
}

// ReconcileCounters recomputes course enrollment counters and user enrolled lists from the
// enrollments table. It returns the number of courses whose counter changed.
func (r *enrollmentRepository) ReconcileCounters(ctx context.Context) (int64, error) {
	var changed int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE courses c
			LEFT JOIN (SELECT course_id, COUNT(*) AS cnt FROM enrollments GROUP BY course_id) e ON e.course_id = c.id
			SET c.enrolled_count = COALESCE(e.cnt, 0)
			WHERE c.enrolled_count <> COALESCE(e.cnt, 0)
		`)
		if err != nil {
			return fmt.Errorf("failed to reconcile enrolled counts: %w", err)
		}
		if changed, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT IGNORE INTO user_enrolled_courses (user_id, course_id)
			SELECT user_id, course_id FROM enrollments
		`); err != nil {
			return fmt.Errorf("failed to restore enrolled courses: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE uec FROM user_enrolled_courses uec
			LEFT JOIN enrollments e ON e.user_id = uec.user_id AND e.course_id = uec.course_id
			WHERE e.id IS NULL
		`); err != nil {
			return fmt.Errorf("failed to remove stale enrolled courses: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to reconcile counters", zap.Error(err))
		return 0, err
	}

	return changed, nil
}
