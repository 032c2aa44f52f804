package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coursehub/backend/internal/apperrors"
	"github.com/coursehub/backend/internal/models"
	"go.uber.org/zap"
)

const courseColumns = `id, title, description, instructor_id, thumbnail, category, difficulty, duration,
		price, is_published, enrolled_count, rating, tags, created_at, updated_at`

type courseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *sql.DB, logger *zap.Logger) *courseRepository {
	return &courseRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*models.Course, error) {
	var course models.Course
	var tags []byte
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.InstructorID,
		&course.Thumbnail,
		&course.Category,
		&course.Difficulty,
		&course.Duration,
		&course.Price,
		&course.IsPublished,
		&course.EnrolledCount,
		&course.Rating,
		&tags,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	course.Tags = []string{}
	if err := nullableJSON(tags, &course.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	course.Lessons = []models.Lesson{}
	return &course, nil
}

// List retrieves a page of published courses matching the filter together with the total match count
func (r *courseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	where := []string{"is_published = TRUE"}
	args := []any{}

	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Difficulty != "" {
		where = append(where, "difficulty = ?")
		args = append(args, filter.Difficulty)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		where = append(where, "(title LIKE ? OR description LIKE ?)")
		args = append(args, pattern, pattern)
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM courses WHERE " + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("failed to count courses", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM courses
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, courseColumns, whereClause)
	pageArgs := append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	courses, err := r.queryCourses(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// GetByID retrieves a course with its lessons ordered by lesson order
func (r *courseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = ?`, courseColumns)

	course, err := scanCourse(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("course not found")
	}
	if err != nil {
		r.logger.Error("failed to get course", zap.Error(err), zap.Int("courseId", id))
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	courses := []models.Course{*course}
	if err := r.loadLessons(ctx, courses); err != nil {
		return nil, err
	}

	return &courses[0], nil
}

// GetByInstructor retrieves every course authored by the instructor, newest first
func (r *courseRepository) GetByInstructor(ctx context.Context, instructorID int) ([]models.Course, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM courses
		WHERE instructor_id = ?
		ORDER BY created_at DESC, id DESC
	`, courseColumns)

	return r.queryCourses(ctx, query, instructorID)
}

func (r *courseRepository) queryCourses(ctx context.Context, query string, args ...any) ([]models.Course, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query courses", zap.Error(err))
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			r.logger.Error("failed to scan course", zap.Error(err))
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, *course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if err := r.loadLessons(ctx, courses); err != nil {
		return nil, err
	}

	return courses, nil
}

// loadLessons fills the Lessons field of every course with a single query
func (r *courseRepository) loadLessons(ctx context.Context, courses []models.Course) error {
	if len(courses) == 0 {
		return nil
	}

	index := make(map[int]int, len(courses))
	placeholders := make([]string, 0, len(courses))
	args := make([]any, 0, len(courses))
	for i, c := range courses {
		index[c.ID] = i
		placeholders = append(placeholders, "?")
		args = append(args, c.ID)
	}

	query := fmt.Sprintf(`
		SELECT id, course_id, title, content, duration_minutes, lesson_order, is_published
		FROM lessons
		WHERE course_id IN (%s)
		ORDER BY course_id, lesson_order, id
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query lessons", zap.Error(err))
		return fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.DurationMinutes, &l.Order, &l.IsPublished); err != nil {
			return fmt.Errorf("failed to scan lesson: %w", err)
		}
		i := index[l.CourseID]
		courses[i].Lessons = append(courses[i].Lessons, l)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}
	return nil
}

// Create inserts a course and its lessons in one transaction
func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	tags, err := json.Marshal(course.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		INSERT INTO courses (title, description, instructor_id, thumbnail, category, difficulty, duration, price, is_published, rating, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			course.Title,
			course.Description,
			course.InstructorID,
			course.Thumbnail,
			course.Category,
			course.Difficulty,
			course.Duration,
			course.Price,
			course.IsPublished,
			course.Rating,
			tags,
		)
		if err != nil {
			r.logger.Error("failed to create course", zap.Error(err))
			return fmt.Errorf("failed to create course: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		course.ID = int(id)

		for i := range course.Lessons {
			course.Lessons[i].CourseID = course.ID
			if err := insertLesson(ctx, tx, &course.Lessons[i]); err != nil {
				r.logger.Error("failed to create lesson", zap.Error(err), zap.Int("courseId", course.ID))
				return err
			}
		}
		return nil
	})
}

// Update writes the course fields. When replaceLessons is set, lessons with a known ID are
// updated in place, the rest are inserted, and lessons missing from the list are deleted.
func (r *courseRepository) Update(ctx context.Context, course *models.Course, replaceLessons bool) error {
	tags, err := json.Marshal(course.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		UPDATE courses
		SET title = ?, description = ?, thumbnail = ?, category = ?, difficulty = ?,
			duration = ?, price = ?, rating = ?, tags = ?
		WHERE id = ?
	`

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			course.Title,
			course.Description,
			course.Thumbnail,
			course.Category,
			course.Difficulty,
			course.Duration,
			course.Price,
			course.Rating,
			tags,
			course.ID,
		)
		if err != nil {
			r.logger.Error("failed to update course", zap.Error(err), zap.Int("courseId", course.ID))
			return fmt.Errorf("failed to update course: %w", err)
		}
		if err := requireAffected(result, "course not found"); err != nil {
			return err
		}

		if !replaceLessons {
			return nil
		}
		return r.replaceLessons(ctx, tx, course)
	})
}

func (r *courseRepository) replaceLessons(ctx context.Context, tx *sql.Tx, course *models.Course) error {
	updateQuery := `
		UPDATE lessons
		SET title = ?, content = ?, duration_minutes = ?, lesson_order = ?, is_published = ?
		WHERE id = ? AND course_id = ?
	`

	keep := make([]any, 0, len(course.Lessons))
	for i := range course.Lessons {
		lesson := &course.Lessons[i]
		lesson.CourseID = course.ID

		if lesson.ID > 0 {
			result, err := tx.ExecContext(ctx, updateQuery,
				lesson.Title, lesson.Content, lesson.DurationMinutes, lesson.Order, lesson.IsPublished,
				lesson.ID, course.ID,
			)
			if err != nil {
				r.logger.Error("failed to update lesson", zap.Error(err), zap.Int("lessonId", lesson.ID))
				return fmt.Errorf("failed to update lesson: %w", err)
			}
			if affected, err := result.RowsAffected(); err == nil && affected > 0 {
				keep = append(keep, lesson.ID)
				continue
			}
			// Unknown lesson IDs are treated as new lessons
			lesson.ID = 0
		}

		if err := insertLesson(ctx, tx, lesson); err != nil {
			r.logger.Error("failed to create lesson", zap.Error(err), zap.Int("courseId", course.ID))
			return err
		}
		keep = append(keep, lesson.ID)
	}

	deleteQuery := `DELETE FROM lessons WHERE course_id = ?`
	args := []any{course.ID}
	if len(keep) > 0 {
		deleteQuery += fmt.Sprintf(" AND id NOT IN (%s)", strings.TrimSuffix(strings.Repeat("?, ", len(keep)), ", "))
		args = append(args, keep...)
	}

	if _, err := tx.ExecContext(ctx, deleteQuery, args...); err != nil {
		r.logger.Error("failed to delete removed lessons", zap.Error(err), zap.Int("courseId", course.ID))
		return fmt.Errorf("failed to delete removed lessons: %w", err)
	}
	return nil
}

func insertLesson(ctx context.Context, tx *sql.Tx, lesson *models.Lesson) error {
	query := `
		INSERT INTO lessons (course_id, title, content, duration_minutes, lesson_order, is_published)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		lesson.CourseID, lesson.Title, lesson.Content, lesson.DurationMinutes, lesson.Order, lesson.IsPublished,
	)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	lesson.ID = int(id)
	return nil
}

// SetPublished updates the publish flag of a course
func (r *courseRepository) SetPublished(ctx context.Context, id int, published bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE courses SET is_published = ? WHERE id = ?`, published, id)
	if err != nil {
		r.logger.Error("failed to update publish state", zap.Error(err), zap.Int("courseId", id))
		return fmt.Errorf("failed to update publish state: %w", err)
	}

	return requireAffected(result, "course not found")
}

// Delete removes a course. Lessons, enrollments, progress and quizzes cascade.
func (r *courseRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete course", zap.Error(err), zap.Int("courseId", id))
		return fmt.Errorf("failed to delete course: %w", err)
	}

	return requireAffected(result, "course not found")
}

// escapeLike escapes LIKE wildcards in user input
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
