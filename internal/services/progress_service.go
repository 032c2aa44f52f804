package services

import (
	"context"
	"time"

	"github.com/coursehub/backend/internal/apperrors"
	"github.com/coursehub/backend/internal/models"
	"go.uber.org/zap"
)

// LessonProgressRepository is the interface that wraps methods for lesson_progress table data access
type LessonProgressRepository interface {
	// Method Upsert creates or replaces the record of the (user, course, lesson) triple. Its ID is filled on success.
	Upsert(ctx context.Context, progress *models.LessonProgress) error
	// Method CountCompleted counts the user's completed lessons that still exist in the course.
	CountCompleted(ctx context.Context, userID, courseID int) (int, error)
	// Method ListByUserAndCourse retrieves the user's records of a course, most recently accessed first.
	ListByUserAndCourse(ctx context.Context, userID, courseID int) ([]models.LessonProgress, error)
	// Method TotalTimeSpent sums time spent across all of the user's records.
	TotalTimeSpent(ctx context.Context, userID int) (int, error)
	// Method LessonCompletion counts completed records out of all records per lesson of the course.
	LessonCompletion(ctx context.Context, courseID int) ([]models.LessonCompletion, error)
}

type progressService struct {
	progressRepo   LessonProgressRepository
	enrollmentRepo EnrollmentRepository
	courseRepo     CourseRepository
	notifier       CompletionNotifier
	logger         *zap.Logger
	now            func() time.Time
}

// NewProgressService creates a new progress service
func NewProgressService(
	progressRepo LessonProgressRepository,
	enrollmentRepo EnrollmentRepository,
	courseRepo CourseRepository,
	notifier CompletionNotifier,
	logger *zap.Logger,
) *progressService {
	return &progressService{
		progressRepo:   progressRepo,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

// RecordLessonProgress upserts a lesson record and rolls the completed-lesson share up into the enrollment.
//
// Only enrolled users may record progress, and the lesson must belong to the course.
func (s *progressService) RecordLessonProgress(ctx context.Context, userID int, req *models.LessonProgressRequest) (*models.LessonProgressResponse, error) {
	if req.TimeSpent < 0 {
		return nil, apperrors.Validation("timeSpent cannot be negative")
	}

	enrollment, err := s.getEnrollment(ctx, userID, req.CourseID)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !course.HasLesson(req.LessonID) {
		return nil, apperrors.NotFound("lesson not found in this course")
	}

	now := s.now()
	record := &models.LessonProgress{
		UserID:       userID,
		CourseID:     req.CourseID,
		LessonID:     req.LessonID,
		Completed:    req.Completed,
		TimeSpent:    req.TimeSpent,
		Notes:        req.Notes,
		LastAccessed: now,
	}
	if err := s.progressRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}

	completedLessons, err := s.progressRepo.CountCompleted(ctx, userID, req.CourseID)
	if err != nil {
		return nil, err
	}

	completed := enrollment.ApplyProgress(models.CompletionPercent(completedLessons, len(course.Lessons)), now)
	if err := s.enrollmentRepo.UpdateProgress(ctx, enrollment); err != nil {
		return nil, err
	}

	if completed {
		notifyCompletion(ctx, s.notifier, s.logger, userID, req.CourseID)
	}

	return &models.LessonProgressResponse{
		Message:        "Progress updated successfully",
		Progress:       record,
		CourseProgress: enrollment.Progress,
	}, nil
}

// CourseProgress returns the user's enrollment in the course with every lesson record
func (s *progressService) CourseProgress(ctx context.Context, userID, courseID int) (*models.CourseProgressResponse, error) {
	enrollment, err := s.getEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	records, err := s.progressRepo.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return &models.CourseProgressResponse{
		Enrollment:     enrollment,
		LessonProgress: records,
		Course:         course.Summary(),
	}, nil
}

// UserProgress returns every enrollment of the user with aggregate statistics
func (s *progressService) UserProgress(ctx context.Context, userID int) (*models.UserProgressResponse, error) {
	enrollments, err := s.enrollmentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalTimeSpent, err := s.progressRepo.TotalTimeSpent(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.UserProgressResponse{
		Enrollments: enrollments,
		Statistics:  models.Summarize(enrollments, totalTimeSpent),
	}, nil
}

// Analytics returns enrollment and per-lesson completion statistics of a course.
//
// Only the course instructor or an admin may view them.
func (s *progressService) Analytics(ctx context.Context, courseID int, requester models.Requester) (*models.AnalyticsResponse, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !requester.CanManage(course.InstructorID) {
		return nil, apperrors.Forbidden("not authorized to view analytics for this course")
	}

	agg, err := s.enrollmentRepo.Aggregate(ctx, courseID)
	if err != nil {
		return nil, err
	}

	lessonStats, err := s.progressRepo.LessonCompletion(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return &models.AnalyticsResponse{
		Course: models.AnalyticsCourse{
			ID:           course.ID,
			Title:        course.Title,
			TotalLessons: len(course.Lessons),
		},
		Statistics:  models.BuildAnalytics(agg),
		LessonStats: lessonStats,
	}, nil
}

// getEnrollment loads the enrollment of the pair and reports a missing one as Forbidden
func (s *progressService) getEnrollment(ctx context.Context, userID, courseID int) (*models.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return nil, apperrors.Forbidden("not enrolled in this course")
	}
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}
