package services

import (
	"context"
	"time"

	"github.com/coursehub/backend/internal/apperrors"
	"github.com/coursehub/backend/internal/models"
	"go.uber.org/zap"
)

// EnrollmentRepository is the interface that wraps methods for enrollments table data access
type EnrollmentRepository interface {
	// Method Create records an enrollment, increments the course counter and updates the user's enrolled list.
	//
	// If the (user, course) pair is already enrolled, a Conflict error will be returned.
	Create(ctx context.Context, enrollment *models.Enrollment) error
	// Method Delete removes an enrollment and reverts the counter and the enrolled list.
	//
	// If the pair is not enrolled, a NotFound error will be returned.
	Delete(ctx context.Context, userID, courseID int) error
	// Method GetByUserAndCourse retrieves the enrollment of the pair.
	//
	// If the pair is not enrolled, a NotFound error will be returned together with "nil" value.
	GetByUserAndCourse(ctx context.Context, userID, courseID int) (*models.Enrollment, error)
	// Method ListByUser retrieves every enrollment of the user with a course summary, newest first.
	ListByUser(ctx context.Context, userID int) ([]models.Enrollment, error)
	// Method UpdateProgress writes progress, last access and, if still unset, completion time.
	UpdateProgress(ctx context.Context, enrollment *models.Enrollment) error
	// Method Aggregate computes enrollment totals of a course.
	Aggregate(ctx context.Context, courseID int) (models.EnrollmentAggregate, error)
}

// CompletionNotifier schedules the course completion notice
type CompletionNotifier interface {
	// Method NotifyCourseCompleted schedules the notice for the user who completed the course.
	NotifyCourseCompleted(ctx context.Context, userID, courseID int) error
}

type enrollmentService struct {
	enrollmentRepo EnrollmentRepository
	courseRepo     CourseRepository
	notifier       CompletionNotifier
	logger         *zap.Logger
	now            func() time.Time
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(
	enrollmentRepo EnrollmentRepository,
	courseRepo CourseRepository,
	notifier CompletionNotifier,
	logger *zap.Logger,
) *enrollmentService {
	return &enrollmentService{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

// Enroll enrolls the requester in the course with zero progress.
//
// Draft courses read as NotFound to everyone but their managers.
// A repeated enrollment fails with Conflict and is never retried.
func (s *enrollmentService) Enroll(ctx context.Context, requester models.Requester, courseID int) (*models.Enrollment, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished && !requester.CanManage(course.InstructorID) {
		return nil, apperrors.NotFound("course not found")
	}

	userID := requester.UserID

	_, err = s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
	if err == nil {
		return nil, apperrors.Conflict("already enrolled in this course")
	}
	if !apperrors.Is(err, apperrors.KindNotFound) {
		return nil, err
	}

	now := s.now()
	enrollment := &models.Enrollment{
		UserID:       userID,
		CourseID:     courseID,
		Progress:     0,
		EnrolledAt:   now,
		LastAccessed: now,
		IsActive:     true,
	}
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, err
	}
	enrollment.Course = course.Summary()

	s.logger.Info("user enrolled", zap.Int("userId", userID), zap.Int("courseId", courseID))
	return enrollment, nil
}

// Unenroll removes the user's enrollment in the course
func (s *enrollmentService) Unenroll(ctx context.Context, userID, courseID int) error {
	if err := s.enrollmentRepo.Delete(ctx, userID, courseID); err != nil {
		return err
	}

	s.logger.Info("user unenrolled", zap.Int("userId", userID), zap.Int("courseId", courseID))
	return nil
}

// SetProgress stores a clamped progress value.
//
// The completion time is set the first time progress reaches 100 and never changes afterwards.
func (s *enrollmentService) SetProgress(ctx context.Context, userID, courseID, value int) (*models.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return nil, apperrors.NotFound("not enrolled in this course")
	}
	if err != nil {
		return nil, err
	}

	completed := enrollment.ApplyProgress(value, s.now())
	if err := s.enrollmentRepo.UpdateProgress(ctx, enrollment); err != nil {
		return nil, err
	}

	if completed {
		notifyCompletion(ctx, s.notifier, s.logger, userID, courseID)
	}
	return enrollment, nil
}

// Status reports whether the user is enrolled in the course. A missing enrollment is not an error.
func (s *enrollmentService) Status(ctx context.Context, userID, courseID int) (*models.EnrollmentStatusResponse, error) {
	enrollment, err := s.enrollmentRepo.GetByUserAndCourse(ctx, userID, courseID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return &models.EnrollmentStatusResponse{Enrolled: false}, nil
	}
	if err != nil {
		return nil, err
	}

	return &models.EnrollmentStatusResponse{Enrolled: true, Enrollment: enrollment}, nil
}

// MyCourses returns the user's enrollments with course summaries, newest first
func (s *enrollmentService) MyCourses(ctx context.Context, userID int) ([]models.Enrollment, error) {
	return s.enrollmentRepo.ListByUser(ctx, userID)
}

// notifyCompletion schedules the completion notice. Failures are logged and never reach the caller.
func notifyCompletion(ctx context.Context, notifier CompletionNotifier, logger *zap.Logger, userID, courseID int) {
	if notifier == nil {
		return
	}
	if err := notifier.NotifyCourseCompleted(ctx, userID, courseID); err != nil {
		logger.Warn("failed to schedule completion notice",
			zap.Int("userId", userID), zap.Int("courseId", courseID), zap.Error(err))
	}
}
