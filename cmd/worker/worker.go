package main

import (
	"context"
	"fmt"
	"html"

	"github.com/coursehub/backend/internal/apperrors"
	"github.com/coursehub/backend/internal/config"
	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/internal/tasks"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

const completionBody = `<p>Hi %s,</p>
<p>Congratulations on completing <strong>%s</strong>!</p>
<p>Your certificate of completion is available in your CourseHub profile.</p>`

// UserRepository defines the interface for user lookups
type UserRepository interface {
	// GetByID retrieves a user by its ID
	//
	// If the user does not exist, a NotFound error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// CourseRepository defines the interface for course lookups
type CourseRepository interface {
	// GetByID retrieves a course by its ID
	//
	// If the course does not exist, a NotFound error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Course, error)
}

// CounterReconciler recomputes denormalized enrollment counters
type CounterReconciler interface {
	// ReconcileCounters rewrites every course counter and enrolled list from the enrollments table
	//
	// Returns the number of rows that changed.
	ReconcileCounters(ctx context.Context) (int64, error)
}

// Worker handles task processing
type Worker struct {
	logger     *zap.Logger
	userRepo   UserRepository
	courseRepo CourseRepository
	reconciler CounterReconciler
	smtp       config.SMTPConfig
	send       func(to, subject, body string) error
}

// NewWorker creates a new worker instance
func NewWorker(
	logger *zap.Logger,
	userRepo UserRepository,
	courseRepo CourseRepository,
	reconciler CounterReconciler,
	smtp config.SMTPConfig,
) *Worker {
	w := &Worker{
		logger:     logger,
		userRepo:   userRepo,
		courseRepo: courseRepo,
		reconciler: reconciler,
		smtp:       smtp,
	}
	w.send = w.sendEmail
	return w
}

// HandleEnrollmentCompleted emails the user a congratulation for the completed course
func (w *Worker) HandleEnrollmentCompleted(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseEnrollmentCompletedPayload(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	user, err := w.userRepo.GetByID(ctx, payload.UserID)
	if err != nil {
		// The account was removed after the task was enqueued
		if apperrors.Is(err, apperrors.KindNotFound) {
			w.logger.Warn("Skipping completion notice for missing user", zap.Int("user_id", payload.UserID))
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	course, err := w.courseRepo.GetByID(ctx, payload.CourseID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			w.logger.Warn("Skipping completion notice for missing course", zap.Int("course_id", payload.CourseID))
			return nil
		}
		return err
	}

	subject := fmt.Sprintf("You completed %s", course.Title)
	body := fmt.Sprintf(completionBody, html.EscapeString(user.Name), html.EscapeString(course.Title))
	if err := w.send(user.Email, subject, body); err != nil {
		return err
	}

	w.logger.Info("Completion notice sent",
		zap.Int("user_id", payload.UserID),
		zap.Int("course_id", payload.CourseID),
	)
	return nil
}

// HandleReconcileCounters recomputes the enrollment counters of every course
func (w *Worker) HandleReconcileCounters(ctx context.Context, t *asynq.Task) error {
	changed, err := w.reconciler.ReconcileCounters(ctx)
	if err != nil {
		return err
	}

	w.logger.Info("Enrollment counters reconciled", zap.Int64("rows_changed", changed))
	return nil
}

// sendEmail sends an email using gopkg.in/mail.v2
func (w *Worker) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", w.smtp.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := mail.NewDialer(w.smtp.Host, w.smtp.Port, w.smtp.Username, w.smtp.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
