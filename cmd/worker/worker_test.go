package main

import (
	"context"
	"errors"
	"testing"

	"github.com/coursehub/backend/internal/apperrors"
	"github.com/coursehub/backend/internal/config"
	"github.com/coursehub/backend/internal/models"
	"github.com/coursehub/backend/internal/tasks"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockUserRepository struct {
	user *models.User
	err  error
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return m.user, m.err
}

type mockCourseRepository struct {
	course *models.Course
	err    error
}

func (m *mockCourseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	return m.course, m.err
}

type mockReconciler struct {
	changed int64
	err     error
	calls   int
}

func (m *mockReconciler) ReconcileCounters(ctx context.Context) (int64, error) {
	m.calls++
	return m.changed, m.err
}

type sentEmail struct {
	to, subject, body string
}

func newTestWorker(users *mockUserRepository, courses *mockCourseRepository, reconciler *mockReconciler, sendErr error) (*Worker, *[]sentEmail) {
	sent := &[]sentEmail{}
	w := NewWorker(zap.NewNop(), users, courses, reconciler, config.SMTPConfig{From: "no-reply@coursehub.local"})
	w.send = func(to, subject, body string) error {
		if sendErr != nil {
			return sendErr
		}
		*sent = append(*sent, sentEmail{to: to, subject: subject, body: body})
		return nil
	}
	return w, sent
}

func TestWorker_HandleEnrollmentCompleted(t *testing.T) {
	activeUser := &models.User{ID: 5, Name: "Sam <b>", Email: "sam@example.com", IsActive: true}
	course := &models.Course{ID: 1, Title: "Go & You"}

	tests := []struct {
		name         string
		payload      []byte
		users        *mockUserRepository
		courses      *mockCourseRepository
		sendErr      error
		expectError  bool
		expectSkip   bool
		expectedSent int
	}{
		{
			name:         "sends email",
			users:        &mockUserRepository{user: activeUser},
			courses:      &mockCourseRepository{course: course},
			expectedSent: 1,
		},
		{
			name:        "malformed payload",
			payload:     []byte("{"),
			users:       &mockUserRepository{user: activeUser},
			courses:     &mockCourseRepository{course: course},
			expectError: true,
			expectSkip:  true,
		},
		{
			name:    "missing user",
			users:   &mockUserRepository{err: apperrors.NotFound("user not found")},
			courses: &mockCourseRepository{course: course},
		},
		{
			name:    "inactive user",
			users:   &mockUserRepository{user: &models.User{ID: 5, Email: "sam@example.com"}},
			courses: &mockCourseRepository{course: course},
		},
		{
			name:    "missing course",
			users:   &mockUserRepository{user: activeUser},
			courses: &mockCourseRepository{err: apperrors.NotFound("course not found")},
		},
		{
			name:        "database error retried",
			users:       &mockUserRepository{err: errors.New("connection refused")},
			courses:     &mockCourseRepository{course: course},
			expectError: true,
		},
		{
			name:        "smtp error retried",
			users:       &mockUserRepository{user: activeUser},
			courses:     &mockCourseRepository{course: course},
			sendErr:     errors.New("smtp unavailable"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, sent := newTestWorker(tt.users, tt.courses, &mockReconciler{}, tt.sendErr)

			task, err := tasks.NewEnrollmentCompletedTask(5, 1)
			require.NoError(t, err)
			if tt.payload != nil {
				task = asynq.NewTask(tasks.TypeEnrollmentCompleted, tt.payload)
			}

			err = w.HandleEnrollmentCompleted(context.Background(), task)

			if tt.expectError {
				assert.Error(t, err)
				assert.Equal(t, tt.expectSkip, errors.Is(err, asynq.SkipRetry))
			} else {
				assert.NoError(t, err)
			}
			require.Len(t, *sent, tt.expectedSent)
			if tt.expectedSent > 0 {
				email := (*sent)[0]
				assert.Equal(t, "sam@example.com", email.to)
				assert.Equal(t, "You completed Go & You", email.subject)
				assert.Contains(t, email.body, "Sam &lt;b&gt;")
				assert.Contains(t, email.body, "Go &amp; You")
			}
		})
	}
}

func TestWorker_HandleReconcileCounters(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		reconciler := &mockReconciler{changed: 3}
		w, _ := newTestWorker(&mockUserRepository{}, &mockCourseRepository{}, reconciler, nil)

		err := w.HandleReconcileCounters(context.Background(), tasks.NewReconcileTask())

		assert.NoError(t, err)
		assert.Equal(t, 1, reconciler.calls)
	})

	t.Run("error", func(t *testing.T) {
		reconciler := &mockReconciler{err: errors.New("deadlock")}
		w, _ := newTestWorker(&mockUserRepository{}, &mockCourseRepository{}, reconciler, nil)

		err := w.HandleReconcileCounters(context.Background(), tasks.NewReconcileTask())

		assert.Error(t, err)
	})
}
