package services

import (
	"context"
	"errors"
	"testing"

	"github.com/coursehub/backend/internal/apperrors"
	"github.com/coursehub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type progressFixture struct {
	svc            *progressService
	progressRepo   *mockProgressRepository
	enrollmentRepo *mockEnrollmentRepository
	courseRepo     *mockCourseRepository
	notifier       *mockNotifier
}

func newProgressFixture(enrollments ...*models.Enrollment) *progressFixture {
	f := &progressFixture{
		progressRepo:   newMockProgressRepository(),
		enrollmentRepo: newMockEnrollmentRepository(enrollments...),
		courseRepo:     newMockCourseRepository(sampleCourse(true)),
		notifier:       &mockNotifier{},
	}
	f.svc = NewProgressService(f.progressRepo, f.enrollmentRepo, f.courseRepo, f.notifier, zap.NewNop())
	f.svc.now = fixedClock(enrollTime)
	return f
}

func TestProgressService_RecordLessonProgress(t *testing.T) {
	t.Run("rolls lesson completion into course progress", func(t *testing.T) {
		f := newProgressFixture(&models.Enrollment{ID: 1, UserID: 5, CourseID: 1})

		steps := []struct {
			lessonID         int
			expectedProgress int
		}{
			{lessonID: 10, expectedProgress: 33},
			{lessonID: 11, expectedProgress: 67},
			{lessonID: 12, expectedProgress: 100},
		}
		for _, step := range steps {
			resp, err := f.svc.RecordLessonProgress(context.Background(), 5, &models.LessonProgressRequest{
				CourseID: 1, LessonID: step.lessonID, Completed: true, TimeSpent: 10,
			})
			require.NoError(t, err)
			assert.Equal(t, step.expectedProgress, resp.CourseProgress)
			assert.Equal(t, "Progress updated successfully", resp.Message)
		}

		stored := f.enrollmentRepo.enrollments[pairKey{5, 1}]
		assert.Equal(t, 100, stored.Progress)
		require.NotNil(t, stored.CompletedAt)
		assert.Equal(t, []pairKey{{5, 1}}, f.notifier.calls)
	})

	t.Run("repeated update keeps one record", func(t *testing.T) {
		f := newProgressFixture(&models.Enrollment{ID: 1, UserID: 5, CourseID: 1})

		first, err := f.svc.RecordLessonProgress(context.Background(), 5, &models.LessonProgressRequest{CourseID: 1, LessonID: 10, TimeSpent: 5})
		require.NoError(t, err)
		second, err := f.svc.RecordLessonProgress(context.Background(), 5, &models.LessonProgressRequest{CourseID: 1, LessonID: 10, Completed: true, TimeSpent: 12, Notes: "done"})
		require.NoError(t, err)

		assert.Equal(t, first.Progress.ID, second.Progress.ID)
		assert.Len(t, f.progressRepo.records, 1)
		assert.Equal(t, 12, f.progressRepo.records[tripleKey{5, 1, 10}].TimeSpent)
		assert.Equal(t, 33, second.CourseProgress)
	})

	t.Run("uncompleting a lesson lowers progress but keeps completion time", func(t *testing.T) {
		f := newProgressFixture(&models.Enrollment{ID: 1, UserID: 5, CourseID: 1})
		for _, lessonID := range []int{10, 11, 12} {
			_, err := f.svc.RecordLessonProgress(context.Background(), 5, &models.LessonProgressRequest{CourseID: 1, LessonID: lessonID, Completed: true})
			require.NoError(t, err)
		}

		resp, err := f.svc.RecordLessonProgress(context.Background(), 5, &models.LessonProgressRequest{CourseID: 1, LessonID: 12, Completed: false})

		require.NoError(t, err)
		assert.Equal(t, 67, resp.CourseProgress)
		assert.NotNil(t, f.enrollmentRepo.enrollments[pairKey{5, 1}].CompletedAt)
		assert.Len(t, f.notifier.calls, 1)
	})

	tests := []struct {
		name         string
		req          *models.LessonProgressRequest
		enrolled     bool
		expectedKind apperrors.Kind
	}{
		{
			name:         "not enrolled",
			req:          &models.LessonProgressRequest{CourseID: 1, LessonID: 10},
			expectedKind: apperrors.KindForbidden,
		},
		{
			name:         "lesson from another course",
			req:          &models.LessonProgressRequest{CourseID: 1, LessonID: 99},
			enrolled:     true,
			expectedKind: apperrors.KindNotFound,
		},
		{
			name:         "negative time spent",
			req:          &models.LessonProgressRequest{CourseID: 1, LessonID: 10, TimeSpent: -1},
			enrolled:     true,
			expectedKind: apperrors.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var enrollments []*models.Enrollment
			if tt.enrolled {
				enrollments = append(enrollments, &models.Enrollment{ID: 1, UserID: 5, CourseID: 1})
			}
			f := newProgressFixture(enrollments...)

			_, err := f.svc.RecordLessonProgress(context.Background(), 5, tt.req)

			require.Error(t, err)
			assert.Equal(t, tt.expectedKind, apperrors.KindOf(err))
			assert.Empty(t, f.progressRepo.records)
		})
	}
}

func TestProgressService_RecordLessonProgress_EmptyCourse(t *testing.T) {
	f := newProgressFixture(&models.Enrollment{ID: 1, UserID: 5, CourseID: 2})
	f.courseRepo.courses[2] = &models.Course{ID: 2, InstructorID: 2, IsPublished: true}

	_, err := f.svc.RecordLessonProgress(context.Background(), 5, &models.LessonProgressRequest{CourseID: 2, LessonID: 10, Completed: true})

	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.Equal(t, 0, f.enrollmentRepo.enrollments[pairKey{5, 2}].Progress)
}

func TestProgressService_CourseProgress(t *testing.T) {
	f := newProgressFixture(&models.Enrollment{ID: 1, UserID: 5, CourseID: 1})
	_, err := f.svc.RecordLessonProgress(context.Background(), 5, &models.LessonProgressRequest{CourseID: 1, LessonID: 10, Completed: true})
	require.NoError(t, err)

	resp, err := f.svc.CourseProgress(context.Background(), 5, 1)

	require.NoError(t, err)
	assert.Equal(t, 33, resp.Enrollment.Progress)
	assert.Len(t, resp.LessonProgress, 1)
	assert.Equal(t, 3, resp.Course.TotalLessons)

	_, err = f.svc.CourseProgress(context.Background(), 6, 1)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))
}

func TestProgressService_UserProgress(t *testing.T) {
	f := newProgressFixture(
		&models.Enrollment{ID: 1, UserID: 5, CourseID: 1, Progress: 100},
		&models.Enrollment{ID: 2, UserID: 5, CourseID: 2, Progress: 40},
		&models.Enrollment{ID: 3, UserID: 5, CourseID: 3, Progress: 0},
	)
	f.progressRepo.records[tripleKey{5, 1, 10}] = &models.LessonProgress{UserID: 5, CourseID: 1, LessonID: 10, TimeSpent: 25}
	f.progressRepo.records[tripleKey{5, 2, 20}] = &models.LessonProgress{UserID: 5, CourseID: 2, LessonID: 20, TimeSpent: 15}

	resp, err := f.svc.UserProgress(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, models.ProgressStatistics{
		TotalCourses:      3,
		CompletedCourses:  1,
		InProgressCourses: 1,
		NotStartedCourses: 1,
		TotalTimeSpent:    40,
	}, resp.Statistics)

	f.progressRepo.err = errors.New("database error")
	_, err = f.svc.UserProgress(context.Background(), 5)
	assert.Error(t, err)
}

func TestProgressService_Analytics(t *testing.T) {
	tests := []struct {
		name          string
		requester     models.Requester
		aggregate     models.EnrollmentAggregate
		expectedStats models.AnalyticsStatistics
		expectedKind  *apperrors.Kind
	}{
		{
			name:          "owner with enrollments",
			requester:     teacher,
			aggregate:     models.EnrollmentAggregate{TotalEnrollments: 4, CompletedEnrollments: 1, ProgressSum: 190},
			expectedStats: models.AnalyticsStatistics{TotalEnrollments: 4, CompletedEnrollments: 1, CompletionRate: 25, AverageProgress: 48},
		},
		{
			name:          "admin without enrollments",
			requester:     admin,
			expectedStats: models.AnalyticsStatistics{},
		},
		{name: "other teacher", requester: otherTeacher, expectedKind: kindPtr(apperrors.KindForbidden)},
		{name: "student", requester: student, expectedKind: kindPtr(apperrors.KindForbidden)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProgressFixture()
			f.enrollmentRepo.aggregate = tt.aggregate
			f.progressRepo.lessonStats = []models.LessonCompletion{{LessonID: 10, Title: "Intro", Completed: 1, Total: 2, CompletionRatio: 0.5}}

			resp, err := f.svc.Analytics(context.Background(), 1, tt.requester)

			if tt.expectedKind != nil {
				assert.Equal(t, *tt.expectedKind, apperrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStats, resp.Statistics)
			assert.Equal(t, 3, resp.Course.TotalLessons)
			assert.Len(t, resp.LessonStats, 1)
		})
	}
}
