package models

import (
	"math"
	"time"
)

// LessonProgress is a user's completion record for one lesson of a course
type LessonProgress struct {
	ID           int       `json:"id"`
	UserID       int       `json:"userId"`
	CourseID     int       `json:"courseId"`
	LessonID     int       `json:"lessonId"`
	Completed    bool      `json:"completed"`
	TimeSpent    int       `json:"timeSpent"`
	Notes        string    `json:"notes"`
	LastAccessed time.Time `json:"lastAccessed"`
}

// LessonProgressRequest represents a lesson progress update
type LessonProgressRequest struct {
	CourseID  int    `json:"courseId" validate:"required,gt=0"`
	LessonID  int    `json:"lessonId" validate:"required,gt=0"`
	Completed bool   `json:"completed"`
	TimeSpent int    `json:"timeSpent" validate:"gte=0"`
	Notes     string `json:"notes" validate:"max=5000"`
}

// LessonProgressResponse is returned after a lesson progress update
type LessonProgressResponse struct {
	Message        string          `json:"message"`
	Progress       *LessonProgress `json:"progress"`
	CourseProgress int             `json:"courseProgress"`
}

// CourseProgressResponse holds a user's progress in one course
type CourseProgressResponse struct {
	Enrollment     *Enrollment      `json:"enrollment"`
	LessonProgress []LessonProgress `json:"lessonProgress"`
	Course         *CourseSummary   `json:"course"`
}

// ProgressStatistics aggregates a user's progress across courses
type ProgressStatistics struct {
	TotalCourses      int `json:"totalCourses"`
	CompletedCourses  int `json:"completedCourses"`
	InProgressCourses int `json:"inProgressCourses"`
	NotStartedCourses int `json:"notStartedCourses"`
	TotalTimeSpent    int `json:"totalTimeSpent"`
}

// UserProgressResponse holds every enrollment of a user with statistics
type UserProgressResponse struct {
	Enrollments []Enrollment       `json:"enrollments"`
	Statistics  ProgressStatistics `json:"statistics"`
}

// Summarize counts completed, in-progress and not-started enrollments
func Summarize(enrollments []Enrollment, totalTimeSpent int) ProgressStatistics {
	stats := ProgressStatistics{
		TotalCourses:   len(enrollments),
		TotalTimeSpent: totalTimeSpent,
	}
	for _, e := range enrollments {
		switch {
		case e.Progress >= 100:
			stats.CompletedCourses++
		case e.Progress > 0:
			stats.InProgressCourses++
		default:
			stats.NotStartedCourses++
		}
	}
	return stats
}

// LessonCompletion is the number of users who completed a lesson out of all enrolled users
type LessonCompletion struct {
	LessonID        int     `json:"lessonId"`
	Title           string  `json:"title"`
	Completed       int     `json:"completed"`
	Total           int     `json:"total"`
	CompletionRatio float64 `json:"completionRatio"`
}

// EnrollmentAggregate is the per-course enrollment totals computed by the store
type EnrollmentAggregate struct {
	TotalEnrollments     int
	CompletedEnrollments int
	ProgressSum          int
}

// AnalyticsStatistics holds enrollment statistics of a course
type AnalyticsStatistics struct {
	TotalEnrollments     int `json:"totalEnrollments"`
	CompletedEnrollments int `json:"completedEnrollments"`
	CompletionRate       int `json:"completionRate"`
	AverageProgress      int `json:"averageProgress"`
}

// AnalyticsCourse is the course header of an analytics response
type AnalyticsCourse struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	TotalLessons int    `json:"totalLessons"`
}

// AnalyticsResponse holds course analytics for its instructor
type AnalyticsResponse struct {
	Course      AnalyticsCourse     `json:"course"`
	Statistics  AnalyticsStatistics `json:"statistics"`
	LessonStats []LessonCompletion  `json:"lessonStats"`
}

// BuildAnalytics derives rates and averages from raw counts. Zero enrollments yield zero rates.
func BuildAnalytics(agg EnrollmentAggregate) AnalyticsStatistics {
	stats := AnalyticsStatistics{
		TotalEnrollments:     agg.TotalEnrollments,
		CompletedEnrollments: agg.CompletedEnrollments,
		CompletionRate:       CompletionPercent(agg.CompletedEnrollments, agg.TotalEnrollments),
	}
	if agg.TotalEnrollments > 0 {
		stats.AverageProgress = ClampProgress(int(math.Round(float64(agg.ProgressSum) / float64(agg.TotalEnrollments))))
	}
	return stats
}

// CompletionRatio returns completed/total in [0, 1], or 0 when total is 0
func CompletionRatio(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total)
}
