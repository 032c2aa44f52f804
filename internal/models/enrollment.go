package models

import (
	"math"
	"time"
)

// Enrollment ties one user to one course
type Enrollment struct {
	ID           int            `json:"id"`
	UserID       int            `json:"userId"`
	CourseID     int            `json:"courseId"`
	Progress     int            `json:"progress"`
	EnrolledAt   time.Time      `json:"enrolledAt"`
	LastAccessed time.Time      `json:"lastAccessed"`
	CompletedAt  *time.Time     `json:"completedAt"`
	IsActive     bool           `json:"isActive"`
	Course       *CourseSummary `json:"course,omitempty"`
}

// ClampProgress bounds a progress value to [0, 100]
func ClampProgress(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

// CompletionPercent returns round(100 * completed / total), or 0 when total is 0.
// The result is clamped to [0, 100].
func CompletionPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return ClampProgress(int(math.Round(100 * float64(completed) / float64(total))))
}

// ApplyProgress writes a clamped progress value into the enrollment and stamps
// CompletedAt the first time progress reaches 100. An existing CompletedAt is never changed.
// It reports whether this call set CompletedAt.
func (e *Enrollment) ApplyProgress(value int, now time.Time) bool {
	e.Progress = ClampProgress(value)
	e.LastAccessed = now
	if e.Progress == 100 && e.CompletedAt == nil {
		completedAt := now
		e.CompletedAt = &completedAt
		return true
	}
	return false
}

// EnrollRequest represents an enroll request
type EnrollRequest struct {
	CourseID int `json:"courseId" validate:"required,gt=0"`
}

// SetProgressRequest represents a direct enrollment progress update
type SetProgressRequest struct {
	Progress *int `json:"progress" validate:"required"`
}

// EnrollmentStatusResponse reports whether the user is enrolled in a course
type EnrollmentStatusResponse struct {
	Enrolled   bool        `json:"enrolled"`
	Enrollment *Enrollment `json:"enrollment"`
}
