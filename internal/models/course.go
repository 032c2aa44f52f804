package models

import "time"

// Difficulty represents the difficulty level of a course
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// IsValid reports whether d is one of the known difficulty levels
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// DefaultCategory is assigned to courses created without a category
const DefaultCategory = "General"

// Course represents a course with its ordered lessons
type Course struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	InstructorID  int        `json:"instructorId"`
	Thumbnail     string     `json:"thumbnail"`
	Category      string     `json:"category"`
	Difficulty    Difficulty `json:"difficulty"`
	Duration      int        `json:"duration"`
	Price         float64    `json:"price"`
	IsPublished   bool       `json:"isPublished"`
	EnrolledCount int        `json:"enrolledCount"`
	Rating        float64    `json:"rating"`
	Tags          []string   `json:"tags"`
	Lessons       []Lesson   `json:"lessons"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Lesson represents a lesson embedded in a course
type Lesson struct {
	ID              int    `json:"id"`
	CourseID        int    `json:"-"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	DurationMinutes int    `json:"durationMinutes"`
	Order           int    `json:"order"`
	IsPublished     bool   `json:"isPublished"`
}

// TotalDuration sums lesson durations in minutes
func TotalDuration(lessons []Lesson) int {
	total := 0
	for _, l := range lessons {
		total += l.DurationMinutes
	}
	return total
}

// CourseSummary is the short course representation embedded in other responses
type CourseSummary struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Thumbnail    string     `json:"thumbnail"`
	InstructorID int        `json:"instructorId"`
	Difficulty   Difficulty `json:"difficulty"`
	Duration     int        `json:"duration"`
	TotalLessons int        `json:"totalLessons"`
}

// Summary returns the short representation of the course
func (c *Course) Summary() *CourseSummary {
	return &CourseSummary{
		ID:           c.ID,
		Title:        c.Title,
		Thumbnail:    c.Thumbnail,
		InstructorID: c.InstructorID,
		Difficulty:   c.Difficulty,
		Duration:     c.Duration,
		TotalLessons: len(c.Lessons),
	}
}

// HasLesson reports whether the lesson belongs to the course
func (c *Course) HasLesson(lessonID int) bool {
	for _, l := range c.Lessons {
		if l.ID == lessonID {
			return true
		}
	}
	return false
}

// CourseFilter holds course list query parameters
type CourseFilter struct {
	Category   string
	Difficulty Difficulty
	Search     string
	Page       int
	Limit      int
}

// CourseListResponse is a page of published courses
type CourseListResponse struct {
	Courses     []Course `json:"courses"`
	Total       int      `json:"total"`
	TotalPages  int      `json:"totalPages"`
	CurrentPage int      `json:"currentPage"`
}

// LessonInput is a lesson in a create or update request
type LessonInput struct {
	ID              *int   `json:"id,omitempty"`
	Title           string `json:"title" validate:"required,max=200"`
	Content         string `json:"content"`
	DurationMinutes int    `json:"durationMinutes" validate:"gte=0"`
	Order           int    `json:"order"`
	IsPublished     bool   `json:"isPublished"`
}

// CreateCourseRequest represents a request to create a course
type CreateCourseRequest struct {
	Title       string        `json:"title" validate:"required,max=200"`
	Description string        `json:"description" validate:"required"`
	Thumbnail   string        `json:"thumbnail"`
	Category    string        `json:"category" validate:"max=100"`
	Difficulty  Difficulty    `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price       float64       `json:"price" validate:"gte=0"`
	Tags        []string      `json:"tags"`
	Lessons     []LessonInput `json:"lessons" validate:"dive"`
}

// UpdateCourseRequest represents a request to update a course (partial update)
type UpdateCourseRequest struct {
	Title       *string       `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string       `json:"description,omitempty"`
	Thumbnail   *string       `json:"thumbnail,omitempty"`
	Category    *string       `json:"category,omitempty" validate:"omitempty,max=100"`
	Difficulty  *Difficulty   `json:"difficulty,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price       *float64      `json:"price,omitempty" validate:"omitempty,gte=0"`
	Rating      *float64      `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Tags        []string      `json:"tags,omitempty"`
	Lessons     []LessonInput `json:"lessons,omitempty" validate:"omitempty,dive"`
}
