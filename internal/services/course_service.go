package services

import (
	"context"
	"slices"
	"strings"

	"github.com/coursehub/backend/internal/apperrors"
	"github.com/coursehub/backend/internal/models"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// CourseRepository is the interface that wraps methods for courses and lessons tables data access
type CourseRepository interface {
	// Method List retrieves a page of published courses matching the filter.
	//
	// "filter" parameter must carry a normalized page (>= 1) and limit (1..100).
	//
	// The total number of matching courses is returned together with the page.
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	// Method GetByID retrieves a course with its lessons ordered by lesson order.
	//
	// If course with such ID does not exist, a NotFound error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Course, error)
	// Method GetByInstructor retrieves every course of the instructor, published or not.
	GetByInstructor(ctx context.Context, instructorID int) ([]models.Course, error)
	// Method Create inserts a course together with its lessons.
	Create(ctx context.Context, course *models.Course) error
	// Method Update writes the course fields.
	//
	// "replaceLessons" parameter is used to replace the lesson list with course.Lessons in the same transaction.
	Update(ctx context.Context, course *models.Course, replaceLessons bool) error
	// Method SetPublished updates the publish flag of a course.
	SetPublished(ctx context.Context, id int, published bool) error
	// Method Delete removes a course with everything it owns.
	Delete(ctx context.Context, id int) error
}

type courseService struct {
	courseRepo CourseRepository
	logger     *zap.Logger
}

// NewCourseService creates a new course service
func NewCourseService(courseRepo CourseRepository, logger *zap.Logger) *courseService {
	return &courseService{
		courseRepo: courseRepo,
		logger:     logger,
	}
}

// List returns a page of published courses.
//
// Page defaults to 1, limit defaults to 10 and is capped at 100.
func (s *courseService) List(ctx context.Context, filter models.CourseFilter) (*models.CourseListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Difficulty != "" && !filter.Difficulty.IsValid() {
		return nil, apperrors.Validation("invalid difficulty %q", filter.Difficulty)
	}

	courses, total, err := s.courseRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &models.CourseListResponse{
		Courses:     courses,
		Total:       total,
		TotalPages:  (total + filter.Limit - 1) / filter.Limit,
		CurrentPage: filter.Page,
	}, nil
}

// Get returns a course by ID.
//
// Unpublished courses are reported as missing unless the requester may manage them.
// "requester" parameter is nil for anonymous calls.
func (s *courseService) Get(ctx context.Context, id int, requester *models.Requester) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !course.IsPublished && (requester == nil || !requester.CanManage(course.InstructorID)) {
		return nil, apperrors.NotFound("course not found")
	}

	return course, nil
}

// Create stores a new unpublished course owned by the requester
func (s *courseService) Create(ctx context.Context, requester models.Requester, req *models.CreateCourseRequest) (*models.Course, error) {
	if !requester.Role.CanAuthor() {
		return nil, apperrors.Forbidden("only teachers and admins can create courses")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.Validation("title is required")
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyBeginner
	}
	if !difficulty.IsValid() {
		return nil, apperrors.Validation("invalid difficulty %q", difficulty)
	}
	if req.Price < 0 {
		return nil, apperrors.Validation("price cannot be negative")
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	lessons, err := lessonsFromInput(req.Lessons)
	if err != nil {
		return nil, err
	}

	course := &models.Course{
		Title:        title,
		Description:  req.Description,
		InstructorID: requester.UserID,
		Thumbnail:    req.Thumbnail,
		Category:     category,
		Difficulty:   difficulty,
		Price:        req.Price,
		Tags:         normalizeTags(req.Tags),
		Lessons:      lessons,
		Duration:     models.TotalDuration(lessons),
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info("course created", zap.Int("courseId", course.ID), zap.Int("instructorId", requester.UserID))

	return s.courseRepo.GetByID(ctx, course.ID)
}

// Update applies the supplied fields to a course owned by the requester.
//
// When lessons are supplied the lesson list is replaced and the duration recomputed.
func (s *courseService) Update(ctx context.Context, id int, requester models.Requester, req *models.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanManage(course.InstructorID) {
		return nil, apperrors.Forbidden("not authorized to update this course")
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.Validation("title cannot be empty")
		}
		course.Title = title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Thumbnail != nil {
		course.Thumbnail = *req.Thumbnail
	}
	if req.Category != nil {
		course.Category = strings.TrimSpace(*req.Category)
		if course.Category == "" {
			course.Category = models.DefaultCategory
		}
	}
	if req.Difficulty != nil {
		if !req.Difficulty.IsValid() {
			return nil, apperrors.Validation("invalid difficulty %q", *req.Difficulty)
		}
		course.Difficulty = *req.Difficulty
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, apperrors.Validation("price cannot be negative")
		}
		course.Price = *req.Price
	}
	if req.Rating != nil {
		if *req.Rating < 0 || *req.Rating > 5 {
			return nil, apperrors.Validation("rating must be between 0 and 5")
		}
		course.Rating = *req.Rating
	}
	if req.Tags != nil {
		course.Tags = normalizeTags(req.Tags)
	}

	replaceLessons := req.Lessons != nil
	if replaceLessons {
		if course.Lessons, err = lessonsFromInput(req.Lessons); err != nil {
			return nil, err
		}
	}
	course.Duration = models.TotalDuration(course.Lessons)

	if err := s.courseRepo.Update(ctx, course, replaceLessons); err != nil {
		return nil, err
	}

	return s.courseRepo.GetByID(ctx, id)
}

// Delete removes a course owned by the requester
func (s *courseService) Delete(ctx context.Context, id int, requester models.Requester) error {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !requester.CanManage(course.InstructorID) {
		return apperrors.Forbidden("not authorized to delete this course")
	}

	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("course deleted", zap.Int("courseId", id), zap.Int("requesterId", requester.UserID))
	return nil
}

// InstructorCourses returns every course authored by the requester
func (s *courseService) InstructorCourses(ctx context.Context, requester models.Requester) ([]models.Course, error) {
	if !requester.Role.CanAuthor() {
		return nil, apperrors.Forbidden("only teachers and admins have courses")
	}

	return s.courseRepo.GetByInstructor(ctx, requester.UserID)
}

// TogglePublish flips the publish flag of a course owned by the requester
func (s *courseService) TogglePublish(ctx context.Context, id int, requester models.Requester) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanManage(course.InstructorID) {
		return nil, apperrors.Forbidden("not authorized to modify this course")
	}

	if err := s.courseRepo.SetPublished(ctx, id, !course.IsPublished); err != nil {
		return nil, err
	}
	course.IsPublished = !course.IsPublished

	return course, nil
}

// lessonsFromInput converts lesson inputs into lessons sorted by their order.
// Each existing lesson ID may appear at most once.
func lessonsFromInput(inputs []models.LessonInput) ([]models.Lesson, error) {
	lessons := make([]models.Lesson, 0, len(inputs))
	seen := make(map[int]struct{}, len(inputs))
	for i, in := range inputs {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return nil, apperrors.Validation("lesson %d: title is required", i+1)
		}
		if in.DurationMinutes < 0 {
			return nil, apperrors.Validation("lesson %d: duration cannot be negative", i+1)
		}

		lesson := models.Lesson{
			Title:           title,
			Content:         in.Content,
			DurationMinutes: in.DurationMinutes,
			Order:           in.Order,
			IsPublished:     in.IsPublished,
		}
		if in.ID != nil {
			if _, dup := seen[*in.ID]; dup {
				return nil, apperrors.Validation("lesson %d: duplicate lesson ID %d", i+1, *in.ID)
			}
			seen[*in.ID] = struct{}{}
			lesson.ID = *in.ID
		}
		lessons = append(lessons, lesson)
	}

	slices.SortStableFunc(lessons, func(a, b models.Lesson) int {
		return a.Order - b.Order
	})
	return lessons, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}
