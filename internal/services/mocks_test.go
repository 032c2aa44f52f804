package services

import (
	"context"
	"time"

	"github.com/coursehub/backend/internal/apperrors"
	"github.com/coursehub/backend/internal/models"
)

// mockUserRepository is an in-memory implementation of UserRepository
type mockUserRepository struct {
	users     map[int]*models.User
	nextID    int
	createErr error
	getErr    error
	existsErr error
	updateErr error
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: map[int]*models.User{}, nextID: 1}
	for _, u := range users {
		m.users[u.ID] = u
		if u.ID >= m.nextID {
			m.nextID = u.ID + 1
		}
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = m.nextID
	m.nextID++
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			user := *u
			return &user, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	user := *u
	if user.EnrolledCourses == nil {
		user.EnrolledCourses = []int{}
	}
	return &user, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.users[userID].PasswordHash = passwordHash
	return nil
}

// mockCourseRepository is an in-memory implementation of CourseRepository
type mockCourseRepository struct {
	courses        map[int]*models.Course
	nextID         int
	err            error
	listCourses    []models.Course
	listTotal      int
	lastFilter     models.CourseFilter
	replaceLessons bool
	updateCalls    int
	deleted        []int
}

func newMockCourseRepository(courses ...*models.Course) *mockCourseRepository {
	m := &mockCourseRepository{courses: map[int]*models.Course{}, nextID: 100}
	for _, c := range courses {
		m.courses[c.ID] = c
	}
	return m
}

func (m *mockCourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.listCourses, m.listTotal, nil
}

func (m *mockCourseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.courses[id]
	if !ok {
		return nil, apperrors.NotFound("course not found")
	}
	course := *c
	course.Lessons = append([]models.Lesson{}, c.Lessons...)
	return &course, nil
}

func (m *mockCourseRepository) GetByInstructor(ctx context.Context, instructorID int) ([]models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	courses := []models.Course{}
	for _, c := range m.courses {
		if c.InstructorID == instructorID {
			courses = append(courses, *c)
		}
	}
	return courses, nil
}

func (m *mockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	if m.err != nil {
		return m.err
	}
	course.ID = m.nextID
	m.nextID++
	for i := range course.Lessons {
		course.Lessons[i].ID = course.ID*10 + i
		course.Lessons[i].CourseID = course.ID
	}
	stored := *course
	m.courses[course.ID] = &stored
	return nil
}

func (m *mockCourseRepository) Update(ctx context.Context, course *models.Course, replaceLessons bool) error {
	m.updateCalls++
	m.replaceLessons = replaceLessons
	if m.err != nil {
		return m.err
	}
	stored := *course
	m.courses[course.ID] = &stored
	return nil
}

func (m *mockCourseRepository) SetPublished(ctx context.Context, id int, published bool) error {
	if m.err != nil {
		return m.err
	}
	m.courses[id].IsPublished = published
	return nil
}

func (m *mockCourseRepository) Delete(ctx context.Context, id int) error {
	if m.err != nil {
		return m.err
	}
	delete(m.courses, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type pairKey struct{ userID, courseID int }

// mockEnrollmentRepository is an in-memory implementation of EnrollmentRepository
// that keeps the completion time once set, like the SQL implementation
type mockEnrollmentRepository struct {
	enrollments map[pairKey]*models.Enrollment
	nextID      int
	err         error
	updateErr   error
	aggregate   models.EnrollmentAggregate
	counts      map[int]int
}

func newMockEnrollmentRepository(enrollments ...*models.Enrollment) *mockEnrollmentRepository {
	m := &mockEnrollmentRepository{enrollments: map[pairKey]*models.Enrollment{}, nextID: 1, counts: map[int]int{}}
	for _, e := range enrollments {
		m.enrollments[pairKey{e.UserID, e.CourseID}] = e
		m.counts[e.CourseID]++
	}
	return m
}

func (m *mockEnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.err != nil {
		return m.err
	}
	key := pairKey{enrollment.UserID, enrollment.CourseID}
	if _, ok := m.enrollments[key]; ok {
		return apperrors.Conflict("already enrolled in this course")
	}
	enrollment.ID = m.nextID
	m.nextID++
	stored := *enrollment
	m.enrollments[key] = &stored
	m.counts[enrollment.CourseID]++
	return nil
}

func (m *mockEnrollmentRepository) Delete(ctx context.Context, userID, courseID int) error {
	if m.err != nil {
		return m.err
	}
	key := pairKey{userID, courseID}
	if _, ok := m.enrollments[key]; !ok {
		return apperrors.NotFound("enrollment not found")
	}
	delete(m.enrollments, key)
	m.counts[courseID]--
	return nil
}

func (m *mockEnrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID int) (*models.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.enrollments[pairKey{userID, courseID}]
	if !ok {
		return nil, apperrors.NotFound("enrollment not found")
	}
	enrollment := *e
	return &enrollment, nil
}

func (m *mockEnrollmentRepository) ListByUser(ctx context.Context, userID int) ([]models.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	enrollments := []models.Enrollment{}
	for key, e := range m.enrollments {
		if key.userID == userID {
			enrollments = append(enrollments, *e)
		}
	}
	return enrollments, nil
}

func (m *mockEnrollmentRepository) UpdateProgress(ctx context.Context, enrollment *models.Enrollment) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.enrollments[pairKey{enrollment.UserID, enrollment.CourseID}]
	if !ok {
		return apperrors.NotFound("enrollment not found")
	}
	stored.Progress = enrollment.Progress
	stored.LastAccessed = enrollment.LastAccessed
	if stored.CompletedAt == nil && enrollment.CompletedAt != nil {
		completedAt := *enrollment.CompletedAt
		stored.CompletedAt = &completedAt
	}
	return nil
}

func (m *mockEnrollmentRepository) Aggregate(ctx context.Context, courseID int) (models.EnrollmentAggregate, error) {
	if m.err != nil {
		return models.EnrollmentAggregate{}, m.err
	}
	return m.aggregate, nil
}

type tripleKey struct{ userID, courseID, lessonID int }

// mockProgressRepository is an in-memory implementation of LessonProgressRepository
type mockProgressRepository struct {
	records     map[tripleKey]*models.LessonProgress
	nextID      int
	err         error
	lessonStats []models.LessonCompletion
}

func newMockProgressRepository() *mockProgressRepository {
	return &mockProgressRepository{records: map[tripleKey]*models.LessonProgress{}, nextID: 1}
}

func (m *mockProgressRepository) Upsert(ctx context.Context, progress *models.LessonProgress) error {
	if m.err != nil {
		return m.err
	}
	key := tripleKey{progress.UserID, progress.CourseID, progress.LessonID}
	if existing, ok := m.records[key]; ok {
		progress.ID = existing.ID
	} else {
		progress.ID = m.nextID
		m.nextID++
	}
	stored := *progress
	m.records[key] = &stored
	return nil
}

func (m *mockProgressRepository) CountCompleted(ctx context.Context, userID, courseID int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	count := 0
	for key, p := range m.records {
		if key.userID == userID && key.courseID == courseID && p.Completed {
			count++
		}
	}
	return count, nil
}

func (m *mockProgressRepository) ListByUserAndCourse(ctx context.Context, userID, courseID int) ([]models.LessonProgress, error) {
	if m.err != nil {
		return nil, m.err
	}
	records := []models.LessonProgress{}
	for key, p := range m.records {
		if key.userID == userID && key.courseID == courseID {
			records = append(records, *p)
		}
	}
	return records, nil
}

func (m *mockProgressRepository) TotalTimeSpent(ctx context.Context, userID int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	total := 0
	for key, p := range m.records {
		if key.userID == userID {
			total += p.TimeSpent
		}
	}
	return total, nil
}

func (m *mockProgressRepository) LessonCompletion(ctx context.Context, courseID int) ([]models.LessonCompletion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.lessonStats, nil
}

// mockQuizRepository is an in-memory implementation of QuizRepository
type mockQuizRepository struct {
	quizzes          map[int]*models.Quiz
	results          []models.QuizResult
	nextID           int
	err              error
	summaries        []models.QuizSummary
	replaceQuestions bool
}

func newMockQuizRepository(quizzes ...*models.Quiz) *mockQuizRepository {
	m := &mockQuizRepository{quizzes: map[int]*models.Quiz{}, nextID: 500}
	for _, q := range quizzes {
		m.quizzes[q.ID] = q
	}
	return m
}

func (m *mockQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	if m.err != nil {
		return m.err
	}
	quiz.ID = m.nextID
	m.nextID++
	stored := *quiz
	m.quizzes[quiz.ID] = &stored
	return nil
}

func (m *mockQuizRepository) GetByID(ctx context.Context, id int) (*models.Quiz, error) {
	if m.err != nil {
		return nil, m.err
	}
	q, ok := m.quizzes[id]
	if !ok {
		return nil, apperrors.NotFound("quiz not found")
	}
	quiz := *q
	quiz.Questions = append([]models.Question{}, q.Questions...)
	return &quiz, nil
}

func (m *mockQuizRepository) ListPublishedByCourse(ctx context.Context, courseID int) ([]models.QuizSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.summaries, nil
}

func (m *mockQuizRepository) Update(ctx context.Context, quiz *models.Quiz, replaceQuestions bool) error {
	m.replaceQuestions = replaceQuestions
	if m.err != nil {
		return m.err
	}
	stored := *quiz
	m.quizzes[quiz.ID] = &stored
	return nil
}

func (m *mockQuizRepository) Delete(ctx context.Context, id int) error {
	if m.err != nil {
		return m.err
	}
	delete(m.quizzes, id)
	return nil
}

func (m *mockQuizRepository) CountResults(ctx context.Context, quizID, userID int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	count := 0
	for _, r := range m.results {
		if r.QuizID == quizID && r.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *mockQuizRepository) AddResult(ctx context.Context, result *models.QuizResult, maxAttempts int) (int, error) {
	count, err := m.CountResults(ctx, result.QuizID, result.UserID)
	if err != nil {
		return 0, err
	}
	if count >= maxAttempts {
		return 0, apperrors.LimitExceeded("maximum attempts reached")
	}
	result.ID = len(m.results) + 1
	m.results = append(m.results, *result)
	return count + 1, nil
}

func (m *mockQuizRepository) ListResults(ctx context.Context, quizID, userID int) ([]models.QuizResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	results := []models.QuizResult{}
	for _, r := range m.results {
		if r.QuizID == quizID && r.UserID == userID {
			results = append(results, r)
		}
	}
	return results, nil
}

// mockNotifier records completion notices
type mockNotifier struct {
	calls []pairKey
	err   error
}

func (m *mockNotifier) NotifyCourseCompleted(ctx context.Context, userID, courseID int) error {
	m.calls = append(m.calls, pairKey{userID, courseID})
	return m.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
