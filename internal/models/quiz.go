package models

import (
	"math"
	"time"
)

// Quiz defaults applied when a create request leaves them unset
const (
	DefaultQuizTimeLimit    = 30
	DefaultQuizMaxAttempts  = 3
	DefaultQuizPassingScore = 70
)

// Quiz represents a quiz owned by a course
type Quiz struct {
	ID           int        `json:"id"`
	CourseID     int        `json:"courseId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Questions    []Question `json:"questions"`
	TimeLimit    int        `json:"timeLimit"`
	MaxAttempts  int        `json:"maxAttempts"`
	PassingScore int        `json:"passingScore"`
	IsPublished  bool       `json:"isPublished"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Question is one question of a quiz. CorrectAnswer is an index into Options.
type Question struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Points        int      `json:"points"`
	Explanation   string   `json:"explanation"`
}

// QuizResult is one scored attempt of a quiz
type QuizResult struct {
	ID             int       `json:"id"`
	QuizID         int       `json:"quizId"`
	UserID         int       `json:"userId"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     int       `json:"percentage"`
	TimeSpent      int       `json:"timeSpent"`
	Answers        []*int    `json:"answers"`
	CompletedAt    time.Time `json:"completedAt"`
}

// Score counts the positions where answers match the correct option.
// Missing, null or out-of-range answers count as incorrect.
func Score(questions []Question, answers []*int) (score, percentage int) {
	for i, q := range questions {
		if i >= len(answers) || answers[i] == nil {
			continue
		}
		a := *answers[i]
		if a < 0 || a >= len(q.Options) {
			continue
		}
		if a == q.CorrectAnswer {
			score++
		}
	}
	if len(questions) > 0 {
		percentage = int(math.Round(100 * float64(score) / float64(len(questions))))
	}
	return score, percentage
}

// QuizSummary is a quiz listed for a course, without its questions
type QuizSummary struct {
	ID            int    `json:"id"`
	CourseID      int    `json:"courseId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	TimeLimit     int    `json:"timeLimit"`
	MaxAttempts   int    `json:"maxAttempts"`
	PassingScore  int    `json:"passingScore"`
	QuestionCount int    `json:"questionCount"`
}

// PublicQuestion is a question as shown to a quiz taker
type PublicQuestion struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
	Points  int      `json:"points"`
}

// PublicQuiz is a quiz as shown to a quiz taker. It never carries answers or results.
type PublicQuiz struct {
	ID           int              `json:"id"`
	CourseID     int              `json:"courseId"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Questions    []PublicQuestion `json:"questions"`
	TimeLimit    int              `json:"timeLimit"`
	MaxAttempts  int              `json:"maxAttempts"`
	PassingScore int              `json:"passingScore"`
}

// ToPublic strips answer keys and explanations from the quiz
func (q *Quiz) ToPublic() *PublicQuiz {
	pub := &PublicQuiz{
		ID:           q.ID,
		CourseID:     q.CourseID,
		Title:        q.Title,
		Description:  q.Description,
		Questions:    make([]PublicQuestion, 0, len(q.Questions)),
		TimeLimit:    q.TimeLimit,
		MaxAttempts:  q.MaxAttempts,
		PassingScore: q.PassingScore,
	}
	for _, question := range q.Questions {
		pub.Questions = append(pub.Questions, PublicQuestion{
			ID:      question.ID,
			Prompt:  question.Prompt,
			Options: question.Options,
			Points:  question.Points,
		})
	}
	return pub
}

// QuestionInput is a question in a create or update request
type QuestionInput struct {
	Prompt        string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"min=2,dive,required"`
	CorrectAnswer *int     `json:"correctAnswer" validate:"required,gte=0"`
	Points        int      `json:"points" validate:"gte=0"`
	Explanation   string   `json:"explanation"`
}

// CreateQuizRequest represents a request to create a quiz
type CreateQuizRequest struct {
	CourseID     int             `json:"courseId" validate:"required,gt=0"`
	Title        string          `json:"title" validate:"required,max=200"`
	Description  string          `json:"description"`
	Questions    []QuestionInput `json:"questions" validate:"min=1,dive"`
	TimeLimit    *int            `json:"timeLimit,omitempty" validate:"omitempty,gte=0"`
	MaxAttempts  *int            `json:"maxAttempts,omitempty" validate:"omitempty,gte=1"`
	PassingScore *int            `json:"passingScore,omitempty" validate:"omitempty,gte=0,lte=100"`
	IsPublished  bool            `json:"isPublished"`
}

// UpdateQuizRequest represents a request to update a quiz (partial update)
type UpdateQuizRequest struct {
	Title        *string         `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string         `json:"description,omitempty"`
	Questions    []QuestionInput `json:"questions,omitempty" validate:"omitempty,min=1,dive"`
	TimeLimit    *int            `json:"timeLimit,omitempty" validate:"omitempty,gte=0"`
	MaxAttempts  *int            `json:"maxAttempts,omitempty" validate:"omitempty,gte=1"`
	PassingScore *int            `json:"passingScore,omitempty" validate:"omitempty,gte=0,lte=100"`
	IsPublished  *bool           `json:"isPublished,omitempty"`
}

// SubmitQuizRequest represents a quiz submission
type SubmitQuizRequest struct {
	Answers   []*int `json:"answers"`
	TimeSpent int    `json:"timeSpent" validate:"gte=0"`
}

// SubmitQuizResponse is the outcome of a quiz submission. It never carries the answer key.
type SubmitQuizResponse struct {
	Score          int  `json:"score"`
	TotalQuestions int  `json:"totalQuestions"`
	Percentage     int  `json:"percentage"`
	Passed         bool `json:"passed"`
	TimeSpent      int  `json:"timeSpent"`
	Attempt        int  `json:"attempt"`
}

// QuizResultsResponse holds the requester's own results of a quiz
type QuizResultsResponse struct {
	Quiz    QuizResultsHeader `json:"quiz"`
	Results []QuizResult      `json:"results"`
}

// QuizResultsHeader is the quiz part of a results response
type QuizResultsHeader struct {
	Title        string `json:"title"`
	PassingScore int    `json:"passingScore"`
	MaxAttempts  int    `json:"maxAttempts"`
}
