// Package quiz contains domain entities and business logic
// for quizzes, their questions and graded attempts.
// This is a pure domain layer with zero external dependencies.
package quiz

import (
	"errors"
	"time"
)

// Domain errors for quiz package.
var (
	ErrInvalidQuizID      = errors.New("quiz: invalid quiz ID")
	ErrInvalidUserID      = errors.New("quiz: invalid user ID")
	ErrEmptyTitle         = errors.New("quiz: title cannot be empty")
	ErrInvalidThreshold   = errors.New("quiz: pass threshold must be between 0 and 100")
	ErrInvalidStatus      = errors.New("quiz: invalid status")
	ErrInvalidQuestion    = errors.New("quiz: invalid question")
	ErrAttemptImmutable   = errors.New("quiz: attempt is immutable once created")
	ErrNoCorrectOption    = errors.New("quiz: question has no correct option")
	ErrDuplicateQuestion  = errors.New("quiz: duplicate question ID")
	ErrNegativeSortOrder  = errors.New("quiz: sort order cannot be negative")
)

// Status defines the publication status of a quiz.
type Status string

const (
	// StatusActive - quiz accepts submissions.
	StatusActive Status = "active"
	// StatusInactive - quiz is hidden and rejects submissions.
	StatusInactive Status = "inactive"
)

// IsValid checks if the status is a known value.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// QuestionType defines the kind of question.
type QuestionType string

const (
	// QuestionTypeMultipleChoice - question with several options, one correct.
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	// QuestionTypeTrueFalse - two-option question.
	QuestionTypeTrueFalse QuestionType = "true_false"
)

// IsValid checks if the question type is known.
func (t QuestionType) IsValid() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// Quiz is the aggregate root owning an ordered list of questions.
type Quiz struct {
	ID               int64
	CourseID         int64
	Title            string
	Description      string
	TimeLimitMinutes int
	// PassThreshold is the minimal score percentage (0-100) required to pass.
	PassThreshold int
	Status        Status
	Questions     []Question
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks quiz invariants.
func (q *Quiz) Validate() error {
	if q.ID <= 0 {
		return ErrInvalidQuizID
	}
	if q.Title == "" {
		return ErrEmptyTitle
	}
	if q.PassThreshold < 0 || q.PassThreshold > 100 {
		return ErrInvalidThreshold
	}
	if !q.Status.IsValid() {
		return ErrInvalidStatus
	}
	seen := make(map[int64]bool, len(q.Questions))
	for i := range q.Questions {
		if seen[q.Questions[i].ID] {
			return ErrDuplicateQuestion
		}
		seen[q.Questions[i].ID] = true
	}
	return nil
}

// IsActive returns true if the quiz accepts submissions.
func (q *Quiz) IsActive() bool {
	return q.Status == StatusActive
}

// QuestionIDs returns the IDs of all questions belonging to the quiz.
func (q *Quiz) QuestionIDs() []int64 {
	ids := make([]int64, 0, len(q.Questions))
	for i := range q.Questions {
		ids = append(ids, q.Questions[i].ID)
	}
	return ids
}

// Question belongs to exactly one quiz and owns an ordered list of options.
type Question struct {
	ID        int64
	QuizID    int64
	Text      string
	Type      QuestionType
	SortOrder int
	Options   []Option
}

// CorrectOptionID returns the ID of the option flagged correct.
// When the data contains several correct options the lowest option ID wins,
// which keeps grading deterministic. Returns 0 when none is flagged.
func (q *Question) CorrectOptionID() int64 {
	var best int64
	for i := range q.Options {
		o := &q.Options[i]
		if !o.IsCorrect {
			continue
		}
		if best == 0 || o.ID < best {
			best = o.ID
		}
	}
	return best
}

// Option is one selectable answer of a question.
type Option struct {
	ID         int64
	QuestionID int64
	Text       string
	IsCorrect  bool
	SortOrder  int
}

// Attempt is one graded submission of answers against a quiz.
// Attempts are append-only: once created they are never mutated.
type Attempt struct {
	ID             string // UUID
	UserID         int64
	QuizID         int64
	Score          int // 0-100
	TotalQuestions int
	CorrectCount   int
	Passed         bool
	CreatedAt      time.Time
	Answers        []AnswerRecord
}

// AnswerRecord is the immutable snapshot of one submitted answer.
type AnswerRecord struct {
	AttemptID        string
	QuestionID       int64
	SelectedOptionID int64
	Correct          bool
}
