// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/learnhub/learning-platform/internal/domain/quiz"
	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT ATTEMPT COMMAND
// Grades one answer set against a quiz and records the attempt. Attempts are
// append-only: resubmitting creates a new attempt, never overwrites one.
// ══════════════════════════════════════════════════════════════════════════════

// SubmittedAnswer is one (question, selected option) pair from the client.
type SubmittedAnswer struct {
	QuestionID       int64
	SelectedOptionID int64
}

// SubmitAttemptCommand contains the data to grade a quiz submission.
type SubmitAttemptCommand struct {
	// UserID is the submitting learner.
	UserID int64

	// QuizID is the quiz being attempted.
	QuizID int64

	// Answers are the submitted answers. An empty set is a valid
	// submission and grades to zero.
	Answers []SubmittedAnswer
}

// Validate validates the command.
func (c SubmitAttemptCommand) Validate() error {
	if c.UserID <= 0 {
		return errors.New("submit_attempt: user_id is required")
	}
	if c.QuizID <= 0 {
		return errors.New("submit_attempt: quiz_id is required")
	}
	for _, a := range c.Answers {
		if a.QuestionID <= 0 {
			return errors.New("submit_attempt: answer question_id is required")
		}
		if a.SelectedOptionID <= 0 {
			return errors.New("submit_attempt: answer selected_option_id is required")
		}
	}
	return nil
}

// AnswerResult is the per-question diagnostic returned to the learner.
type AnswerResult struct {
	QuestionID      int64 `json:"question_id"`
	Correct         bool  `json:"correct"`
	CorrectOptionID int64 `json:"correct_option_id"`
}

// SubmitAttemptResult contains the graded outcome.
type SubmitAttemptResult struct {
	AttemptID      string         `json:"attempt_id"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	CorrectCount   int            `json:"correct_count"`
	Passed         bool           `json:"passed"`
	Results        []AnswerResult `json:"results"`
	SubmittedAt    time.Time      `json:"submitted_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SubmitAttemptHandler handles the SubmitAttemptCommand.
type SubmitAttemptHandler struct {
	quizRepo       quiz.Repository
	attemptRepo    quiz.AttemptRepository
	eventPublisher shared.EventPublisher
}

// NewSubmitAttemptHandler creates a new SubmitAttemptHandler.
func NewSubmitAttemptHandler(
	quizRepo quiz.Repository,
	attemptRepo quiz.AttemptRepository,
	eventPublisher shared.EventPublisher,
) *SubmitAttemptHandler {
	return &SubmitAttemptHandler{
		quizRepo:       quizRepo,
		attemptRepo:    attemptRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the submit attempt command.
func (h *SubmitAttemptHandler) Handle(ctx context.Context, cmd SubmitAttemptCommand) (*SubmitAttemptResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("quiz", "Submit", shared.ErrValidation, "invalid submission", err)
	}

	q, err := h.quizRepo.GetByID(ctx, cmd.QuizID)
	if err != nil {
		return nil, fmt.Errorf("submit_attempt: failed to get quiz: %w", err)
	}

	// An inactive quiz is indistinguishable from a missing one.
	if !q.IsActive() {
		return nil, shared.ErrQuizInactive
	}

	answers := make([]quiz.Answer, 0, len(cmd.Answers))
	for _, a := range cmd.Answers {
		answers = append(answers, quiz.Answer{
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
		})
	}

	graded := quiz.Grade(q, answers)

	now := timeutil.NowUTC()
	attempt := quiz.NewAttempt(uuid.NewString(), cmd.UserID, q, answers, graded, now)

	if err := h.attemptRepo.CreateAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("submit_attempt: failed to persist attempt: %w", err)
	}

	event := shared.NewAttemptGradedEvent(attempt.ID, cmd.UserID, q.ID, graded.Score, graded.CorrectCount, graded.Passed)
	_ = h.eventPublisher.Publish(event)

	results := make([]AnswerResult, 0, len(graded.Results))
	for _, r := range graded.Results {
		results = append(results, AnswerResult{
			QuestionID:      r.QuestionID,
			Correct:         r.Correct,
			CorrectOptionID: r.CorrectOptionID,
		})
	}

	return &SubmitAttemptResult{
		AttemptID:      attempt.ID,
		Score:          graded.Score,
		TotalQuestions: graded.TotalQuestions,
		CorrectCount:   graded.CorrectCount,
		Passed:         graded.Passed,
		Results:        results,
		SubmittedAt:    now,
	}, nil
}
