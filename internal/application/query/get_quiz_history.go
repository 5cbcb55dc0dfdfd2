package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learning-platform/internal/domain/quiz"
	"github.com/learnhub/learning-platform/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET QUIZ HISTORY QUERY
// Возвращает историю попыток пользователя, новые сверху.
// Попытки неизменяемы, поэтому история - это просто чтение журнала.
// ══════════════════════════════════════════════════════════════════════════════

// Значения по умолчанию для пагинации истории.
const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// GetQuizHistoryQuery содержит параметры запроса истории попыток.
type GetQuizHistoryQuery struct {
	// UserID - пользователь, чья история запрашивается.
	UserID int64

	// Limit - максимум записей (по умолчанию 20, не больше 100).
	Limit int
}

// Validate проверяет параметры и подставляет значения по умолчанию.
func (q *GetQuizHistoryQuery) Validate() error {
	if q.UserID <= 0 {
		return errors.New("get_quiz_history: user_id is required")
	}
	if q.Limit <= 0 {
		q.Limit = defaultHistoryLimit
	}
	if q.Limit > maxHistoryLimit {
		q.Limit = maxHistoryLimit
	}
	return nil
}

// AttemptDTO - одна попытка в истории.
type AttemptDTO struct {
	AttemptID      string    `json:"attempt_id"`
	QuizID         int64     `json:"quiz_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CorrectCount   int       `json:"correct_count"`
	Passed         bool      `json:"passed"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// GetQuizHistoryResult содержит историю попыток.
type GetQuizHistoryResult struct {
	UserID   int64        `json:"user_id"`
	Attempts []AttemptDTO `json:"attempts"`
}

// GetQuizHistoryHandler обрабатывает запросы истории попыток.
type GetQuizHistoryHandler struct {
	attemptRepo quiz.AttemptRepository
}

// NewGetQuizHistoryHandler создаёт новый обработчик.
func NewGetQuizHistoryHandler(attemptRepo quiz.AttemptRepository) *GetQuizHistoryHandler {
	return &GetQuizHistoryHandler{attemptRepo: attemptRepo}
}

// Handle выполняет запрос.
func (h *GetQuizHistoryHandler) Handle(ctx context.Context, query GetQuizHistoryQuery) (*GetQuizHistoryResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetQuizHistory", shared.ErrValidation, err.Error(), err)
	}

	attempts, err := h.attemptRepo.ListByUser(ctx, query.UserID, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("get_quiz_history: failed to list attempts: %w", err)
	}

	result := &GetQuizHistoryResult{
		UserID:   query.UserID,
		Attempts: make([]AttemptDTO, 0, len(attempts)),
	}
	for i := range attempts {
		a := &attempts[i]
		result.Attempts = append(result.Attempts, AttemptDTO{
			AttemptID:      a.ID,
			QuizID:         a.QuizID,
			Score:          a.Score,
			TotalQuestions: a.TotalQuestions,
			CorrectCount:   a.CorrectCount,
			Passed:         a.Passed,
			SubmittedAt:    a.CreatedAt,
		})
	}
	return result, nil
}
