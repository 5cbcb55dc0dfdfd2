// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learning-platform/internal/domain/course"
	"github.com/learnhub/learning-platform/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET COURSE PROGRESS QUERY
// Возвращает накопленный прогресс пользователя по одному курсу.
// Отсутствие записи - не ошибка: пользователь просто ещё не начинал курс,
// и клиент получает нулевой прогресс со Started=false.
// ══════════════════════════════════════════════════════════════════════════════

// GetCourseProgressQuery содержит параметры запроса прогресса.
type GetCourseProgressQuery struct {
	// UserID - пользователь, чей прогресс запрашивается.
	UserID int64

	// CourseID - курс.
	CourseID int64
}

// Validate проверяет корректность параметров.
func (q GetCourseProgressQuery) Validate() error {
	if q.UserID <= 0 {
		return errors.New("get_course_progress: user_id is required")
	}
	if q.CourseID <= 0 {
		return errors.New("get_course_progress: course_id is required")
	}
	return nil
}

// CourseProgressDTO - прогресс по курсу для выдачи клиенту.
type CourseProgressDTO struct {
	UserID   int64 `json:"user_id"`
	CourseID int64 `json:"course_id"`

	// Started - false, если записи прогресса ещё нет.
	Started bool `json:"started"`

	CurrentVideoID     *int64     `json:"current_video_id,omitempty"`
	ProgressPercentage int        `json:"progress_percentage"`
	IsCompleted        bool       `json:"is_completed"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	LastAccessedAt     *time.Time `json:"last_accessed_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// GetCourseProgressHandler обрабатывает запросы прогресса по курсу.
type GetCourseProgressHandler struct {
	courseRepo   course.Repository
	progressRepo course.ProgressRepository
}

// NewGetCourseProgressHandler создаёт новый обработчик.
func NewGetCourseProgressHandler(
	courseRepo course.Repository,
	progressRepo course.ProgressRepository,
) *GetCourseProgressHandler {
	return &GetCourseProgressHandler{
		courseRepo:   courseRepo,
		progressRepo: progressRepo,
	}
}

// Handle выполняет запрос.
func (h *GetCourseProgressHandler) Handle(ctx context.Context, query GetCourseProgressQuery) (*CourseProgressDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetCourseProgress", shared.ErrValidation, err.Error(), err)
	}

	// Архивный курс для читателя не существует.
	if _, err := h.courseRepo.GetByID(ctx, query.CourseID); err != nil {
		return nil, fmt.Errorf("get_course_progress: failed to get course: %w", err)
	}

	progress, err := h.progressRepo.Get(ctx, query.UserID, query.CourseID)
	if err != nil {
		return nil, fmt.Errorf("get_course_progress: failed to get progress: %w", err)
	}

	if progress == nil {
		return &CourseProgressDTO{
			UserID:   query.UserID,
			CourseID: query.CourseID,
			Started:  false,
		}, nil
	}

	return &CourseProgressDTO{
		UserID:             progress.UserID,
		CourseID:           progress.CourseID,
		Started:            true,
		CurrentVideoID:     progress.CurrentVideoID,
		ProgressPercentage: progress.ProgressPercentage,
		IsCompleted:        progress.IsCompleted(),
		StartedAt:          &progress.StartedAt,
		LastAccessedAt:     &progress.LastAccessedAt,
		CompletedAt:        progress.CompletedAt,
	}, nil
}
