package course

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции чтения каталога курсов.
type Repository interface {
	// GetByID возвращает курс по ID. Возвращает shared.ErrCourseNotFound,
	// если курс отсутствует или в архиве.
	GetByID(ctx context.Context, id int64) (*Course, error)

	// GetVideos возвращает все видео курса, упорядоченные по sort_order.
	GetVideos(ctx context.Context, courseID int64) ([]Video, error)
}

// ProgressRepository определяет операции с прогрессом пользователя.
type ProgressRepository interface {
	// Get возвращает запись прогресса для пары (userID, courseID)
	// или nil, если записи ещё нет.
	Get(ctx context.Context, userID, courseID int64) (*CourseProgress, error)

	// Upsert создаёт или обновляет запись прогресса. Реализация обязана
	// гарантировать, что completed_at, однажды установленный, не будет
	// перезаписан конкурентной записью (guard "set only if null").
	Upsert(ctx context.Context, progress *CourseProgress) error

	// ListByUser возвращает все записи прогресса пользователя.
	ListByUser(ctx context.Context, userID int64) ([]CourseProgress, error)
}
