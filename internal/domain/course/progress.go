package course

import (
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE PROGRESS
// Прогресс уникален для пары (user_id, course_id) и обновляется через upsert.
// Инварианты:
//   - StartedAt устанавливается один раз при создании записи
//   - LastAccessedAt обновляется при каждой записи
//   - CompletedAt устанавливается один раз при достижении 100% и никогда
//     не сбрасывается и не передвигается назад
// ══════════════════════════════════════════════════════════════════════════════

// CourseProgress - накопленный прогресс пользователя по курсу.
type CourseProgress struct {
	UserID   int64
	CourseID int64

	// CurrentVideoID - последнее просматриваемое видео. Null, если клиент
	// прислал ссылку на видео из другого курса (см. ApplyUpdate).
	CurrentVideoID *int64

	// ProgressPercentage - нормализованный процент просмотра, 0-100.
	ProgressPercentage int

	StartedAt      time.Time
	LastAccessedAt time.Time
	CompletedAt    *time.Time
}

// ProgressUpdate - входные данные одного отчёта о просмотре.
type ProgressUpdate struct {
	CurrentVideoID *int64
	WatchedSeconds int
	IsCompleted    bool
}

// NewCourseProgress создаёт первую запись прогресса для пары (user, course).
func NewCourseProgress(userID, courseID int64, now time.Time) *CourseProgress {
	return &CourseProgress{
		UserID:         userID,
		CourseID:       courseID,
		StartedAt:      now,
		LastAccessedAt: now,
	}
}

// ComputePercentage вычисляет процент просмотра курса.
// Просмотренные секунды зажимаются в диапазон [0, totalDuration],
// результат округляется вниз. При нулевой длительности курса процент
// равен нулю - деление на ноль исключено по определению.
func ComputePercentage(watchedSeconds, totalDurationSeconds int) int {
	if totalDurationSeconds <= 0 {
		return 0
	}
	watched := watchedSeconds
	if watched < 0 {
		watched = 0
	}
	if watched > totalDurationSeconds {
		watched = totalDurationSeconds
	}
	return watched * 100 / totalDurationSeconds
}

// ApplyUpdate применяет отчёт о просмотре к записи прогресса.
//
// Явное isCompleted всегда побеждает вычисленный процент: даже при нулевом
// времени просмотра процент форсируется до 100. Ссылка на видео чужого курса
// молча обнуляется, а не отклоняется - клиент может прислать устаревшее
// состояние, и это не повод ломать запись прогресса.
func (p *CourseProgress) ApplyUpdate(update ProgressUpdate, courseVideos []Video, now time.Time) {
	percentage := ComputePercentage(update.WatchedSeconds, TotalDuration(courseVideos))
	if update.IsCompleted && percentage < 100 {
		percentage = 100
	}

	var videoID *int64
	if update.CurrentVideoID != nil && *update.CurrentVideoID > 0 &&
		ContainsVideo(courseVideos, *update.CurrentVideoID) {
		videoID = update.CurrentVideoID
	}

	p.CurrentVideoID = videoID
	p.ProgressPercentage = percentage
	p.LastAccessedAt = now

	// CompletedAt ставится один раз и больше не трогается.
	if update.IsCompleted && p.CompletedAt == nil {
		completed := now
		p.CompletedAt = &completed
	}
}

// IsCompleted возвращает true, если курс завершён.
func (p *CourseProgress) IsCompleted() bool {
	return p.CompletedAt != nil
}
