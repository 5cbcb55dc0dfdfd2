// Package course содержит доменную модель каталога курсов и прогресса обучения.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package course

import (
	"errors"
	"time"
)

// Доменные ошибки пакета course.
var (
	ErrInvalidCourseID  = errors.New("course: invalid course ID")
	ErrInvalidUserID    = errors.New("course: invalid user ID")
	ErrEmptyTitle       = errors.New("course: title cannot be empty")
	ErrInvalidStatus    = errors.New("course: invalid publish status")
	ErrNegativeDuration = errors.New("course: duration cannot be negative")
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// PublishStatus определяет статус публикации курса.
type PublishStatus string

const (
	// StatusDraft - курс в черновике, не виден студентам.
	StatusDraft PublishStatus = "draft"
	// StatusPublished - курс опубликован.
	StatusPublished PublishStatus = "published"
	// StatusArchived - курс в архиве, скрыт из каталога.
	StatusArchived PublishStatus = "archived"
)

// IsValid проверяет, что статус корректен.
func (s PublishStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	default:
		return false
	}
}

// IsVisible возвращает true, если курс доступен студентам.
func (s PublishStatus) IsVisible() bool {
	return s == StatusPublished
}

// Difficulty определяет уровень сложности курса.
type Difficulty string

const (
	// DifficultyBeginner - для начинающих.
	DifficultyBeginner Difficulty = "Beginner"
	// DifficultyIntermediate - средний уровень.
	DifficultyIntermediate Difficulty = "Intermediate"
	// DifficultyAdvanced - продвинутый уровень.
	DifficultyAdvanced Difficulty = "Advanced"
)

// IsValid проверяет корректность уровня сложности.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Category - категория каталога курсов.
type Category struct {
	ID        int64
	Name      string
	SortOrder int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Course - сущность курса. Владеет упорядоченным списком видео.
type Course struct {
	ID          int64
	Title       string
	Description string
	CategoryID  *int64
	Difficulty  Difficulty
	IsPremium   bool
	Status      PublishStatus
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
}

// Validate проверяет инварианты курса.
func (c *Course) Validate() error {
	if c.ID <= 0 {
		return ErrInvalidCourseID
	}
	if c.Title == "" {
		return ErrEmptyTitle
	}
	if !c.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Video - видео, принадлежащее ровно одному курсу.
type Video struct {
	ID              int64
	CourseID        int64
	Title           string
	VideoURL        string
	DurationSeconds int
	SortOrder       int
	IsPremium       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TotalDuration суммирует длительность всех видео курса в секундах.
func TotalDuration(videos []Video) int {
	total := 0
	for i := range videos {
		if videos[i].DurationSeconds > 0 {
			total += videos[i].DurationSeconds
		}
	}
	return total
}

// ContainsVideo возвращает true, если видео с данным ID принадлежит списку.
func ContainsVideo(videos []Video, videoID int64) bool {
	for i := range videos {
		if videos[i].ID == videoID {
			return true
		}
	}
	return false
}
