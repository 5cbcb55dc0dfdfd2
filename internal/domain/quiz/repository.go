package quiz

import (
	"context"
)

// Repository defines storage operations for quizzes.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// GetByID returns a quiz with its questions and options loaded.
	// Returns shared.ErrQuizNotFound when absent.
	GetByID(ctx context.Context, id int64) (*Quiz, error)
}

// AttemptRepository defines storage operations for graded attempts.
type AttemptRepository interface {
	// CreateAttempt persists an attempt and all of its answer records
	// in a single transaction. A failure leaves no partial rows.
	CreateAttempt(ctx context.Context, attempt *Attempt) error

	// ListByUser returns the attempt history for a user, newest first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]Attempt, error)
}
