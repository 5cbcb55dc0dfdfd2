package postgres

import (
	"context"
	"fmt"

	"github.com/learnhub/learning-platform/internal/domain/course"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository implements course.ProgressRepository for PostgreSQL.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

// Get returns the progress record for (userID, courseID), or nil if the
// user has not started the course yet.
func (r *ProgressRepository) Get(ctx context.Context, userID, courseID int64) (*course.CourseProgress, error) {
	query := `
		SELECT user_id, course_id, current_video_id, progress_percentage,
			   started_at, last_accessed_at, completed_at
		FROM user_course_progress
		WHERE user_id = $1 AND course_id = $2
	`

	p := &course.CourseProgress{}
	err := r.conn.QueryRow(ctx, query, userID, courseID).Scan(
		&p.UserID,
		&p.CourseID,
		&p.CurrentVideoID,
		&p.ProgressPercentage,
		&p.StartedAt,
		&p.LastAccessedAt,
		&p.CompletedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return p, nil
}

// Upsert creates or updates a progress record. The COALESCE on completed_at
// keeps a completion timestamp that is already set: a concurrent or stale
// report can never clear or move it.
func (r *ProgressRepository) Upsert(ctx context.Context, progress *course.CourseProgress) error {
	query := `
		INSERT INTO user_course_progress (
			user_id, course_id, current_video_id, progress_percentage,
			started_at, last_accessed_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, course_id) DO UPDATE SET
			current_video_id = EXCLUDED.current_video_id,
			progress_percentage = EXCLUDED.progress_percentage,
			last_accessed_at = EXCLUDED.last_accessed_at,
			completed_at = COALESCE(user_course_progress.completed_at, EXCLUDED.completed_at),
			updated_at = NOW()
	`

	_, err := r.conn.Exec(ctx, query,
		progress.UserID,
		progress.CourseID,
		progress.CurrentVideoID,
		progress.ProgressPercentage,
		progress.StartedAt,
		progress.LastAccessedAt,
		progress.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}

	return nil
}

// ListByUser returns every progress record of a user, most recently
// accessed first.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID int64) ([]course.CourseProgress, error) {
	query := `
		SELECT user_id, course_id, current_video_id, progress_percentage,
			   started_at, last_accessed_at, completed_at
		FROM user_course_progress
		WHERE user_id = $1
		ORDER BY last_accessed_at DESC
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var records []course.CourseProgress
	for rows.Next() {
		var p course.CourseProgress
		if err := rows.Scan(
			&p.UserID,
			&p.CourseID,
			&p.CurrentVideoID,
			&p.ProgressPercentage,
			&p.StartedAt,
			&p.LastAccessedAt,
			&p.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		records = append(records, p)
	}

	return records, rows.Err()
}
