package postgres

import (
	"context"
	"fmt"

	"github.com/learnhub/learning-platform/internal/domain/course"
	"github.com/learnhub/learning-platform/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository implements course.Repository for PostgreSQL.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

// GetByID returns a course by ID. Archived courses are treated as absent:
// progress reports against them must fail the same way as against a
// course that never existed.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*course.Course, error) {
	query := `
		SELECT id, title, description, category_id, difficulty, is_premium,
			   status, sort_order, created_at, updated_at, published_at
		FROM courses
		WHERE id = $1 AND status != 'archived'
	`

	c := &course.Course{}
	err := r.conn.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.CategoryID,
		&c.Difficulty,
		&c.IsPremium,
		&c.Status,
		&c.SortOrder,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.PublishedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return c, nil
}

// GetVideos returns all videos of a course ordered by sort_order.
func (r *CourseRepository) GetVideos(ctx context.Context, courseID int64) ([]course.Video, error) {
	query := `
		SELECT id, course_id, title, video_url, duration_seconds,
			   sort_order, is_premium, created_at, updated_at
		FROM course_videos
		WHERE course_id = $1
		ORDER BY sort_order, id
	`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []course.Video
	for rows.Next() {
		var v course.Video
		if err := rows.Scan(
			&v.ID,
			&v.CourseID,
			&v.Title,
			&v.VideoURL,
			&v.DurationSeconds,
			&v.SortOrder,
			&v.IsPremium,
			&v.CreatedAt,
			&v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, v)
	}

	return videos, rows.Err()
}
