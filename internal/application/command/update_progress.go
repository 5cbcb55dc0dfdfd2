package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/learning-platform/internal/domain/course"
	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PROGRESS COMMAND
// Applies one viewing report to the user's accumulated course progress.
// The write is an upsert keyed by (user_id, course_id).
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProgressCommand contains one viewing report.
type UpdateProgressCommand struct {
	// UserID is the learner reporting progress.
	UserID int64

	// CourseID is the course being watched.
	CourseID int64

	// CurrentVideoID is the video the learner is on. Optional; a reference
	// to a video outside the course is silently dropped, not rejected.
	CurrentVideoID *int64

	// WatchedSeconds is the total watched time reported by the client.
	// Out-of-range values are clamped, not rejected.
	WatchedSeconds int

	// IsCompleted explicitly marks the course finished regardless of the
	// computed percentage.
	IsCompleted bool
}

// Validate validates the command.
func (c UpdateProgressCommand) Validate() error {
	if c.UserID <= 0 {
		return errors.New("update_progress: user_id is required")
	}
	if c.CourseID <= 0 {
		return errors.New("update_progress: course_id is required")
	}
	return nil
}

// UpdateProgressResult contains the stored progress after the update.
type UpdateProgressResult struct {
	UserID             int64      `json:"user_id"`
	CourseID           int64      `json:"course_id"`
	CurrentVideoID     *int64     `json:"current_video_id,omitempty"`
	ProgressPercentage int        `json:"progress_percentage"`
	IsCompleted        bool       `json:"is_completed"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	LastAccessedAt     time.Time  `json:"last_accessed_at"`

	// JustCompleted is true only on the transition into the completed state.
	JustCompleted bool `json:"just_completed"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProgressHandler handles the UpdateProgressCommand.
type UpdateProgressHandler struct {
	courseRepo     course.Repository
	progressRepo   course.ProgressRepository
	eventPublisher shared.EventPublisher
}

// NewUpdateProgressHandler creates a new UpdateProgressHandler.
func NewUpdateProgressHandler(
	courseRepo course.Repository,
	progressRepo course.ProgressRepository,
	eventPublisher shared.EventPublisher,
) *UpdateProgressHandler {
	return &UpdateProgressHandler{
		courseRepo:     courseRepo,
		progressRepo:   progressRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the update progress command.
func (h *UpdateProgressHandler) Handle(ctx context.Context, cmd UpdateProgressCommand) (*UpdateProgressResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("course", "UpdateProgress", shared.ErrValidation, "invalid report", err)
	}

	// Archived courses are reported as missing by the repository.
	if _, err := h.courseRepo.GetByID(ctx, cmd.CourseID); err != nil {
		return nil, fmt.Errorf("update_progress: failed to get course: %w", err)
	}

	videos, err := h.courseRepo.GetVideos(ctx, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("update_progress: failed to get videos: %w", err)
	}

	now := timeutil.NowUTC()

	progress, err := h.progressRepo.Get(ctx, cmd.UserID, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("update_progress: failed to get progress: %w", err)
	}
	if progress == nil {
		progress = course.NewCourseProgress(cmd.UserID, cmd.CourseID, now)
	}

	wasCompleted := progress.IsCompleted()

	progress.ApplyUpdate(course.ProgressUpdate{
		CurrentVideoID: cmd.CurrentVideoID,
		WatchedSeconds: cmd.WatchedSeconds,
		IsCompleted:    cmd.IsCompleted,
	}, videos, now)

	if err := h.progressRepo.Upsert(ctx, progress); err != nil {
		return nil, fmt.Errorf("update_progress: failed to save progress: %w", err)
	}

	aggregateID := fmt.Sprintf("%d:%d", cmd.UserID, cmd.CourseID)
	_ = h.eventPublisher.Publish(shared.NewProgressUpdatedEvent(
		aggregateID, cmd.UserID, cmd.CourseID, progress.ProgressPercentage,
	))

	justCompleted := !wasCompleted && progress.IsCompleted()
	if justCompleted {
		_ = h.eventPublisher.Publish(shared.NewCourseCompletedEvent(
			aggregateID, cmd.UserID, cmd.CourseID,
		))
	}

	return &UpdateProgressResult{
		UserID:             progress.UserID,
		CourseID:           progress.CourseID,
		CurrentVideoID:     progress.CurrentVideoID,
		ProgressPercentage: progress.ProgressPercentage,
		IsCompleted:        progress.IsCompleted(),
		CompletedAt:        progress.CompletedAt,
		LastAccessedAt:     progress.LastAccessedAt,
		JustCompleted:      justCompleted,
	}, nil
}
