package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learning-platform/internal/domain/course"
	"github.com/learnhub/learning-platform/internal/domain/shared"
)

func newProgressHandler() (*UpdateProgressHandler, *fakeProgressRepo, *capturingPublisher) {
	courseRepo := &fakeCourseRepo{
		courses: map[int64]*course.Course{
			1: {ID: 1, Title: "Go course", Status: course.StatusPublished},
			2: {ID: 2, Title: "Old course", Status: course.StatusArchived},
		},
		videos: map[int64][]course.Video{
			1: {
				{ID: 11, CourseID: 1, DurationSeconds: 600, SortOrder: 1},
				{ID: 12, CourseID: 1, DurationSeconds: 400, SortOrder: 2},
			},
		},
	}
	progressRepo := newFakeProgressRepo()
	pub := &capturingPublisher{}
	return NewUpdateProgressHandler(courseRepo, progressRepo, pub), progressRepo, pub
}

func int64ptr(v int64) *int64 { return &v }

func TestUpdateProgress_CreatesRecord(t *testing.T) {
	h, repo, pub := newProgressHandler()

	result, err := h.Handle(context.Background(), UpdateProgressCommand{
		UserID:         5,
		CourseID:       1,
		CurrentVideoID: int64ptr(11),
		WatchedSeconds: 250,
	})
	require.NoError(t, err)

	assert.Equal(t, 25, result.ProgressPercentage)
	assert.False(t, result.IsCompleted)
	assert.False(t, result.JustCompleted)
	require.NotNil(t, result.CurrentVideoID)
	assert.Equal(t, int64(11), *result.CurrentVideoID)

	stored, err := repo.Get(context.Background(), 5, 1)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 25, stored.ProgressPercentage)
	assert.False(t, stored.StartedAt.IsZero())

	assert.Len(t, pub.byType(shared.EventProgressUpdated), 1)
	assert.Empty(t, pub.byType(shared.EventCourseCompleted))
}

func TestUpdateProgress_ForeignVideoDropped(t *testing.T) {
	h, _, _ := newProgressHandler()

	result, err := h.Handle(context.Background(), UpdateProgressCommand{
		UserID:         5,
		CourseID:       1,
		CurrentVideoID: int64ptr(999),
		WatchedSeconds: 100,
	})
	require.NoError(t, err)

	// Видео чужого курса молча обнуляется.
	assert.Nil(t, result.CurrentVideoID)
	assert.Equal(t, 10, result.ProgressPercentage)
}

func TestUpdateProgress_WatchedSecondsClamped(t *testing.T) {
	h, _, _ := newProgressHandler()

	result, err := h.Handle(context.Background(), UpdateProgressCommand{
		UserID:         5,
		CourseID:       1,
		WatchedSeconds: 100000,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, result.ProgressPercentage)

	result, err = h.Handle(context.Background(), UpdateProgressCommand{
		UserID:         6,
		CourseID:       1,
		WatchedSeconds: -50,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ProgressPercentage)
}

func TestUpdateProgress_CompletionTransition(t *testing.T) {
	h, _, pub := newProgressHandler()

	result, err := h.Handle(context.Background(), UpdateProgressCommand{
		UserID:      5,
		CourseID:    1,
		IsCompleted: true,
	})
	require.NoError(t, err)

	// Явный флаг побеждает вычисленный процент.
	assert.Equal(t, 100, result.ProgressPercentage)
	assert.True(t, result.IsCompleted)
	assert.True(t, result.JustCompleted)
	require.NotNil(t, result.CompletedAt)
	assert.Len(t, pub.byType(shared.EventCourseCompleted), 1)

	// Повторный отчёт о завершении - не переход.
	result, err = h.Handle(context.Background(), UpdateProgressCommand{
		UserID:      5,
		CourseID:    1,
		IsCompleted: true,
	})
	require.NoError(t, err)
	assert.False(t, result.JustCompleted)
	assert.Len(t, pub.byType(shared.EventCourseCompleted), 1)
}

func TestUpdateProgress_CompletedAtNeverMoves(t *testing.T) {
	h, repo, _ := newProgressHandler()
	ctx := context.Background()

	_, err := h.Handle(ctx, UpdateProgressCommand{UserID: 5, CourseID: 1, IsCompleted: true})
	require.NoError(t, err)

	first, err := repo.Get(ctx, 5, 1)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)

	_, err = h.Handle(ctx, UpdateProgressCommand{UserID: 5, CourseID: 1, IsCompleted: true, WatchedSeconds: 1000})
	require.NoError(t, err)

	second, err := repo.Get(ctx, 5, 1)
	require.NoError(t, err)
	require.NotNil(t, second.CompletedAt)
	assert.Equal(t, *first.CompletedAt, *second.CompletedAt)
}

func TestUpdateProgress_ArchivedCourse(t *testing.T) {
	h, repo, _ := newProgressHandler()

	_, err := h.Handle(context.Background(), UpdateProgressCommand{
		UserID:         5,
		CourseID:       2,
		WatchedSeconds: 10,
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	stored, err := repo.Get(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestUpdateProgress_Validation(t *testing.T) {
	h, _, _ := newProgressHandler()

	_, err := h.Handle(context.Background(), UpdateProgressCommand{UserID: 0, CourseID: 1})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(context.Background(), UpdateProgressCommand{UserID: 5, CourseID: -1})
	assert.True(t, shared.IsValidation(err))
}
