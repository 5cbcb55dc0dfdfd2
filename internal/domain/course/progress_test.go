package course

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testVideos = []Video{
	{ID: 1, CourseID: 10, DurationSeconds: 100},
	{ID: 2, CourseID: 10, DurationSeconds: 200},
}

func TestComputePercentage(t *testing.T) {
	tests := []struct {
		name    string
		watched int
		total   int
		want    int
	}{
		{"half", 150, 300, 50},
		{"zero watched", 0, 300, 0},
		{"full", 300, 300, 100},
		{"over total clamps", 500, 300, 100},
		{"negative clamps", -10, 300, 0},
		{"zero duration", 150, 0, 0},
		{"negative duration", 150, -1, 0},
		{"floors", 100, 300, 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputePercentage(tt.watched, tt.total))
		})
	}
}

func TestApplyUpdate_ComputesPercentage(t *testing.T) {
	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	p := NewCourseProgress(7, 10, now)

	p.ApplyUpdate(ProgressUpdate{WatchedSeconds: 150}, testVideos, now)

	assert.Equal(t, 50, p.ProgressPercentage)
	assert.Equal(t, now, p.LastAccessedAt)
	assert.Nil(t, p.CompletedAt)
}

func TestApplyUpdate_ExplicitCompletionWins(t *testing.T) {
	now := time.Now().UTC()
	p := NewCourseProgress(7, 10, now)

	// isCompleted forces 100 even with zero watch time.
	p.ApplyUpdate(ProgressUpdate{WatchedSeconds: 0, IsCompleted: true}, testVideos, now)

	assert.Equal(t, 100, p.ProgressPercentage)
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, now, *p.CompletedAt)
}

func TestApplyUpdate_CompletedAtSetOnce(t *testing.T) {
	first := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(24 * time.Hour)
	p := NewCourseProgress(7, 10, first)

	p.ApplyUpdate(ProgressUpdate{WatchedSeconds: 300, IsCompleted: true}, testVideos, first)
	require.NotNil(t, p.CompletedAt)
	completedAt := *p.CompletedAt

	// A later non-completing write must not clear or move completed_at.
	p.ApplyUpdate(ProgressUpdate{WatchedSeconds: 10, IsCompleted: false}, testVideos, later)
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, completedAt, *p.CompletedAt)
	assert.Equal(t, 3, p.ProgressPercentage)
	assert.Equal(t, later, p.LastAccessedAt)

	// Neither must a later completing write.
	p.ApplyUpdate(ProgressUpdate{WatchedSeconds: 300, IsCompleted: true}, testVideos, later)
	assert.Equal(t, completedAt, *p.CompletedAt)
}

func TestApplyUpdate_Idempotent(t *testing.T) {
	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	p := NewCourseProgress(7, 10, now)
	update := ProgressUpdate{WatchedSeconds: 150}

	p.ApplyUpdate(update, testVideos, now)
	started := p.StartedAt
	pct := p.ProgressPercentage

	p.ApplyUpdate(update, testVideos, now)

	assert.Equal(t, pct, p.ProgressPercentage)
	assert.Equal(t, started, p.StartedAt)
}

func TestApplyUpdate_InvalidVideoSilentlyNulled(t *testing.T) {
	now := time.Now().UTC()
	p := NewCourseProgress(7, 10, now)

	stale := int64(999) // belongs to another course
	p.ApplyUpdate(ProgressUpdate{CurrentVideoID: &stale, WatchedSeconds: 50}, testVideos, now)
	assert.Nil(t, p.CurrentVideoID)

	valid := int64(2)
	p.ApplyUpdate(ProgressUpdate{CurrentVideoID: &valid, WatchedSeconds: 50}, testVideos, now)
	require.NotNil(t, p.CurrentVideoID)
	assert.Equal(t, int64(2), *p.CurrentVideoID)

	zero := int64(0)
	p.ApplyUpdate(ProgressUpdate{CurrentVideoID: &zero, WatchedSeconds: 50}, testVideos, now)
	assert.Nil(t, p.CurrentVideoID)
}

func TestApplyUpdate_CourseWithoutVideos(t *testing.T) {
	now := time.Now().UTC()
	p := NewCourseProgress(7, 10, now)

	p.ApplyUpdate(ProgressUpdate{WatchedSeconds: 500}, nil, now)

	assert.Equal(t, 0, p.ProgressPercentage)
}

func TestTotalDuration(t *testing.T) {
	assert.Equal(t, 300, TotalDuration(testVideos))
	assert.Equal(t, 0, TotalDuration(nil))
	// Negative durations in bad data are ignored.
	assert.Equal(t, 100, TotalDuration([]Video{
		{ID: 1, DurationSeconds: 100},
		{ID: 2, DurationSeconds: -50},
	}))
}
