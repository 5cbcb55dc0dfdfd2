package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowUTC(t *testing.T) {
	got := NowUTC()
	assert.Equal(t, time.UTC, got.Location())
	assert.WithinDuration(t, time.Now(), got, time.Second)
}

func TestWindowEnd(t *testing.T) {
	start := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, start.Add(30*24*time.Hour), WindowEnd(start, 30))

	// Non-UTC input is normalized before the window is applied.
	loc := time.FixedZone("UTC+5", 5*3600)
	local := start.In(loc)
	assert.Equal(t, WindowEnd(start, 30), WindowEnd(local, 30))
}
