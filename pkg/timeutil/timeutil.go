// Package timeutil provides UTC time helpers for the learning platform.
// Entitlement windows and progress timestamps are always computed in UTC;
// local rendering is the client's job.
package timeutil

import (
	"time"
)

// NowUTC returns the current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// WindowEnd returns the end of a fixed-length window in days starting at t.
func WindowEnd(t time.Time, days int) time.Time {
	return t.UTC().Add(time.Duration(days) * 24 * time.Hour)
}
