package services

import (
	"time"

	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() ports.Clock { return systemClock{} }

func resolveClock(c ports.Clock) ports.Clock {
	if c == nil {
		return systemClock{}
	}
	return c
}

func resolveLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
