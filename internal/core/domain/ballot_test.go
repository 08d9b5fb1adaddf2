package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBallotWindow(t *testing.T) {
	start := time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.May, 1, 18, 0, 0, 0, time.UTC)
	ballot := &Ballot{StartsAt: start, EndsAt: end, Active: true}

	tests := []struct {
		name   string
		now    time.Time
		open   bool
		status BallotStatus
	}{
		{"before start", start.Add(-time.Second), false, BallotStatusUpcoming},
		{"at start", start, true, BallotStatusOpen},
		{"midway", start.Add(4 * time.Hour), true, BallotStatusOpen},
		{"last instant", end.Add(-time.Nanosecond), true, BallotStatusOpen},
		{"at end", end, false, BallotStatusClosed},
		{"after end", end.Add(time.Hour), false, BallotStatusClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.open, ballot.IsOpen(tt.now))
			assert.Equal(t, tt.status, ballot.Status(tt.now))
		})
	}
}

func TestInactiveBallotIsClosed(t *testing.T) {
	start := time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)
	ballot := &Ballot{StartsAt: start, EndsAt: start.Add(time.Hour), Active: false}

	assert.False(t, ballot.IsOpen(start.Add(time.Minute)))
	assert.Equal(t, BallotStatusClosed, ballot.Status(start.Add(-time.Minute)))
}

func TestOptionLabel(t *testing.T) {
	assert.Equal(t, "A", OptionLabel(0))
	assert.Equal(t, "B", OptionLabel(1))
	assert.Equal(t, "Z", OptionLabel(MaxOptionsPerBallot-1))
}
