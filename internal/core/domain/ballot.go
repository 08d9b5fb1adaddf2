package domain

import (
	"time"

	"github.com/google/uuid"
)

type Ballot struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	StartsAt           time.Time  `json:"starts_at"`
	EndsAt             time.Time  `json:"ends_at"`
	RequiresAttendance bool       `json:"requires_attendance"`
	Active             bool       `json:"active"`
	SessionID          *uuid.UUID `json:"session_id,omitempty"`
	OwnerID            uuid.UUID  `json:"owner_id"`
	Options            []Option   `json:"options"`
	CreatedAt          time.Time  `json:"created_at"`
}

// IsOpen reports whether votes are accepted at now. The window is half-open:
// a ballot ending at 18:00 rejects a vote cast at exactly 18:00.
func (b *Ballot) IsOpen(now time.Time) bool {
	return b.Active && !now.Before(b.StartsAt) && now.Before(b.EndsAt)
}

func (b *Ballot) Status(now time.Time) BallotStatus {
	switch {
	case b.IsOpen(now):
		return BallotStatusOpen
	case b.Active && now.Before(b.StartsAt):
		return BallotStatusUpcoming
	default:
		return BallotStatusClosed
	}
}

type BallotStatus string

const (
	BallotStatusUpcoming BallotStatus = "upcoming"
	BallotStatusOpen     BallotStatus = "open"
	BallotStatusClosed   BallotStatus = "closed"
)

type Option struct {
	ID        uuid.UUID `json:"id"`
	BallotID  uuid.UUID `json:"ballot_id"`
	Label     string    `json:"label"`
	Text      string    `json:"text"`
	VoteCount int64     `json:"vote_count"`
	CreatedAt time.Time `json:"created_at"`
}

// OptionLabel returns the single-letter label for the i-th option of a ballot.
func OptionLabel(i int) string {
	return string(rune('A' + i))
}

const MaxOptionsPerBallot = 26
