package domain

import (
	"time"

	"github.com/google/uuid"
)

type Vote struct {
	ID        uuid.UUID `json:"id"`
	BallotID  uuid.UUID `json:"ballot_id"`
	OptionID  uuid.UUID `json:"option_id"`
	VoterID   uuid.UUID `json:"voter_id"`
	CreatedAt time.Time `json:"created_at"`
}

type OptionTally struct {
	Option     Option  `json:"option"`
	VoteCount  int64   `json:"vote_count"`
	Percentage float64 `json:"percentage"`
}

type VoterStatus struct {
	BallotID uuid.UUID  `json:"ballot_id"`
	HasVoted bool       `json:"has_voted"`
	OptionID *uuid.UUID `json:"option_id,omitempty"`
	Eligible bool       `json:"eligible"`
	Open     bool       `json:"open"`
}

// VoteCast is published once a vote has been committed.
type VoteCast struct {
	VoteID   uuid.UUID `json:"vote_id"`
	BallotID uuid.UUID `json:"ballot_id"`
	OptionID uuid.UUID `json:"option_id"`
	VoterID  uuid.UUID `json:"voter_id"`
	CastAt   time.Time `json:"cast_at"`
}
