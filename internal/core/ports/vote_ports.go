package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

type VoteRepository interface {
	HasVoted(ctx context.Context, ballotID, voterID uuid.UUID) (bool, error)
	// GetVote returns nil, nil when the voter has not voted on the ballot.
	GetVote(ctx context.Context, ballotID, voterID uuid.UUID) (*domain.Vote, error)
	// Record inserts the vote and increments the chosen option's vote_count
	// in a single transaction. A duplicate (ballot, voter) pair yields
	// domain.ErrAlreadyVoted.
	Record(ctx context.Context, vote *domain.Vote) error
	CountDrift(ctx context.Context, ballotID uuid.UUID) (*domain.CountDrift, error)
}

// VoteEventPublisher is notified after a vote has been committed.
type VoteEventPublisher interface {
	PublishVoteCast(ctx context.Context, event domain.VoteCast) error
}

type CastVoteInput struct {
	BallotID uuid.UUID
	OptionID uuid.UUID
	VoterID  uuid.UUID
	Now      time.Time
}

type VoteService interface {
	CastVote(ctx context.Context, input CastVoteInput) (*domain.Vote, error)
	TallyResults(ctx context.Context, ballotID uuid.UUID) ([]domain.OptionTally, error)
	VoterStatus(ctx context.Context, ballotID, voterID uuid.UUID, now time.Time) (*domain.VoterStatus, error)
}

type AuditService interface {
	AuditVoteCounts(ctx context.Context) ([]domain.CountDrift, error)
}
