package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/clubvote/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

// driftingVotes reports a fixed drift for one ballot and delegates the rest.
type driftingVotes struct {
	ports.VoteRepository
	ballotID uuid.UUID
	fail     bool
}

func (r *driftingVotes) CountDrift(ctx context.Context, ballotID uuid.UUID) (*domain.CountDrift, error) {
	if r.fail {
		return nil, errors.New("query failed")
	}
	if ballotID == r.ballotID {
		return &domain.CountDrift{BallotID: ballotID.String(), CachedSum: 3, ActualRows: 2}, nil
	}
	return r.VoteRepository.CountDrift(ctx, ballotID)
}

func TestAuditVoteCounts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	voter := createUser(t, store, "voter", false)
	clean := createBallot(t, store, ballotOpts{})
	broken := createBallot(t, store, ballotOpts{})

	votes := NewVoteService(store.Ballots(), store.Votes(), store.Attendance(), nil, nil)
	_, err := votes.CastVote(ctx, ports.CastVoteInput{BallotID: clean.ID, OptionID: clean.Options[0].ID, VoterID: voter.ID, Now: testNow})
	require.NoError(t, err)

	consistent, err := NewAuditService(store.Ballots(), store.Votes()).AuditVoteCounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, consistent)

	drifts, err := NewAuditService(store.Ballots(), &driftingVotes{VoteRepository: store.Votes(), ballotID: broken.ID}).AuditVoteCounts(ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, broken.ID.String(), drifts[0].BallotID)

	_, err = NewAuditService(store.Ballots(), &driftingVotes{VoteRepository: store.Votes(), fail: true}).AuditVoteCounts(ctx)
	assert.Error(t, err)
}
