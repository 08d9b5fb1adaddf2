package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

func newVote(ballotID, optionID, voterID uuid.UUID) *domain.Vote {
	return &domain.Vote{ID: uuid.New(), BallotID: ballotID, OptionID: optionID, VoterID: voterID, CreatedAt: testNow}
}

func TestVoteRecord(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewVoteRepository(db)
	ballots := NewBallotRepository(db)

	owner := insertUser(t, db, "owner")
	voter := insertUser(t, db, "voter")
	ballot := insertBallot(t, db, owner.ID, "Yes", "No")
	other := insertBallot(t, db, owner.ID, "Up", "Down")

	voted, err := repo.HasVoted(ctx, ballot.ID, voter.ID)
	require.NoError(t, err)
	assert.False(t, voted)

	vote, err := repo.GetVote(ctx, ballot.ID, voter.ID)
	require.NoError(t, err)
	assert.Nil(t, vote)

	require.NoError(t, repo.Record(ctx, newVote(ballot.ID, ballot.Options[0].ID, voter.ID)))

	voted, err = repo.HasVoted(ctx, ballot.ID, voter.ID)
	require.NoError(t, err)
	assert.True(t, voted)

	vote, err = repo.GetVote(ctx, ballot.ID, voter.ID)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.Equal(t, ballot.Options[0].ID, vote.OptionID)

	t.Run("duplicate voter", func(t *testing.T) {
		err := repo.Record(ctx, newVote(ballot.ID, ballot.Options[1].ID, voter.ID))
		assert.ErrorIs(t, err, domain.ErrAlreadyVoted)
	})

	t.Run("option from another ballot", func(t *testing.T) {
		err := repo.Record(ctx, newVote(ballot.ID, other.Options[0].ID, owner.ID))
		assert.ErrorIs(t, err, domain.ErrInvalidOption)
	})

	stored, err := ballots.GetByID(ctx, ballot.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Options[0].VoteCount)
	assert.Equal(t, int64(0), stored.Options[1].VoteCount)

	drift, err := repo.CountDrift(ctx, ballot.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), drift.CachedSum)
	assert.Equal(t, int64(1), drift.ActualRows)
}

func TestVoteRecordConcurrentDuplicates(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewVoteRepository(db)

	owner := insertUser(t, db, "owner")
	voter := insertUser(t, db, "voter")
	ballot := insertBallot(t, db, owner.ID, "Yes", "No")

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Record(ctx, newVote(ballot.ID, ballot.Options[i%2].ID, voter.ID))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrAlreadyVoted) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)

	drift, err := repo.CountDrift(ctx, ballot.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), drift.CachedSum)
	assert.Equal(t, int64(1), drift.ActualRows)
}

func TestVoteRecordConcurrentIncrements(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewVoteRepository(db)

	owner := insertUser(t, db, "owner")
	ballot := insertBallot(t, db, owner.ID, "Yes", "No")

	const voters = 25
	ids := make([]uuid.UUID, voters)
	for i := range ids {
		ids[i] = insertUser(t, db, uuid.NewString()).ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			assert.NoError(t, repo.Record(ctx, newVote(ballot.ID, ballot.Options[0].ID, id)))
		}(id)
	}
	wg.Wait()

	stored, err := NewBallotRepository(db).GetByID(ctx, ballot.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(voters), stored.Options[0].VoteCount)
}
