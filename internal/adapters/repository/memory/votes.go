package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

type VoteRepository struct {
	s *Store
}

func (r *VoteRepository) Record(_ context.Context, vote *domain.Vote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := voteKey{ballotID: vote.BallotID, voterID: vote.VoterID}
	if _, exists := r.s.votes[key]; exists {
		return domain.ErrAlreadyVoted
	}

	opt, ok := r.s.options[vote.OptionID]
	if !ok || opt.BallotID != vote.BallotID {
		return domain.ErrInvalidOption
	}

	r.s.votes[key] = *vote
	opt.VoteCount++
	r.s.options[opt.ID] = opt
	return nil
}

func (r *VoteRepository) HasVoted(_ context.Context, ballotID, voterID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.votes[voteKey{ballotID: ballotID, voterID: voterID}]
	return ok, nil
}

func (r *VoteRepository) GetVote(_ context.Context, ballotID, voterID uuid.UUID) (*domain.Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	vote, ok := r.s.votes[voteKey{ballotID: ballotID, voterID: voterID}]
	if !ok {
		return nil, nil
	}
	return &vote, nil
}

func (r *VoteRepository) CountDrift(_ context.Context, ballotID uuid.UUID) (*domain.CountDrift, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	drift := &domain.CountDrift{BallotID: ballotID.String()}
	for _, opt := range r.s.options {
		if opt.BallotID == ballotID {
			drift.CachedSum += opt.VoteCount
		}
	}
	for key := range r.s.votes {
		if key.ballotID == ballotID {
			drift.ActualRows++
		}
	}
	return drift, nil
}
