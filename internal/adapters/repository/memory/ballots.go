package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

type BallotRepository struct {
	s *Store
}

func (r *BallotRepository) Save(_ context.Context, ballot *domain.Ballot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *ballot
	stored.Options = nil
	r.s.ballots[ballot.ID] = stored
	for _, opt := range ballot.Options {
		r.s.options[opt.ID] = opt
	}
	return nil
}

func (r *BallotRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Ballot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ballot, ok := r.s.ballots[id]
	if !ok {
		return nil, domain.ErrBallotNotFound
	}
	ballot.Options = r.s.optionsOf(id)
	return &ballot, nil
}

func (r *BallotRepository) GetOption(_ context.Context, id uuid.UUID) (*domain.Option, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	opt, ok := r.s.options[id]
	if !ok {
		return nil, domain.ErrOptionNotFound
	}
	return &opt, nil
}

func (r *BallotRepository) List(_ context.Context) ([]*domain.Ballot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ballots := make([]*domain.Ballot, 0, len(r.s.ballots))
	for _, b := range r.s.ballots {
		b.Options = r.s.optionsOf(b.ID)
		ballots = append(ballots, &b)
	}
	sort.Slice(ballots, func(i, j int) bool {
		return ballots[i].CreatedAt.After(ballots[j].CreatedAt)
	})
	return ballots, nil
}

func (r *BallotRepository) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ballot, ok := r.s.ballots[id]
	if !ok {
		return domain.ErrBallotNotFound
	}
	ballot.Active = active
	r.s.ballots[id] = ballot
	return nil
}

// optionsOf must be called with the lock held.
func (s *Store) optionsOf(ballotID uuid.UUID) []domain.Option {
	var opts []domain.Option
	for _, opt := range s.options {
		if opt.BallotID == ballotID {
			opts = append(opts, opt)
		}
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Label < opts[j].Label })
	return opts
}
