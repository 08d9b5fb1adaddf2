package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type auditService struct {
	ballotRepo ports.BallotRepository
	voteRepo   ports.VoteRepository
}

func NewAuditService(ballotRepo ports.BallotRepository, voteRepo ports.VoteRepository) ports.AuditService {
	return &auditService{
		ballotRepo: ballotRepo,
		voteRepo:   voteRepo,
	}
}

// AuditVoteCounts compares every ballot's cached option counters against the
// stored votes and returns the ballots where they disagree.
func (s *auditService) AuditVoteCounts(ctx context.Context) ([]domain.CountDrift, error) {
	ballots, err := s.ballotRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch all ballots: %w", err)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		drifts []domain.CountDrift
	)
	errChan := make(chan error, len(ballots))

	for _, ballot := range ballots {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			drift, err := s.voteRepo.CountDrift(ctx, id)
			if err != nil {
				errChan <- fmt.Errorf("failed to audit ballot %s: %w", id, err)
				return
			}
			if drift.CachedSum != drift.ActualRows {
				mu.Lock()
				drifts = append(drifts, *drift)
				mu.Unlock()
			}
		}(ballot.ID)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	return drifts, nil
}
