package memory

import (
	"context"
	"time"

	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

type StatsRepository struct {
	s *Store
}

func (s *Store) Stats() *StatsRepository { return &StatsRepository{s: s} }

func (r *StatsRepository) DashboardStats(_ context.Context, now time.Time, today time.Time) (*domain.DashboardStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := &domain.DashboardStats{
		TotalBallots: int64(len(r.s.ballots)),
		TotalVotes:   int64(len(r.s.votes)),
		TotalUsers:   int64(len(r.s.users)),
	}

	for _, ballot := range r.s.ballots {
		switch {
		case ballot.IsOpen(now):
			stats.OpenBallots++
		case ballot.Active && now.Before(ballot.StartsAt):
			stats.UpcomingBallots++
		}
		if !now.Before(ballot.EndsAt) {
			stats.CompletedBallots++
		}
	}

	day := today.Format(time.DateOnly)
	for key, rec := range r.s.attendance {
		if !rec.Present {
			continue
		}
		stats.TotalPresent++
		if session, ok := r.s.sessions[key.sessionID]; ok && session.SessionDate.Format(time.DateOnly) == day {
			stats.TodayPresent++
		}
	}

	return stats, nil
}
