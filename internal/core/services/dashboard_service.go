package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

const dashboardCacheKeyPrefix = "dashboard_stats:"

type dashboardService struct {
	repo       ports.StatsRepository
	cache      ports.StatsCache
	ttl        time.Duration
	clock      ports.Clock
	sessionLoc *time.Location
}

// NewDashboardService serves aggregate statistics, optionally through cache.
// Cached values may lag the live tallies by up to ttl.
func NewDashboardService(repo ports.StatsRepository, cache ports.StatsCache, ttl time.Duration, clock ports.Clock, sessionLoc *time.Location) ports.DashboardService {
	return &dashboardService{
		repo:       repo,
		cache:      cache,
		ttl:        ttl,
		clock:      resolveClock(clock),
		sessionLoc: resolveLocation(sessionLoc),
	}
}

func (s *dashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	now := s.clock.Now()
	today := domain.CalendarDate(now, s.sessionLoc)
	key := dashboardCacheKeyPrefix + today.Format(time.DateOnly)

	if s.cache != nil {
		stats, found, err := s.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("dashboard cache read failed", "key", key, "error", err)
		} else if found {
			return stats, nil
		}
	}

	stats, err := s.repo.DashboardStats(ctx, now, today)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.ttl); err != nil {
			slog.Warn("dashboard cache write failed", "key", key, "error", err)
		}
	}

	return stats, nil
}
