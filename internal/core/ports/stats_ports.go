package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

type StatsRepository interface {
	DashboardStats(ctx context.Context, now time.Time, today time.Time) (*domain.DashboardStats, error)
}

type StatsCache interface {
	Get(ctx context.Context, key string) (*domain.DashboardStats, bool, error)
	Set(ctx context.Context, key string, stats *domain.DashboardStats, ttl time.Duration) error
}

type DashboardService interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}
