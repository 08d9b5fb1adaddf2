package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type statsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) ports.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) DashboardStats(ctx context.Context, now time.Time, today time.Time) (*domain.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM ballots),
			(SELECT COUNT(*) FROM ballots WHERE active AND starts_at <= $1 AND ends_at > $1),
			(SELECT COUNT(*) FROM ballots WHERE active AND starts_at > $1),
			(SELECT COUNT(*) FROM ballots WHERE ends_at <= $1),
			(SELECT COUNT(*) FROM votes),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*)
			   FROM attendance_records ar
			   JOIN sessions s ON s.id = ar.session_id
			  WHERE ar.present AND s.session_date = $2),
			(SELECT COUNT(*) FROM attendance_records WHERE present)
	`
	stats := &domain.DashboardStats{}
	err := r.db.QueryRowContext(ctx, query, now, today.Format(time.DateOnly)).Scan(
		&stats.TotalBallots,
		&stats.OpenBallots,
		&stats.UpcomingBallots,
		&stats.CompletedBallots,
		&stats.TotalVotes,
		&stats.TotalUsers,
		&stats.TodayPresent,
		&stats.TotalPresent,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard stats: %w", err)
	}
	return stats, nil
}
