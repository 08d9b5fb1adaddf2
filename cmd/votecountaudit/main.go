package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/vncsmyrnk/clubvote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/clubvote/internal/config"
	"github.com/vncsmyrnk/clubvote/internal/core/services"
)

// Read-only job: for every ballot, compares the sum of option vote_count
// against the number of stored votes. Exits 1 when any ballot disagrees.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	var dbHost, dbPort, dbUser, dbPass, dbName, dsn string

	flag.StringVar(&dsn, "dsn", os.Getenv("POSTGRES_DSN"), "Postgres connection string")
	flag.StringVar(&dbHost, "db-host", os.Getenv("POSTGRES_HOST"), "Database host")
	flag.StringVar(&dbPort, "db-port", os.Getenv("POSTGRES_PORT"), "Database port")
	flag.StringVar(&dbUser, "db-user", os.Getenv("POSTGRES_USER"), "Database user")
	flag.StringVar(&dbPass, "db-pass", os.Getenv("POSTGRES_PASSWORD"), "Database password")
	flag.StringVar(&dbName, "db-name", os.Getenv("POSTGRES_DB"), "Database name")
	flag.Parse()

	if dsn == "" {
		dsn = config.DSN(dbHost, dbPort, dbUser, dbPass, dbName)
	}

	db, err := postgres.Open(dsn)
	if err != nil {
		slog.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	auditService := services.NewAuditService(postgres.NewBallotRepository(db), postgres.NewVoteRepository(db))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	slog.Info("starting vote count audit")

	drifts, err := auditService.AuditVoteCounts(ctx)
	if err != nil {
		slog.Error("audit failed", "error", err)
		os.Exit(1)
	}

	for _, d := range drifts {
		slog.Warn("vote count drift",
			"ballot_id", d.BallotID,
			"cached_sum", d.CachedSum,
			"actual_rows", d.ActualRows,
		)
	}
	if len(drifts) > 0 {
		os.Exit(1)
	}

	slog.Info("vote counts consistent")
}
