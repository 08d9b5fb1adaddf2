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
)

// Applies one named migration ("create_ballots.up") or, with -all, every
// up migration in order.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	var dsn string
	var all bool
	flag.StringVar(&dsn, "dsn", os.Getenv("POSTGRES_DSN"), "Postgres connection string")
	flag.BoolVar(&all, "all", false, "apply every up migration")
	flag.Parse()

	if dsn == "" {
		dsn = config.DSN(os.Getenv("POSTGRES_HOST"), os.Getenv("POSTGRES_PORT"), os.Getenv("POSTGRES_USER"), os.Getenv("POSTGRES_PASSWORD"), os.Getenv("POSTGRES_DB"))
	}

	if !all && flag.NArg() < 1 {
		slog.Error("a migration name is required")
		os.Exit(2)
	}

	db, err := postgres.Open(dsn)
	if err != nil {
		slog.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if all {
		if err := postgres.Migrate(ctx, db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		slog.Info("all migrations applied")
		return
	}

	file, err := postgres.MigrateNamed(ctx, db, flag.Arg(0))
	if err != nil {
		slog.Error("migration failed", "name", flag.Arg(0), "error", err)
		os.Exit(1)
	}
	slog.Info("migration file executed successfully", "file", file)
}
