package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

var testNow = time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	return db
}

func insertUser(t *testing.T, db *sql.DB, username string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: "hash",
		IsActive:     true,
		CreatedAt:    testNow,
	}
	profile := &domain.Profile{UserID: user.ID, MustChangePassword: true, CreatedAt: testNow, UpdatedAt: testNow}
	require.NoError(t, NewUserRepository(db).CreateWithProfile(context.Background(), user, profile))
	return user
}

func insertBallot(t *testing.T, db *sql.DB, ownerID uuid.UUID, texts ...string) *domain.Ballot {
	t.Helper()

	ballot := &domain.Ballot{
		ID:        uuid.New(),
		Title:     "Approve the minutes",
		StartsAt:  testNow.Add(-time.Hour),
		EndsAt:    testNow.Add(time.Hour),
		Active:    true,
		OwnerID:   ownerID,
		CreatedAt: testNow,
	}
	for i, text := range texts {
		ballot.Options = append(ballot.Options, domain.Option{
			ID:        uuid.New(),
			BallotID:  ballot.ID,
			Label:     domain.OptionLabel(i),
			Text:      text,
			CreatedAt: testNow,
		})
	}
	require.NoError(t, NewBallotRepository(db).Save(context.Background(), ballot))
	return ballot
}
