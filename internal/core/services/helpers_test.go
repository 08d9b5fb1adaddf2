package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/clubvote/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

func createUser(t *testing.T, store *memory.Store, username string, staff bool) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:        uuid.New(),
		Username:  username,
		FullName:  username,
		IsStaff:   staff,
		IsActive:  true,
		CreatedAt: testNow,
	}
	profile := &domain.Profile{UserID: user.ID, CreatedAt: testNow, UpdatedAt: testNow}
	require.NoError(t, store.Users().CreateWithProfile(context.Background(), user, profile))
	return user
}

type ballotOpts struct {
	requiresAttendance bool
	sessionID          *uuid.UUID
	startsAt, endsAt   time.Time
	inactive           bool
}

func createBallot(t *testing.T, store *memory.Store, opts ballotOpts, texts ...string) *domain.Ballot {
	t.Helper()

	if opts.startsAt.IsZero() {
		opts.startsAt = testNow.Add(-time.Hour)
	}
	if opts.endsAt.IsZero() {
		opts.endsAt = testNow.Add(time.Hour)
	}
	if len(texts) == 0 {
		texts = []string{"Yes", "No"}
	}

	ballot := &domain.Ballot{
		ID:                 uuid.New(),
		Title:              "Approve the budget",
		StartsAt:           opts.startsAt,
		EndsAt:             opts.endsAt,
		RequiresAttendance: opts.requiresAttendance,
		Active:             !opts.inactive,
		SessionID:          opts.sessionID,
		CreatedAt:          testNow,
	}
	for i, text := range texts {
		ballot.Options = append(ballot.Options, domain.Option{
			ID:       uuid.New(),
			BallotID: ballot.ID,
			Label:    domain.OptionLabel(i),
			Text:     text,
		})
	}
	require.NoError(t, store.Ballots().Save(context.Background(), ballot))
	return ballot
}

func startSession(t *testing.T, store *memory.Store, date time.Time) *domain.Session {
	t.Helper()

	session := &domain.Session{
		ID:          uuid.New(),
		Title:       "General meeting",
		SessionDate: domain.CalendarDate(date, time.UTC),
		Active:      true,
		CreatedAt:   testNow,
	}
	require.NoError(t, store.Attendance().StartSession(context.Background(), session))
	return session
}

type recordingPublisher struct {
	events []domain.VoteCast
	err    error
}

func (p *recordingPublisher) PublishVoteCast(_ context.Context, event domain.VoteCast) error {
	p.events = append(p.events, event)
	return p.err
}
