package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

type BallotRepository interface {
	Save(ctx context.Context, ballot *domain.Ballot) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ballot, error)
	GetOption(ctx context.Context, id uuid.UUID) (*domain.Option, error)
	List(ctx context.Context) ([]*domain.Ballot, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type CreateBallotInput struct {
	Title              string
	Description        string
	StartsAt           time.Time
	EndsAt             time.Time
	RequiresAttendance bool
	Active             bool
	SessionID          *uuid.UUID
	OwnerID            uuid.UUID
	Options            []string
}

type BallotService interface {
	Create(ctx context.Context, input CreateBallotInput) (*domain.Ballot, error)
	GetBallot(ctx context.Context, id uuid.UUID) (*domain.Ballot, error)
	ListBallots(ctx context.Context) ([]*domain.Ballot, error)
	CloseBallot(ctx context.Context, id uuid.UUID) error
}
