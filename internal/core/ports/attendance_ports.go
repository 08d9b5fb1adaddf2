package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

type AttendanceRepository interface {
	IsPresentOn(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error)
	IsPresentInSession(ctx context.Context, userID, sessionID uuid.UUID) (bool, error)

	// StartSession closes any active session, stores the new one and creates
	// an absent record for every active user, atomically.
	StartSession(ctx context.Context, session *domain.Session) error
	CloseActiveSession(ctx context.Context, closedAt time.Time) (*domain.Session, error)
	ActiveSession(ctx context.Context) (*domain.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	ToggleAttendance(ctx context.Context, sessionID, userID uuid.UUID, now time.Time) (bool, error)
	MarkPresent(ctx context.Context, sessionID, userID uuid.UUID, now time.Time) error
	ListSessions(ctx context.Context) ([]*domain.Session, error)
	ListPresent(ctx context.Context, sessionID uuid.UUID) ([]domain.AttendanceRecord, error)
}

type StartSessionInput struct {
	Title       string
	SessionDate time.Time
	CreatedBy   uuid.UUID
}

type AttendanceService interface {
	StartSession(ctx context.Context, input StartSessionInput) (*domain.Session, error)
	CloseSession(ctx context.Context) (*domain.Session, error)
	ToggleAttendance(ctx context.Context, userID uuid.UUID) (bool, error)
	MarkSelfPresent(ctx context.Context, userID uuid.UUID) error
	ListSessions(ctx context.Context) ([]*domain.Session, error)
	ListPresent(ctx context.Context, sessionID uuid.UUID) ([]domain.AttendanceRecord, error)
}
