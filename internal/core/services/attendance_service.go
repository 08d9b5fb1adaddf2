package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type attendanceService struct {
	repo       ports.AttendanceRepository
	userRepo   ports.UserRepository
	clock      ports.Clock
	sessionLoc *time.Location
}

func NewAttendanceService(repo ports.AttendanceRepository, userRepo ports.UserRepository, clock ports.Clock, sessionLoc *time.Location) ports.AttendanceService {
	return &attendanceService{
		repo:       repo,
		userRepo:   userRepo,
		clock:      resolveClock(clock),
		sessionLoc: resolveLocation(sessionLoc),
	}
}

func (s *attendanceService) StartSession(ctx context.Context, input ports.StartSessionInput) (*domain.Session, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidSessionInput)
	}

	now := s.clock.Now()
	date := domain.CalendarDate(now, s.sessionLoc)
	if !input.SessionDate.IsZero() {
		date = domain.CalendarDate(input.SessionDate, time.UTC)
	}

	session := &domain.Session{
		ID:          uuid.New(),
		Title:       title,
		SessionDate: date,
		Active:      true,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
	}

	if err := s.repo.StartSession(ctx, session); err != nil {
		return nil, err
	}

	slog.Info("session started", "session_id", session.ID, "date", date.Format(time.DateOnly))
	return session, nil
}

func (s *attendanceService) CloseSession(ctx context.Context) (*domain.Session, error) {
	session, err := s.repo.CloseActiveSession(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}

	slog.Info("session closed", "session_id", session.ID)
	return session, nil
}

func (s *attendanceService) ToggleAttendance(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return false, domain.ErrUserNotFound
	}

	session, err := s.repo.ActiveSession(ctx)
	if err != nil {
		return false, err
	}

	return s.repo.ToggleAttendance(ctx, session.ID, userID, s.clock.Now())
}

func (s *attendanceService) MarkSelfPresent(ctx context.Context, userID uuid.UUID) error {
	session, err := s.repo.ActiveSession(ctx)
	if err != nil {
		return err
	}

	return s.repo.MarkPresent(ctx, session.ID, userID, s.clock.Now())
}

func (s *attendanceService) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	return s.repo.ListSessions(ctx)
}

func (s *attendanceService) ListPresent(ctx context.Context, sessionID uuid.UUID) ([]domain.AttendanceRecord, error) {
	if _, err := s.repo.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListPresent(ctx, sessionID)
}
