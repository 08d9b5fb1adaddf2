package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type ballotService struct {
	repo           ports.BallotRepository
	attendanceRepo ports.AttendanceRepository
	clock          ports.Clock
}

func NewBallotService(repo ports.BallotRepository, attendanceRepo ports.AttendanceRepository, clock ports.Clock) ports.BallotService {
	return &ballotService{
		repo:           repo,
		attendanceRepo: attendanceRepo,
		clock:          resolveClock(clock),
	}
}

func (s *ballotService) Create(ctx context.Context, input ports.CreateBallotInput) (*domain.Ballot, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalidBallot("title is required")
	}
	if input.StartsAt.IsZero() || input.EndsAt.IsZero() {
		return nil, invalidBallot("start and end are required")
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, invalidBallot("end must be after start")
	}

	if input.SessionID != nil {
		if _, err := s.attendanceRepo.GetSession(ctx, *input.SessionID); err != nil {
			return nil, err
		}
	}

	ballotID := uuid.New()
	now := s.clock.Now()

	ballot := &domain.Ballot{
		ID:                 ballotID,
		Title:              title,
		Description:        strings.TrimSpace(input.Description),
		StartsAt:           input.StartsAt,
		EndsAt:             input.EndsAt,
		RequiresAttendance: input.RequiresAttendance,
		Active:             input.Active,
		SessionID:          input.SessionID,
		OwnerID:            input.OwnerID,
		CreatedAt:          now,
	}

	for _, optText := range input.Options {
		optText = strings.TrimSpace(optText)
		if optText == "" {
			continue
		}
		if len(ballot.Options) == domain.MaxOptionsPerBallot {
			return nil, invalidBallot(fmt.Sprintf("at most %d options are allowed", domain.MaxOptionsPerBallot))
		}
		ballot.Options = append(ballot.Options, domain.Option{
			ID:        uuid.New(),
			BallotID:  ballotID,
			Label:     domain.OptionLabel(len(ballot.Options)),
			Text:      optText,
			CreatedAt: now,
		})
	}

	if len(ballot.Options) < 2 {
		return nil, invalidBallot("at least two valid options are required")
	}

	if err := s.repo.Save(ctx, ballot); err != nil {
		return nil, err
	}

	return ballot, nil
}

func (s *ballotService) GetBallot(ctx context.Context, id uuid.UUID) (*domain.Ballot, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ballotService) ListBallots(ctx context.Context) ([]*domain.Ballot, error) {
	return s.repo.List(ctx)
}

func (s *ballotService) CloseBallot(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActive(ctx, id, false)
}

func invalidBallot(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidBallotInput, reason)
}
