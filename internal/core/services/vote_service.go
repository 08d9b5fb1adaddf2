package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type voteService struct {
	ballotRepo     ports.BallotRepository
	voteRepo       ports.VoteRepository
	attendanceRepo ports.AttendanceRepository
	publisher      ports.VoteEventPublisher
	sessionLoc     *time.Location
}

// NewVoteService builds the vote casting service. publisher may be nil.
// sessionLoc decides which calendar day counts as "today" for attendance.
func NewVoteService(
	ballotRepo ports.BallotRepository,
	voteRepo ports.VoteRepository,
	attendanceRepo ports.AttendanceRepository,
	publisher ports.VoteEventPublisher,
	sessionLoc *time.Location,
) ports.VoteService {
	return &voteService{
		ballotRepo:     ballotRepo,
		voteRepo:       voteRepo,
		attendanceRepo: attendanceRepo,
		publisher:      publisher,
		sessionLoc:     resolveLocation(sessionLoc),
	}
}

// CastVote checks, in order: ballot exists, ballot open, option belongs to
// the ballot, attendance (when required) and no prior vote. The vote row and
// the option counter are then written together by the repository.
func (s *voteService) CastVote(ctx context.Context, input ports.CastVoteInput) (*domain.Vote, error) {
	ballot, err := s.ballotRepo.GetByID(ctx, input.BallotID)
	if err != nil {
		return nil, err
	}

	if !ballot.IsOpen(input.Now) {
		return nil, domain.ErrBallotClosed
	}

	option, err := s.ballotRepo.GetOption(ctx, input.OptionID)
	if err != nil {
		if errors.Is(err, domain.ErrOptionNotFound) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidOption, err)
		}
		return nil, err
	}
	if option.BallotID != ballot.ID {
		return nil, domain.ErrInvalidOption
	}

	if ballot.RequiresAttendance {
		present, err := s.isPresent(ctx, ballot, input.VoterID, input.Now)
		if err != nil {
			return nil, err
		}
		if !present {
			return nil, domain.ErrAttendanceRequired
		}
	}

	hasVoted, err := s.voteRepo.HasVoted(ctx, ballot.ID, input.VoterID)
	if err != nil {
		return nil, err
	}
	if hasVoted {
		return nil, domain.ErrAlreadyVoted
	}

	vote := &domain.Vote{
		ID:        uuid.New(),
		BallotID:  ballot.ID,
		OptionID:  option.ID,
		VoterID:   input.VoterID,
		CreatedAt: input.Now,
	}

	// A concurrent duplicate that slipped past HasVoted is rejected here by
	// the unique constraint and comes back as ErrAlreadyVoted.
	if err := s.voteRepo.Record(ctx, vote); err != nil {
		return nil, err
	}

	slog.Info("vote recorded",
		"vote_id", vote.ID,
		"ballot_id", vote.BallotID,
		"option", option.Label,
		"voter_id", vote.VoterID,
	)

	s.publish(ctx, vote)
	return vote, nil
}

func (s *voteService) TallyResults(ctx context.Context, ballotID uuid.UUID) ([]domain.OptionTally, error) {
	ballot, err := s.ballotRepo.GetByID(ctx, ballotID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, opt := range ballot.Options {
		total += opt.VoteCount
	}

	results := make([]domain.OptionTally, 0, len(ballot.Options))
	for _, opt := range ballot.Options {
		percentage := 0.0
		if total > 0 {
			percentage = (float64(opt.VoteCount) / float64(total)) * 100
		}
		results = append(results, domain.OptionTally{
			Option:     opt,
			VoteCount:  opt.VoteCount,
			Percentage: percentage,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Option.Label < results[j].Option.Label
	})

	return results, nil
}

func (s *voteService) VoterStatus(ctx context.Context, ballotID, voterID uuid.UUID, now time.Time) (*domain.VoterStatus, error) {
	ballot, err := s.ballotRepo.GetByID(ctx, ballotID)
	if err != nil {
		return nil, err
	}

	status := &domain.VoterStatus{
		BallotID: ballot.ID,
		Open:     ballot.IsOpen(now),
		Eligible: true,
	}

	vote, err := s.voteRepo.GetVote(ctx, ballot.ID, voterID)
	if err != nil {
		return nil, err
	}
	if vote != nil {
		status.HasVoted = true
		status.OptionID = &vote.OptionID
	}

	if ballot.RequiresAttendance {
		present, err := s.isPresent(ctx, ballot, voterID, now)
		if err != nil {
			return nil, err
		}
		status.Eligible = present
	}

	return status, nil
}

// isPresent checks the session bound to the ballot when there is one and
// falls back to any session held on the current calendar day otherwise.
func (s *voteService) isPresent(ctx context.Context, ballot *domain.Ballot, voterID uuid.UUID, now time.Time) (bool, error) {
	if ballot.SessionID != nil {
		return s.attendanceRepo.IsPresentInSession(ctx, voterID, *ballot.SessionID)
	}
	return s.attendanceRepo.IsPresentOn(ctx, voterID, domain.CalendarDate(now, s.sessionLoc))
}

func (s *voteService) publish(ctx context.Context, vote *domain.Vote) {
	if s.publisher == nil {
		return
	}

	event := domain.VoteCast{
		VoteID:   vote.ID,
		BallotID: vote.BallotID,
		OptionID: vote.OptionID,
		VoterID:  vote.VoterID,
		CastAt:   vote.CreatedAt,
	}
	if err := s.publisher.PublishVoteCast(ctx, event); err != nil {
		slog.Warn("failed to publish vote cast event", "vote_id", vote.ID, "error", err)
	}
}
