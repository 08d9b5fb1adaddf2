package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

const (
	votesBallotVoterKey   = "votes_ballot_voter_key"
	votesOptionBallotFkey = "votes_option_ballot_fkey"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

// Record inserts the vote and bumps the option counter in one transaction.
// The increment is done in place so concurrent votes for the same option
// serialize on the option row instead of overwriting each other.
func (r *voteRepository) Record(ctx context.Context, vote *domain.Vote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertVote := `
		INSERT INTO votes (id, ballot_id, option_id, voter_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.ExecContext(ctx, insertVote, vote.ID, vote.BallotID, vote.OptionID, vote.VoterID, vote.CreatedAt)
	if err != nil {
		if isConstraintViolation(err, codeUniqueViolation, votesBallotVoterKey) {
			return domain.ErrAlreadyVoted
		}
		if isConstraintViolation(err, codeForeignKeyViolation, votesOptionBallotFkey) {
			return domain.ErrInvalidOption
		}
		return fmt.Errorf("failed to save vote: %w", err)
	}

	incrementCount := `
		UPDATE ballot_options
		SET vote_count = vote_count + 1
		WHERE id = $1 AND ballot_id = $2
	`
	res, err := tx.ExecContext(ctx, incrementCount, vote.OptionID, vote.BallotID)
	if err != nil {
		return fmt.Errorf("failed to increment vote count: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to increment vote count: %w", err)
	}
	if n != 1 {
		return domain.ErrInvalidOption
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vote: %w", err)
	}
	return nil
}

func (r *voteRepository) HasVoted(ctx context.Context, ballotID, voterID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM votes WHERE ballot_id = $1 AND voter_id = $2 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, ballotID, voterID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return true, nil
}

func (r *voteRepository) GetVote(ctx context.Context, ballotID, voterID uuid.UUID) (*domain.Vote, error) {
	query := `
		SELECT id, ballot_id, option_id, voter_id, created_at
		FROM votes
		WHERE ballot_id = $1 AND voter_id = $2
	`
	var vote domain.Vote
	err := r.db.QueryRowContext(ctx, query, ballotID, voterID).Scan(
		&vote.ID, &vote.BallotID, &vote.OptionID, &vote.VoterID, &vote.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return &vote, nil
}

func (r *voteRepository) CountDrift(ctx context.Context, ballotID uuid.UUID) (*domain.CountDrift, error) {
	query := `
		SELECT
			(SELECT COALESCE(SUM(vote_count), 0) FROM ballot_options WHERE ballot_id = $1),
			(SELECT COUNT(*) FROM votes WHERE ballot_id = $1)
	`
	drift := &domain.CountDrift{BallotID: ballotID.String()}
	if err := r.db.QueryRowContext(ctx, query, ballotID).Scan(&drift.CachedSum, &drift.ActualRows); err != nil {
		return nil, fmt.Errorf("failed to count votes for ballot %s: %w", ballotID, err)
	}
	return drift, nil
}
