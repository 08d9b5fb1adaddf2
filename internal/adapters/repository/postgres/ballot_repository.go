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

type ballotRepository struct {
	db *sql.DB
}

func NewBallotRepository(db *sql.DB) ports.BallotRepository {
	return &ballotRepository{
		db: db,
	}
}

const ballotColumns = `id, title, description, starts_at, ends_at, requires_attendance, active, session_id, owner_id, created_at`

func (r *ballotRepository) Save(ctx context.Context, ballot *domain.Ballot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryBallot := `
		INSERT INTO ballots (id, title, description, starts_at, ends_at, requires_attendance, active, session_id, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.ExecContext(ctx, queryBallot,
		ballot.ID, ballot.Title, ballot.Description, ballot.StartsAt, ballot.EndsAt,
		ballot.RequiresAttendance, ballot.Active, ballot.SessionID, ballot.OwnerID, ballot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ballot: %w", err)
	}

	queryOption := `
		INSERT INTO ballot_options (id, ballot_id, label, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	stmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return fmt.Errorf("failed to prepare option statement: %w", err)
	}
	defer stmt.Close()

	for _, opt := range ballot.Options {
		_, err = stmt.ExecContext(ctx, opt.ID, opt.BallotID, opt.Label, opt.Text, opt.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *ballotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ballot, error) {
	query := `SELECT ` + ballotColumns + ` FROM ballots WHERE id = $1`

	ballot, err := scanBallot(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBallotNotFound
		}
		return nil, fmt.Errorf("failed to get ballot: %w", err)
	}

	options, err := r.fetchOptions(ctx, ballot.ID)
	if err != nil {
		return nil, err
	}
	ballot.Options = options

	return ballot, nil
}

func (r *ballotRepository) GetOption(ctx context.Context, id uuid.UUID) (*domain.Option, error) {
	query := `
		SELECT id, ballot_id, label, text, vote_count, created_at
		FROM ballot_options
		WHERE id = $1
	`
	var opt domain.Option
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&opt.ID, &opt.BallotID, &opt.Label, &opt.Text, &opt.VoteCount, &opt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOptionNotFound
		}
		return nil, fmt.Errorf("failed to get option: %w", err)
	}
	return &opt, nil
}

func (r *ballotRepository) List(ctx context.Context) ([]*domain.Ballot, error) {
	query := `SELECT ` + ballotColumns + ` FROM ballots ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ballots: %w", err)
	}
	defer rows.Close()

	var ballots []*domain.Ballot
	for rows.Next() {
		ballot, err := scanBallot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ballot: %w", err)
		}
		ballots = append(ballots, ballot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ballots: %w", err)
	}

	for _, ballot := range ballots {
		options, err := r.fetchOptions(ctx, ballot.ID)
		if err != nil {
			return nil, err
		}
		ballot.Options = options
	}

	return ballots, nil
}

func (r *ballotRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE ballots SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to update ballot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update ballot: %w", err)
	}
	if n == 0 {
		return domain.ErrBallotNotFound
	}
	return nil
}

func (r *ballotRepository) fetchOptions(ctx context.Context, ballotID uuid.UUID) ([]domain.Option, error) {
	queryOptions := `
		SELECT id, ballot_id, label, text, vote_count, created_at
		FROM ballot_options
		WHERE ballot_id = $1
		ORDER BY label
	`
	rows, err := r.db.QueryContext(ctx, queryOptions, ballotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ballot options: %w", err)
	}
	defer rows.Close()

	var options []domain.Option
	for rows.Next() {
		var opt domain.Option
		if err := rows.Scan(&opt.ID, &opt.BallotID, &opt.Label, &opt.Text, &opt.VoteCount, &opt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}
	return options, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBallot(row rowScanner) (*domain.Ballot, error) {
	var (
		ballot    domain.Ballot
		sessionID uuid.NullUUID
	)
	err := row.Scan(
		&ballot.ID, &ballot.Title, &ballot.Description, &ballot.StartsAt, &ballot.EndsAt,
		&ballot.RequiresAttendance, &ballot.Active, &sessionID, &ballot.OwnerID, &ballot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sessionID.Valid {
		ballot.SessionID = &sessionID.UUID
	}
	return &ballot, nil
}
