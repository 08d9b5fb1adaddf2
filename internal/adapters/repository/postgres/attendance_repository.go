package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type attendanceRepository struct {
	db *sql.DB
}

func NewAttendanceRepository(db *sql.DB) ports.AttendanceRepository {
	return &attendanceRepository{
		db: db,
	}
}

const sessionColumns = `id, title, session_date, active, created_by, created_at, closed_at`

func (r *attendanceRepository) IsPresentOn(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM attendance_records ar
			JOIN sessions s ON s.id = ar.session_id
			WHERE ar.user_id = $1 AND s.session_date = $2 AND ar.present
		)
	`
	var present bool
	if err := r.db.QueryRowContext(ctx, query, userID, date.Format(time.DateOnly)).Scan(&present); err != nil {
		return false, fmt.Errorf("failed to check attendance: %w", err)
	}
	return present, nil
}

func (r *attendanceRepository) IsPresentInSession(ctx context.Context, userID, sessionID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM attendance_records
			WHERE user_id = $1 AND session_id = $2 AND present
		)
	`
	var present bool
	if err := r.db.QueryRowContext(ctx, query, userID, sessionID).Scan(&present); err != nil {
		return false, fmt.Errorf("failed to check attendance: %w", err)
	}
	return present, nil
}

func (r *attendanceRepository) StartSession(ctx context.Context, session *domain.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `UPDATE sessions SET active = FALSE, closed_at = $1 WHERE active`, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to close active session: %w", err)
	}

	insertSession := `
		INSERT INTO sessions (id, title, session_date, active, created_by, created_at)
		VALUES ($1, $2, $3, TRUE, $4, $5)
	`
	_, err = tx.ExecContext(ctx, insertSession,
		session.ID, session.Title, session.SessionDate.Format(time.DateOnly), session.CreatedBy, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	seedAttendance := `
		INSERT INTO attendance_records (user_id, session_id, present, created_at, updated_at)
		SELECT id, $1::uuid, FALSE, $2::timestamptz, $2::timestamptz FROM users WHERE is_active
	`
	if _, err := tx.ExecContext(ctx, seedAttendance, session.ID, session.CreatedAt); err != nil {
		return fmt.Errorf("failed to create attendance records: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *attendanceRepository) CloseActiveSession(ctx context.Context, closedAt time.Time) (*domain.Session, error) {
	query := `
		UPDATE sessions SET active = FALSE, closed_at = $1
		WHERE active
		RETURNING ` + sessionColumns
	session, err := scanSession(r.db.QueryRowContext(ctx, query, closedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoActiveSession
		}
		return nil, fmt.Errorf("failed to close session: %w", err)
	}
	return session, nil
}

func (r *attendanceRepository) ActiveSession(ctx context.Context) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE active LIMIT 1`
	session, err := scanSession(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoActiveSession
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return session, nil
}

func (r *attendanceRepository) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	session, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// ToggleAttendance marks a user without a record as present and flips the
// flag otherwise. The upsert keeps concurrent toggles from racing.
func (r *attendanceRepository) ToggleAttendance(ctx context.Context, sessionID, userID uuid.UUID, now time.Time) (bool, error) {
	query := `
		INSERT INTO attendance_records (user_id, session_id, present, created_at, updated_at)
		VALUES ($1, $2, TRUE, $3, $3)
		ON CONFLICT (user_id, session_id) DO UPDATE
		SET present = NOT attendance_records.present,
		    updated_at = EXCLUDED.updated_at
		RETURNING present
	`
	var present bool
	if err := r.db.QueryRowContext(ctx, query, userID, sessionID, now).Scan(&present); err != nil {
		return false, fmt.Errorf("failed to toggle attendance: %w", err)
	}
	return present, nil
}

func (r *attendanceRepository) MarkPresent(ctx context.Context, sessionID, userID uuid.UUID, now time.Time) error {
	query := `
		INSERT INTO attendance_records (user_id, session_id, present, created_at, updated_at)
		VALUES ($1, $2, TRUE, $3, $3)
		ON CONFLICT (user_id, session_id) DO UPDATE
		SET present = TRUE,
		    updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, userID, sessionID, now); err != nil {
		return fmt.Errorf("failed to mark attendance: %w", err)
	}
	return nil
}

func (r *attendanceRepository) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY session_date DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

func (r *attendanceRepository) ListPresent(ctx context.Context, sessionID uuid.UUID) ([]domain.AttendanceRecord, error) {
	query := `
		SELECT user_id, session_id, present, updated_at
		FROM attendance_records
		WHERE session_id = $1 AND present
		ORDER BY updated_at
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		var rec domain.AttendanceRecord
		if err := rows.Scan(&rec.UserID, &rec.SessionID, &rec.Present, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance: %w", err)
	}
	return records, nil
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		session  domain.Session
		closedAt sql.NullTime
	)
	err := row.Scan(
		&session.ID, &session.Title, &session.SessionDate, &session.Active,
		&session.CreatedBy, &session.CreatedAt, &closedAt,
	)
	if err != nil {
		return nil, err
	}
	session.SessionDate = domain.CalendarDate(session.SessionDate, time.UTC)
	if closedAt.Valid {
		session.ClosedAt = &closedAt.Time
	}
	return &session, nil
}
