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
	usersUsernameKey = "users_username_key"
	usersEmailKey    = "users_email_key"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) ports.UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, full_name, email, password_hash, is_staff, is_active, created_at`

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.getOne(ctx, query, username)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email <> '' AND lower(email) = lower($1)`
	return r.getOne(ctx, query, email)
}

func (r *UserRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	query := `SELECT user_id, must_change_password, created_at, updated_at FROM user_profiles WHERE user_id = $1`
	profile := &domain.Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID, &profile.MustChangePassword, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (r *UserRepository) CreateWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertUser := `
		INSERT INTO users (id, username, full_name, email, password_hash, is_staff, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.ExecContext(ctx, insertUser,
		user.ID, user.Username, user.FullName, user.Email, user.PasswordHash, user.IsStaff, user.IsActive, user.CreatedAt,
	)
	if err != nil {
		if isConstraintViolation(err, codeUniqueViolation, usersUsernameKey) {
			return domain.ErrUsernameTaken
		}
		if isConstraintViolation(err, codeUniqueViolation, usersEmailKey) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	insertProfile := `
		INSERT INTO user_profiles (user_id, must_change_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = tx.ExecContext(ctx, insertProfile, profile.UserID, profile.MustChangePassword, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, mustChange bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return domain.ErrUserNotFound
	}

	upsertProfile := `
		INSERT INTO user_profiles (user_id, must_change_password)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET must_change_password = EXCLUDED.must_change_password,
		    updated_at = NOW()
	`
	if _, err := tx.ExecContext(ctx, upsertProfile, userID, mustChange); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.FullName, &user.Email,
		&user.PasswordHash, &user.IsStaff, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
