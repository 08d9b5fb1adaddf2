package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// GetByEmail matches case-insensitively and returns nil, nil when missing.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	// CreateWithProfile stores the user and its profile in one transaction.
	CreateWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, mustChange bool) error
}

type RegisterUserInput struct {
	Username string
	FullName string
	Email    string
	IsStaff  bool
}

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// Register returns the new user and its one-time temporary password.
	Register(ctx context.Context, input RegisterUserInput) (*domain.User, string, error)
}
