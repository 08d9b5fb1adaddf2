package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo  ports.UserRepository
	clock ports.Clock
}

func NewUserService(repo ports.UserRepository, clock ports.Clock) ports.UserService {
	return &UserService{
		repo:  repo,
		clock: resolveClock(clock),
	}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Register creates the account and its profile in one call. The profile
// starts with a pending password change so the temporary password is only
// good for a single login.
func (s *UserService) Register(ctx context.Context, input ports.RegisterUserInput) (*domain.User, string, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" {
		return nil, "", fmt.Errorf("%w: username is required", domain.ErrInvalidUserInput)
	}

	tempPassword, err := generateTemporaryPassword()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate temporary password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		FullName:     strings.TrimSpace(input.FullName),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hash),
		IsStaff:      input.IsStaff,
		IsActive:     true,
		CreatedAt:    now,
	}
	profile := &domain.Profile{
		UserID:             user.ID,
		MustChangePassword: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.CreateWithProfile(ctx, user, profile); err != nil {
		return nil, "", err
	}

	return user, tempPassword, nil
}

func generateTemporaryPassword() (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
