package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Email != "" && strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) GetProfile(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	profile, ok := r.s.profiles[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &profile, nil
}

func (r *UserRepository) CreateWithProfile(_ context.Context, user *domain.User, profile *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == user.Username {
			return domain.ErrUsernameTaken
		}
		if user.Email != "" && strings.EqualFold(existing.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}
	r.s.users[user.ID] = *user
	r.s.profiles[user.ID] = *profile
	return nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string, mustChange bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	r.s.users[userID] = user

	profile := r.s.profiles[userID]
	profile.UserID = userID
	profile.MustChangePassword = mustChange
	r.s.profiles[userID] = profile
	return nil
}

type AuthRepository struct {
	s *Store
}

func (r *AuthRepository) StoreRefreshToken(_ context.Context, token *domain.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	r.s.refreshTokens[token.TokenHash] = *token
	return nil
}

func (r *AuthRepository) GetRefreshTokenByHash(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	token, ok := r.s.refreshTokens[tokenHash]
	if !ok {
		return nil, nil
	}
	return &token, nil
}

func (r *AuthRepository) RevokeRefreshToken(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for hash, token := range r.s.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			r.s.refreshTokens[hash] = token
		}
	}
	return nil
}
