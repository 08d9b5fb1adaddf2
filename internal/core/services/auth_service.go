package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthService struct {
	userRepo        ports.UserRepository
	authRepo        ports.AuthRepository
	jwtSecret       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	clock           ports.Clock

	googleVerifier ports.TokenVerifier
	googleClientID string
}

func NewAuthService(userRepo ports.UserRepository, authRepo ports.AuthRepository, jwtSecret []byte, accessTokenTTL, refreshTokenTTL time.Duration, clock ports.Clock) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		authRepo:        authRepo,
		jwtSecret:       jwtSecret,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
		clock:           resolveClock(clock),
	}
}

// WithGoogleSignIn enables LoginWithGoogle for ID tokens issued to clientID.
func (s *AuthService) WithGoogleSignIn(verifier ports.TokenVerifier, clientID string) *AuthService {
	s.googleVerifier = verifier
	s.googleClientID = clientID
	return s
}

type accessClaims struct {
	Username           string `json:"username"`
	IsStaff            bool   `json:"staff"`
	MustChangePassword bool   `json:"must_change_password"`
	jwt.RegisteredClaims
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return "", "", domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", domain.ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, credential string) (string, string, error) {
	if s.googleVerifier == nil || s.googleClientID == "" {
		return "", "", domain.ErrSignInUnavailable
	}

	payload, err := s.googleVerifier.Verify(ctx, credential, s.googleClientID)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid google token: %w", domain.ErrInvalidCredentials, err)
	}

	user, err := s.userRepo.GetByEmail(ctx, payload.Email)
	if err != nil {
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return "", "", domain.ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

// startSession issues an access token and stores a new refresh token.
func (s *AuthService) startSession(ctx context.Context, user *domain.User) (string, string, error) {
	accessToken, err := s.issueAccessToken(ctx, user)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	rtEntity := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: s.hashToken(refreshToken),
		ExpiresAt: s.clock.Now().Add(s.refreshTokenTTL),
		Revoked:   false,
	}

	if err := s.authRepo.StoreRefreshToken(ctx, rtEntity); err != nil {
		return "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	rtEntity, err := s.authRepo.GetRefreshTokenByHash(ctx, s.hashToken(refreshToken))
	if err != nil {
		return "", fmt.Errorf("failed to get refresh token: %w", err)
	}
	if rtEntity == nil || rtEntity.Revoked || rtEntity.ExpiresAt.Before(s.clock.Now()) {
		return "", domain.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, rtEntity.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return "", domain.ErrInvalidToken
	}

	return s.issueAccessToken(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	rtEntity, err := s.authRepo.GetRefreshTokenByHash(ctx, s.hashToken(refreshToken))
	if err != nil {
		return fmt.Errorf("failed to get refresh token: %w", err)
	}
	if rtEntity == nil {
		return nil
	}

	return s.authRepo.RevokeRefreshToken(ctx, rtEntity.ID)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", domain.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength || newPassword == oldPassword {
		return "", domain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash), false); err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}
	user.PasswordHash = string(hash)

	return s.issueAccessToken(ctx, user)
}

func (s *AuthService) ParseAccessToken(token string) (*domain.Principal, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	return &domain.Principal{
		UserID:             userID,
		Username:           claims.Username,
		IsStaff:            claims.IsStaff,
		MustChangePassword: claims.MustChangePassword,
	}, nil
}

func (s *AuthService) issueAccessToken(ctx context.Context, user *domain.User) (string, error) {
	profile, err := s.userRepo.GetProfile(ctx, user.ID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return "", fmt.Errorf("failed to get profile: %w", err)
	}
	mustChange := profile != nil && profile.MustChangePassword

	token, err := s.generateAccessToken(user, mustChange)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, nil
}

func (s *AuthService) generateAccessToken(user *domain.User, mustChangePassword bool) (string, error) {
	now := s.clock.Now()
	claims := accessClaims{
		Username:           user.Username,
		IsStaff:            user.IsStaff,
		MustChangePassword: mustChangePassword,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (s *AuthService) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
