package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

type AuthRepository interface {
	StoreRefreshToken(ctx context.Context, token *domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id uuid.UUID) error
}

// TokenVerifier validates a third-party identity token issued for clientID.
type TokenVerifier interface {
	Verify(ctx context.Context, token string, clientID string) (*TokenPayload, error)
}

type TokenPayload struct {
	Email string
	Name  string
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, string, error) // returns access_token, refresh_token, error
	// LoginWithGoogle signs in the existing member whose email matches the
	// verified Google ID token. No account is created.
	LoginWithGoogle(ctx context.Context, credential string) (string, string, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	// ChangePassword returns a fresh access token without the rotation flag.
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) (string, error)
	ParseAccessToken(token string) (*domain.Principal, error)
}
