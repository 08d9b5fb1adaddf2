package google

import (
	"context"
	"errors"
	"strings"

	"github.com/vncsmyrnk/clubvote/internal/core/ports"
	"google.golang.org/api/idtoken"
)

type validateFunc func(ctx context.Context, token string, audience string) (*idtoken.Payload, error)

// Verifier checks Google ID tokens against Google's published keys.
type Verifier struct {
	validate validateFunc
}

func NewVerifier() *Verifier {
	return &Verifier{validate: idtoken.Validate}
}

var _ ports.TokenVerifier = (*Verifier)(nil)

// Verify rejects tokens whose email Google has not verified, since the email
// is what links the token to a member account.
func (v *Verifier) Verify(ctx context.Context, token string, clientID string) (*ports.TokenPayload, error) {
	payload, err := v.validate(ctx, token, clientID)
	if err != nil {
		return nil, err
	}

	email, ok := payload.Claims["email"].(string)
	if !ok || strings.TrimSpace(email) == "" {
		return nil, errors.New("email not found in claims")
	}
	if verified, _ := payload.Claims["email_verified"].(bool); !verified {
		return nil, errors.New("email not verified")
	}
	name, _ := payload.Claims["name"].(string)

	return &ports.TokenPayload{Email: email, Name: name}, nil
}
