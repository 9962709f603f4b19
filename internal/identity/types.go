package identity

import "errors"

// Identity is the acting user as seen by the core.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

var ErrInvalidToken = errors.New("invalid or expired token")

type contextKey string

const identityContextKey contextKey = "identity"

const (
	claimName  = "name"
	claimEmail = "email"
)
