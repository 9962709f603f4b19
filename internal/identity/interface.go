package identity

import "context"

// Provider supplies the identity of the acting user, or nil when nobody is
// signed in.
type Provider interface {
	CurrentIdentity(ctx context.Context) *Identity
}
