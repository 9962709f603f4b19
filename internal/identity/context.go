package identity

import "context"

// ContextProvider reads the identity stored on the context by WithIdentity.
type ContextProvider struct{}

var _ Provider = ContextProvider{}

func (ContextProvider) CurrentIdentity(ctx context.Context) *Identity {
	return FromContext(ctx)
}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

func FromContext(ctx context.Context) *Identity {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || id == nil || id.ID == "" {
		return nil
	}
	return id
}

// Static always returns the same identity. Useful for tools and tests.
type Static struct {
	Identity *Identity
}

func (s Static) CurrentIdentity(context.Context) *Identity {
	return s.Identity
}
