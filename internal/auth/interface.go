package auth

import "context"

type Service interface {
	Register(ctx context.Context, email, password, displayName string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
}
