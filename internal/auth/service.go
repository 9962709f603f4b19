package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/pitchside/internal/docstore"
	"github.com/mauv0809/pitchside/internal/identity"
	"golang.org/x/crypto/bcrypt"
)

type service struct {
	store  docstore.Store
	tokens *identity.TokenIssuer
	mu     sync.Mutex
}

func New(store docstore.Store, tokens *identity.TokenIssuer) Service {
	return &service{store: store, tokens: tokens}
}

func (s *service) Register(ctx context.Context, email, password, displayName string) (*Session, error) {
	email = normalizeEmail(email)
	displayName = strings.TrimSpace(displayName)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if displayName == "" {
		displayName = strings.Split(email, "@")[0]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	rec, err := docstore.Encode(user)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, usersCollection, user.ID, rec); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	log.Info("Registered user", "userID", user.ID)
	return s.session(user)
}

func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.findByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}
	return s.session(*user)
}

func (s *service) findByEmail(ctx context.Context, email string) (*User, error) {
	recs, err := s.store.Query(ctx, usersCollection, docstore.Query{
		Filters: []docstore.Filter{{Field: "email", Op: docstore.OpEqual, Value: email}},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	var user User
	if err := docstore.Decode(recs[0], &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *service) session(user User) (*Session, error) {
	token, err := s.tokens.Issue(identity.Identity{ID: user.ID, DisplayName: user.DisplayName, Email: user.Email})
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, UserID: user.ID, Name: user.DisplayName, Email: user.Email}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
