package matchmaking

import (
	"context"
	"time"
)

// Store is the match repository. Reads return copies the caller may modify
// freely; Get returns nil, nil for a missing match.
type Store interface {
	Create(ctx context.Context, m *Match) (*Match, error)
	Get(ctx context.Context, id string) (*Match, error)
	Save(ctx context.Context, m *Match) error
	Delete(ctx context.Context, id string) error
	ListByStatus(ctx context.Context, statuses ...Status) ([]Match, error)
	ListByPlayer(ctx context.Context, playerID string) ([]Match, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]Match, error)
	// RecordSubmission replaces one evaluator's submission without touching
	// anyone else's.
	RecordSubmission(ctx context.Context, matchID, evaluatorID string, evals []SubmittedEvaluation) error
	MarkEvaluationsComplete(ctx context.Context, matchID string, at time.Time) error
}

// Service holds the mutating entry points and read queries of the match
// lifecycle. Mutations act on behalf of the identity carried by ctx.
type Service interface {
	Create(ctx context.Context, in CreateInput) (*Match, error)
	Join(ctx context.Context, matchID string) (*Match, error)
	Leave(ctx context.Context, matchID string) (*Match, error)
	InviteGuests(ctx context.Context, matchID string, names []string) (*Match, error)
	Finalize(ctx context.Context, matchID string) (*Match, error)
	Delete(ctx context.Context, matchID string) error

	ListOpenMatches(ctx context.Context) ([]Match, error)
	ListUserMatches(ctx context.Context, userID string) ([]Match, error)
	GetMatch(ctx context.Context, id string) (*Match, error)
	GetTeams(ctx context.Context, matchID string) (*Teams, error)
}
