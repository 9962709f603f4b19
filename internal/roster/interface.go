package roster

import (
	"context"

	"github.com/mauv0809/pitchside/internal/identity"
)

// Store is the roster repository. Lookups return nil, nil for missing players.
type Store interface {
	CreatePlayer(ctx context.Context, p Player) (*Player, error)
	GetPlayer(ctx context.Context, id string) (*Player, error)
	GetPlayerByUserID(ctx context.Context, userID string) (*Player, error)
	UpdatePlayer(ctx context.Context, p Player) (*Player, error)
	UpdateRating(ctx context.Context, id string, ovr int, record EvaluationRecord) error
	DeletePlayer(ctx context.Context, id string) error
	ListPlayers(ctx context.Context, groupID string) ([]Player, error)
	EnsurePlayerForIdentity(ctx context.Context, id identity.Identity, groupID string) (*Player, error)
}
