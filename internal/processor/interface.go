package processor

import (
	"context"

	"github.com/mauv0809/pitchside/internal/matchmaking"
	"github.com/mauv0809/pitchside/internal/notifier"
	"github.com/mauv0809/pitchside/internal/roster"
)

// MatchReader is the part of the match repository the processor needs.
type MatchReader interface {
	Get(ctx context.Context, id string) (*matchmaking.Match, error)
}

// PlayerReader is the part of the roster the processor needs.
type PlayerReader interface {
	GetPlayer(ctx context.Context, id string) (*roster.Player, error)
}

// Notifier defines the notification operations required by the processor.
// This is an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
