package evaluation

import "context"

type Engine interface {
	Submit(ctx context.Context, matchID, evaluatorID string, evals map[string]Input) (*Outcome, error)
	Recalculate(ctx context.Context, matchID string) (*Outcome, error)
	CanEvaluate(ctx context.Context, matchID, evaluatorID string) (bool, error)
	PendingEvaluations(ctx context.Context, userID string) ([]Pending, error)
}
