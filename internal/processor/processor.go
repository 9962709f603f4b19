package processor

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/pitchside/internal/evaluation"
	"github.com/mauv0809/pitchside/internal/matchmaking"
	"github.com/mauv0809/pitchside/internal/pubsub"
)

// New creates a new Processor.
func New(matches MatchReader, players PlayerReader, notifier Notifier) *Processor {
	return &Processor{
		matches:  matches,
		players:  players,
		notifier: notifier,
	}
}

// HandleEvent sends the notification belonging to a match event. Only
// storage failures are returned, so the delivery can be retried; a failed
// notification is logged and dropped.
func (p *Processor) HandleEvent(ctx context.Context, event pubsub.MatchEvent, dryRun bool) error {
	log.Info("Processing match event", "type", event.Type, "matchID", event.MatchID)

	if event.Type == pubsub.EventMatchDeleted {
		log.Info("Match deleted, nothing to announce", "matchID", event.MatchID, "title", event.Title)
		return nil
	}

	match, err := p.matches.Get(ctx, event.MatchID)
	if err != nil {
		log.Error("Failed to load match for event", "error", err, "matchID", event.MatchID)
		return fmt.Errorf("failed to load match %s: %w", event.MatchID, err)
	}
	if match == nil {
		log.Warn("Match no longer exists, skipping event", "type", event.Type, "matchID", event.MatchID)
		return nil
	}

	switch event.Type {
	case pubsub.EventTeamsGenerated:
		if match.Teams == nil {
			log.Warn("Teams event for match without teams", "matchID", match.ID)
			return nil
		}
		p.notify(event, p.notifier.SendTeamsAnnouncement(match, dryRun))

	case pubsub.EventMatchFinalized:
		p.notify(event, p.notifier.SendEvaluationReminder(match, dryRun))

	case pubsub.EventEvaluationsComplete:
		deltas, err := p.ratingChanges(ctx, match)
		if err != nil {
			return err
		}
		p.notify(event, p.notifier.SendRatingSummary(match, deltas, dryRun))

	default:
		log.Warn("Unknown match event type", "type", event.Type, "matchID", event.MatchID)
	}
	return nil
}

// ratingChanges rebuilds the applied changes from each player's evaluation
// history for this match.
func (p *Processor) ratingChanges(ctx context.Context, match *matchmaking.Match) ([]evaluation.Delta, error) {
	var deltas []evaluation.Delta
	for _, rp := range match.RegisteredPlayers {
		if rp.IsGuest {
			continue
		}
		player, err := p.players.GetPlayer(ctx, rp.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load player %s: %w", rp.ID, err)
		}
		if player == nil {
			continue
		}
		rec, ok := player.EvaluationHistory[match.ID]
		if !ok {
			continue
		}
		deltas = append(deltas, evaluation.Delta{
			PlayerID:     player.ID,
			Name:         player.Name,
			AvgRating:    rec.AvgRating,
			RatingsCount: rec.RatingsCount,
			OVRChange:    rec.OVRChange,
			PreviousOVR:  rec.PreviousOVR,
			NewOVR:       rec.NewOVR,
		})
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].PlayerID < deltas[j].PlayerID })
	return deltas, nil
}

func (p *Processor) notify(event pubsub.MatchEvent, err error) {
	if err != nil {
		log.Error("Failed to send notification", "error", err, "type", event.Type, "matchID", event.MatchID)
		return
	}
	log.Debug("Notification sent", "type", event.Type, "matchID", event.MatchID)
}
