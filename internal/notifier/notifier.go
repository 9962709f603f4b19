package notifier

import (
	"github.com/charmbracelet/log"
	"github.com/mauv0809/pitchside/internal/evaluation"
	"github.com/mauv0809/pitchside/internal/matchmaking"
)

// Notifier defines a high-level interface for announcing match events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// Once a match is full and teams are drawn
	SendTeamsAnnouncement(match *matchmaking.Match, dryRun bool) error
	// Once the organizer finalizes the match
	SendEvaluationReminder(match *matchmaking.Match, dryRun bool) error
	// Once enough evaluations are in and ratings moved
	SendRatingSummary(match *matchmaking.Match, deltas []evaluation.Delta, dryRun bool) error
}

// Noop is used when no notification channel is configured.
type Noop struct{}

var _ Notifier = Noop{}

func (Noop) SendTeamsAnnouncement(match *matchmaking.Match, dryRun bool) error {
	log.Debug("Notifications disabled, skipping teams announcement", "matchID", match.ID)
	return nil
}

func (Noop) SendEvaluationReminder(match *matchmaking.Match, dryRun bool) error {
	log.Debug("Notifications disabled, skipping evaluation reminder", "matchID", match.ID)
	return nil
}

func (Noop) SendRatingSummary(match *matchmaking.Match, deltas []evaluation.Delta, dryRun bool) error {
	log.Debug("Notifications disabled, skipping rating summary", "matchID", match.ID)
	return nil
}
