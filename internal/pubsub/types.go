package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client *pubsub.Client
}

// EventType names a match lifecycle event sent over pubsub.
type EventType string

const (
	EventTeamsGenerated      EventType = "match-teams-generated"
	EventMatchFinalized      EventType = "match-finalized"
	EventMatchDeleted        EventType = "match-deleted"
	EventEvaluationsComplete EventType = "match-evaluations-complete"
)

// MatchEvent is the message published after a match changes state. Consumers
// reload the match by id when they need more than the title.
type MatchEvent struct {
	Type        EventType `msgpack:"type" json:"type"`
	MatchID     string    `msgpack:"matchId" json:"matchId"`
	Title       string    `msgpack:"title" json:"title"`
	OrganizerID string    `msgpack:"organizerId" json:"organizerId"`
	At          time.Time `msgpack:"at" json:"at"`
}
