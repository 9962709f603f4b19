package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/pitchside/internal/auth"
	"github.com/mauv0809/pitchside/internal/evaluation"
	"github.com/mauv0809/pitchside/internal/identity"
	"github.com/mauv0809/pitchside/internal/live"
	"github.com/mauv0809/pitchside/internal/matchmaking"
	"github.com/mauv0809/pitchside/internal/processor"
	"github.com/mauv0809/pitchside/internal/pubsub"
	"github.com/mauv0809/pitchside/internal/roster"
)

// Options wires a Server. Hub may be nil to disable live updates.
type Options struct {
	Auth           auth.Service
	Tokens         *identity.TokenIssuer
	Roster         roster.Store
	Matches        matchmaking.Service
	Evaluations    evaluation.Engine
	Processor      *processor.Processor
	PubSub         pubsub.PubSubClient
	Hub            *live.Hub
	MetricsHandler http.Handler
	CORSOrigins    []string
	DefaultGroup   string
}

type Server struct {
	auth           auth.Service
	tokens         *identity.TokenIssuer
	roster         roster.Store
	matches        matchmaking.Service
	evaluations    evaluation.Engine
	processor      *processor.Processor
	pubsub         pubsub.PubSubClient
	hub            *live.Hub
	metricsHandler http.Handler
	corsOrigins    []string
	defaultGroup   string
	Router         chi.Router
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type inviteRequest struct {
	Names []string `json:"names"`
}

type submitEvaluationsRequest struct {
	Evaluations map[string]evaluation.Input `json:"evaluations"`
}

// pushEnvelope is the body Pub/Sub push subscriptions POST.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
}
