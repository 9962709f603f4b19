package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mauv0809/pitchside/internal/live"
)

func NewServer(opts Options) *Server {
	server := &Server{
		auth:           opts.Auth,
		tokens:         opts.Tokens,
		roster:         opts.Roster,
		matches:        opts.Matches,
		evaluations:    opts.Evaluations,
		processor:      opts.Processor,
		pubsub:         opts.PubSub,
		hub:            opts.Hub,
		metricsHandler: opts.MetricsHandler,
		corsOrigins:    opts.CORSOrigins,
		defaultGroup:   opts.DefaultGroup,
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(paramsMiddleware)
	r.Use(s.authMiddleware)

	// Mutations go through requireIdentity via Chain; reads stay open.
	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}
	r.Get("/health", s.HealthCheckHandler())
	r.Post("/auth/register", s.RegisterHandler())
	r.Post("/auth/login", s.LoginHandler())

	r.Route("/players", func(r chi.Router) {
		r.Get("/", s.ListPlayersHandler())
		r.Method(http.MethodPost, "/", Chain(s.CreatePlayerHandler(), requireIdentity))
		r.Get("/{id}", s.GetPlayerHandler())
		r.Method(http.MethodPut, "/{id}", Chain(s.UpdatePlayerHandler(), requireIdentity))
		r.Method(http.MethodDelete, "/{id}", Chain(s.DeletePlayerHandler(), requireIdentity))
	})

	r.Route("/matches", func(r chi.Router) {
		r.Get("/", s.ListOpenMatchesHandler())
		r.Method(http.MethodPost, "/", Chain(s.CreateMatchHandler(), requireIdentity))
		r.Method(http.MethodGet, "/mine", Chain(s.ListMyMatchesHandler(), requireIdentity))
		r.Get("/{id}", s.GetMatchHandler())
		r.Method(http.MethodDelete, "/{id}", Chain(s.DeleteMatchHandler(), requireIdentity))
		r.Get("/{id}/teams", s.GetTeamsHandler())
		r.Method(http.MethodPost, "/{id}/join", Chain(s.JoinMatchHandler(), requireIdentity))
		r.Method(http.MethodPost, "/{id}/leave", Chain(s.LeaveMatchHandler(), requireIdentity))
		r.Method(http.MethodPost, "/{id}/invite", Chain(s.InviteGuestsHandler(), requireIdentity))
		r.Method(http.MethodPost, "/{id}/finalize", Chain(s.FinalizeMatchHandler(), requireIdentity))
		r.Method(http.MethodPost, "/{id}/evaluations", Chain(s.SubmitEvaluationsHandler(), requireIdentity))
		r.Method(http.MethodGet, "/{id}/evaluations/can", Chain(s.CanEvaluateHandler(), requireIdentity))
	})
	r.Method(http.MethodGet, "/evaluations/pending", Chain(s.PendingEvaluationsHandler(), requireIdentity))

	r.Post("/pubsub/match-events", s.MatchEventsPushHandler())
	if s.hub != nil {
		r.Get("/ws/matches/{id}", s.LiveMatchHandler())
	}
	s.Router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// broadcast pushes a match change to live subscribers, if any.
func (s *Server) broadcast(matchID, kind string, payload any) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(matchID, live.Message{Type: kind, Payload: payload})
}
