package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/pitchside/internal/auth"
	"github.com/mauv0809/pitchside/internal/config"
	"github.com/mauv0809/pitchside/internal/database"
	"github.com/mauv0809/pitchside/internal/docstore"
	"github.com/mauv0809/pitchside/internal/evaluation"
	server "github.com/mauv0809/pitchside/internal/http"
	"github.com/mauv0809/pitchside/internal/identity"
	"github.com/mauv0809/pitchside/internal/live"
	"github.com/mauv0809/pitchside/internal/matchmaking"
	"github.com/mauv0809/pitchside/internal/metrics"
	"github.com/mauv0809/pitchside/internal/notifier"
	"github.com/mauv0809/pitchside/internal/notifier/slack"
	"github.com/mauv0809/pitchside/internal/processor"
	"github.com/mauv0809/pitchside/internal/pubsub"
	"github.com/mauv0809/pitchside/internal/roster"
	"github.com/mauv0809/pitchside/internal/storage"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("Unknown log level, keeping default", "level", cfg.LogLevel)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	docs, docsTeardown := openDocstore(ctx, cfg)
	defer func() {
		log.Info("Closing document store")
		docsTeardown()
	}()
	dbInitDuration := time.Since(startTime)
	log.Info("Document store initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())

	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		r2, err := storage.NewR2Uploader(ctx, cfg.R2)
		if err != nil {
			log.Fatalf("Failed to initialize R2 uploader: %s", err)
		}
		uploader = r2
	} else {
		log.Info("R2 not configured, player photos stay inline")
	}

	var ps pubsub.PubSubClient = pubsub.Noop{}
	if cfg.ProjectID != "" {
		client, closePubSub, err := pubsub.New(ctx, cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
		defer closePubSub()
		ps = client
	} else {
		log.Info("GCP_PROJECT not set, match events are not published")
	}

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	var notify notifier.Notifier = notifier.Noop{}
	if cfg.Slack.Enabled() {
		notify = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, cfg.Slack.Timezone, metricsSvc)
	} else {
		log.Info("Slack not configured, notifications are disabled")
	}

	tokens := identity.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	players := roster.New(docs, uploader)
	matchStore := matchmaking.NewStore(docs, cfg.DedupeWindow)
	matches := matchmaking.NewService(matchmaking.Options{
		Store:        matchStore,
		Roster:       players,
		Identity:     identity.ContextProvider{},
		Metrics:      metricsSvc,
		PubSub:       ps,
		Topic:        cfg.PubSubTopic,
		DefaultGroup: cfg.DefaultGroup,
	})
	evaluations := evaluation.New(evaluation.Options{
		Store:   matchStore,
		Roster:  players,
		Metrics: metricsSvc,
		PubSub:  ps,
		Topic:   cfg.PubSubTopic,
	})

	hub := live.NewHub(cfg.CORSOrigins)
	go hub.Run(ctx)

	s := server.NewServer(server.Options{
		Auth:           auth.New(docs, tokens),
		Tokens:         tokens,
		Roster:         players,
		Matches:        matches,
		Evaluations:    evaluations,
		Processor:      processor.New(matchStore, players, notify),
		PubSub:         ps,
		Hub:            hub,
		MetricsHandler: metricsHandler,
		CORSOrigins:    cfg.CORSOrigins,
		DefaultGroup:   cfg.DefaultGroup,
	})

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", cfg.Port, "backend", cfg.StoreBackend)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}
	// Closes every live websocket.
	stop()

	log.Info("Server process shutting down")
}

// openDocstore returns the configured document store backend.
func openDocstore(ctx context.Context, cfg config.Config) (docstore.Store, func()) {
	if cfg.StoreBackend == config.BackendFirestore {
		fs, teardown, err := docstore.NewFirestoreStore(ctx, cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize firestore: %s", err)
		}
		return fs, teardown
	}
	db, teardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	return docstore.NewSQLStore(db), teardown
}
