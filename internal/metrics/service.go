package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchside_matches_created_total",
			Help: "The total number of matches created.",
		}),
		PlayersJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchside_players_joined_total",
			Help: "The total number of successful match joins.",
		}),
		TeamsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchside_teams_generated_total",
			Help: "The total number of team generations.",
		}),
		BalanceDiff: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pitchside_team_balance_diff",
			Help:    "Absolute difference between the two teams' average OVR.",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		EvaluationsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchside_evaluations_submitted_total",
			Help: "The total number of evaluation submissions accepted.",
		}),
		RatingRecalculations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchside_rating_recalculations_total",
			Help: "The total number of times OVR deltas were applied for a match.",
		}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchside_store_errors_total",
			Help: "The total number of document store failures surfaced to callers.",
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchside_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pitchside_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pitchside_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesCreated,
		s.PlayersJoined,
		s.TeamsGenerated,
		s.BalanceDiff,
		s.EvaluationsSubmitted,
		s.RatingRecalculations,
		s.StoreErrors,
		s.NotifSent,
		s.NotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesCreated() {
	s.MatchesCreated.Inc()
}

func (s *Service) IncPlayersJoined() {
	s.PlayersJoined.Inc()
}

func (s *Service) IncTeamsGenerated() {
	s.TeamsGenerated.Inc()
}

func (s *Service) ObserveBalanceDiff(d float64) {
	s.BalanceDiff.Observe(d)
}

func (s *Service) IncEvaluationsSubmitted() {
	s.EvaluationsSubmitted.Inc()
}

func (s *Service) IncRatingRecalculations() {
	s.RatingRecalculations.Inc()
}

func (s *Service) IncStoreErrors() {
	s.StoreErrors.Inc()
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) SetStartupTime(dur float64) {
	s.StartupTimeSeconds.Set(dur)
}
