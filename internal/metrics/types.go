package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	MatchesCreated       prometheus.Counter
	PlayersJoined        prometheus.Counter
	TeamsGenerated       prometheus.Counter
	BalanceDiff          prometheus.Histogram
	EvaluationsSubmitted prometheus.Counter
	RatingRecalculations prometheus.Counter
	StoreErrors          prometheus.Counter
	NotifSent            prometheus.Counter
	NotifFailed          prometheus.Counter
	StartupTimeSeconds   prometheus.Gauge
}
