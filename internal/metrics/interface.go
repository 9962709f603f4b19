package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncMatchesCreated()
	IncPlayersJoined()
	IncTeamsGenerated()
	ObserveBalanceDiff(diff float64)
	IncEvaluationsSubmitted()
	IncRatingRecalculations()
	IncStoreErrors()
	IncNotifSent()
	IncNotifFailed()
	SetStartupTime(duration float64)
}
