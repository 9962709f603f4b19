package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                   sync.Mutex
	matchesCreated       int
	playersJoined        int
	teamsGenerated       int
	balanceDiffs         []float64
	evaluationsSubmitted int
	ratingRecalculations int
	storeErrors          int
	notifSent            int
	notifFailed          int
	startupTime          float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		balanceDiffs: make([]float64, 0),
	}
}

func (m *Mock) IncMatchesCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCreated++
}

func (m *Mock) IncPlayersJoined() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playersJoined++
}

func (m *Mock) IncTeamsGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teamsGenerated++
}

func (m *Mock) ObserveBalanceDiff(diff float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balanceDiffs = append(m.balanceDiffs, diff)
}

func (m *Mock) IncEvaluationsSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluationsSubmitted++
}

func (m *Mock) IncRatingRecalculations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingRecalculations++
}

func (m *Mock) IncStoreErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeErrors++
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// MatchesCreated returns the number of times IncMatchesCreated was called.
func (m *Mock) MatchesCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCreated
}

// PlayersJoined returns the number of times IncPlayersJoined was called.
func (m *Mock) PlayersJoined() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playersJoined
}

// TeamsGenerated returns the number of times IncTeamsGenerated was called.
func (m *Mock) TeamsGenerated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.teamsGenerated
}

// BalanceDiffs returns a copy of every observed balance diff.
func (m *Mock) BalanceDiffs() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.balanceDiffs...)
}

// EvaluationsSubmitted returns the number of times IncEvaluationsSubmitted was called.
func (m *Mock) EvaluationsSubmitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evaluationsSubmitted
}

// RatingRecalculations returns the number of times IncRatingRecalculations was called.
func (m *Mock) RatingRecalculations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratingRecalculations
}

// StoreErrors returns the number of times IncStoreErrors was called.
func (m *Mock) StoreErrors() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storeErrors
}

// NotifSent returns the number of times IncNotifSent was called.
func (m *Mock) NotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent
}

// NotifFailed returns the number of times IncNotifFailed was called.
func (m *Mock) NotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifFailed
}

// StartupTime returns the last value passed to SetStartupTime.
func (m *Mock) StartupTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startupTime
}
