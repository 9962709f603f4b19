package notifier

import (
	"sync"

	"github.com/mauv0809/pitchside/internal/evaluation"
	"github.com/mauv0809/pitchside/internal/matchmaking"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendTeamsAnnouncementCalls  []MatchCall
	SendEvaluationReminderCalls []MatchCall
	SendRatingSummaryCalls      []RatingSummaryCall

	// Optional overrides
	SendTeamsAnnouncementFunc  func(match *matchmaking.Match, dryRun bool) error
	SendEvaluationReminderFunc func(match *matchmaking.Match, dryRun bool) error
	SendRatingSummaryFunc      func(match *matchmaking.Match, deltas []evaluation.Delta, dryRun bool) error
}

type MatchCall struct {
	Match  *matchmaking.Match
	DryRun bool
}

type RatingSummaryCall struct {
	Match  *matchmaking.Match
	Deltas []evaluation.Delta
	DryRun bool
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendTeamsAnnouncementCalls = nil
	m.SendEvaluationReminderCalls = nil
	m.SendRatingSummaryCalls = nil
}

func (m *Mock) SendTeamsAnnouncement(match *matchmaking.Match, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendTeamsAnnouncementCalls = append(m.SendTeamsAnnouncementCalls, MatchCall{Match: match, DryRun: dryRun})
	if m.SendTeamsAnnouncementFunc != nil {
		return m.SendTeamsAnnouncementFunc(match, dryRun)
	}
	return nil
}

func (m *Mock) SendEvaluationReminder(match *matchmaking.Match, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendEvaluationReminderCalls = append(m.SendEvaluationReminderCalls, MatchCall{Match: match, DryRun: dryRun})
	if m.SendEvaluationReminderFunc != nil {
		return m.SendEvaluationReminderFunc(match, dryRun)
	}
	return nil
}

func (m *Mock) SendRatingSummary(match *matchmaking.Match, deltas []evaluation.Delta, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRatingSummaryCalls = append(m.SendRatingSummaryCalls, RatingSummaryCall{Match: match, Deltas: deltas, DryRun: dryRun})
	if m.SendRatingSummaryFunc != nil {
		return m.SendRatingSummaryFunc(match, deltas, dryRun)
	}
	return nil
}
