package evaluation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/pitchside/internal/matchmaking"
	"github.com/mauv0809/pitchside/internal/metrics"
	"github.com/mauv0809/pitchside/internal/pubsub"
	"github.com/mauv0809/pitchside/internal/roster"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentWrites bounds the player reads and writes issued per recalculation.
const maxConcurrentWrites = 4

// Options wires an Engine.
type Options struct {
	Store   matchmaking.Store
	Roster  roster.Store
	Metrics metrics.Metrics
	PubSub  pubsub.PubSubClient
	Topic   string
}

type engine struct {
	store   matchmaking.Store
	roster  roster.Store
	metrics metrics.Metrics
	pubsub  pubsub.PubSubClient
	topic   string
	now     func() time.Time

	mu sync.Mutex
}

func New(opts Options) Engine {
	return &engine{
		store:   opts.Store,
		roster:  opts.Roster,
		metrics: opts.Metrics,
		pubsub:  opts.PubSub,
		topic:   opts.Topic,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Submit replaces the evaluator's submission for the match and then runs the
// completion check. Nothing is written when any rating is rejected.
func (e *engine) Submit(ctx context.Context, matchID, evaluatorID string, evals map[string]Input) (*Outcome, error) {
	if evaluatorID == "" {
		return nil, matchmaking.ErrNotAuthenticated
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	assigned := m.EvaluationAssignments[evaluatorID]
	if len(assigned) == 0 {
		return nil, ErrNotAssigned
	}
	if len(evals) == 0 {
		return nil, ErrEmptyEvaluationSet
	}
	if !m.Status.IsCompleted() {
		return nil, ErrMatchNotFinalized
	}

	allowed := make(map[string]bool, len(assigned))
	for _, s := range assigned {
		allowed[s.ID] = true
	}
	for subjectID, in := range evals {
		if !allowed[subjectID] {
			return nil, fmt.Errorf("%w: %s", ErrSubjectNotAssigned, subjectID)
		}
		if in.Rating < MinRating || in.Rating > MaxRating {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidRating, in.Rating)
		}
	}

	now := e.now()
	name := evaluatorName(m, evaluatorID)
	list := make([]matchmaking.SubmittedEvaluation, 0, len(evals))
	for _, s := range assigned {
		in, ok := evals[s.ID]
		if !ok {
			continue
		}
		list = append(list, matchmaking.SubmittedEvaluation{
			SubjectID:     s.ID,
			Rating:        in.Rating,
			Comment:       in.Comment,
			EvaluatorID:   evaluatorID,
			EvaluatorName: name,
			SubmittedAt:   now,
		})
	}

	if err := e.store.RecordSubmission(ctx, matchID, evaluatorID, list); err != nil {
		return nil, e.storeFailure("record evaluations", err)
	}
	e.metrics.IncEvaluationsSubmitted()
	log.Info("Evaluations submitted", "matchID", matchID, "evaluatorID", evaluatorID, "count", len(list))

	return e.recalculate(ctx, matchID)
}

func (e *engine) Recalculate(ctx context.Context, matchID string) (*Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recalculate(ctx, matchID)
}

// recalculate derives every subject's OVR from the full set of submissions.
// The change a previous run applied for this match is backed out first, so
// re-running with the same submissions leaves ratings where they are.
func (e *engine) recalculate(ctx context.Context, matchID string) (*Outcome, error) {
	m, err := e.load(ctx, matchID)
	if err != nil {
		return nil, err
	}

	total := len(m.EvaluationAssignments)
	if total != len(m.RegisteredPlayers) {
		log.Warn("Assignment count differs from registered players", "matchID", matchID, "assignments", total, "registered", len(m.RegisteredPlayers))
	}
	submitted := 0
	for evaluatorID := range m.SubmittedEvaluations {
		if _, ok := m.EvaluationAssignments[evaluatorID]; ok {
			submitted++
		}
	}
	out := &Outcome{Submitted: submitted, Total: total}
	if total > 0 {
		out.Ratio = float64(submitted) / float64(total)
	}
	if !ThresholdMet(submitted, total) {
		log.Debug("Evaluation threshold not met", "matchID", matchID, "submitted", submitted, "total", total)
		return out, nil
	}

	players, err := e.loadSubjects(ctx, m)
	if err != nil {
		return nil, err
	}
	base := make(map[string]int, len(players))
	for id, p := range players {
		base[id] = p.OVR - p.AppliedChange(matchID)
	}
	deltas := ComputeDeltas(m.SubmittedEvaluations, base)
	for i := range deltas {
		deltas[i].Name = players[deltas[i].PlayerID].Name
	}

	now := e.now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentWrites)
	for _, d := range deltas {
		record := roster.EvaluationRecord{
			MatchID:      matchID,
			AvgRating:    d.AvgRating,
			RatingsCount: d.RatingsCount,
			OVRChange:    d.OVRChange,
			PreviousOVR:  d.PreviousOVR,
			NewOVR:       d.NewOVR,
			UpdatedAt:    now,
		}
		g.Go(func() error {
			if err := e.roster.UpdateRating(gctx, d.PlayerID, d.NewOVR, record); err != nil {
				return fmt.Errorf("failed to update rating for %s: %w", d.PlayerID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, e.storeFailure("apply ratings", err)
	}

	out.Applied = true
	out.Deltas = deltas
	e.metrics.IncRatingRecalculations()
	log.Info("Recalculated ratings", "matchID", matchID, "players", len(deltas), "submitted", submitted, "total", total)

	if !m.EvaluationsComplete {
		if err := e.store.MarkEvaluationsComplete(ctx, matchID, now); err != nil {
			return nil, e.storeFailure("mark evaluations complete", err)
		}
		e.publish(m)
	}
	return out, nil
}

// loadSubjects fetches the roster entries of every rated, non-guest player.
// Subjects without a roster entry are left out.
func (e *engine) loadSubjects(ctx context.Context, m *matchmaking.Match) (map[string]*roster.Player, error) {
	guests := make(map[string]bool)
	for _, p := range m.RegisteredPlayers {
		if p.IsGuest {
			guests[p.ID] = true
		}
	}
	var ids []string
	for id := range CollectRatings(m.SubmittedEvaluations) {
		if !guests[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var mu sync.Mutex
	players := make(map[string]*roster.Player, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentWrites)
	for _, id := range ids {
		g.Go(func() error {
			p, err := e.roster.GetPlayer(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to get player %s: %w", id, err)
			}
			if p == nil {
				log.Warn("Rated player has no roster entry", "matchID", m.ID, "playerID", id)
				return nil
			}
			mu.Lock()
			players[id] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, e.storeFailure("load players", err)
	}
	return players, nil
}

// CanEvaluate reports whether the evaluator has an assignment on the match
// and has not submitted yet. A missing match is not an error.
func (e *engine) CanEvaluate(ctx context.Context, matchID, evaluatorID string) (bool, error) {
	m, err := e.store.Get(ctx, matchID)
	if err != nil {
		return false, e.storeFailure("get match", err)
	}
	if m == nil {
		return false, nil
	}
	return canEvaluate(m, evaluatorID), nil
}

func (e *engine) PendingEvaluations(ctx context.Context, userID string) ([]Pending, error) {
	pending := []Pending{}
	if userID == "" {
		return pending, nil
	}
	matches, err := e.store.ListByPlayer(ctx, userID)
	if err != nil {
		return nil, e.storeFailure("list matches", err)
	}
	for i := range matches {
		m := &matches[i]
		if !m.Status.IsCompleted() || !canEvaluate(m, userID) {
			continue
		}
		pending = append(pending, Pending{
			MatchID:     m.ID,
			Title:       m.Title,
			ScheduledAt: m.ScheduledAt,
			Subjects:    m.EvaluationAssignments[userID],
		})
	}
	return pending, nil
}

func canEvaluate(m *matchmaking.Match, evaluatorID string) bool {
	if len(m.EvaluationAssignments[evaluatorID]) == 0 {
		return false
	}
	_, done := m.SubmittedEvaluations[evaluatorID]
	return !done
}

func evaluatorName(m *matchmaking.Match, evaluatorID string) string {
	for _, p := range m.RegisteredPlayers {
		if p.ID == evaluatorID {
			return p.Name
		}
	}
	return ""
}

func (e *engine) load(ctx context.Context, matchID string) (*matchmaking.Match, error) {
	m, err := e.store.Get(ctx, matchID)
	if err != nil {
		return nil, e.storeFailure("get match", err)
	}
	if m == nil {
		return nil, matchmaking.ErrMatchNotFound
	}
	return m, nil
}

func (e *engine) publish(m *matchmaking.Match) {
	if e.pubsub == nil || e.topic == "" {
		return
	}
	event := pubsub.MatchEvent{
		Type:        pubsub.EventEvaluationsComplete,
		MatchID:     m.ID,
		Title:       m.Title,
		OrganizerID: m.Organizer.ID,
		At:          e.now(),
	}
	if err := e.pubsub.SendMessage(e.topic, event); err != nil {
		log.Warn("Failed to publish match event", "type", event.Type, "matchID", m.ID, "error", err)
	}
}

func (e *engine) storeFailure(action string, err error) error {
	if errors.Is(err, matchmaking.ErrStorageUnavailable) {
		e.metrics.IncStoreErrors()
		log.Error("Storage failure", "action", action, "error", err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
