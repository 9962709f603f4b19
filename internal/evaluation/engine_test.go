package evaluation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mauv0809/pitchside/internal/database"
	"github.com/mauv0809/pitchside/internal/docstore"
	"github.com/mauv0809/pitchside/internal/matchmaking"
	"github.com/mauv0809/pitchside/internal/metrics"
	"github.com/mauv0809/pitchside/internal/pubsub"
	"github.com/mauv0809/pitchside/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 12, 19, 0, 0, 0, time.UTC)

type engineFixture struct {
	engine  Engine
	docs    *docstore.Mock
	matches matchmaking.Store
	roster  *roster.MockStore
	metrics *metrics.Mock
	pubsub  *pubsub.MockPubSubClient
}

func setupEngine(t *testing.T) engineFixture {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	docs := docstore.NewMock(docstore.NewSQLStore(db))
	matches := matchmaking.NewStore(docs, time.Second)
	players := roster.NewMockStore(roster.New(docs, nil))
	m := metrics.NewMock()
	ps := pubsub.NewMock()
	e := New(Options{Store: matches, Roster: players, Metrics: m, PubSub: ps, Topic: "match-events"}).(*engine)
	e.now = func() time.Time { return fixedNow }
	return engineFixture{engine: e, docs: docs, matches: matches, roster: players, metrics: m, pubsub: ps}
}

// seedMatch stores a full five-a-side match between u1..u5, each rated 70.
// Registration order fixes the assignments:
// u1→[u2 u3] u2→[u1 u4] u3→[u5 u1] u4→[u2 u3] u5→[u4 u1].
func (f engineFixture) seedMatch(t *testing.T, finalize bool) *matchmaking.Match {
	t.Helper()
	ctx := context.Background()
	m := matchmaking.NewMatch("m1", matchmaking.CreateInput{
		Title:       "Thursday kickabout",
		ScheduledAt: fixedNow.Add(-2 * time.Hour),
		MaxPlayers:  5,
		GroupID:     "g1",
	}, matchmaking.Organizer{ID: "u1", Name: "Player u1"}, fixedNow)

	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("u%d", i)
		p, err := f.roster.CreatePlayer(ctx, roster.Player{
			Name:       "Player " + id,
			UserID:     id,
			GroupID:    "g1",
			Position:   roster.Midfielder,
			Attributes: roster.Attributes{Pace: 70, Shooting: 70, Passing: 70, Dribbling: 70, Defense: 70, Physical: 70},
		})
		require.NoError(t, err)
		require.Equal(t, 70, p.OVR)
		m, _, err = matchmaking.ApplyJoin(m, matchmaking.SnapshotPlayer(*p, true, fixedNow), fixedNow)
		require.NoError(t, err)
	}
	require.Equal(t, matchmaking.StatusFull, m.Status)

	if finalize {
		var err error
		m, _, err = matchmaking.ApplyFinalize(m, "u1", fixedNow)
		require.NoError(t, err)
	}
	created, err := f.matches.Create(ctx, m)
	require.NoError(t, err)
	return created
}

func (f engineFixture) ovr(t *testing.T, id string) int {
	t.Helper()
	p, err := f.roster.GetPlayer(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.OVR
}

func TestEngine_SubmitUntilThreshold(t *testing.T) {
	f := setupEngine(t)
	f.seedMatch(t, true)
	ctx := context.Background()

	steps := []struct {
		evaluator string
		evals     map[string]Input
	}{
		{"u1", map[string]Input{"u2": {Rating: 8, Comment: "great engine"}, "u3": {Rating: 5}}},
		{"u4", map[string]Input{"u2": {Rating: 6}, "u3": {Rating: 5}}},
		{"u2", map[string]Input{"u1": {Rating: 5}, "u4": {Rating: 5}}},
	}
	for i, s := range steps {
		out, err := f.engine.Submit(ctx, "m1", s.evaluator, s.evals)
		require.NoError(t, err)
		assert.Equal(t, i+1, out.Submitted)
		assert.Equal(t, 5, out.Total)
		assert.False(t, out.Applied, "%d of 5 is below the threshold", i+1)
	}
	assert.Empty(t, f.roster.RatingWrites())
	assert.Equal(t, 70, f.ovr(t, "u2"))

	out, err := f.engine.Submit(ctx, "m1", "u3", map[string]Input{"u5": {Rating: 5}, "u1": {Rating: 5}})
	require.NoError(t, err)
	assert.True(t, out.Applied, "4 of 5 meets the threshold")
	assert.InDelta(t, 0.8, out.Ratio, 1e-9)

	assert.Equal(t, 74, f.ovr(t, "u2"), "70 + round((7-5)*2)")
	for _, id := range []string{"u1", "u3", "u4", "u5"} {
		assert.Equal(t, 70, f.ovr(t, id), id)
	}
	p, err := f.roster.GetPlayer(ctx, "u2")
	require.NoError(t, err)
	require.NotNil(t, p.LastEvaluation)
	assert.Equal(t, "m1", p.LastEvaluation.MatchID)
	assert.Equal(t, 2, p.LastEvaluation.RatingsCount)
	assert.Equal(t, 4, p.LastEvaluation.OVRChange)

	m, err := f.matches.Get(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, m.EvaluationsComplete)
	require.NotNil(t, m.EvaluationsCompletedAt)
	assert.Equal(t, "Player u1", m.SubmittedEvaluations["u1"][0].EvaluatorName)
	assert.Equal(t, "great engine", m.SubmittedEvaluations["u1"][0].Comment)

	assert.Equal(t, 4, f.metrics.EvaluationsSubmitted())
	assert.Equal(t, 1, f.metrics.RatingRecalculations())
	events := f.pubsub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, pubsub.EventEvaluationsComplete, events[0].Type)
	assert.Equal(t, "m1", events[0].MatchID)
}

func TestEngine_LateSubmissionRecomputesWithoutDoubleApplying(t *testing.T) {
	f := setupEngine(t)
	f.seedMatch(t, true)
	ctx := context.Background()

	submit := func(evaluator string, evals map[string]Input) *Outcome {
		out, err := f.engine.Submit(ctx, "m1", evaluator, evals)
		require.NoError(t, err)
		return out
	}
	submit("u1", map[string]Input{"u2": {Rating: 8}, "u3": {Rating: 5}})
	submit("u4", map[string]Input{"u2": {Rating: 6}, "u3": {Rating: 5}})
	submit("u2", map[string]Input{"u1": {Rating: 5}, "u4": {Rating: 5}})
	submit("u3", map[string]Input{"u5": {Rating: 5}, "u1": {Rating: 5}})
	require.Equal(t, 74, f.ovr(t, "u2"))

	out := submit("u5", map[string]Input{"u4": {Rating: 5}, "u1": {Rating: 1}})
	assert.True(t, out.Applied)
	assert.Equal(t, 5, out.Submitted)

	assert.Equal(t, 74, f.ovr(t, "u2"), "earlier change is not applied twice")
	assert.Equal(t, 67, f.ovr(t, "u1"), "ratings 5,5,1 average 3.67")

	for i := 0; i < 2; i++ {
		_, err := f.engine.Recalculate(ctx, "m1")
		require.NoError(t, err)
	}
	assert.Equal(t, 74, f.ovr(t, "u2"))
	assert.Equal(t, 67, f.ovr(t, "u1"))
	assert.Len(t, f.pubsub.Events(), 1, "completion is announced once")
}

func TestEngine_RecalculationKeepsOtherMatchChanges(t *testing.T) {
	f := setupEngine(t)
	f.seedMatch(t, true)
	ctx := context.Background()

	// u2 gained 3 in an earlier match.
	require.NoError(t, f.roster.UpdateRating(ctx, "u2", 73, roster.EvaluationRecord{
		MatchID: "m0", OVRChange: 3, PreviousOVR: 70, NewOVR: 73, UpdatedAt: fixedNow,
	}))

	for evaluator, evals := range map[string]map[string]Input{
		"u1": {"u2": {Rating: 8}, "u3": {Rating: 5}},
		"u4": {"u2": {Rating: 6}, "u3": {Rating: 5}},
		"u2": {"u1": {Rating: 5}, "u4": {Rating: 5}},
		"u3": {"u5": {Rating: 5}, "u1": {Rating: 5}},
	} {
		_, err := f.engine.Submit(ctx, "m1", evaluator, evals)
		require.NoError(t, err)
	}
	assert.Equal(t, 77, f.ovr(t, "u2"))

	_, err := f.engine.Recalculate(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 77, f.ovr(t, "u2"))

	p, err := f.roster.GetPlayer(ctx, "u2")
	require.NoError(t, err)
	assert.Contains(t, p.EvaluationHistory, "m0")
	assert.Contains(t, p.EvaluationHistory, "m1")
}

func TestEngine_ResubmissionReplacesPrevious(t *testing.T) {
	f := setupEngine(t)
	f.seedMatch(t, true)
	ctx := context.Background()

	_, err := f.engine.Submit(ctx, "m1", "u1", map[string]Input{"u2": {Rating: 9}, "u3": {Rating: 9}})
	require.NoError(t, err)
	_, err = f.engine.Submit(ctx, "m1", "u1", map[string]Input{"u2": {Rating: 4}})
	require.NoError(t, err)
	_, err = f.engine.Submit(ctx, "m1", "u1", map[string]Input{"u2": {Rating: 4}})
	require.NoError(t, err)

	m, err := f.matches.Get(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, m.SubmittedEvaluations, 1)
	require.Len(t, m.SubmittedEvaluations["u1"], 1)
	assert.Equal(t, "u2", m.SubmittedEvaluations["u1"][0].SubjectID)
	assert.Equal(t, 4, m.SubmittedEvaluations["u1"][0].Rating)
}

func TestEngine_SubmitRejections(t *testing.T) {
	f := setupEngine(t)
	f.seedMatch(t, true)
	ctx := context.Background()

	tests := []struct {
		name      string
		matchID   string
		evaluator string
		evals     map[string]Input
		want      error
	}{
		{"no identity", "m1", "", map[string]Input{"u2": {Rating: 5}}, matchmaking.ErrNotAuthenticated},
		{"missing match", "nope", "u1", map[string]Input{"u2": {Rating: 5}}, matchmaking.ErrMatchNotFound},
		{"not assigned", "m1", "stranger", map[string]Input{"u2": {Rating: 5}}, ErrNotAssigned},
		{"empty", "m1", "u1", map[string]Input{}, ErrEmptyEvaluationSet},
		{"wrong subject", "m1", "u1", map[string]Input{"u5": {Rating: 5}}, ErrSubjectNotAssigned},
		{"rating too high", "m1", "u1", map[string]Input{"u2": {Rating: 11}}, ErrInvalidRating},
		{"rating too low", "m1", "u1", map[string]Input{"u2": {Rating: 0}}, ErrInvalidRating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Submit(ctx, tt.matchID, tt.evaluator, tt.evals)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	m, err := f.matches.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, m.SubmittedEvaluations, "rejected submissions write nothing")
	assert.Zero(t, f.docs.CallCount("Update"))
}

func TestEngine_SubmitBeforeFinalize(t *testing.T) {
	f := setupEngine(t)
	f.seedMatch(t, false)

	_, err := f.engine.Submit(context.Background(), "m1", "u1", map[string]Input{"u2": {Rating: 7}})
	assert.ErrorIs(t, err, ErrMatchNotFinalized)
}

func TestEngine_CanEvaluate(t *testing.T) {
	f := setupEngine(t)
	f.seedMatch(t, true)
	ctx := context.Background()

	ok, err := f.engine.CanEvaluate(ctx, "m1", "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.engine.Submit(ctx, "m1", "u1", map[string]Input{"u2": {Rating: 7}})
	require.NoError(t, err)

	ok, err = f.engine.CanEvaluate(ctx, "m1", "u1")
	require.NoError(t, err)
	assert.False(t, ok, "already submitted")

	ok, err = f.engine.CanEvaluate(ctx, "m1", "stranger")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.engine.CanEvaluate(ctx, "missing", "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_PendingEvaluations(t *testing.T) {
	f := setupEngine(t)
	f.seedMatch(t, true)
	ctx := context.Background()

	pending, err := f.engine.PendingEvaluations(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "m1", pending[0].MatchID)
	assert.Equal(t, "Thursday kickabout", pending[0].Title)
	require.Len(t, pending[0].Subjects, 2)
	assert.Equal(t, "u1", pending[0].Subjects[0].ID)
	assert.Equal(t, "u4", pending[0].Subjects[1].ID)

	_, err = f.engine.Submit(ctx, "m1", "u2", map[string]Input{"u1": {Rating: 6}, "u4": {Rating: 6}})
	require.NoError(t, err)

	pending, err = f.engine.PendingEvaluations(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.NotNil(t, pending)

	pending, err = f.engine.PendingEvaluations(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestEngine_PendingSkipsUnfinalized(t *testing.T) {
	f := setupEngine(t)
	f.seedMatch(t, false)

	pending, err := f.engine.PendingEvaluations(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestEngine_GuestsAreNotRated(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	m := f.seedMatch(t, true)

	// Swap u5 for a guest without a roster entry.
	m.RegisteredPlayers[4].IsGuest = true
	m.RegisteredPlayers[4].ID = "guest-1"
	m.EvaluationAssignments["guest-1"] = m.EvaluationAssignments["u5"]
	delete(m.EvaluationAssignments, "u5")
	m.EvaluationAssignments["u3"][0].ID = "guest-1"
	require.NoError(t, f.matches.Save(ctx, m))

	for evaluator, evals := range map[string]map[string]Input{
		"u1": {"u2": {Rating: 5}, "u3": {Rating: 5}},
		"u2": {"u1": {Rating: 5}, "u4": {Rating: 5}},
		"u3": {"guest-1": {Rating: 10}, "u1": {Rating: 5}},
		"u4": {"u2": {Rating: 5}, "u3": {Rating: 5}},
	} {
		_, err := f.engine.Submit(ctx, "m1", evaluator, evals)
		require.NoError(t, err)
	}

	for _, w := range f.roster.RatingWrites() {
		assert.NotEqual(t, "guest-1", w.PlayerID)
	}
	assert.Len(t, f.roster.RatingWrites(), 4)
}

func TestEngine_StorageFailures(t *testing.T) {
	t.Run("match lookup", func(t *testing.T) {
		f := setupEngine(t)
		f.docs.GetFunc = func(ctx context.Context, collection, id string) (docstore.Record, error) {
			return nil, fmt.Errorf("%w: connection reset", docstore.ErrUnavailable)
		}
		_, err := f.engine.Submit(context.Background(), "m1", "u1", map[string]Input{"u2": {Rating: 5}})
		assert.ErrorIs(t, err, matchmaking.ErrStorageUnavailable)
		assert.NotErrorIs(t, err, matchmaking.ErrMatchNotFound)
		assert.Equal(t, 1, f.metrics.StoreErrors())
	})

	t.Run("rating write", func(t *testing.T) {
		f := setupEngine(t)
		f.seedMatch(t, true)
		ctx := context.Background()
		for evaluator, evals := range map[string]map[string]Input{
			"u1": {"u2": {Rating: 8}},
			"u2": {"u1": {Rating: 5}},
			"u4": {"u2": {Rating: 6}},
		} {
			_, err := f.engine.Submit(ctx, "m1", evaluator, evals)
			require.NoError(t, err)
		}

		f.roster.UpdateRatingFunc = func(ctx context.Context, id string, ovr int, record roster.EvaluationRecord) error {
			return fmt.Errorf("%w: deadline exceeded", docstore.ErrUnavailable)
		}
		_, err := f.engine.Submit(ctx, "m1", "u3", map[string]Input{"u1": {Rating: 5}})
		assert.ErrorIs(t, err, matchmaking.ErrStorageUnavailable)

		m, err := f.matches.Get(ctx, "m1")
		require.NoError(t, err)
		assert.False(t, m.EvaluationsComplete, "completion is only marked after ratings are written")
		assert.Empty(t, f.pubsub.Events())
	})

	t.Run("player read", func(t *testing.T) {
		f := setupEngine(t)
		f.seedMatch(t, true)
		f.roster.GetPlayerFunc = func(ctx context.Context, id string) (*roster.Player, error) {
			return nil, errors.New("boom")
		}
		ctx := context.Background()
		for evaluator, evals := range map[string]map[string]Input{
			"u1": {"u2": {Rating: 8}},
			"u2": {"u1": {Rating: 5}},
			"u4": {"u2": {Rating: 6}},
		} {
			_, err := f.engine.Submit(ctx, "m1", evaluator, evals)
			require.NoError(t, err)
		}
		_, err := f.engine.Submit(ctx, "m1", "u3", map[string]Input{"u1": {Rating: 5}})
		require.Error(t, err)
		assert.NotErrorIs(t, err, matchmaking.ErrStorageUnavailable)
		assert.Empty(t, f.roster.RatingWrites())
	})
}
