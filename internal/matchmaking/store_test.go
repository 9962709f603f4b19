package matchmaking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/pitchside/internal/database"
	"github.com/mauv0809/pitchside/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDocs(t *testing.T) *docstore.Mock {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)
	return docstore.NewMock(docstore.NewSQLStore(db))
}

func TestStore_CreateDeduplicatesWithinWindow(t *testing.T) {
	docs := setupDocs(t)
	s := NewStore(docs, 2*time.Second).(*store)
	clock := fixedNow
	s.now = func() time.Time { return clock }
	ctx := context.Background()

	first, err := s.Create(ctx, newTestMatch(10))
	require.NoError(t, err)

	dup := newTestMatch(10)
	dup.ID = "m2"
	second, err := s.Create(ctx, dup)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "identical payload inside the window is the same match")

	clock = clock.Add(3 * time.Second)
	third, err := s.Create(ctx, dup)
	require.NoError(t, err)
	assert.Equal(t, "m2", third.ID, "outside the window a new match is created")

	other := newTestMatch(12)
	other.ID = "m3"
	fourth, err := s.Create(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, "m3", fourth.ID, "different payload is never deduplicated")
}

func TestStore_GetReturnsCopies(t *testing.T) {
	s := NewStore(setupDocs(t), time.Second)
	ctx := context.Background()
	_, err := s.Create(ctx, newTestMatch(10))
	require.NoError(t, err)

	a, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	a.Title = "mutated"

	b, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Friday", b.Title)

	missing, err := s.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_FailedWriteLeavesCacheUntouched(t *testing.T) {
	docs := setupDocs(t)
	s := NewStore(docs, time.Second)
	ctx := context.Background()
	_, err := s.Create(ctx, newTestMatch(10))
	require.NoError(t, err)

	docs.PutFunc = func(context.Context, string, string, docstore.Record) error {
		return errors.Join(docstore.ErrUnavailable, errors.New("timeout"))
	}
	changed := newTestMatch(10)
	changed.Title = "Saturday"
	err = s.Save(ctx, changed)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	got, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Friday", got.Title)
}

func TestStore_Lists(t *testing.T) {
	s := NewStore(setupDocs(t), 0)
	ctx := context.Background()

	mk := func(id string, status Status, organizer string, players []string, day int) {
		m := newTestMatch(10)
		m.ID = id
		m.Title = id
		m.Status = status
		m.Organizer.ID = organizer
		m.ScheduledAt = fixedNow.AddDate(0, 0, day)
		for _, p := range players {
			m.RegisteredPlayers = append(m.RegisteredPlayers, rp(p, "Midfielder", 50))
		}
		m.syncPlayerIDs()
		require.NoError(t, s.Save(ctx, m))
	}
	mk("later", StatusOpen, "org1", []string{"u1"}, 3)
	mk("sooner", StatusFull, "org2", []string{"u1", "u2"}, 1)
	mk("done", StatusCompleted, "org1", nil, 0)
	mk("legacy", StatusFinished, "org3", []string{"u2"}, -1)

	open, err := s.ListByStatus(ctx, StatusOpen, StatusFull)
	require.NoError(t, err)
	assert.Equal(t, []string{"sooner", "later"}, matchIDs(open))

	completed, err := s.ListByStatus(ctx, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy", "done"}, matchIDs(completed))
	assert.Equal(t, StatusCompleted, completed[0].Status, "finished is read back as completed")

	byPlayer, err := s.ListByPlayer(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"sooner", "later"}, matchIDs(byPlayer))

	byOrganizer, err := s.ListByOrganizer(ctx, "org1")
	require.NoError(t, err)
	assert.Equal(t, []string{"done", "later"}, matchIDs(byOrganizer))
}

func TestStore_RecordSubmissionReplacesOnlyThatEvaluator(t *testing.T) {
	s := NewStore(setupDocs(t), 0)
	ctx := context.Background()
	_, err := s.Create(ctx, newTestMatch(10))
	require.NoError(t, err)

	require.NoError(t, s.RecordSubmission(ctx, "m1", "a", []SubmittedEvaluation{{SubjectID: "x", Rating: 6}, {SubjectID: "y", Rating: 7}}))
	require.NoError(t, s.RecordSubmission(ctx, "m1", "b", []SubmittedEvaluation{{SubjectID: "x", Rating: 9}}))
	require.NoError(t, s.RecordSubmission(ctx, "m1", "a", []SubmittedEvaluation{{SubjectID: "x", Rating: 3}}))

	m, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, m.SubmittedEvaluations, 2)
	assert.Equal(t, []SubmittedEvaluation{{SubjectID: "x", Rating: 3, SubmittedAt: time.Time{}}}, stripTimes(m.SubmittedEvaluations["a"]))
	assert.Equal(t, 9, m.SubmittedEvaluations["b"][0].Rating)
	assert.Equal(t, "Friday", m.Title)

	assert.ErrorIs(t, s.RecordSubmission(ctx, "ghost", "a", nil), ErrMatchNotFound)
}

func TestStore_MarkEvaluationsComplete(t *testing.T) {
	s := NewStore(setupDocs(t), 0)
	ctx := context.Background()
	_, err := s.Create(ctx, newTestMatch(10))
	require.NoError(t, err)

	require.NoError(t, s.MarkEvaluationsComplete(ctx, "m1", fixedNow))
	m, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, m.EvaluationsComplete)
	require.NotNil(t, m.EvaluationsCompletedAt)
	assert.True(t, fixedNow.Equal(*m.EvaluationsCompletedAt))
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(setupDocs(t), 0)
	ctx := context.Background()
	_, err := s.Create(ctx, newTestMatch(10))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "m1"))
	m, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func matchIDs(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.ID
	}
	return out
}

func stripTimes(evals []SubmittedEvaluation) []SubmittedEvaluation {
	out := append([]SubmittedEvaluation(nil), evals...)
	for i := range out {
		out[i].SubmittedAt = time.Time{}
	}
	return out
}
