package roster

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/pitchside/internal/database"
	"github.com/mauv0809/pitchside/internal/docstore"
	"github.com/mauv0809/pitchside/internal/identity"
	"github.com/mauv0809/pitchside/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, uploader storage.FileUploader) (Store, *docstore.Mock) {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)
	docs := docstore.NewMock(docstore.NewSQLStore(db))
	return New(docs, uploader), docs
}

func TestCreatePlayer(t *testing.T) {
	s, _ := setupStore(t, nil)
	ctx := context.Background()

	p, err := s.CreatePlayer(ctx, Player{Name: " Ana  Silva ", Position: Forward, GroupID: "g1"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Ana  Silva", p.Name)
	assert.Equal(t, "ana silva", p.NameKey)
	assert.Equal(t, DefaultAttributes(), p.Attributes)
	assert.Equal(t, 50, p.OVR)

	got, err := s.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, Forward, got.Position)
}

func TestCreatePlayer_Deduplicates(t *testing.T) {
	s, _ := setupStore(t, nil)
	ctx := context.Background()

	first, err := s.CreatePlayer(ctx, Player{Name: "Ana Silva", GroupID: "g1"})
	require.NoError(t, err)
	second, err := s.CreatePlayer(ctx, Player{Name: "ana   SILVA", GroupID: "g1"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same normalized name in the same group")

	other, err := s.CreatePlayer(ctx, Player{Name: "Ana Silva", GroupID: "g2"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID, "different group is a different player")

	linked, err := s.CreatePlayer(ctx, Player{Name: "Bruno", UserID: "u1", GroupID: "g1"})
	require.NoError(t, err)
	renamed, err := s.CreatePlayer(ctx, Player{Name: "Bruno Costa", UserID: "u1", GroupID: "g1"})
	require.NoError(t, err)
	assert.Equal(t, linked.ID, renamed.ID, "linked identity wins over name")
	assert.Equal(t, "Bruno", renamed.Name)
}

func TestCreatePlayer_Validation(t *testing.T) {
	s, docs := setupStore(t, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		player Player
		want   error
	}{
		{"missing name", Player{GroupID: "g1"}, ErrInvalidPlayer},
		{"missing group", Player{Name: "Ana"}, ErrInvalidPlayer},
		{"bad position", Player{Name: "Ana", GroupID: "g1", Position: "Sweeper"}, ErrInvalidPlayer},
		{"attribute out of range", Player{Name: "Ana", GroupID: "g1", Attributes: Attributes{Pace: 100, Shooting: 50, Passing: 50, Dribbling: 50, Defense: 50, Physical: 50}}, ErrInvalidPlayer},
		{"photo too large", Player{Name: "Ana", GroupID: "g1", Photo: "data:image/png;base64," + strings.Repeat("A", MaxPhotoBytes)}, ErrPhotoTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreatePlayer(ctx, tc.player)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Zero(t, docs.CallCount("Put"), "invalid players are never written")
}

func TestCreatePlayer_UploadsPhoto(t *testing.T) {
	uploader := storage.NewMock("https://cdn.example.com")
	s, _ := setupStore(t, uploader)

	photo := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	p, err := s.CreatePlayer(context.Background(), Player{Name: "Ana", GroupID: "g1", Photo: photo})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/players/"+p.ID, p.Photo)
	assert.Equal(t, []byte("png-bytes"), uploader.Objects["players/"+p.ID])

	require.NoError(t, s.DeletePlayer(context.Background(), p.ID))
	assert.Equal(t, []string{"players/" + p.ID}, uploader.DeleteCalls)
}

func TestUpdatePlayer(t *testing.T) {
	s, _ := setupStore(t, nil)
	ctx := context.Background()
	p, err := s.CreatePlayer(ctx, Player{Name: "Ana", GroupID: "g1", UserID: "u1"})
	require.NoError(t, err)

	t.Run("attributes recompute ovr", func(t *testing.T) {
		attrs := Attributes{Pace: 80, Shooting: 80, Passing: 80, Dribbling: 80, Defense: 80, Physical: 80}
		updated, err := s.UpdatePlayer(ctx, Player{ID: p.ID, Attributes: attrs, OVR: 10})
		require.NoError(t, err)
		assert.Equal(t, 80, updated.OVR)
		assert.Equal(t, "u1", updated.UserID, "identity link is not editable")
	})

	t.Run("direct ovr write is clamped", func(t *testing.T) {
		updated, err := s.UpdatePlayer(ctx, Player{ID: p.ID, OVR: 150})
		require.NoError(t, err)
		assert.Equal(t, 99, updated.OVR)
	})

	t.Run("missing player", func(t *testing.T) {
		_, err := s.UpdatePlayer(ctx, Player{ID: "ghost", Name: "x"})
		assert.ErrorIs(t, err, ErrPlayerNotFound)
	})
}

func TestUpdateRating(t *testing.T) {
	s, _ := setupStore(t, nil)
	ctx := context.Background()
	p, err := s.CreatePlayer(ctx, Player{Name: "Ana", GroupID: "g1"})
	require.NoError(t, err)

	rec := EvaluationRecord{MatchID: "m1", AvgRating: 7, RatingsCount: 2, OVRChange: 4, PreviousOVR: 50, NewOVR: 54, UpdatedAt: time.Now().UTC()}
	require.NoError(t, s.UpdateRating(ctx, p.ID, 54, rec))

	got, err := s.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 54, got.OVR)
	require.NotNil(t, got.LastEvaluation)
	assert.Equal(t, "m1", got.LastEvaluation.MatchID)
	assert.Equal(t, 50, got.LastEvaluation.PreviousOVR)
	assert.Equal(t, "Ana", got.Name, "rating write leaves other fields alone")

	other := rec
	other.MatchID = "m2"
	other.PreviousOVR, other.NewOVR = 54, 60
	require.NoError(t, s.UpdateRating(ctx, p.ID, 60, other))

	got, err = s.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, got.OVR)
	assert.Equal(t, "m2", got.LastEvaluation.MatchID)
	require.Len(t, got.EvaluationHistory, 2, "history keeps every match")
	assert.Equal(t, 4, got.AppliedChange("m1"))
	assert.Equal(t, 6, got.AppliedChange("m2"))
	assert.Zero(t, got.AppliedChange("m3"))

	assert.ErrorIs(t, s.UpdateRating(ctx, "ghost", 50, rec), ErrPlayerNotFound)
}

func TestListPlayers_OrderedByOVR(t *testing.T) {
	s, _ := setupStore(t, nil)
	ctx := context.Background()
	for name, v := range map[string]int{"Low": 40, "High": 90, "Mid": 60} {
		attrs := Attributes{Pace: v, Shooting: v, Passing: v, Dribbling: v, Defense: v, Physical: v}
		_, err := s.CreatePlayer(ctx, Player{Name: name, GroupID: "g1", Attributes: attrs})
		require.NoError(t, err)
	}
	_, err := s.CreatePlayer(ctx, Player{Name: "Elsewhere", GroupID: "g2"})
	require.NoError(t, err)

	players, err := s.ListPlayers(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, players, 3)
	assert.Equal(t, []string{"High", "Mid", "Low"}, []string{players[0].Name, players[1].Name, players[2].Name})
}

func TestEnsurePlayerForIdentity(t *testing.T) {
	s, _ := setupStore(t, nil)
	ctx := context.Background()
	id := identity.Identity{ID: "u9", Email: "zico@example.com"}

	p, err := s.EnsurePlayerForIdentity(ctx, id, "g1")
	require.NoError(t, err)
	assert.Equal(t, "zico", p.Name)
	assert.Equal(t, Midfielder, p.Position)
	assert.Equal(t, "u9", p.UserID)
	assert.Equal(t, "u9", p.ID, "linked players carry the identity id")

	again, err := s.EnsurePlayerForIdentity(ctx, id, "g1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
}

func TestStoreFailureIsSurfaced(t *testing.T) {
	s, docs := setupStore(t, nil)
	docs.GetFunc = func(context.Context, string, string) (docstore.Record, error) {
		return nil, errors.Join(docstore.ErrUnavailable, errors.New("network down"))
	}
	_, err := s.GetPlayer(context.Background(), "p1")
	assert.ErrorIs(t, err, docstore.ErrUnavailable)
}
