package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/pitchside/internal/evaluation"
	"github.com/mauv0809/pitchside/internal/matchmaking"
	"github.com/mauv0809/pitchside/internal/metrics"
	"github.com/mauv0809/pitchside/internal/roster"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func testMatch() *matchmaking.Match {
	return &matchmaking.Match{
		ID:          "m1",
		Title:       "Thursday kickabout",
		Location:    "Pitch 3",
		ScheduledAt: time.Date(2025, 7, 10, 18, 30, 0, 0, time.UTC),
		RegisteredPlayers: []matchmaking.RegisteredPlayer{
			{ID: "u1", Name: "Ana"},
			{ID: "u2", Name: "Ben"},
			{ID: "g1", Name: "Cleo", IsGuest: true},
		},
		Teams: &matchmaking.Teams{
			Team1: matchmaking.TeamSide{Name: matchmaking.Team1Name, AvgOVR: 71, Players: []matchmaking.RegisteredPlayer{
				{Name: "Ana", Position: roster.Forward, OVR: 78},
				{Name: "Cleo", Position: roster.Midfielder, OVR: 50, IsGuest: true},
			}},
			Team2: matchmaking.TeamSide{Name: matchmaking.Team2Name, AvgOVR: 66, Players: []matchmaking.RegisteredPlayer{
				{Name: "Ben", Position: roster.Defender, OVR: 66},
			}},
			BalanceDiff: 5,
		},
		EvaluationAssignments: map[string][]matchmaking.AssignedSubject{
			"u2": {{ID: "u1", Name: "Ana"}, {ID: "g1", Name: "Cleo"}},
			"u1": {{ID: "u2", Name: "Ben"}, {ID: "g1", Name: "Cleo"}},
		},
	}
}

func TestSendMessage_DryRun(t *testing.T) {
	m := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	n := NewNotifierWithAPI(nil, "C123", "", m)

	_, _, err := n.sendMessage(slackapi.NewBlockMessage(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, m.NotifSent())
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}
	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", "", m)

	err := n.SendTeamsAnnouncement(testMatch(), false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, m.NotifSent())
	assert.Equal(t, 0, m.NotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}
	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", "", m)

	err := n.SendEvaluationReminder(testMatch(), false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, m.NotifSent())
	assert.Equal(t, 1, m.NotifFailed())
}

func TestFormatTeamsAnnouncement(t *testing.T) {
	n := NewNotifierWithAPI(nil, "C123", "Europe/Copenhagen", metrics.NewMock())
	msg := n.formatTeamsAnnouncement(testMatch())
	require.Len(t, msg.Blocks.BlockSet, 4)

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok, "First block should be a HeaderBlock")
	assert.Equal(t, "⚽ Teams are set! ⚽", header.Text.Text)

	details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "Thursday kickabout\nKick-off: Thursday 10 Jul, 20:30\nPitch: Pitch 3", details.Text.Text)

	sides, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	require.Len(t, sides.Fields, 2)
	assert.Equal(t, "*Team 1* (avg 71)\n• Ana, Forward 78\n• Cleo, Midfielder 50 (guest)", sides.Fields[0].Text)
	assert.Equal(t, "*Team 2* (avg 66)\n• Ben, Defender 66", sides.Fields[1].Text)

	ctxBlock, ok := msg.Blocks.BlockSet[3].(*slackapi.ContextBlock)
	require.True(t, ok)
	balance, ok := ctxBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
	require.True(t, ok)
	assert.Equal(t, "Balance difference: 5 OVR", balance.Text)
}

func TestFormatTeamsAnnouncement_NoTeams(t *testing.T) {
	n := NewNotifierWithAPI(nil, "C123", "", metrics.NewMock())
	match := testMatch()
	match.Teams = nil

	msg := n.formatTeamsAnnouncement(match)
	require.Len(t, msg.Blocks.BlockSet, 3)
}

func TestFormatEvaluationReminder(t *testing.T) {
	n := NewNotifierWithAPI(nil, "C123", "", metrics.NewMock())
	msg := n.formatEvaluationReminder(testMatch())
	require.Len(t, msg.Blocks.BlockSet, 3)

	list, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "• Ana rates Ben & Cleo\n• Ben rates Ana & Cleo", list.Text.Text)
}

func TestFormatRatingSummary(t *testing.T) {
	n := NewNotifierWithAPI(nil, "C123", "", metrics.NewMock())
	deltas := []evaluation.Delta{
		{PlayerID: "u1", Name: "Ana", AvgRating: 4, RatingsCount: 2, OVRChange: -2, PreviousOVR: 78, NewOVR: 76},
		{PlayerID: "u2", Name: "Ben", AvgRating: 7, RatingsCount: 2, OVRChange: 4, PreviousOVR: 66, NewOVR: 70},
	}

	msg := n.formatRatingSummary(testMatch(), deltas)
	require.Len(t, msg.Blocks.BlockSet, 3)

	list, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "• *Ben* 66 → 70 (+4, avg 7.0 from 2)\n• *Ana* 78 → 76 (-2, avg 4.0 from 2)", list.Text.Text)

	t.Run("no changes", func(t *testing.T) {
		msg := n.formatRatingSummary(testMatch(), nil)
		require.Len(t, msg.Blocks.BlockSet, 3)
		empty, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "No ratings changed.", empty.Text.Text)
	})
}
