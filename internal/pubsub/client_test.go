package pubsub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchEventRoundTrip(t *testing.T) {
	at := time.Date(2025, 5, 2, 19, 0, 0, 0, time.UTC)
	in := MatchEvent{Type: EventMatchFinalized, MatchID: "m1", Title: "Friday", OrganizerID: "u1", At: at}

	raw, err := Encode(in)
	require.NoError(t, err)

	var out MatchEvent
	require.NoError(t, Noop{}.ProcessMessage(raw, &out))
	assert.Equal(t, in.Type, out.Type)
	assert.Equal(t, in.MatchID, out.MatchID)
	assert.True(t, at.Equal(out.At))
}

func TestNoop_SendMessage(t *testing.T) {
	assert.NoError(t, Noop{}.SendMessage("match-events", MatchEvent{MatchID: "m1"}))
}

func TestMock_RecordsEvents(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.SendMessage("match-events", MatchEvent{Type: EventMatchDeleted, MatchID: "m1"}))
	require.NoError(t, m.SendMessage("other", "not an event"))

	events := m.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventMatchDeleted, events[0].Type)

	m.Reset()
	assert.Empty(t, m.Events())
}
