package presence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marlon200530/real-time-map-client/internal/models"
	"github.com/Marlon200530/real-time-map-client/internal/presence"
)

func TestSelectEmitsFreshTokens(t *testing.T) {
	tr := presence.NewTracker()
	tr.SetSelf("me")
	tr.ApplySnapshot([]models.Participant{
		{ID: "me", Lat: 1, Lng: 1},
		{ID: "them", Lat: 48.85, Lng: 2.35},
	})

	first, ok := tr.Select("them")
	require.True(t, ok)
	assert.Equal(t, 48.85, first.Lat)
	assert.Equal(t, 2.35, first.Lng)

	// Same participant, same coordinates: still a new transition.
	second, ok := tr.Select("them")
	require.True(t, ok)
	assert.NotEqual(t, first.Key, second.Key)
	assert.Greater(t, second.Key, first.Key)
}

func TestSelectSelfIsNoOp(t *testing.T) {
	tr := presence.NewTracker()
	tr.SetSelf("me")
	tr.ApplySnapshot([]models.Participant{{ID: "me", Lat: 1, Lng: 1}})

	_, ok := tr.Select("me")
	assert.False(t, ok)
	assert.Empty(t, tr.FocusedID())
}

func TestSelectUnknownIsNoOp(t *testing.T) {
	tr := presence.NewTracker()
	tr.SetSelf("me")

	_, ok := tr.Select("ghost")
	assert.False(t, ok)
	assert.Empty(t, tr.FocusedID())
}

func TestSelectRetiredSelfIsNoOp(t *testing.T) {
	tr := presence.NewTracker()
	tr.SetSelf("old-self")
	tr.ApplySnapshot([]models.Participant{
		{ID: "old-self", Lat: 1, Lng: 2},
		{ID: "them", Lat: 3, Lng: 4},
	})

	// A reconnect assigns a fresh identity; the backend has not yet sent a
	// snapshot without the old one.
	tr.SetSelf("new-self")

	_, ok := tr.Select("old-self")
	assert.False(t, ok, "a previous connection's identity is still the local participant")
	assert.Empty(t, tr.FocusedID())

	// Other participants stay focusable.
	_, ok = tr.Select("them")
	assert.True(t, ok)

	// Once a snapshot confirms the old id is gone, the id is forgotten; a
	// later snapshot reintroducing it would be a genuinely new participant.
	tr.ApplySnapshot([]models.Participant{{ID: "new-self"}, {ID: "them"}})
	tr.ApplySnapshot([]models.Participant{{ID: "new-self"}, {ID: "them"}, {ID: "old-self", Lat: 9, Lng: 9}})
	_, ok = tr.Select("old-self")
	assert.True(t, ok)
}

func TestFocusClearsWhenParticipantLeaves(t *testing.T) {
	tr := presence.NewTracker()
	tr.SetSelf("me")
	tr.ApplySnapshot([]models.Participant{
		{ID: "me"},
		{ID: "them", Lat: 1, Lng: 2},
	})

	_, ok := tr.Select("them")
	require.True(t, ok)
	require.Equal(t, "them", tr.FocusedID())

	// The focused participant disconnects: the next snapshot omits them
	// and the focus must not linger on a participant that no longer exists.
	tr.ApplySnapshot([]models.Participant{{ID: "me"}})
	assert.Empty(t, tr.FocusedID())
}

func TestFocusSurvivesUnrelatedChurn(t *testing.T) {
	tr := presence.NewTracker()
	tr.SetSelf("me")
	tr.ApplySnapshot([]models.Participant{{ID: "them"}, {ID: "other"}})

	_, ok := tr.Select("them")
	require.True(t, ok)

	tr.ApplySnapshot([]models.Participant{{ID: "them"}, {ID: "newcomer"}})
	assert.Equal(t, "them", tr.FocusedID())
}

func TestParticipantsFollowDisplayOrder(t *testing.T) {
	tr := presence.NewTracker()
	tr.ApplySnapshot([]models.Participant{{ID: "A"}, {ID: "B"}})
	// B and A swap places in the snapshot; the display order must not move.
	tr.ApplySnapshot([]models.Participant{{ID: "B"}, {ID: "A"}, {ID: "C"}})

	got := tr.Participants()
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].ID)
	assert.Equal(t, "B", got[1].ID)
	assert.Equal(t, "C", got[2].ID)
}

func TestSnapshotReplacesCoordinates(t *testing.T) {
	tr := presence.NewTracker()
	tr.ApplySnapshot([]models.Participant{{ID: "A", Lat: 1, Lng: 1, UpdatedAt: 100}})
	tr.ApplySnapshot([]models.Participant{{ID: "A", Lat: 2, Lng: 3, UpdatedAt: 200}})

	p, ok := tr.Get("A")
	require.True(t, ok)
	assert.Equal(t, 2.0, p.Lat)
	assert.Equal(t, 3.0, p.Lng)
	assert.Equal(t, int64(200), p.UpdatedAt)
}
