package channel

import (
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marlon200530/real-time-map-client/internal/models"
)

func TestClientFallsBackToPolling(t *testing.T) {
	// The backend speaks only the long-poll endpoints; the websocket dial
	// fails and the client must still come up.
	backend := &pollBackend{
		events: []models.Envelope{
			models.NewEnvelope(models.MsgTypeSessionInit, models.SessionInit{ID: "poll-self"}),
			models.NewEnvelope(models.MsgTypeUsersUpdate, []models.Participant{
				{ID: "poll-self", Lat: 1, Lng: 2, UpdatedAt: 1000},
				{ID: "other", Lat: 3, Lng: 4, UpdatedAt: 1000},
			}),
		},
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	var mu sync.Mutex
	var selfID string
	var rosters [][]models.Participant

	c := New(srv.URL)
	c.OnConnected(func(id string) {
		mu.Lock()
		selfID = id
		mu.Unlock()
	})
	c.OnRoster(func(roster []models.Participant) {
		mu.Lock()
		rosters = append(rosters, roster)
		mu.Unlock()
	})
	c.Start()
	defer c.Close()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return selfID == "poll-self" && len(rosters) > 0
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, rosters[0], 2)
	assert.Equal(t, "other", rosters[0][1].ID)
	assert.True(t, c.Online())
}

func TestEmitLocationWhileOfflineIsDropped(t *testing.T) {
	c := New("http://127.0.0.1:1") // never started, never online

	c.EmitLocation(52.5, 13.4)
	c.EmitLocation(52.6, 13.5)

	snap := c.Metrics()
	assert.Equal(t, int64(2), snap.MessagesDropped)
	assert.Equal(t, int64(0), snap.MessagesSent)
	assert.False(t, c.Online())
}

func TestMalformedRosterPayloadIsDiscarded(t *testing.T) {
	backend := &pollBackend{
		events: []models.Envelope{
			models.NewEnvelope(models.MsgTypeSessionInit, models.SessionInit{ID: "self"}),
			models.NewEnvelope(models.MsgTypeUsersUpdate, []models.Participant{{ID: "a", Lat: 1, Lng: 1}}),
			// Not an array: must be dropped without touching the roster.
			models.NewEnvelope(models.MsgTypeUsersUpdate, map[string]int{"bogus": 1}),
			models.NewEnvelope(models.MsgTypeUsersUpdate, []models.Participant{{ID: "a", Lat: 2, Lng: 2}}),
		},
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	var mu sync.Mutex
	var rosters [][]models.Participant

	c := New(srv.URL)
	c.OnRoster(func(roster []models.Participant) {
		mu.Lock()
		rosters = append(rosters, roster)
		mu.Unlock()
	})
	c.Start()
	defer c.Close()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(rosters) == 2
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, int64(1), c.Metrics().RostersDropped)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, float64(1), rosters[0][0].Lat)
	assert.Equal(t, float64(2), rosters[1][0].Lat)
}

func TestNullRosterPayloadKeepsPriorRoster(t *testing.T) {
	backend := &pollBackend{
		events: []models.Envelope{
			models.NewEnvelope(models.MsgTypeSessionInit, models.SessionInit{ID: "self"}),
			models.NewEnvelope(models.MsgTypeUsersUpdate, []models.Participant{{ID: "a", Lat: 1, Lng: 1}}),
			// A null payload decodes into a nil slice without an unmarshal
			// error; it must still count as malformed, not as everyone gone.
			{Type: models.MsgTypeUsersUpdate, Payload: json.RawMessage("null")},
			// An empty array is a real roster: everyone departed.
			models.NewEnvelope(models.MsgTypeUsersUpdate, []models.Participant{}),
		},
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	var mu sync.Mutex
	var rosters [][]models.Participant

	c := New(srv.URL)
	c.OnRoster(func(roster []models.Participant) {
		mu.Lock()
		rosters = append(rosters, roster)
		mu.Unlock()
	})
	c.Start()
	defer c.Close()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(rosters) == 2
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, int64(1), c.Metrics().RostersDropped)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, rosters[0], 1)
	assert.Equal(t, "a", rosters[0][0].ID)
	assert.NotNil(t, rosters[1])
	assert.Len(t, rosters[1], 0)
}

func TestCloseBeforeStartReturns(t *testing.T) {
	c := New("http://127.0.0.1:1")

	closed := make(chan struct{})
	go func() {
		c.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close blocked without a prior Start")
	}

	// A late Start finds the context already cancelled and exits cleanly.
	c.Start()
	assert.False(t, c.Online())
}
