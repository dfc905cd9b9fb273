package presence

import "github.com/Marlon200530/real-time-map-client/internal/models"

// FocusTarget is an ephemeral command to the map surface. Key is a strictly
// increasing token so that re-focusing a participant forces a fresh camera
// transition even when the coordinates are identical.
type FocusTarget struct {
	Lat float64
	Lng float64
	Key uint64
}

// Tracker holds the reconciled participant view: the roster cache, the stable
// display order, the local identity and the focused participant. It is not
// goroutine-safe; the coordinator confines it to its event loop.
type Tracker struct {
	selfID       string
	retiredSelf  map[string]struct{}
	order        []string
	participants map[string]models.Participant
	focusedID    string
	focusSeq     uint64
}

func NewTracker() *Tracker {
	return &Tracker{
		participants: make(map[string]models.Participant),
		retiredSelf:  make(map[string]struct{}),
	}
}

// SetSelf records the connection-scoped local identity. Called on every
// (re)connect; the id is new each time. The previous id is remembered as
// retired: it may linger in stale snapshots for a while, and it stays as
// unfocusable as the live one.
func (t *Tracker) SetSelf(id string) {
	if t.selfID != "" && t.selfID != id {
		t.retiredSelf[t.selfID] = struct{}{}
	}
	delete(t.retiredSelf, id)
	t.selfID = id
}

// SelfID returns the current connection-scoped local identity.
func (t *Tracker) SelfID() string { return t.selfID }

// ApplySnapshot replaces the roster wholesale and advances the display order.
// An id missing from the snapshot is gone: it leaves the order, and if it was
// focused, focus clears rather than lingering on a participant that no longer
// exists.
func (t *Tracker) ApplySnapshot(roster []models.Participant) {
	t.order = Reconcile(t.order, roster)

	cache := make(map[string]models.Participant, len(roster))
	for _, p := range roster {
		cache[p.ID] = p
	}
	t.participants = cache

	if t.focusedID != "" {
		if _, ok := cache[t.focusedID]; !ok {
			t.focusedID = ""
		}
	}

	// A retired id that has left the snapshot is gone for good.
	for id := range t.retiredSelf {
		if _, ok := cache[id]; !ok {
			delete(t.retiredSelf, id)
		}
	}
}

// Select focuses a participant and returns the camera command. Selecting the
// local identity (current or retired) or an unknown id is a no-op; selecting
// the already-focused participant still yields a fresh token.
func (t *Tracker) Select(id string) (FocusTarget, bool) {
	if id == t.selfID {
		return FocusTarget{}, false
	}
	if _, retired := t.retiredSelf[id]; retired {
		return FocusTarget{}, false
	}
	p, ok := t.participants[id]
	if !ok {
		return FocusTarget{}, false
	}
	t.focusedID = id
	t.focusSeq++
	return FocusTarget{Lat: p.Lat, Lng: p.Lng, Key: t.focusSeq}, true
}

// FocusedID returns the focused participant id, or "" when none.
func (t *Tracker) FocusedID() string { return t.focusedID }

// Order returns the display order. The returned slice is owned by the
// tracker; callers must not mutate it.
func (t *Tracker) Order() []string { return t.order }

// Participants lists the roster in display order.
func (t *Tracker) Participants() []models.Participant {
	out := make([]models.Participant, 0, len(t.order))
	for _, id := range t.order {
		if p, ok := t.participants[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Get looks up one participant by id.
func (t *Tracker) Get(id string) (models.Participant, bool) {
	p, ok := t.participants[id]
	return p, ok
}

// Len reports the number of known participants.
func (t *Tracker) Len() int { return len(t.order) }
