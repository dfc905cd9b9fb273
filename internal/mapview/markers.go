package mapview

import (
	"github.com/Marlon200530/real-time-map-client/internal/models"
	"github.com/Marlon200530/real-time-map-client/internal/presence"
)

// MarkerKind is the visual class of a marker. Purely presentational.
type MarkerKind string

const (
	KindSelf    MarkerKind = "self"
	KindOther   MarkerKind = "other"
	KindFocused MarkerKind = "focused"
)

// Marker is one renderable map point.
type Marker struct {
	ID   string
	Lat  float64
	Lng  float64
	Kind MarkerKind
}

// Markers derives the render list: the local position first when known, then
// every other roster participant in display order, the focused one tagged.
// The self marker comes from the local sample, so the roster copy of the
// local id is skipped rather than drawn twice.
func Markers(self *models.LocationSample, tracker *presence.Tracker) []Marker {
	out := make([]Marker, 0, tracker.Len()+1)
	if self != nil {
		out = append(out, Marker{ID: tracker.SelfID(), Lat: self.Lat, Lng: self.Lng, Kind: KindSelf})
	}
	focused := tracker.FocusedID()
	for _, p := range tracker.Participants() {
		if p.ID == tracker.SelfID() {
			continue
		}
		kind := KindOther
		if p.ID == focused {
			kind = KindFocused
		}
		out = append(out, Marker{ID: p.ID, Lat: p.Lat, Lng: p.Lng, Kind: kind})
	}
	return out
}
