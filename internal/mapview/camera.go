// Package mapview is the view-model layer for the map surface: camera-follow
// on focus changes and marker derivation. The rendering engine itself is an
// external collaborator; nothing here depends on one.
package mapview

import "github.com/Marlon200530/real-time-map-client/internal/presence"

// MinFocusZoom is the closest-in zoom a focus transition guarantees. Focusing
// never zooms out a camera that is already closer.
const MinFocusZoom = 14.0

// Viewport is the camera pose handed to the rendering engine.
type Viewport struct {
	Lat     float64
	Lng     float64
	Zoom    float64
	Bearing float64
	Pitch   float64
}

// Camera applies focus transitions to a viewport. Transitions are identified
// by the focus target's token, not by coordinate equality: a fresh token
// always recenters, a repeated one never does.
type Camera struct {
	vp      Viewport
	lastKey uint64
}

func NewCamera(initial Viewport) *Camera {
	return &Camera{vp: initial}
}

// Viewport returns the current camera pose.
func (c *Camera) Viewport() Viewport { return c.vp }

// SetCenter moves the camera without touching zoom, e.g. to follow the local
// position before any participant is focused.
func (c *Camera) SetCenter(lat, lng float64) {
	c.vp.Lat, c.vp.Lng = lat, lng
}

// Focus recenters on the target and raises zoom to at least MinFocusZoom.
// Reports whether a transition happened; a target whose token was already
// applied is a no-op.
func (c *Camera) Focus(t presence.FocusTarget) bool {
	if t.Key == 0 || t.Key == c.lastKey {
		return false
	}
	c.lastKey = t.Key
	c.vp.Lat, c.vp.Lng = t.Lat, t.Lng
	if c.vp.Zoom < MinFocusZoom {
		c.vp.Zoom = MinFocusZoom
	}
	return true
}
