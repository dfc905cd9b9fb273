// Package presence derives a stable local view from the backend's
// authoritative roster snapshots.
package presence

import "github.com/Marlon200530/real-time-map-client/internal/models"

// Reconcile computes the next display order from the previous order and a
// total roster snapshot: ids absent from the snapshot are dropped, survivors
// keep their relative order, never-seen ids are appended in snapshot order.
// Pure and idempotent: reapplying the same snapshot yields the same order.
func Reconcile(prev []string, roster []models.Participant) []string {
	present := make(map[string]struct{}, len(roster))
	for _, p := range roster {
		present[p.ID] = struct{}{}
	}

	next := make([]string, 0, len(roster))
	seen := make(map[string]struct{}, len(roster))
	for _, id := range prev {
		if _, ok := present[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		next = append(next, id)
	}
	for _, p := range roster {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		next = append(next, p.ID)
	}
	return next
}
