package models

// Participant is the client's read-only copy of one connected user as
// published by the backend. The id is scoped to that user's active
// connection and changes when they reconnect.
type Participant struct {
	ID        string  `json:"id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	UpdatedAt int64   `json:"updatedAt"` // epoch milliseconds
}

// LocationSample is a single local position fix. Transient; never persisted.
type LocationSample struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
