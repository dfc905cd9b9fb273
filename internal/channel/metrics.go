package channel

import (
	"sync/atomic"
	"time"
)

// Metrics tracks channel traffic and connection health with atomic counters.
type Metrics struct {
	messagesSent     int64
	messagesReceived int64
	messagesDropped  int64 // outbound envelopes discarded while offline
	rostersDropped   int64 // malformed users:update payloads
	reconnects       int64
	connectionErrors int64

	startTime time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

func (m *Metrics) IncrementMessagesSent() { atomic.AddInt64(&m.messagesSent, 1) }

func (m *Metrics) IncrementMessagesReceived() { atomic.AddInt64(&m.messagesReceived, 1) }

func (m *Metrics) IncrementMessagesDropped() { atomic.AddInt64(&m.messagesDropped, 1) }

func (m *Metrics) IncrementRostersDropped() { atomic.AddInt64(&m.rostersDropped, 1) }

func (m *Metrics) IncrementReconnects() { atomic.AddInt64(&m.reconnects, 1) }

func (m *Metrics) IncrementConnectionErrors() { atomic.AddInt64(&m.connectionErrors, 1) }

// MetricsSnapshot is a point-in-time copy safe to serialize.
type MetricsSnapshot struct {
	MessagesSent     int64 `json:"messages_sent"`
	MessagesReceived int64 `json:"messages_received"`
	MessagesDropped  int64 `json:"messages_dropped"`
	RostersDropped   int64 `json:"rosters_dropped"`
	Reconnects       int64 `json:"reconnects"`
	ConnectionErrors int64 `json:"connection_errors"`
	UptimeSeconds    int64 `json:"uptime_seconds"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		MessagesSent:     atomic.LoadInt64(&m.messagesSent),
		MessagesReceived: atomic.LoadInt64(&m.messagesReceived),
		MessagesDropped:  atomic.LoadInt64(&m.messagesDropped),
		RostersDropped:   atomic.LoadInt64(&m.rostersDropped),
		Reconnects:       atomic.LoadInt64(&m.reconnects),
		ConnectionErrors: atomic.LoadInt64(&m.connectionErrors),
		UptimeSeconds:    int64(time.Since(m.startTime).Seconds()),
	}
}
