package config

import "time"

// Channel connection tuning
const (
	// Connect/reconnect policy
	ConnectTimeout     = 10 * time.Second
	ReconnectBaseDelay = 500 * time.Millisecond
	ReconnectMaxDelay  = 4 * time.Second

	// Keepalive
	PingInterval = 30 * time.Second
	WriteTimeout = 10 * time.Second

	// Long-poll fallback
	PollTimeout = 25 * time.Second

	// Channel buffers
	OutboundBufferSize = 64
	EventBufferSize    = 256
)

// Outbound location throttling
const (
	LocationSendInterval = 2 * time.Second
)

// Geolocation acquisition tiers
const (
	// High-accuracy tier, tried first
	HighAccuracyTimeout = 20 * time.Second
	HighAccuracyMaxAge  = 3 * time.Second

	// Relaxed tier after the first timeout; there is no third tier
	FallbackTimeout = 30 * time.Second
	FallbackMaxAge  = 15 * time.Second
)
