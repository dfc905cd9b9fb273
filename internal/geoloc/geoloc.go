// Package geoloc acquires the local user's position.
//
// A Provider abstracts the platform capability (continuous watch plus
// one-shot query); the Watcher layers the two-tier accuracy strategy on top
// of it and the Limiter enforces the outbound transmission window.
package geoloc

import (
	"context"
	"errors"
	"time"

	"github.com/Marlon200530/real-time-map-client/internal/models"
)

// Classified acquisition failures. Match with errors.Is; providers may wrap
// them with platform detail.
var (
	// ErrUnsupported and ErrInsecureContext are terminal for the session:
	// the watch never starts and there is no in-app remedy.
	ErrUnsupported     = errors.New("geolocation is not supported on this platform")
	ErrInsecureContext = errors.New("geolocation requires a secure context")

	// ErrPermissionDenied and ErrUnavailable are surfaced without automatic
	// retry; a retry must be user-initiated.
	ErrPermissionDenied = errors.New("geolocation permission denied")
	ErrUnavailable      = errors.New("position unavailable")

	// ErrTimeout is recoverable once, via the accuracy downgrade.
	ErrTimeout = errors.New("position acquisition timed out")
)

// Options mirrors the platform watch parameters.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// Watch is a live continuous observation. Stop releases the underlying
// platform handle and must be idempotent.
type Watch interface {
	Stop()
}

// Provider is the platform geolocation capability. Implementations must
// deliver callbacks asynchronously (never from inside Watch itself) and may
// deliver them from any goroutine.
type Provider interface {
	Watch(opts Options, onSample func(models.LocationSample), onError func(error)) (Watch, error)
	Current(ctx context.Context, opts Options) (models.LocationSample, error)
}
