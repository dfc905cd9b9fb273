package geoloc

import (
	"context"
	"errors"
	"sync"

	"github.com/Marlon200530/real-time-map-client/internal/config"
	"github.com/Marlon200530/real-time-map-client/internal/models"
)

// State of the acquisition machine.
type State int

const (
	StateIdle State = iota
	StateHighAccuracy
	StateFallback
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHighAccuracy:
		return "watching-high-accuracy"
	case StateFallback:
		return "watching-fallback"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// watchOptions maps each watching state to its platform parameters.
var watchOptions = map[State]Options{
	StateHighAccuracy: {HighAccuracy: true, Timeout: config.HighAccuracyTimeout, MaximumAge: config.HighAccuracyMaxAge},
	StateFallback:     {HighAccuracy: false, Timeout: config.FallbackTimeout, MaximumAge: config.FallbackMaxAge},
}

// timeoutNext is the downgrade table for ErrTimeout. A watching state with no
// entry surfaces the timeout instead of downgrading further; HighAccuracy →
// Fallback is the single tier.
var timeoutNext = map[State]State{
	StateHighAccuracy: StateFallback,
}

// Callbacks receive the watcher's output. Sample carries continuous watch
// fixes (subject to the caller's send throttle); Immediate carries the
// one-shot fix from a user-initiated retry, which bypasses the throttle.
// Error receives classified failures that were not auto-recovered.
type Callbacks struct {
	Sample    func(models.LocationSample)
	Immediate func(models.LocationSample)
	Error     func(error)
}

// Watcher drives a Provider through the two-tier accuracy strategy: start at
// high accuracy, downgrade once on the first timeout, surface everything
// after that. All transitions run under one mutex; user callbacks are invoked
// outside it.
type Watcher struct {
	provider Provider
	cb       Callbacks

	mu    sync.Mutex
	state State
	watch Watch
	gen   int // stamps callbacks so a stopped watch cannot act on stale state
}

func NewWatcher(provider Provider, cb Callbacks) *Watcher {
	return &Watcher{provider: provider, cb: cb}
}

// State reports the current machine state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Start begins continuous observation at the high-accuracy tier. No-op unless
// the watcher is idle.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.state != StateIdle {
		w.mu.Unlock()
		return
	}
	err := w.transitionLocked(StateHighAccuracy)
	w.mu.Unlock()
	if err != nil {
		w.cb.Error(err)
	}
}

// Stop releases the platform watch and returns to idle. Safe to call twice;
// callbacks already in flight from the released watch are discarded.
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.stopLocked()
	w.state = StateIdle
	w.mu.Unlock()
}

// Retry restarts observation from the high-accuracy tier and additionally
// issues a single one-shot position request. The one-shot exists because some
// platforms only surface a permission prompt in direct response to a
// user-initiated action; its result goes to the Immediate callback.
func (w *Watcher) Retry(ctx context.Context) {
	w.mu.Lock()
	w.stopLocked()
	err := w.transitionLocked(StateHighAccuracy)
	gen := w.gen
	w.mu.Unlock()
	if err != nil {
		w.cb.Error(err)
		return
	}

	// The one-shot carries the same generation as the watch it restarted;
	// a Stop in the meantime retires both.
	go func() {
		sample, err := w.provider.Current(ctx, watchOptions[StateHighAccuracy])
		if !w.live(gen) {
			return
		}
		if err != nil {
			w.cb.Error(err)
			return
		}
		if w.cb.Immediate != nil {
			w.cb.Immediate(sample)
		} else {
			w.cb.Sample(sample)
		}
	}()
}

// transitionLocked moves to a watching state and opens the platform watch for
// its tier. On failure the machine lands in Failed and the error is returned
// for the caller to surface outside the lock.
func (w *Watcher) transitionLocked(s State) error {
	w.stopLocked()
	w.state = s
	w.gen++
	gen := w.gen

	watch, err := w.provider.Watch(watchOptions[s],
		func(sample models.LocationSample) { w.deliver(gen, sample) },
		func(err error) { w.handleError(gen, err) },
	)
	if err != nil {
		w.state = StateFailed
		return err
	}
	w.watch = watch
	return nil
}

func (w *Watcher) stopLocked() {
	if w.watch != nil {
		w.watch.Stop()
		w.watch = nil
	}
	w.gen++
}

// live reports whether gen still identifies the active watch.
func (w *Watcher) live(gen int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return gen == w.gen
}

func (w *Watcher) deliver(gen int, sample models.LocationSample) {
	if !w.live(gen) {
		return
	}
	w.cb.Sample(sample)
}

func (w *Watcher) handleError(gen int, err error) {
	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}

	if errors.Is(err, ErrTimeout) {
		if next, ok := timeoutNext[w.state]; ok {
			// First timeout: downgrade silently and keep watching.
			terr := w.transitionLocked(next)
			w.mu.Unlock()
			if terr != nil {
				w.cb.Error(terr)
			}
			return
		}
	}

	if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrUnsupported) || errors.Is(err, ErrInsecureContext) {
		// Terminal for this watch; only a user-initiated Retry resumes.
		w.stopLocked()
		w.state = StateFailed
	}
	w.mu.Unlock()
	w.cb.Error(err)
}
