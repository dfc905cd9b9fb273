// Package app coordinates the channel client, the position watcher and the
// presence state into a single-goroutine event loop.
//
// Every mutation of roster, local position, focus and camera happens on that
// one goroutine, in the order events arrive; the channel and geolocation
// layers only post events. That mirrors the event-driven execution model this
// client is a counterpart to, and means no state needs a lock.
package app

import (
	"context"

	"github.com/Marlon200530/real-time-map-client/internal/channel"
	"github.com/Marlon200530/real-time-map-client/internal/config"
	"github.com/Marlon200530/real-time-map-client/internal/geoloc"
	"github.com/Marlon200530/real-time-map-client/internal/mapview"
	"github.com/Marlon200530/real-time-map-client/internal/models"
	"github.com/Marlon200530/real-time-map-client/internal/presence"
)

// View is the render-ready projection of the coordinator's state.
type View struct {
	Online       bool
	SelfID       string
	Self         *models.LocationSample
	AcquireErr   error
	Participants []models.Participant
	FocusedID    string
	Markers      []mapview.Marker
	Viewport     mapview.Viewport
}

// Renderer receives a fresh View after every handled event, on the event-loop
// goroutine.
type Renderer interface {
	Render(View)
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(View)

func (f RenderFunc) Render(v View) { f(v) }

type event any

type (
	evSession struct{ id string }
	evOffline struct{}
	evRoster  struct{ roster []models.Participant }
	evSample  struct {
		sample    models.LocationSample
		immediate bool // one-shot retry fix; bypasses the send throttle
	}
	evAcquireErr struct{ err error }
	evSelect     struct{ id string }
	evRetry      struct{}
)

// App owns the client-side state and its one event loop.
type App struct {
	channel  *channel.Client
	watcher  *geoloc.Watcher
	limiter  *geoloc.Limiter
	tracker  *presence.Tracker
	camera   *mapview.Camera
	renderer Renderer

	events chan event
	done   chan struct{}

	// Event-loop-confined; never touched from outside the loop.
	online     bool
	self       *models.LocationSample
	acquireErr error
}

// New wires the coordinator. The channel client and provider are injected so
// their lifecycle stays explicit and tests can substitute either.
func New(ch *channel.Client, provider geoloc.Provider, renderer Renderer) *App {
	a := &App{
		channel:  ch,
		limiter:  geoloc.NewLimiter(config.LocationSendInterval),
		tracker:  presence.NewTracker(),
		camera:   mapview.NewCamera(mapview.Viewport{Zoom: 2}),
		renderer: renderer,
		events:   make(chan event, config.EventBufferSize),
		done:     make(chan struct{}),
	}

	a.watcher = geoloc.NewWatcher(provider, geoloc.Callbacks{
		Sample:    func(s models.LocationSample) { a.post(evSample{sample: s}) },
		Immediate: func(s models.LocationSample) { a.post(evSample{sample: s, immediate: true}) },
		Error:     func(err error) { a.post(evAcquireErr{err: err}) },
	})

	ch.OnConnected(func(selfID string) { a.post(evSession{id: selfID}) })
	ch.OnDisconnected(func() { a.post(evOffline{}) })
	ch.OnRoster(func(roster []models.Participant) { a.post(evRoster{roster: roster}) })

	return a
}

// Select focuses a participant on the map. Callable from any goroutine.
func (a *App) Select(id string) { a.post(evSelect{id: id}) }

// Retry re-attempts position acquisition after a surfaced error.
func (a *App) Retry() { a.post(evRetry{}) }

// Run starts the channel and the watcher, then drains events until ctx is
// cancelled. Teardown releases the platform watch and closes the connection
// before returning.
func (a *App) Run(ctx context.Context) {
	a.watcher.Start()
	a.channel.Start()

	// done closes first so late callbacks fall through post instead of
	// blocking while the channel drains during Close.
	defer func() {
		close(a.done)
		a.watcher.Stop()
		a.channel.Close()
	}()

	a.render()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-a.events:
			a.handle(ctx, ev)
			a.render()
		}
	}
}

func (a *App) post(ev event) {
	select {
	case a.events <- ev:
	case <-a.done:
	}
}

func (a *App) handle(ctx context.Context, ev event) {
	switch ev := ev.(type) {
	case evSession:
		// A reconnect assigns a fresh connection-scoped identity.
		a.tracker.SetSelf(ev.id)
		a.online = true

	case evOffline:
		// Transparent to the model: roster and local state persist,
		// only the indicator flips.
		a.online = false

	case evRoster:
		a.tracker.ApplySnapshot(ev.roster)

	case evSample:
		first := a.self == nil
		s := ev.sample
		a.self = &s
		a.acquireErr = nil
		if first {
			a.camera.SetCenter(s.Lat, s.Lng)
		}
		if ev.immediate || a.limiter.Allow() {
			a.channel.EmitLocation(s.Lat, s.Lng)
		}

	case evAcquireErr:
		a.acquireErr = ev.err

	case evSelect:
		if target, ok := a.tracker.Select(ev.id); ok {
			a.camera.Focus(target)
		}

	case evRetry:
		a.acquireErr = nil
		a.watcher.Retry(ctx)
	}
}

func (a *App) render() {
	if a.renderer == nil {
		return
	}
	a.renderer.Render(View{
		Online:       a.online,
		SelfID:       a.tracker.SelfID(),
		Self:         a.self,
		AcquireErr:   a.acquireErr,
		Participants: a.tracker.Participants(),
		FocusedID:    a.tracker.FocusedID(),
		Markers:      mapview.Markers(a.self, a.tracker),
		Viewport:     a.camera.Viewport(),
	})
}
