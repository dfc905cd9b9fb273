// Package channel maintains the realtime connection to the presence backend.
//
// The client dials the resolved endpoint with a websocket transport, falling
// back to long-polling when the upgrade fails, and reconnects forever with
// bounded exponential backoff. It holds no roster or session state of its
// own; inbound messages are dispatched to registered callbacks in arrival
// order and outbound location updates are fire-and-forget.
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Marlon200530/real-time-map-client/internal/config"
	"github.com/Marlon200530/real-time-map-client/internal/models"
)

type Client struct {
	endpoint string
	metrics  *Metrics

	// Callbacks run on the client's reader goroutine (onDisconnected on
	// the run loop). Register before Start.
	onConnected    func(selfID string)
	onDisconnected func()
	onRoster       func([]models.Participant)

	outbound chan models.Envelope
	online   atomic.Bool
	started  atomic.Bool

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

// New creates a client for the given backend origin. The caller resolves the
// endpoint first (see ResolveEndpoint) and owns the client's lifecycle; there
// is deliberately no package-level shared connection.
func New(endpoint string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		endpoint: endpoint,
		metrics:  NewMetrics(),
		outbound: make(chan models.Envelope, config.OutboundBufferSize),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// OnConnected registers the callback invoked with the connection-scoped self
// id once the backend acknowledges a (re)connection.
func (c *Client) OnConnected(fn func(selfID string)) { c.onConnected = fn }

// OnDisconnected registers the callback invoked when a live connection drops.
func (c *Client) OnDisconnected(fn func()) { c.onDisconnected = fn }

// OnRoster registers the callback invoked with every authoritative roster
// snapshot, in arrival order, never coalesced.
func (c *Client) OnRoster(fn func([]models.Participant)) { c.onRoster = fn }

// Start launches the connect/reconnect loop. Safe to call once.
func (c *Client) Start() {
	c.startOnce.Do(func() {
		c.started.Store(true)
		go c.run()
	})
}

// Close tears down the connection and waits for the run loop to exit. No
// callback fires after Close returns.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		// Only a started client has a run loop to wait for.
		if c.started.Load() {
			<-c.done
		}
	})
}

// Online reports whether a transport is currently established. Drives the
// status indicator only; roster state persists across reconnects.
func (c *Client) Online() bool { return c.online.Load() }

// Metrics exposes the client's traffic counters.
func (c *Client) Metrics() MetricsSnapshot { return c.metrics.Snapshot() }

// EmitLocation queues one location update. Fire-and-forget: while offline, or
// if the outbound buffer is full, the update is dropped and counted.
func (c *Client) EmitLocation(lat, lng float64) {
	if !c.online.Load() {
		c.metrics.IncrementMessagesDropped()
		return
	}
	env := models.NewEnvelope(models.MsgTypeLocationUpdate, models.LocationSample{Lat: lat, Lng: lng})
	select {
	case c.outbound <- env:
	default:
		c.metrics.IncrementMessagesDropped()
	}
}

func (c *Client) run() {
	defer close(c.done)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = config.ReconnectBaseDelay
	bo.MaxInterval = config.ReconnectMaxDelay
	bo.MaxElapsedTime = 0 // retry forever
	bo.Reset()

	for {
		if c.ctx.Err() != nil {
			return
		}
		t, err := c.dial()
		if err != nil {
			c.metrics.IncrementConnectionErrors()
			log.Printf("channel: connect failed: %v", err)
			if !c.sleep(bo.NextBackOff()) {
				return
			}
			c.metrics.IncrementReconnects()
			continue
		}

		bo.Reset()
		c.online.Store(true)
		err = c.session(t)
		c.online.Store(false)
		_ = t.Close()
		if c.onDisconnected != nil {
			c.onDisconnected()
		}

		if c.ctx.Err() != nil {
			return
		}
		log.Printf("channel: connection lost (%s): %v", t.Name(), err)
		if !c.sleep(bo.NextBackOff()) {
			return
		}
		c.metrics.IncrementReconnects()
	}
}

// dial tries the websocket transport first, then long-polling.
func (c *Client) dial() (transport, error) {
	t, wsErr := dialWebSocket(c.ctx, c.endpoint)
	if wsErr == nil {
		return t, nil
	}
	t, pollErr := dialPolling(c.ctx, c.endpoint)
	if pollErr == nil {
		log.Printf("channel: websocket unavailable, using polling: %v", wsErr)
		return t, nil
	}
	return nil, fmt.Errorf("%v; %v", wsErr, pollErr)
}

// session runs the read and write pumps for one live transport and returns
// the first error that ends it.
func (c *Client) session(t transport) error {
	sctx, cancel := context.WithCancel(c.ctx)
	defer cancel()

	errc := make(chan error, 2)
	go func() { errc <- c.readPump(sctx, t) }()
	go func() { errc <- c.writePump(sctx, t) }()

	err := <-errc
	cancel()
	<-errc
	return err
}

func (c *Client) readPump(ctx context.Context, t transport) error {
	for {
		env, err := t.ReadEnvelope(ctx)
		if err != nil {
			return err
		}
		c.metrics.IncrementMessagesReceived()

		switch env.Type {
		case models.MsgTypeSessionInit:
			var s models.SessionInit
			if err := json.Unmarshal(env.Payload, &s); err != nil || s.ID == "" {
				continue
			}
			if c.onConnected != nil {
				c.onConnected(s.ID)
			}

		case models.MsgTypeUsersUpdate:
			var roster []models.Participant
			// A JSON null decodes into a nil slice without error; only an
			// actual array (empty included) is a roster. Anything else is
			// discarded and the previous roster kept.
			if err := json.Unmarshal(env.Payload, &roster); err != nil || roster == nil {
				c.metrics.IncrementRostersDropped()
				continue
			}
			if c.onRoster != nil {
				c.onRoster(roster)
			}
		}
	}
}

func (c *Client) writePump(ctx context.Context, t transport) error {
	ticker := time.NewTicker(config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case env := <-c.outbound:
			wctx, cancel := context.WithTimeout(ctx, config.WriteTimeout)
			err := t.WriteEnvelope(wctx, env)
			cancel()
			if err != nil {
				return err
			}
			c.metrics.IncrementMessagesSent()

		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, config.WriteTimeout)
			err := t.Ping(pctx)
			cancel()
			if err != nil {
				return err
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// sleep waits for d or client shutdown; reports false on shutdown.
func (c *Client) sleep(d time.Duration) bool {
	select {
	case <-c.ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
