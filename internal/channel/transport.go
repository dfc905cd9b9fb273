package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/coder/websocket"

	"github.com/Marlon200530/real-time-map-client/internal/config"
	"github.com/Marlon200530/real-time-map-client/internal/models"
)

// transport is one live connection to the backend. Implementations carry no
// roster or session state; the Client owns reconnection and dispatch.
type transport interface {
	Name() string
	ReadEnvelope(ctx context.Context) (models.Envelope, error)
	WriteEnvelope(ctx context.Context, env models.Envelope) error
	Ping(ctx context.Context) error
	Close() error
}

// wsTransport is the preferred low-latency transport.
type wsTransport struct {
	conn *websocket.Conn
}

func dialWebSocket(ctx context.Context, endpoint string) (transport, error) {
	dialCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, websocketURL(endpoint), &websocket.DialOptions{
		HTTPClient: &http.Client{Timeout: config.ConnectTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", endpoint, err)
	}
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) Name() string { return "websocket" }

func (t *wsTransport) ReadEnvelope(ctx context.Context) (models.Envelope, error) {
	var env models.Envelope
	_, data, err := t.conn.Read(ctx)
	if err != nil {
		return env, err
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

func (t *wsTransport) WriteEnvelope(ctx context.Context, env models.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return t.conn.Write(ctx, websocket.MessageText, data)
}

func (t *wsTransport) Ping(ctx context.Context) error {
	return t.conn.Ping(ctx)
}

func (t *wsTransport) Close() error {
	return t.conn.Close(websocket.StatusNormalClosure, "")
}

// pollTransport is the higher-latency fallback: outbound envelopes go through
// POST /emit, inbound ones are drained from a held-open GET /poll.
type pollTransport struct {
	base   string
	client *http.Client
	cursor int64
	queue  []models.Envelope
}

type pollResponse struct {
	Cursor int64             `json:"cursor"`
	Events []models.Envelope `json:"events"`
}

func dialPolling(ctx context.Context, endpoint string) (transport, error) {
	t := &pollTransport{
		base: strings.TrimSuffix(endpoint, "/"),
		client: &http.Client{
			// Poll requests are held open server-side; leave headroom.
			Timeout: config.PollTimeout + config.ConnectTimeout,
		},
	}
	// One bounded probe so an unreachable backend fails the dial rather
	// than the first read.
	probeCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()
	if err := t.poll(probeCtx); err != nil {
		return nil, fmt.Errorf("polling probe %s: %w", endpoint, err)
	}
	return t, nil
}

func (t *pollTransport) Name() string { return "polling" }

func (t *pollTransport) ReadEnvelope(ctx context.Context) (models.Envelope, error) {
	for len(t.queue) == 0 {
		if err := t.poll(ctx); err != nil {
			return models.Envelope{}, err
		}
	}
	env := t.queue[0]
	t.queue = t.queue[1:]
	return env, nil
}

func (t *pollTransport) poll(ctx context.Context) error {
	u := t.base + "/poll?cursor=" + strconv.FormatInt(t.cursor, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("poll http status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var pr pollResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return fmt.Errorf("decode poll response: %w", err)
	}
	t.cursor = pr.Cursor
	t.queue = append(t.queue, pr.Events...)
	return nil
}

func (t *pollTransport) WriteEnvelope(ctx context.Context, env models.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base+"/emit", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("emit http status: %d", resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (t *pollTransport) Ping(ctx context.Context) error {
	// Keepalive is implicit in the held-open poll request.
	return nil
}

func (t *pollTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
