// Package pushchannel maintains the client side of the banking push channel:
// one websocket connection to the notification gateway, typed event fan-out,
// and bounded reconnection with linear backoff.
package pushchannel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/NLihtnov/banking-notifications/internal/protocol"
)

// ConnState describes the transport lifecycle.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateReconnecting ConnState = "reconnecting"
)

const (
	// maxReconnectAttempts bounds automatic reconnection after an abnormal
	// close. After the last failed attempt the client stays disconnected
	// until Connect is called again.
	maxReconnectAttempts = 5

	// reconnectBaseInterval is multiplied by the attempt number, so retries
	// run at 5s, 10s, 15s, 20s and 25s.
	reconnectBaseInterval = 5 * time.Second

	closeReason = "client disconnect"
	writeWait   = 10 * time.Second
)

type handlerEntry struct {
	id uint64
	fn Handler
}

// Client owns a single logical connection to the push gateway.
type Client struct {
	baseURL string
	dialer  *websocket.Dialer
	clock   clockwork.Clock
	log     zerolog.Logger

	mu         sync.Mutex
	conn       *websocket.Conn
	state      ConnState
	token      string
	attempts   int
	lastErr    error
	handlers   map[EventName][]handlerEntry
	nextSubID  uint64
	retryTimer clockwork.Timer

	// gen invalidates read loops and retry timers that belong to a previous
	// connection once Disconnect or a fresh Connect runs.
	gen uint64

	writeMu sync.Mutex
}

// Option configures a Client.
type Option func(*Client)

// WithClock injects the clock used for reconnect timers.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// WithDialer injects the websocket dialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = dialer }
}

// WithLogger injects the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.log = logger }
}

// New creates a channel client for the given gateway base URL
// (e.g. "ws://localhost:3002").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		dialer:   websocket.DefaultDialer,
		clock:    clockwork.NewRealClock(),
		log:      log.With().Str("component", "pushchannel").Logger(),
		state:    StateDisconnected,
		handlers: make(map[EventName][]handlerEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EndpointURL returns the websocket endpoint for the given token.
func (c *Client) EndpointURL(token string) string {
	return fmt.Sprintf("%s/ws?token=%s", c.baseURL, url.QueryEscape(token))
}

// Connect dials the gateway and returns once the transport is open. The token
// is kept for reconnection attempts. Token presence is the caller's
// responsibility.
func (c *Client) Connect(ctx context.Context, token string) error {
	c.mu.Lock()
	if c.state == StateConnected || c.state == StateConnecting {
		c.mu.Unlock()
		return nil
	}
	c.stopRetryTimerLocked()
	c.token = token
	c.state = StateConnecting
	endpoint := c.EndpointURL(token)
	c.mu.Unlock()

	conn, _, err := c.dialer.DialContext(ctx, endpoint, nil)

	c.mu.Lock()
	if c.state != StateConnecting {
		// Disconnect raced the dial.
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return fmt.Errorf("connection aborted")
	}
	if err != nil {
		c.state = StateDisconnected
		c.lastErr = err
		c.mu.Unlock()
		c.emit(Event{Name: EventError, Err: err})
		return fmt.Errorf("failed to connect push channel: %w", err)
	}
	gen := c.openLocked(conn)
	c.mu.Unlock()

	c.emit(Event{Name: EventConnected, Connected: true})
	go c.readLoop(conn, gen)
	return nil
}

// openLocked installs an open connection. Caller holds c.mu.
func (c *Client) openLocked(conn *websocket.Conn) uint64 {
	c.conn = conn
	c.state = StateConnected
	c.attempts = 0
	c.lastErr = nil
	c.gen++
	return c.gen
}

// Disconnect closes the transport with a normal-closure frame, cancels any
// pending reconnect and clears every registered listener. Safe to call at any
// time, including when already disconnected.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.gen++
	c.stopRetryTimerLocked()
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	c.attempts = 0
	c.handlers = make(map[EventName][]handlerEntry)
	c.mu.Unlock()

	if conn == nil {
		return
	}
	deadline := time.Now().Add(writeWait)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, closeReason), deadline)
	_ = conn.Close()
	c.log.Debug().Msg("push channel disconnected")
}

// Send transmits an envelope if the transport is currently open and silently
// drops it otherwise. Callers needing delivery guarantees must not rely on it.
func (c *Client) Send(env protocol.Envelope) {
	c.mu.Lock()
	conn := c.conn
	open := c.state == StateConnected && conn != nil
	c.mu.Unlock()

	if !open {
		c.log.Debug().Str("type", env.Type).Msg("channel not open, dropping outbound message")
		return
	}

	c.writeMu.Lock()
	err := conn.WriteJSON(env)
	c.writeMu.Unlock()
	if err != nil {
		c.log.Warn().Err(err).Str("type", env.Type).Msg("failed to write message")
	}
}

// MarkNotificationAsRead asks the server to mark a notification read. Local
// state is not touched here.
func (c *Client) MarkNotificationAsRead(id string) {
	env, err := protocol.NewMarkReadEnvelope(id)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to build mark-read message")
		return
	}
	c.Send(env)
}

// On registers a handler for the given event and returns a subscription
// handle usable with Off.
func (c *Client) On(name EventName, fn Handler) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSubID++
	c.handlers[name] = append(c.handlers[name], handlerEntry{id: c.nextSubID, fn: fn})
	return Subscription{name: name, id: c.nextSubID}
}

// Off removes a previously registered handler. Unknown subscriptions are a
// no-op.
func (c *Client) Off(sub Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.handlers[sub.name]
	for i, entry := range entries {
		if entry.id == sub.id {
			c.handlers[sub.name] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// IsConnected reports whether the transport is currently open.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateConnected
}

// State returns the current transport lifecycle state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ReconnectAttempts returns the current retry counter. It resets to zero on a
// successful connect.
func (c *Client) ReconnectAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// LastError returns the last transport-level error, cleared on a successful
// connect.
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Client) readLoop(conn *websocket.Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(gen, err)
			return
		}
		c.handleFrame(data)
	}
}

// handleFrame classifies one inbound frame and fans it out to listeners.
// It never panics out of the read loop: bad frames become error events.
func (c *Client) handleFrame(data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.log.Warn().Err(err).Msg("discarding unparsable frame")
		c.emit(Event{Name: EventError, Err: fmt.Errorf("unparsable frame: %w", err)})
		return
	}

	switch env.Type {
	case protocol.TypeHeartbeat:
		c.answerHeartbeat()

	case protocol.TypeNotification:
		var p protocol.NotificationPayload
		if err := env.ParsePayload(&p); err != nil {
			c.emit(Event{Name: EventError, Err: fmt.Errorf("bad notification payload: %w", err)})
			break
		}
		c.emit(Event{Name: EventNotification, Notification: &p})

	case protocol.TypeTransactionUpdate, protocol.TypeTransactionCreated:
		var p protocol.TransactionPayload
		if err := env.ParsePayload(&p); err != nil {
			c.emit(Event{Name: EventError, Err: fmt.Errorf("bad transaction payload: %w", err)})
			break
		}
		c.emit(Event{Name: EventTransactionUpdate, Transaction: &p})

	case protocol.TypeBalanceUpdate, protocol.TypeBalanceUpdated:
		var p protocol.BalancePayload
		if err := env.ParsePayload(&p); err != nil {
			c.emit(Event{Name: EventError, Err: fmt.Errorf("bad balance payload: %w", err)})
			break
		}
		c.emit(Event{Name: EventBalanceUpdate, Balance: &p})

	default:
		c.log.Debug().Str("type", env.Type).Msg("unrecognized message type")
	}

	// Every frame also reaches generic message listeners.
	c.emit(Event{Name: EventMessage, Envelope: &env})
}

func (c *Client) answerHeartbeat() {
	reply, err := protocol.NewEnvelope(protocol.TypeHeartbeat, struct{}{})
	if err != nil {
		return
	}
	c.Send(reply)
}

// handleClose runs when the read loop dies. Normal closure or a superseded
// generation ends the lifecycle; anything else schedules a bounded retry.
func (c *Client) handleClose(gen uint64, err error) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.conn = nil

	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		c.state = StateDisconnected
		c.mu.Unlock()
		c.emit(Event{Name: EventConnected, Connected: false})
		return
	}

	c.lastErr = err
	scheduled := c.scheduleRetryLocked()
	c.mu.Unlock()

	c.emit(Event{Name: EventConnected, Connected: false})
	c.emit(Event{Name: EventError, Err: err})
	if !scheduled {
		c.log.Warn().Int("attempts", maxReconnectAttempts).Msg("reconnect attempts exhausted, giving up")
	}
}

// scheduleRetryLocked schedules the next reconnect attempt if any remain.
// Caller holds c.mu. Returns false once the attempt budget is spent.
func (c *Client) scheduleRetryLocked() bool {
	if c.attempts >= maxReconnectAttempts {
		c.state = StateDisconnected
		return false
	}
	c.attempts++
	c.state = StateReconnecting
	delay := reconnectBaseInterval * time.Duration(c.attempts)
	gen := c.gen
	c.log.Info().
		Int("attempt", c.attempts).
		Dur("delay", delay).
		Msg("scheduling reconnect")
	c.retryTimer = c.clock.AfterFunc(delay, func() { c.retry(gen) })
	return true
}

func (c *Client) retry(gen uint64) {
	c.mu.Lock()
	if c.gen != gen || c.state != StateReconnecting {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	endpoint := c.EndpointURL(c.token)
	c.mu.Unlock()

	conn, _, err := c.dialer.Dial(endpoint, nil)

	c.mu.Lock()
	if c.gen != gen || c.state != StateConnecting {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		c.lastErr = err
		scheduled := c.scheduleRetryLocked()
		c.mu.Unlock()
		c.emit(Event{Name: EventError, Err: err})
		if !scheduled {
			c.log.Warn().Int("attempts", maxReconnectAttempts).Msg("reconnect attempts exhausted, giving up")
		}
		return
	}
	newGen := c.openLocked(conn)
	c.mu.Unlock()

	c.log.Info().Msg("push channel reconnected")
	c.emit(Event{Name: EventConnected, Connected: true})
	go c.readLoop(conn, newGen)
}

func (c *Client) stopRetryTimerLocked() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
}

// emit invokes registered handlers in registration order, outside the lock.
func (c *Client) emit(ev Event) {
	c.mu.Lock()
	entries := c.handlers[ev.Name]
	snapshot := make([]handlerEntry, len(entries))
	copy(snapshot, entries)
	c.mu.Unlock()

	for _, entry := range snapshot {
		entry.fn(ev)
	}
}
