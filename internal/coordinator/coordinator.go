// Package coordinator glues the push channel client to the notification
// store: it owns the session-bound channel lifecycle, converts inbound
// events into store records and exposes the operations the UI layer needs.
package coordinator

import (
	"context"
	"errors"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/NLihtnov/banking-notifications/internal/alert"
	"github.com/NLihtnov/banking-notifications/internal/notification"
	"github.com/NLihtnov/banking-notifications/internal/pushchannel"
)

// ErrMissingToken is returned when Start is called without a session token.
var ErrMissingToken = errors.New("session token is required to open the push channel")

// Channel is the subset of the push channel client the coordinator drives.
type Channel interface {
	Connect(ctx context.Context, token string) error
	Disconnect()
	On(name pushchannel.EventName, fn pushchannel.Handler) pushchannel.Subscription
	MarkNotificationAsRead(id string)
}

// BalanceAccount receives balance updates propagated from the channel.
type BalanceAccount interface {
	Balance() float64
	SetBalance(v float64)
}

// MemoryAccount is a trivial in-memory BalanceAccount.
type MemoryAccount struct {
	mu      sync.Mutex
	balance float64
}

// NewMemoryAccount creates an account with an initial balance.
func NewMemoryAccount(balance float64) *MemoryAccount {
	return &MemoryAccount{balance: balance}
}

func (a *MemoryAccount) Balance() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

func (a *MemoryAccount) SetBalance(v float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = v
}

// Coordinator binds a store and a channel to one user session.
type Coordinator struct {
	store   *notification.Store
	channel Channel
	alerter alert.Alerter
	account BalanceAccount
	clock   clockwork.Clock
	log     zerolog.Logger

	mu      sync.Mutex
	started bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithAlerter sets the system-alert capability.
func WithAlerter(a alert.Alerter) Option {
	return func(c *Coordinator) { c.alerter = a }
}

// WithAccount sets the balance propagation target.
func WithAccount(a BalanceAccount) Option {
	return func(c *Coordinator) { c.account = a }
}

// WithClock injects the clock used to stamp derived notifications.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// WithLogger injects the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coordinator) { c.log = logger }
}

// New creates a coordinator over an injected store and channel so multiple
// sessions and tests can run isolated instances.
func New(store *notification.Store, channel Channel, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:   store,
		channel: channel,
		alerter: &alert.Nop{},
		account: NewMemoryAccount(0),
		clock:   clockwork.NewRealClock(),
		log:     log.With().Str("component", "coordinator").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start registers the channel listeners and opens the connection for the
// given session token. A connect failure is stored as a connection error and
// returned; it never reaches the UI as a panic or unhandled rejection.
func (c *Coordinator) Start(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingToken
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	c.registerListeners()

	if err := c.channel.Connect(ctx, token); err != nil {
		c.store.SetConnectionError(err.Error())
		c.log.Warn().Err(err).Msg("push channel connect failed")

		// Drop the listeners registered above so the next activation can
		// start from a clean slate.
		c.channel.Disconnect()
		c.mu.Lock()
		c.started = false
		c.mu.Unlock()
		return err
	}
	return nil
}

// Stop tears the channel down on logout or component teardown. Idempotent.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.mu.Unlock()

	c.channel.Disconnect()
	c.store.SetConnectionStatus(false)
}

// MarkNotificationAsRead updates the store immediately and sends the
// best-effort server-side control message. Local truth wins.
func (c *Coordinator) MarkNotificationAsRead(id string) {
	c.store.MarkRead(id)
	c.channel.MarkNotificationAsRead(id)
}

// MarkAllNotificationsAsRead marks everything read locally and notifies the
// server once per previously-unread record.
func (c *Coordinator) MarkAllNotificationsAsRead() {
	ids := c.store.UnreadIDs()
	c.store.MarkAllRead()
	for _, id := range ids {
		c.channel.MarkNotificationAsRead(id)
	}
}

// SendTestNotification inserts a local-only synthetic record. It never
// touches the channel.
func (c *Coordinator) SendTestNotification() {
	c.store.Insert(notification.NewTestNotification(c.clock.Now()))
}

// RequestAlertPermission wraps the platform permission request and returns
// false instead of erroring when the capability is absent.
func (c *Coordinator) RequestAlertPermission(ctx context.Context) bool {
	granted, err := c.alerter.RequestPermission(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("alert permission request failed")
		return false
	}
	return granted
}

func (c *Coordinator) registerListeners() {
	c.channel.On(pushchannel.EventConnected, func(ev pushchannel.Event) {
		c.store.SetConnectionStatus(ev.Connected)
	})

	c.channel.On(pushchannel.EventError, func(ev pushchannel.Event) {
		if ev.Err != nil {
			c.store.SetConnectionError(ev.Err.Error())
		}
	})

	c.channel.On(pushchannel.EventNotification, func(ev pushchannel.Event) {
		if ev.Notification == nil {
			return
		}
		rec := notification.FromWire(*ev.Notification, c.clock.Now())
		c.store.Insert(rec)
		if rec.Priority.Urgent() && !rec.Read {
			if err := c.alerter.Alert(rec.Title, rec.Body); err != nil {
				c.log.Warn().Err(err).Msg("system alert failed")
			}
		}
	})

	c.channel.On(pushchannel.EventTransactionUpdate, func(ev pushchannel.Event) {
		if ev.Transaction == nil {
			return
		}
		c.store.Insert(notification.NewTransactionNotification(*ev.Transaction, c.clock.Now()))
	})

	c.channel.On(pushchannel.EventBalanceUpdate, func(ev pushchannel.Event) {
		if ev.Balance == nil {
			return
		}
		previous := c.account.Balance()
		c.store.Insert(notification.NewBalanceNotification(previous, ev.Balance.NewBalance, c.clock.Now()))
		c.account.SetBalance(ev.Balance.NewBalance)
	})
}
