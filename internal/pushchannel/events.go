package pushchannel

import (
	"github.com/NLihtnov/banking-notifications/internal/protocol"
)

// EventName identifies a logical event emitted by the channel client.
type EventName string

const (
	// EventConnected fires with Connected=true/false on every transport
	// open/close transition.
	EventConnected EventName = "connected"

	// EventError fires for transport-level errors and unparsable frames.
	EventError EventName = "error"

	// EventNotification fires for server-issued notifications.
	EventNotification EventName = "notification"

	// EventTransactionUpdate fires for transaction_update envelopes and the
	// transaction_created alias.
	EventTransactionUpdate EventName = "transaction_update"

	// EventBalanceUpdate fires for balance_update envelopes and the
	// balance_updated alias.
	EventBalanceUpdate EventName = "balance_update"

	// EventMessage fires for every inbound frame with the full envelope,
	// including heartbeats and unrecognized types.
	EventMessage EventName = "message"
)

// Event carries the data for a single emitted event. Only the fields relevant
// to the event name are set.
type Event struct {
	Name      EventName
	Connected bool
	Err       error

	Envelope     *protocol.Envelope
	Notification *protocol.NotificationPayload
	Transaction  *protocol.TransactionPayload
	Balance      *protocol.BalancePayload
}

// Handler consumes emitted events. Handlers registered for the same event are
// invoked in registration order.
type Handler func(Event)

// Subscription identifies a registered handler so it can be removed with Off.
type Subscription struct {
	name EventName
	id   uint64
}
