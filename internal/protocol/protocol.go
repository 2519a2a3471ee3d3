// Package protocol defines the JSON envelope exchanged over the push channel
// and the typed payloads carried inside it.
package protocol

import (
	"encoding/json"
	"time"
)

// Envelope is the wire frame used in both directions.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp string          `json:"timestamp"`
}

// Inbound envelope types recognized by the channel client.
const (
	TypeNotification       = "notification"
	TypeTransactionUpdate  = "transaction_update"
	TypeTransactionCreated = "transaction_created" // alias of transaction_update
	TypeBalanceUpdate      = "balance_update"
	TypeBalanceUpdated     = "balance_updated" // alias of balance_update
	TypeHeartbeat          = "heartbeat"
)

// NewEnvelope builds an envelope with the payload marshaled and the timestamp
// set to the current time.
func NewEnvelope(msgType string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		Type:      msgType,
		Payload:   data,
		Timestamp: time.Now().Format(time.RFC3339),
	}, nil
}

// ParsePayload unmarshals the envelope payload into v.
func (e Envelope) ParsePayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NotificationPayload is the wire shape of a server-issued notification.
// Type here is the notification category, not the envelope type.
type NotificationPayload struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Priority  string         `json:"priority"`
	Read      bool           `json:"read"`
}

// TransactionPayload describes a completed money transfer.
type TransactionPayload struct {
	TransactionID string  `json:"transactionId"`
	Type          string  `json:"type"` // TED or PIX
	Amount        float64 `json:"amount"`
	RecipientName string  `json:"recipientName"`
}

// BalancePayload carries the account balance after a change.
type BalancePayload struct {
	NewBalance float64 `json:"newBalance"`
}

// MarkReadPayload is the client-issued control message asking the server to
// mark a notification read.
type MarkReadPayload struct {
	Action         string `json:"action"`
	NotificationID string `json:"notificationId"`
}

// NewMarkReadEnvelope builds the mark-read control envelope for id.
func NewMarkReadEnvelope(id string) (Envelope, error) {
	return NewEnvelope(TypeNotification, MarkReadPayload{
		Action:         "mark_read",
		NotificationID: id,
	})
}
