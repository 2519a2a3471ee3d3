package notification

import (
	"fmt"
	"math"
	"time"

	"github.com/NLihtnov/banking-notifications/internal/protocol"
	"github.com/NLihtnov/banking-notifications/internal/util"
)

// maxBodyLength bounds server-supplied message text so a runaway payload
// cannot blow up the panel; locally built bodies are already short.
const maxBodyLength = 512

// NewTransactionNotification builds the record for a completed transfer.
func NewTransactionNotification(p protocol.TransactionPayload, now time.Time) Record {
	return Record{
		ID:        util.NewNotificationID(),
		Category:  CategoryTransaction,
		Title:     "Transferência realizada",
		Body: fmt.Sprintf("Transferência %s de %s para %s realizada com sucesso",
			p.Type, util.FormatBRL(p.Amount), p.RecipientName),
		CreatedAt: now,
		Priority:  PriorityMedium,
		Payload: map[string]any{
			"transactionId": p.TransactionID,
			"amount":        p.Amount,
		},
	}
}

// NewBalanceNotification builds the record for a balance change, phrased by
// the signed delta between the previous and current balance.
func NewBalanceNotification(previous, current float64, now time.Time) Record {
	delta := current - previous
	direction := "aumentado"
	if delta < 0 {
		direction = "reduzido"
	}

	return Record{
		ID:        util.NewNotificationID(),
		Category:  CategoryBalanceUpdate,
		Title:     "Saldo atualizado",
		Body: fmt.Sprintf("Seu saldo foi %s em %s",
			direction, util.FormatBRL(math.Abs(delta))),
		CreatedAt: now,
		Priority:  PriorityLow,
		Payload: map[string]any{
			"newBalance": current,
			"delta":      delta,
		},
	}
}

// NewTestNotification builds the local-only diagnostic record.
func NewTestNotification(now time.Time) Record {
	return Record{
		ID:        util.NewNotificationID(),
		Category:  CategorySystemMessage,
		Title:     "Notificação de teste",
		Body:      "Esta é uma notificação de teste gerada localmente",
		CreatedAt: now,
		Priority:  PriorityMedium,
	}
}

// FromWire converts a server-issued notification payload into a store record.
// Missing timestamps fall back to receipt time.
func FromWire(p protocol.NotificationPayload, now time.Time) Record {
	createdAt := now
	if p.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, p.Timestamp); err == nil {
			createdAt = ts
		}
	}

	id := p.ID
	if id == "" {
		id = util.NewNotificationID()
	}

	return Record{
		ID:        id,
		Category:  ParseCategory(p.Type),
		Title:     p.Title,
		Body:      util.TruncateContent(p.Message, maxBodyLength),
		CreatedAt: createdAt,
		Priority:  ParsePriority(p.Priority),
		Read:      p.Read,
		Payload:   p.Data,
	}
}
