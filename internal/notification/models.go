package notification

import (
	"time"
)

// Category classifies a notification for display purposes.
type Category string

const (
	CategoryTransaction   Category = "transaction"
	CategoryBalanceUpdate Category = "balance_update"
	CategorySecurityAlert Category = "security_alert"
	CategorySystemMessage Category = "system_message"
)

// Priority drives toast surfacing and system-alert escalation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Record is a single notification held by the store.
type Record struct {
	ID        string
	Category  Category
	Title     string
	Body      string
	CreatedAt time.Time
	Priority  Priority
	Read      bool

	// Payload carries opaque associated data (transaction id, balance delta,
	// etc.) and is not interpreted by the store.
	Payload map[string]any
}

// ParseCategory folds wire categories into the known set. Unknown values
// become system messages.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryTransaction, CategoryBalanceUpdate, CategorySecurityAlert, CategorySystemMessage:
		return Category(s)
	default:
		return CategorySystemMessage
	}
}

// ParsePriority folds wire priorities into the known set. Unknown values
// become medium.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(s)
	default:
		return PriorityMedium
	}
}

// Urgent reports whether the priority warrants a system-level alert.
func (p Priority) Urgent() bool {
	return p == PriorityHigh || p == PriorityUrgent
}
