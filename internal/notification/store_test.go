package notification

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NLihtnov/banking-notifications/internal/protocol"
)

func newRecord(id string, read bool) Record {
	return Record{
		ID:        id,
		Category:  CategorySystemMessage,
		Title:     "title " + id,
		Body:      "body " + id,
		CreatedAt: time.Now(),
		Priority:  PriorityMedium,
		Read:      read,
	}
}

func countUnread(records []Record) int {
	n := 0
	for _, r := range records {
		if !r.Read {
			n++
		}
	}
	return n
}

func TestStore_InsertMaintainsUnreadInvariant(t *testing.T) {
	store := NewStore()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		store.Insert(newRecord(fmt.Sprintf("n-%d", i), rng.Intn(2) == 0))
		assert.Equal(t, countUnread(store.Records()), store.UnreadCount(),
			"unread count diverged after insert %d", i)
		assert.LessOrEqual(t, store.Len(), Capacity)
	}
}

func TestStore_InsertIsHeadFirst(t *testing.T) {
	store := NewStore()
	store.Insert(newRecord("first", false))
	store.Insert(newRecord("second", false))

	records := store.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0].ID)
	assert.Equal(t, "first", records[1].ID)
}

func TestStore_CapacityEviction(t *testing.T) {
	store := NewStore()

	// Oldest 25 arrive pre-read, the rest unread.
	for i := 0; i < 51; i++ {
		store.Insert(newRecord(fmt.Sprintf("n-%d", i), i < 25))
	}

	require.Equal(t, Capacity, store.Len())

	// The very first record is the tail and must have been evicted.
	for _, r := range store.Records() {
		assert.NotEqual(t, "n-0", r.ID)
	}

	// 26 unread records were inserted (n-25 .. n-50), none evicted.
	assert.Equal(t, 26, store.UnreadCount())
	assert.Equal(t, countUnread(store.Records()), store.UnreadCount())
}

func TestStore_EvictingUnreadRecordDecrementsUnread(t *testing.T) {
	store := NewStore()

	// Fill to capacity with unread records, then push one more.
	for i := 0; i <= Capacity; i++ {
		store.Insert(newRecord(fmt.Sprintf("n-%d", i), false))
	}

	assert.Equal(t, Capacity, store.Len())
	assert.Equal(t, Capacity, store.UnreadCount())
}

func TestStore_MarkReadIsIdempotent(t *testing.T) {
	store := NewStore()
	store.Insert(newRecord("a", false))
	store.Insert(newRecord("b", false))

	store.MarkRead("a")
	assert.Equal(t, 1, store.UnreadCount())

	store.MarkRead("a")
	assert.Equal(t, 1, store.UnreadCount(), "second MarkRead must not change the count")
}

func TestStore_MarkReadUnknownIDIsNoop(t *testing.T) {
	store := NewStore()
	store.Insert(newRecord("a", false))

	store.MarkRead("missing")
	assert.Equal(t, 1, store.UnreadCount())
	assert.Equal(t, 1, store.Len())
}

func TestStore_MarkAllRead(t *testing.T) {
	store := NewStore()

	// Empty store first.
	store.MarkAllRead()
	assert.Equal(t, 0, store.UnreadCount())

	for i := 0; i < 10; i++ {
		store.Insert(newRecord(fmt.Sprintf("n-%d", i), i%2 == 0))
	}
	store.MarkAllRead()

	assert.Equal(t, 0, store.UnreadCount())
	for _, r := range store.Records() {
		assert.True(t, r.Read)
	}
}

func TestStore_RemoveNonexistentLeavesStateUnchanged(t *testing.T) {
	store := NewStore()
	store.Insert(newRecord("a", false))
	store.Insert(newRecord("b", true))

	store.Remove("missing")

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 1, store.UnreadCount())
}

func TestStore_RemoveUnreadDecrementsCount(t *testing.T) {
	store := NewStore()
	store.Insert(newRecord("a", false))
	store.Insert(newRecord("b", true))

	store.Remove("a")
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 0, store.UnreadCount())

	store.Remove("b")
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, store.UnreadCount())
}

func TestStore_Clear(t *testing.T) {
	store := NewStore()
	for i := 0; i < 5; i++ {
		store.Insert(newRecord(fmt.Sprintf("n-%d", i), false))
	}

	store.Clear()
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, store.UnreadCount())
}

func TestStore_DuplicateIDsAreKeptAsSeparateEntries(t *testing.T) {
	store := NewStore()
	store.Insert(newRecord("dup", false))
	store.Insert(newRecord("dup", false))

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 2, store.UnreadCount())

	// MarkRead touches only the first match.
	store.MarkRead("dup")
	assert.Equal(t, 1, store.UnreadCount())
}

func TestStore_ConnectionStatus(t *testing.T) {
	store := NewStore()

	store.SetConnectionError("dial tcp: connection refused")
	connected, msg := store.ConnectionStatus()
	assert.False(t, connected)
	assert.Equal(t, "dial tcp: connection refused", msg)

	store.SetConnectionStatus(true)
	connected, msg = store.ConnectionStatus()
	assert.True(t, connected)
	assert.Empty(t, msg, "a successful connect clears the stored error")
}

func TestStore_PanelVisibility(t *testing.T) {
	store := NewStore()
	assert.False(t, store.PanelVisible())

	store.TogglePanel()
	assert.True(t, store.PanelVisible())

	store.TogglePanel()
	assert.False(t, store.PanelVisible())

	store.TogglePanel()
	store.HidePanel()
	assert.False(t, store.PanelVisible())
}

func TestStore_UnreadIDs(t *testing.T) {
	store := NewStore()
	store.Insert(newRecord("a", true))
	store.Insert(newRecord("b", false))
	store.Insert(newRecord("c", false))

	assert.Equal(t, []string{"c", "b"}, store.UnreadIDs())
}

func TestNewBalanceNotification_Decrease(t *testing.T) {
	rec := NewBalanceNotification(1000, 900, time.Now())

	assert.Equal(t, CategoryBalanceUpdate, rec.Category)
	assert.Equal(t, PriorityLow, rec.Priority)
	assert.Contains(t, rec.Body, "reduzido")
	assert.Contains(t, rec.Body, "100")
}

func TestNewBalanceNotification_Increase(t *testing.T) {
	rec := NewBalanceNotification(1000, 1500, time.Now())

	assert.Contains(t, rec.Body, "aumentado")
	assert.Contains(t, rec.Body, "500")
}

func TestNewTransactionNotification(t *testing.T) {
	rec := NewTransactionNotification(protocol.TransactionPayload{
		TransactionID: "tx-1",
		Type:          "TED",
		Amount:        250,
		RecipientName: "Maria",
	}, time.Now())

	assert.Equal(t, CategoryTransaction, rec.Category)
	assert.Equal(t, PriorityMedium, rec.Priority)
	assert.Contains(t, rec.Body, "TED")
	assert.Contains(t, rec.Body, "Maria")
	assert.Contains(t, rec.Body, "250")
	assert.Equal(t, "tx-1", rec.Payload["transactionId"])
	assert.NotEmpty(t, rec.ID)
}

func TestFromWire_Defaults(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := FromWire(protocol.NotificationPayload{
		Type:     "something_unknown",
		Title:    "t",
		Message:  "m",
		Priority: "whatever",
	}, now)

	assert.NotEmpty(t, rec.ID, "missing id must be generated locally")
	assert.Equal(t, CategorySystemMessage, rec.Category)
	assert.Equal(t, PriorityMedium, rec.Priority)
	assert.Equal(t, now, rec.CreatedAt, "missing timestamp falls back to receipt time")
}

func TestFromWire_ParsesTimestamp(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sent := time.Date(2024, 5, 31, 8, 30, 0, 0, time.UTC)

	rec := FromWire(protocol.NotificationPayload{
		ID:        "srv-1",
		Type:      "security_alert",
		Priority:  "urgent",
		Timestamp: sent.Format(time.RFC3339),
	}, now)

	assert.Equal(t, "srv-1", rec.ID)
	assert.Equal(t, CategorySecurityAlert, rec.Category)
	assert.Equal(t, PriorityUrgent, rec.Priority)
	assert.True(t, rec.CreatedAt.Equal(sent))
}

func TestFromWire_TruncatesOversizedMessage(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := FromWire(protocol.NotificationPayload{
		ID:      "srv-1",
		Type:    "transaction",
		Message: strings.Repeat("x", maxBodyLength*2),
	}, now)

	assert.Len(t, rec.Body, maxBodyLength+len("..."))
	assert.True(t, strings.HasSuffix(rec.Body, "..."))

	short := FromWire(protocol.NotificationPayload{
		ID:      "srv-2",
		Type:    "transaction",
		Message: "curto",
	}, now)
	assert.Equal(t, "curto", short.Body)
}

func TestPriorityUrgent(t *testing.T) {
	assert.False(t, PriorityLow.Urgent())
	assert.False(t, PriorityMedium.Urgent())
	assert.True(t, PriorityHigh.Urgent())
	assert.True(t, PriorityUrgent.Urgent())
}
