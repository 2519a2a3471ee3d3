// Package notification holds the in-memory notification state: a bounded,
// most-recent-first list of records plus unread-count and connection/panel
// flags. The store does no I/O; the coordinator feeds it.
package notification

import (
	"sync"
)

// Capacity bounds the number of records the store retains. Inserting beyond
// it evicts the oldest record.
const Capacity = 50

// Store is the mutable notification state shared by the coordinator (writer)
// and UI selectors (readers).
type Store struct {
	mu           sync.Mutex
	records      []Record // head = most recent
	unread       int
	connected    bool
	connError    string
	panelVisible bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Insert pushes a record to the head, evicting the tail once the capacity is
// exceeded.
func (s *Store) Insert(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append([]Record{r}, s.records...)
	if !r.Read {
		s.unread++
	}
	if len(s.records) > Capacity {
		evicted := s.records[len(s.records)-1]
		s.records = s.records[:len(s.records)-1]
		if !evicted.Read {
			s.decUnreadLocked()
		}
	}
}

// MarkRead marks the record with the given id as read. Unknown ids and
// already-read records are a no-op.
func (s *Store) MarkRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			if !s.records[i].Read {
				s.records[i].Read = true
				s.decUnreadLocked()
			}
			return
		}
	}
}

// MarkAllRead marks every record read.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		s.records[i].Read = true
	}
	s.unread = 0
}

// Remove deletes the record with the given id if present.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			if !s.records[i].Read {
				s.decUnreadLocked()
			}
			s.records = append(s.records[:i:i], s.records[i+1:]...)
			return
		}
	}
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.unread = 0
}

// SetConnectionStatus records whether the push channel is up. A true value
// clears any stored connection error.
func (s *Store) SetConnectionStatus(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected = connected
	if connected {
		s.connError = ""
	}
}

// SetConnectionError stores the last transport error and forces the status
// flag down.
func (s *Store) SetConnectionError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connError = message
	s.connected = false
}

// TogglePanel flips the notification panel visibility flag.
func (s *Store) TogglePanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelVisible = !s.panelVisible
}

// HidePanel hides the notification panel.
func (s *Store) HidePanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelVisible = false
}

// Records returns a copy of the current list, most recent first.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// UnreadCount returns the number of unread records.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// UnreadIDs returns the ids of all unread records, most recent first.
func (s *Store) UnreadIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, r := range s.records {
		if !r.Read {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// ConnectionStatus returns the connected flag and the last error message.
func (s *Store) ConnectionStatus() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected, s.connError
}

// PanelVisible reports whether the notification panel is shown.
func (s *Store) PanelVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panelVisible
}

// decUnreadLocked decrements the unread counter, floored at zero.
func (s *Store) decUnreadLocked() {
	if s.unread > 0 {
		s.unread--
	}
}
