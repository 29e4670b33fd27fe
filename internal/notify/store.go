package notify

import (
	"context"
	"sync"

	"github.com/worklane/worklane-client/internal/api"
	"github.com/worklane/worklane-client/internal/signal"
)

// Store is the session-scoped notification cache. It is an explicit injected
// container created alongside the session and cleared at logout; it holds no
// authoritative state, the server owns every notification and a later Replace
// fully overwrites whatever is cached.
type Store struct {
	mu            sync.RWMutex
	notifications []api.Notification
	loaded        bool
	changes       *signal.Broadcaster
}

// NewStore returns an empty notification store.
func NewStore() *Store {
	return &Store{changes: signal.NewBroadcaster()}
}

// Replace overwrites the full cache with the fetched list. No merge
// semantics: the previous contents are discarded.
func (s *Store) Replace(notifications []api.Notification) {
	copied := make([]api.Notification, len(notifications))
	copy(copied, notifications)

	s.mu.Lock()
	s.notifications = copied
	s.loaded = true
	s.mu.Unlock()
	s.changes.Notify()
}

// Notifications returns a copy of the cached list in fetch order.
func (s *Store) Notifications() []api.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]api.Notification, len(s.notifications))
	copy(copied, s.notifications)
	return copied
}

// Loaded reports whether an initial fetch has populated the cache.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// HasUnread reports whether any cached notification is unread.
func (s *Store) HasUnread() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, notification := range s.notifications {
		if notification.IsRead == 0 {
			return true
		}
	}
	return false
}

// MarkRead flips the matching entry to read. No-op when the id is absent.
// Callers must only invoke this after the server acknowledgement succeeded.
func (s *Store) MarkRead(notificationID int64) {
	s.mu.Lock()
	changed := false
	for index := range s.notifications {
		if s.notifications[index].ID == notificationID {
			if s.notifications[index].IsRead != 1 {
				s.notifications[index].IsRead = 1
				changed = true
			}
			break
		}
	}
	s.mu.Unlock()
	if changed {
		s.changes.Notify()
	}
}

// MarkAllRead flips every cached entry to read. A no-op on an empty cache.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	changed := false
	for index := range s.notifications {
		if s.notifications[index].IsRead != 1 {
			s.notifications[index].IsRead = 1
			changed = true
		}
	}
	s.mu.Unlock()
	if changed {
		s.changes.Notify()
	}
}

// Clear empties the cache, typically at logout.
func (s *Store) Clear() {
	s.mu.Lock()
	s.notifications = nil
	s.loaded = false
	s.mu.Unlock()
	s.changes.Notify()
}

// Subscribe registers a change listener for re-rendering consumers.
func (s *Store) Subscribe(ctx context.Context) (<-chan struct{}, func()) {
	return s.changes.Subscribe(ctx)
}
