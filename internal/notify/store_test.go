package notify

import (
	"context"
	"testing"
	"time"

	"github.com/worklane/worklane-client/internal/api"
)

func sampleNotifications() []api.Notification {
	now := time.Now().UTC()
	return []api.Notification{
		{ID: 1, Message: "A new applicant applied", IsRead: 0, CreatedAt: now},
		{ID: 2, Message: "Your posting was approved", IsRead: 0, CreatedAt: now},
		{ID: 3, Message: "Weekly digest", IsRead: 1, CreatedAt: now},
	}
}

func TestMarkReadFlipsExactlyOneEntry(t *testing.T) {
	store := NewStore()
	store.Replace(sampleNotifications())

	store.MarkRead(2)

	notifications := store.Notifications()
	if notifications[0].IsRead != 0 {
		t.Fatalf("expected entry 1 to stay unread, got %d", notifications[0].IsRead)
	}
	if notifications[1].IsRead != 1 {
		t.Fatalf("expected entry 2 to become read, got %d", notifications[1].IsRead)
	}
	if notifications[2].IsRead != 1 {
		t.Fatalf("expected entry 3 to stay read, got %d", notifications[2].IsRead)
	}
}

func TestMarkReadIsNoOpForAbsentID(t *testing.T) {
	store := NewStore()
	store.Replace(sampleNotifications())

	store.MarkRead(99)

	for index, notification := range store.Notifications() {
		if notification.IsRead != sampleNotifications()[index].IsRead {
			t.Fatalf("expected entry %d unchanged", index)
		}
	}
}

func TestMarkAllReadFlipsEveryEntry(t *testing.T) {
	store := NewStore()
	store.Replace(sampleNotifications())

	store.MarkAllRead()

	for index, notification := range store.Notifications() {
		if notification.IsRead != 1 {
			t.Fatalf("expected entry %d to be read", index)
		}
	}
	if store.HasUnread() {
		t.Fatal("expected no unread entries after MarkAllRead")
	}
}

func TestMarkAllReadOnEmptyStoreIsNoOp(t *testing.T) {
	store := NewStore()
	store.MarkAllRead()
	if count := len(store.Notifications()); count != 0 {
		t.Fatalf("expected empty store, got %d entries", count)
	}
}

func TestClearYieldsEmptyList(t *testing.T) {
	store := NewStore()
	store.Replace(sampleNotifications())

	store.Clear()

	if count := len(store.Notifications()); count != 0 {
		t.Fatalf("expected empty store after Clear, got %d entries", count)
	}
	if store.Loaded() {
		t.Fatal("expected cleared store to report not loaded")
	}
}

func TestReplaceFullyOverwrites(t *testing.T) {
	store := NewStore()
	store.Replace(sampleNotifications())
	store.Replace([]api.Notification{{ID: 9, Message: "only one", IsRead: 0}})

	notifications := store.Notifications()
	if len(notifications) != 1 || notifications[0].ID != 9 {
		t.Fatalf("expected replace to overwrite, got %+v", notifications)
	}
}

func TestHasUnread(t *testing.T) {
	store := NewStore()
	if store.HasUnread() {
		t.Fatal("expected empty store to have no unread entries")
	}
	store.Replace(sampleNotifications())
	if !store.HasUnread() {
		t.Fatal("expected unread entries")
	}
}

func TestSubscribeSignalsOnMutation(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, cleanup := store.Subscribe(ctx)
	defer cleanup()

	store.Replace(sampleNotifications())

	select {
	case <-stream:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected change signal after Replace")
	}
}
