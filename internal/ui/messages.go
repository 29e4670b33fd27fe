package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/worklane/worklane-client/internal/api"
)

// roomsLoadedMsg carries a fresh snapshot of the room list cache.
type roomsLoadedMsg struct {
	rooms []api.Room
}

// notificationsLoadedMsg carries a fresh snapshot of the notification cache.
type notificationsLoadedMsg struct {
	notifications []api.Notification
}

// feedUpdatedMsg carries a fresh snapshot of the active room's message
// sequence. roomID lets the model drop snapshots that belong to a room the
// user has already switched away from.
type feedUpdatedMsg struct {
	roomID   string
	messages []api.Message
}

// presenceMsg reports the opponent's point-in-time online status.
type presenceMsg struct {
	accountID int64
	online    bool
}

// roomSelectedMsg is sent when the subscription for a newly selected room is
// established or fails.
type roomSelectedMsg struct {
	err error
}

// sendResultMsg is sent when a send attempt completes. At-most-once: an
// error here is terminal for that attempt.
type sendResultMsg struct {
	err error
}

// ackResultMsg is sent when a notification read acknowledgement completes.
type ackResultMsg struct {
	err error
}

// loggedOutMsg is sent after the fail-open logout sequence finishes.
type loggedOutMsg struct{}

// waitForSignal blocks on a store change signal and produces a snapshot msg.
// Context cancellation releases the waiter so no goroutine outlives shutdown.
func waitForSignal(ctx context.Context, signal <-chan struct{}, snapshot func() tea.Msg) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-signal:
			return snapshot()
		case <-ctx.Done():
			return nil
		}
	}
}
