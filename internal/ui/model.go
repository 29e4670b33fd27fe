package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/worklane/worklane-client/internal/api"
	"github.com/worklane/worklane-client/internal/app"
)

// focusRegion identifies which pane receives keyboard input.
type focusRegion int

const (
	// focusRooms means navigation keys move the room list cursor.
	focusRooms focusRegion = iota
	// focusInput means keystrokes go to the message input line.
	focusInput
	// focusNotifications means the notification overlay is open and
	// navigation keys move its cursor.
	focusNotifications
)

// Model is the bubbletea model for the chat and notification client. All
// platform state lives in the injected app containers; the model keeps
// render snapshots and refreshes them when a store signals a change.
type Model struct {
	app *app.App
	ctx context.Context

	selfID   int64
	selfName string

	focus      focusRegion
	rooms      []api.Room
	roomCursor int

	activeRoomID   string
	messages       []api.Message
	opponentID     int64
	opponentName   string
	opponentOnline bool

	notifications []api.Notification
	notifCursor   int

	input  textinput.Model
	status string

	width    int
	height   int
	quitting bool

	roomSignal  <-chan struct{}
	notifSignal <-chan struct{}
	feedSignal  <-chan struct{}
}

// New constructs the model over an assembled, logged-in app.
func New(ctx context.Context, application *app.App) Model {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 2000
	input.Focus()

	claims, _ := application.Session.Claims()

	roomSignal, _ := application.Rooms.Subscribe(ctx)
	notifSignal, _ := application.Notifications.Subscribe(ctx)
	feedSignal, _ := application.Feed.Subscribe(ctx)

	return Model{
		app:         application,
		ctx:         ctx,
		selfID:      claims.AccountID,
		selfName:    claims.Name,
		focus:       focusRooms,
		input:       input,
		roomSignal:  roomSignal,
		notifSignal: notifSignal,
		feedSignal:  feedSignal,
	}
}

// Init arms the store listeners and kicks the initial fetches.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitRooms(),
		m.waitNotifications(),
		m.waitFeed(),
		m.refreshAll(),
		textinput.Blink,
	)
}

func (m Model) waitRooms() tea.Cmd {
	return waitForSignal(m.ctx, m.roomSignal, func() tea.Msg {
		return roomsLoadedMsg{rooms: m.app.Rooms.Rooms()}
	})
}

func (m Model) waitNotifications() tea.Cmd {
	return waitForSignal(m.ctx, m.notifSignal, func() tea.Msg {
		return notificationsLoadedMsg{notifications: m.app.Notifications.Notifications()}
	})
}

func (m Model) waitFeed() tea.Cmd {
	return waitForSignal(m.ctx, m.feedSignal, func() tea.Msg {
		return feedUpdatedMsg{roomID: m.app.Feed.RoomID(), messages: m.app.Feed.Messages()}
	})
}

func (m Model) refreshAll() tea.Cmd {
	return func() tea.Msg {
		m.app.NotifySyncer.Refresh(m.ctx)
		m.app.RoomPoller.Refresh(m.ctx)
		return nil
	}
}

// Update routes messages and keystrokes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case roomsLoadedMsg:
		m.rooms = msg.rooms
		if m.roomCursor >= len(m.rooms) {
			m.roomCursor = 0
		}
		return m, m.waitRooms()

	case notificationsLoadedMsg:
		m.notifications = msg.notifications
		if m.notifCursor >= len(m.notifications) {
			m.notifCursor = 0
		}
		return m, m.waitNotifications()

	case feedUpdatedMsg:
		// Drop snapshots of a room the user already left.
		if msg.roomID == m.activeRoomID {
			m.messages = msg.messages
		}
		return m, m.waitFeed()

	case presenceMsg:
		if msg.accountID == m.opponentID {
			m.opponentOnline = msg.online
		}
		return m, nil

	case roomSelectedMsg:
		if msg.err != nil {
			m.status = "could not open conversation"
		}
		return m, nil

	case sendResultMsg:
		if msg.err != nil {
			m.status = "message not sent"
		}
		return m, nil

	case ackResultMsg:
		if msg.err != nil {
			m.status = "could not mark as read"
		}
		return m, nil

	case loggedOutMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, m.logout()
	case "ctrl+n":
		if m.focus == focusNotifications {
			m.focus = focusRooms
		} else {
			m.focus = focusNotifications
			m.notifCursor = 0
		}
		return m, nil
	case "tab":
		if m.focus == focusRooms {
			m.focus = focusInput
		} else if m.focus == focusInput {
			m.focus = focusRooms
		}
		return m, nil
	}

	switch m.focus {
	case focusNotifications:
		return m.handleNotificationKey(msg)
	case focusRooms:
		return m.handleRoomKey(msg)
	case focusInput:
		if msg.String() == "enter" {
			body := m.input.Value()
			m.input.Reset()
			return m, m.sendMessage(body)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleRoomKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.roomCursor > 0 {
			m.roomCursor--
		}
	case "down", "j":
		if m.roomCursor < len(m.rooms)-1 {
			m.roomCursor++
		}
	case "enter":
		if m.roomCursor < len(m.rooms) {
			return m.selectRoom(m.rooms[m.roomCursor])
		}
	}
	return m, nil
}

func (m Model) handleNotificationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusRooms
	case "up", "k":
		if m.notifCursor > 0 {
			m.notifCursor--
		}
	case "down", "j":
		if m.notifCursor < len(m.notifications)-1 {
			m.notifCursor++
		}
	case "enter":
		if m.notifCursor < len(m.notifications) {
			return m, m.markNotificationRead(m.notifications[m.notifCursor].ID)
		}
	case "a":
		return m, m.markAllNotificationsRead()
	}
	return m, nil
}

// selectRoom switches the chat pane. The rendered sequence clears
// immediately; messages of the new room arrive through feed snapshots only
// after the switch, so nothing from the previous room can linger.
func (m Model) selectRoom(room api.Room) (tea.Model, tea.Cmd) {
	m.activeRoomID = room.ID
	m.opponentID = room.OpponentID
	m.opponentName = room.OpponentName
	m.opponentOnline = false
	m.messages = nil
	m.focus = focusInput
	m.status = ""

	application := m.app
	ctx := m.ctx
	opponentID := room.OpponentID
	roomID := room.ID
	return m, tea.Batch(
		func() tea.Msg {
			return roomSelectedMsg{err: application.Feed.SetRoom(ctx, roomID)}
		},
		func() tea.Msg {
			online, err := application.Presence.Online(ctx, opponentID)
			if err != nil {
				// Degrade to offline; the header just shows a gray dot.
				return presenceMsg{accountID: opponentID, online: false}
			}
			return presenceMsg{accountID: opponentID, online: online}
		},
	)
}

func (m Model) sendMessage(body string) tea.Cmd {
	application := m.app
	return func() tea.Msg {
		return sendResultMsg{err: application.Feed.Send(body)}
	}
}

func (m Model) markNotificationRead(notificationID int64) tea.Cmd {
	application := m.app
	ctx := m.ctx
	return func() tea.Msg {
		return ackResultMsg{err: application.NotifySyncer.MarkRead(ctx, notificationID)}
	}
}

func (m Model) markAllNotificationsRead() tea.Cmd {
	application := m.app
	ctx := m.ctx
	return func() tea.Msg {
		return ackResultMsg{err: application.NotifySyncer.MarkAllRead(ctx)}
	}
}

func (m Model) logout() tea.Cmd {
	application := m.app
	ctx := m.ctx
	return func() tea.Msg {
		application.Logout(ctx)
		return loggedOutMsg{}
	}
}

// totalUnread sums the unread counts of the rendered room snapshot.
func (m Model) totalUnread() int {
	total := 0
	for _, room := range m.rooms {
		total += room.UnreadCount
	}
	return total
}

// hasUnreadNotifications reports whether the rendered snapshot contains any
// unread notification.
func (m Model) hasUnreadNotifications() bool {
	for _, notification := range m.notifications {
		if notification.IsRead == 0 {
			return true
		}
	}
	return false
}
