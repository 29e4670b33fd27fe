package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/worklane/worklane-client/internal/api"
	"github.com/worklane/worklane-client/internal/chat"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("25")).Padding(0, 1)
	badgeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("160")).Padding(0, 1)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	unreadStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	ownMsgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	onlineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("41"))
	offlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	roomPaneWidth = 28
)

// View renders the full screen.
func (m Model) View() string {
	if m.quitting {
		return "Signing out...\n"
	}

	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteString("\n\n")

	if m.focus == focusNotifications {
		b.WriteString(m.notificationOverlay())
	} else {
		left := m.roomPane()
		right := m.chatPane()
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
		b.WriteString("\n")
		b.WriteString(m.input.View())
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("tab focus · enter select/send · ctrl+n notifications · ctrl+c sign out"))
	b.WriteString("\n")
	return b.String()
}

// headerLine renders the title, chat unread badge, and notification dot.
func (m Model) headerLine() string {
	parts := []string{headerStyle.Render("Worklane · " + m.selfName)}

	if label := chat.BadgeLabel(m.totalUnread()); label != "" {
		parts = append(parts, badgeStyle.Render("chat "+label))
	}
	if m.hasUnreadNotifications() {
		parts = append(parts, unreadStyle.Render("● new notifications"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(parts, " "))
}

func (m Model) roomPane() string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("Conversations"))
	b.WriteString("\n")

	if len(m.rooms) == 0 {
		b.WriteString(dimStyle.Render("(none yet)"))
		return lipgloss.NewStyle().Width(roomPaneWidth).Render(b.String())
	}

	for index, room := range m.rooms {
		prefix := "  "
		if index == m.roomCursor && m.focus == focusRooms {
			prefix = cursorStyle.Render("> ")
		}
		line := prefix + room.OpponentName
		if room.UnreadCount > 0 {
			line += " " + unreadStyle.Render(fmt.Sprintf("(%d)", room.UnreadCount))
		}
		b.WriteString(line)
		b.WriteString("\n")
		if room.LastMessage != "" {
			b.WriteString(dimStyle.Render("    " + truncate(room.LastMessage, roomPaneWidth-4)))
			b.WriteString("\n")
		}
	}
	return lipgloss.NewStyle().Width(roomPaneWidth).Render(b.String())
}

func (m Model) chatPane() string {
	if m.activeRoomID == "" {
		return dimStyle.Render("Select a conversation")
	}

	var b strings.Builder
	presence := offlineStyle.Render("○ offline")
	if m.opponentOnline {
		presence = onlineStyle.Render("● online")
	}
	b.WriteString(fmt.Sprintf("%s  %s\n\n", m.opponentName, presence))

	for _, message := range m.messages {
		b.WriteString(m.messageLine(message))
		b.WriteString("\n")
	}
	return b.String()
}

// messageLine renders one envelope. FILE bodies carry an upload reference
// which is resolved to an absolute link for display.
func (m Model) messageLine(message api.Message) string {
	body := message.Message
	if message.Type == api.MessageTypeFile {
		body = "[file] " + m.app.API.FileURL(message.Message)
	}

	if message.SenderID == m.selfID {
		receipt := dimStyle.Render("sent")
		if message.IsRead == 1 {
			receipt = dimStyle.Render("read")
		}
		return ownMsgStyle.Render("you: "+body) + " " + receipt
	}
	return message.SenderName + ": " + body
}

func (m Model) notificationOverlay() string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("Notifications · enter mark read · a mark all · esc close"))
	b.WriteString("\n\n")

	if len(m.notifications) == 0 {
		b.WriteString(dimStyle.Render("No new notifications."))
		b.WriteString("\n")
		return b.String()
	}

	for index, notification := range m.notifications {
		prefix := "  "
		if index == m.notifCursor {
			prefix = cursorStyle.Render("> ")
		}
		marker := "  "
		if notification.IsRead == 0 {
			marker = unreadStyle.Render("● ")
		}
		b.WriteString(prefix + marker + notification.Message)
		b.WriteString(dimStyle.Render("  " + notification.CreatedAt.Format("Jan 2 15:04")))
		b.WriteString("\n")
	}
	return b.String()
}

// truncate shortens previews by rune count so multi-byte text is never split
// mid-character.
func truncate(text string, limit int) string {
	if limit <= 3 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
