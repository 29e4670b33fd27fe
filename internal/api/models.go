package api

import "time"

// Notification is a server-generated event record shown to the account.
// isRead uses 0/1 to match the platform wire format.
type Notification struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	IsRead    int       `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message envelope types carried over the chat channel.
const (
	MessageTypeTalk = "TALK"
	MessageTypeFile = "FILE"
)

// Message is the envelope exchanged over the per-room chat channel. Send and
// receive use the same shape; for FILE messages the body carries the uploaded
// file reference returned by the upload endpoint.
type Message struct {
	ChatRoomID string `json:"chatRoomId"`
	SenderID   int64  `json:"senderId"`
	SenderName string `json:"senderName"`
	SenderType int    `json:"senderType"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	IsRead     int    `json:"isRead"`
}

// Room is one conversation the account participates in. UnreadCount is a
// server-derived aggregate over the room's messages.
type Room struct {
	ID           string `json:"id"`
	OpponentID   int64  `json:"opponentId"`
	OpponentName string `json:"opponentName"`
	LastMessage  string `json:"lastMessage"`
	UnreadCount  int    `json:"unreadCount"`
}

// ApplicantStats is the per-posting applicant breakdown for the business
// dashboard. The zero value is the degraded "nothing loaded" shape.
type ApplicantStats struct {
	TotalApplicants    int `json:"totalApplicants"`
	DocumentReviewing  int `json:"documentReviewing"`
	DocumentPassed     int `json:"documentPassed"`
	DocumentFailed     int `json:"documentFailed"`
	InterviewCompleted int `json:"interviewCompleted"`
}

// envelope is the `{"data": ...}` wrapper every platform endpoint responds with.
type envelope[T any] struct {
	Data T `json:"data"`
}

type loginResult struct {
	AccessToken string `json:"accessToken"`
}
