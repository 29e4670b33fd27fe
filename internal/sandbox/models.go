package sandbox

import "time"

// Account is a platform login, either a business or a personal job seeker.
type Account struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string    `gorm:"column:email;uniqueIndex;size:190;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Name         string    `gorm:"column:name;size:190;not null"`
	AccountType  int       `gorm:"column:account_type;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (Account) TableName() string { return "accounts" }

// ChatRoom is a conversation between one business and one personal account.
type ChatRoom struct {
	ID         string    `gorm:"column:id;primaryKey;size:64"`
	BusinessID int64     `gorm:"column:business_id;index;not null"`
	PersonalID int64     `gorm:"column:personal_id;index;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (ChatRoom) TableName() string { return "chat_rooms" }

// ChatMessage is one persisted envelope. Body carries the text for TALK
// messages and the uploaded file reference for FILE messages.
type ChatMessage struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ChatRoomID string    `gorm:"column:chat_room_id;index;size:64;not null"`
	SenderID   int64     `gorm:"column:sender_id;not null"`
	SenderName string    `gorm:"column:sender_name;size:190"`
	SenderType int       `gorm:"column:sender_type;not null"`
	Body       string    `gorm:"column:body;not null"`
	Type       string    `gorm:"column:type;size:8;not null"`
	IsRead     int       `gorm:"column:is_read;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// Notification is a server-generated event record for one account.
type Notification struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	AccountID int64     `gorm:"column:account_id;index;not null"`
	Message   string    `gorm:"column:message;not null"`
	IsRead    int       `gorm:"column:is_read;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Notification) TableName() string { return "notifications" }

// Applicant statuses backing the dashboard stats endpoint.
const (
	ApplicantStatusReviewing   = "reviewing"
	ApplicantStatusPassed      = "passed"
	ApplicantStatusFailed      = "failed"
	ApplicantStatusInterviewed = "interviewed"
)

// Applicant is one application to a job posting.
type Applicant struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	JobPostingID int64     `gorm:"column:job_posting_id;index;not null"`
	Name         string    `gorm:"column:name;size:190"`
	Status       string    `gorm:"column:status;size:32;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (Applicant) TableName() string { return "applicants" }
