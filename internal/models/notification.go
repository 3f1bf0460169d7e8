package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PreviewLength caps the notification content preview; longer message bodies
// are truncated with an ellipsis.
const PreviewLength = 50

// Notification is one per (recipient, message) pair, created at send time for
// every chat member except the sender. IsRead is one-way false -> true.
type Notification struct {
	ID        string `gorm:"primaryKey" json:"id"`
	UserID    string `gorm:"not null;index" json:"user"`
	SenderID  string `gorm:"not null" json:"-"`
	ChatID    string `gorm:"not null" json:"-"`
	MessageID string `json:"message"`
	Content   string `json:"content"`
	IsRead    bool   `json:"isRead"`

	Sender Profile `gorm:"-" json:"sender"`
	Chat   *Chat   `gorm:"-" json:"chat,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}

// NewNotification builds the notification record for one recipient of a
// freshly sent message.
func NewNotification(recipientID string, msg *Message) *Notification {
	return &Notification{
		UserID:    recipientID,
		SenderID:  msg.Sender.ID,
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Content:   Preview(msg.Content),
	}
}

// Preview truncates content to PreviewLength runes plus an ellipsis. Content
// of exactly PreviewLength passes through untouched.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLength {
		return content
	}
	return string(runes[:PreviewLength]) + "..."
}
