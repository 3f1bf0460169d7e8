package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Message is a single chat message. Content is never physically erased:
// delete flips IsDeleted and display logic substitutes a placeholder.
// ReadBy only ever grows.
type Message struct {
	ID       string `gorm:"primaryKey" json:"id"`
	SenderID string `gorm:"not null;index" json:"-"`
	ChatID   string `gorm:"not null;index" json:"-"`
	Content  string `gorm:"type:text;not null" json:"content"`

	ReadBy    pq.StringArray `gorm:"type:text[]" json:"readBy"`
	IsDeleted bool           `json:"isDeleted"`

	// Sender and Chat are populated projections for wire payloads,
	// filled by the storage layer.
	Sender Profile `gorm:"-" json:"sender"`
	Chat   *Chat   `gorm:"-" json:"chat,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// ReadByUser reports whether the user already appears in ReadBy.
func (m *Message) ReadByUser(userID string) bool {
	return lo.Contains(m.ReadBy, userID)
}

// DisplayContent returns the content to show clients: the placeholder when
// the message is soft-deleted, the stored content otherwise.
func (m *Message) DisplayContent(placeholder string) string {
	if m.IsDeleted {
		return placeholder
	}
	return m.Content
}

// MessageView is the REST representation of a message: deleted content is
// already substituted and the edit predicate is computed fresh per request.
type MessageView struct {
	Message
	Content string `json:"content"`
	CanEdit bool   `json:"canEdit"`
}

// View builds the display representation of the message.
func (m *Message) View(placeholder string, canEdit bool) MessageView {
	return MessageView{
		Message: *m,
		Content: m.DisplayContent(placeholder),
		CanEdit: canEdit,
	}
}
