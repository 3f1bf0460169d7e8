package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a chat participant. Credentials live in the external auth
// service; this record only carries profile fields referenced by chats,
// messages and notifications.
type User struct {
	ID     string `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"not null" json:"name"`
	Email  string `gorm:"uniqueIndex" json:"email"`
	Avatar string `json:"avatar"`

	// TelegramChatID links the user to a Telegram chat for the optional
	// notification relay. Never serialized to clients.
	TelegramChatID int64 `gorm:"index" json:"-"`
}

// BeforeCreate is a GORM hook that assigns a UUID when the ID is unset.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// Profile is the public projection of a user carried in realtime event
// payloads and populated message/chat responses.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Email  string `json:"email"`
}

// Profile returns the user's public projection.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Avatar: u.Avatar, Email: u.Email}
}
