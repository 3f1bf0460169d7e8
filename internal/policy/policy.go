// Package policy holds the edit/delete authorization rules shared by the
// REST handlers and the realtime dispatcher's consistency expectations.
package policy

import (
	"errors"
	"time"

	"chatterbox/backend/internal/config"
	"chatterbox/backend/internal/models"
)

var (
	// ErrNotSender is returned when a requester who is not the original
	// sender tries to edit or delete a message.
	ErrNotSender = errors.New("only the sender may modify this message")

	// ErrEditWindowClosed is returned for edits after the window expired.
	ErrEditWindowClosed = errors.New("edit window has closed")
)

// CanEdit authorizes an edit: sender-only, within the window (inclusive).
func CanEdit(m *models.Message, requesterID string, now time.Time) error {
	if m.SenderID != requesterID {
		return ErrNotSender
	}
	if now.Sub(m.CreatedAt) > config.EditWindow {
		return ErrEditWindowClosed
	}
	return nil
}

// CanDelete authorizes a delete-toggle: sender-only, no time restriction.
// Restore goes through the same check.
func CanDelete(m *models.Message, requesterID string) error {
	if m.SenderID != requesterID {
		return ErrNotSender
	}
	return nil
}

// Editable is the display-time predicate computed fresh on every read.
func Editable(m *models.Message, requesterID string, now time.Time) bool {
	return CanEdit(m, requesterID, now) == nil
}
