package storage

import (
	"errors"
	"log"

	"chatterbox/backend/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// CreateMessage persists a new message in the active state with an empty
// read set, then populates sender and chat for the caller.
func (s *Service) CreateMessage(msg *models.Message) error {
	if msg.ReadBy == nil {
		msg.ReadBy = pq.StringArray{}
	}
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for chat %s: %v", msg.ChatID, err)
		return err
	}
	return s.populateMessage(msg)
}

// GetMessageByID loads a message without populated references.
func (s *Service) GetMessageByID(id string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.First(&msg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MessagesForChat returns the chat's messages oldest first, with sender and
// chat populated for display.
func (s *Service) MessagesForChat(chatID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.Where("chat_id = ?", chatID).Order("created_at asc").Find(&messages).Error
	if err != nil {
		log.Printf("ERROR: Failed to get messages for chat %s: %v", chatID, err)
		return nil, err
	}

	for i := range messages {
		if err := s.populateMessage(&messages[i]); err != nil {
			return nil, err
		}
	}
	return messages, nil
}

// UpdateMessageContent replaces the content. CreatedAt is untouched, so the
// edit window never resets.
func (s *Service) UpdateMessageContent(id, content string) error {
	return s.update(&models.Message{}, id, map[string]interface{}{"content": content})
}

// SetMessageDeleted flips the soft-delete flag. Content and the read set are
// left as they are.
func (s *Service) SetMessageDeleted(id string, deleted bool) error {
	return s.update(&models.Message{}, id, map[string]interface{}{"is_deleted": deleted})
}

// UnreadMessages returns the chat's messages whose read set does not yet
// contain the user.
func (s *Service) UnreadMessages(chatID, userID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.
		Where("chat_id = ?", chatID).
		Where("NOT (COALESCE(read_by, '{}') @> ARRAY[?]::text[])", userID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		log.Printf("ERROR: Failed to get unread messages for chat %s: %v", chatID, err)
		return nil, err
	}
	return messages, nil
}

// MarkMessageRead appends the user to the message's read set. The guard
// makes the append atomic and idempotent: a second call for the same user
// matches no row and is a no-op.
func (s *Service) MarkMessageRead(messageID, userID string) error {
	return s.DB.Model(&models.Message{}).
		Where("id = ?", messageID).
		Where("NOT (COALESCE(read_by, '{}') @> ARRAY[?]::text[])", userID).
		Update("read_by", gorm.Expr("array_append(COALESCE(read_by, '{}'), ?)", userID)).Error
}

func (s *Service) populateMessage(msg *models.Message) error {
	sender, err := s.GetUserByID(msg.SenderID)
	if err != nil {
		return err
	}
	msg.Sender = sender.Profile()

	chat, err := s.GetChatByID(msg.ChatID)
	if err != nil {
		return err
	}
	msg.Chat = chat
	return nil
}
