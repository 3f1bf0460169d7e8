package storage

import (
	"errors"
	"log"

	"chatterbox/backend/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GetChatByID loads a chat with its member profiles populated.
func (s *Service) GetChatByID(id string) (*models.Chat, error) {
	var chat models.Chat
	err := s.DB.First(&chat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get chat %s: %v", id, err)
		return nil, err
	}

	if err := s.populateChat(&chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// AccessOneToOneChat returns the one-on-one chat between two users, creating
// it on first access. At most one such chat exists per unordered pair; the
// boolean reports whether a new chat was created. The containment query
// narrows the candidates and Chat.IsPairChat decides the match.
func (s *Service) AccessOneToOneChat(userA, userB string) (*models.Chat, bool, error) {
	var candidates []models.Chat
	err := s.DB.
		Where("is_group_chat = ?", false).
		Where("user_ids @> ARRAY[?,?]::text[]", userA, userB).
		Find(&candidates).Error
	if err != nil {
		log.Printf("ERROR: Failed to look up 1:1 chat for %s/%s: %v", userA, userB, err)
		return nil, false, err
	}

	for i := range candidates {
		if !candidates[i].IsPairChat(userA, userB) {
			continue
		}
		if err := s.populateChat(&candidates[i]); err != nil {
			return nil, false, err
		}
		return &candidates[i], false, nil
	}

	chat := models.Chat{
		IsGroupChat: false,
		UserIDs:     pq.StringArray{userA, userB},
	}
	if err := s.DB.Create(&chat).Error; err != nil {
		return nil, false, err
	}
	if err := s.populateChat(&chat); err != nil {
		return nil, false, err
	}
	return &chat, true, nil
}

// CreateGroupChat persists a group chat and populates its member profiles.
func (s *Service) CreateGroupChat(chat *models.Chat) error {
	chat.IsGroupChat = true
	if err := s.DB.Create(chat).Error; err != nil {
		log.Printf("ERROR: Failed to create group chat %q: %v", chat.Name, err)
		return err
	}
	return s.populateChat(chat)
}

// ChatsForUser returns every chat the user belongs to, most recently
// active first.
func (s *Service) ChatsForUser(userID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.DB.
		Where("user_ids @> ARRAY[?]::text[]", userID).
		Order("updated_at desc").
		Find(&chats).Error
	if err != nil {
		log.Printf("ERROR: Failed to list chats for user %s: %v", userID, err)
		return nil, err
	}

	for i := range chats {
		if err := s.populateChat(&chats[i]); err != nil {
			return nil, err
		}
	}
	return chats, nil
}

// RenameChat updates a group chat's name.
func (s *Service) RenameChat(chatID, name string) (*models.Chat, error) {
	if err := s.update(&models.Chat{}, chatID, map[string]interface{}{"name": name}); err != nil {
		return nil, err
	}
	return s.GetChatByID(chatID)
}

// AddChatMember appends a user to the member list. Adding an existing member
// is a no-op.
func (s *Service) AddChatMember(chatID, userID string) (*models.Chat, error) {
	res := s.DB.Model(&models.Chat{}).
		Where("id = ?", chatID).
		Where("NOT (user_ids @> ARRAY[?]::text[])", userID).
		Update("user_ids", gorm.Expr("array_append(user_ids, ?)", userID))
	if res.Error != nil {
		log.Printf("ERROR: Failed to add user %s to chat %s: %v", userID, chatID, res.Error)
		return nil, res.Error
	}
	return s.GetChatByID(chatID)
}

// RemoveChatMember removes a user from the member list.
func (s *Service) RemoveChatMember(chatID, userID string) (*models.Chat, error) {
	res := s.DB.Model(&models.Chat{}).
		Where("id = ?", chatID).
		Update("user_ids", gorm.Expr("array_remove(user_ids, ?)", userID))
	if res.Error != nil {
		log.Printf("ERROR: Failed to remove user %s from chat %s: %v", userID, chatID, res.Error)
		return nil, res.Error
	}
	return s.GetChatByID(chatID)
}

// SetLatestMessage refreshes the chat's denormalized latest-message
// back-reference. Called on every send.
func (s *Service) SetLatestMessage(chatID, messageID string) error {
	return s.update(&models.Chat{}, chatID, map[string]interface{}{"latest_message_id": messageID})
}

// update applies a column update by primary key, mapping a missing row to
// ErrNotFound.
func (s *Service) update(model interface{}, id string, values map[string]interface{}) error {
	res := s.DB.Model(model).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) populateChat(chat *models.Chat) error {
	profiles, err := s.profilesFor(chat.UserIDs)
	if err != nil {
		return err
	}
	chat.Users = profiles
	return nil
}
