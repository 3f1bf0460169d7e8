package storage

import (
	"log"

	"chatterbox/backend/internal/models"
)

// CreateNotification persists one notification record. Called once per
// recipient during message fan-out.
func (s *Service) CreateNotification(n *models.Notification) error {
	if err := s.DB.Create(n).Error; err != nil {
		log.Printf("ERROR: Failed to save notification for user %s: %v", n.UserID, err)
		return err
	}
	return nil
}

// NotificationsForUser returns the user's notifications newest first, with
// sender and chat populated.
func (s *Service) NotificationsForUser(userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&notifications).Error
	if err != nil {
		log.Printf("ERROR: Failed to list notifications for user %s: %v", userID, err)
		return nil, err
	}

	for i := range notifications {
		n := &notifications[i]
		if sender, err := s.GetUserByID(n.SenderID); err == nil {
			n.Sender = sender.Profile()
		}
		if chat, err := s.GetChatByID(n.ChatID); err == nil {
			n.Chat = chat
		}
	}
	return notifications, nil
}

// MarkNotificationRead flips IsRead to true. The transition is one-way:
// there is no unread operation.
func (s *Service) MarkNotificationRead(id string) (*models.Notification, error) {
	if err := s.update(&models.Notification{}, id, map[string]interface{}{"is_read": true}); err != nil {
		return nil, err
	}

	var n models.Notification
	if err := s.DB.First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}
