package storage

import (
	"context"
	"encoding/json"
	"errors"

	"chatterbox/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a user, chat, message or notification id does
// not resolve. Callers branch on it with errors.Is.
var ErrNotFound = errors.New("record not found")

// EventsChannel is the redis pub/sub channel carrying room events between
// server instances.
const EventsChannel = "chat:events"

// Storage is the persistence surface consumed by the hub and the handlers.
type Storage interface {
	GetUserByID(id string) (*models.User, error)
	SaveUser(user *models.User) error

	GetChatByID(id string) (*models.Chat, error)
	AccessOneToOneChat(userA, userB string) (*models.Chat, bool, error)
	CreateGroupChat(chat *models.Chat) error
	ChatsForUser(userID string) ([]models.Chat, error)
	RenameChat(chatID, name string) (*models.Chat, error)
	AddChatMember(chatID, userID string) (*models.Chat, error)
	RemoveChatMember(chatID, userID string) (*models.Chat, error)
	SetLatestMessage(chatID, messageID string) error

	CreateMessage(msg *models.Message) error
	GetMessageByID(id string) (*models.Message, error)
	MessagesForChat(chatID string) ([]models.Message, error)
	UpdateMessageContent(id, content string) error
	SetMessageDeleted(id string, deleted bool) error
	UnreadMessages(chatID, userID string) ([]models.Message, error)
	MarkMessageRead(messageID, userID string) error

	CreateNotification(n *models.Notification) error
	NotificationsForUser(userID string) ([]models.Notification, error)
	MarkNotificationRead(id string) (*models.Notification, error)

	PublishEvent(evt models.RoomEvent) error
	SubscribeEvents() *redis.PubSub
}

// Service implements Storage over PostgreSQL (gorm) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// GetUserByID loads a user's record by id.
func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveUser upserts a user row.
func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

// PublishEvent publishes a room event on the shared redis channel. Every
// emission round-trips through redis so all instances deliver identically.
func (s *Service) PublishEvent(evt models.RoomEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, EventsChannel, payload).Err()
}

// SubscribeEvents subscribes to the shared room-event channel. Returns nil
// when the service has no redis connection (e.g. the admin CLI).
func (s *Service) SubscribeEvents() *redis.PubSub {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Subscribe(s.Ctx, EventsChannel)
}

// profilesFor loads the public profiles for the given user ids, preserving
// the input order (insertion order defines display order).
func (s *Service) profilesFor(userIDs []string) ([]models.Profile, error) {
	if len(userIDs) == 0 {
		return []models.Profile{}, nil
	}

	var users []models.User
	if err := s.DB.Where("id IN ?", []string(userIDs)).Find(&users).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	profiles := make([]models.Profile, 0, len(userIDs))
	for _, id := range userIDs {
		if u, ok := byID[id]; ok {
			profiles = append(profiles, u.Profile())
		}
	}
	return profiles, nil
}
