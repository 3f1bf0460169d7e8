// Package telegram pushes notification previews to users who linked a
// Telegram chat. Send-only: inbound Telegram traffic is not handled.
package telegram

import (
	"fmt"
	"log"

	"chatterbox/backend/internal/config"
	"chatterbox/backend/internal/localization"
	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier implements the hub's NotificationRelay over the Telegram Bot API.
type Notifier struct {
	BotAPI    *tgbotapi.BotAPI
	Storage   storage.Storage
	Localizer *localization.Localizer
}

// NewNotifier authenticates the bot and returns the relay.
func NewNotifier(token string, s storage.Storage, l *localization.Localizer) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("INFO: Notification relay authorized on account %s", bot.Self.UserName)

	return &Notifier{BotAPI: bot, Storage: s, Localizer: l}, nil
}

// Notify pushes the notification preview to the recipient's linked Telegram
// chat. Recipients without a link are skipped silently; send failures are
// logged and never propagate into the fan-out.
func (n *Notifier) Notify(recipientID string, notification *models.Notification) {
	user, err := n.Storage.GetUserByID(recipientID)
	if err != nil || user.TelegramChatID == 0 {
		return
	}

	senderName := "Someone"
	if sender, err := n.Storage.GetUserByID(notification.SenderID); err == nil {
		senderName = sender.Name
	}

	text := fmt.Sprintf(
		n.Localizer.GetString(localization.DefaultLang, config.NotificationRelayKey),
		senderName, notification.Content,
	)
	if _, err := n.BotAPI.Send(tgbotapi.NewMessage(user.TelegramChatID, text)); err != nil {
		log.Printf("WARNING: Failed to relay notification to user %s: %v", recipientID, err)
	}
}
