package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EditWindow is how long a sender may edit a message after creation.
	// The boundary is inclusive: an edit at exactly 15 minutes succeeds.
	EditWindow = 15 * time.Minute

	// DeletedPlaceholderKey is the localization key substituted for the
	// content of soft-deleted messages.
	DeletedPlaceholderKey = "message_deleted"

	// NotificationRelayKey formats the Telegram push text.
	NotificationRelayKey = "notification_relay"
)

// Config holds runtime settings, loaded from CHAT_* environment variables.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"host=localhost user=user password=password dbname=chatterboxdb port=5432 sslmode=disable"`
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB     int    `envconfig:"REDIS_DB" default:"0"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`

	// TelegramBotToken enables the notification push relay when set.
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`

	// LocalePath is the directory of JSON translation catalogs.
	LocalePath string `envconfig:"LOCALE_PATH" default:"internal/localization"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("chat", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
