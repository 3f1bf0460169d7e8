package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"chatterbox/backend/internal/api/handler"
	"chatterbox/backend/internal/chathub"
	"chatterbox/backend/internal/config"
	"chatterbox/backend/internal/localization"
	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/storage"
	"chatterbox/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.Message{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting Chatterbox Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	localizer, err := localization.NewLocalizer(cfg.LocalePath)
	if err != nil {
		log.Fatalf("Failed to load localization catalogs: %v", err)
	}

	hub := chathub.NewManagerService(s)

	if cfg.TelegramBotToken != "" {
		notifier, err := telegram.NewNotifier(cfg.TelegramBotToken, s, localizer)
		if err != nil {
			log.Fatalf("Failed to start Telegram relay: %v", err)
		}
		hub.SetNotificationRelay(notifier)
	}

	go hub.Run()

	r := gin.Default()
	h := handler.NewHandler(hub, s, localizer, []byte(cfg.JWTSecret))

	api := r.Group("/api", h.AuthRequired())
	{
		api.POST("/chat", h.AccessChat)
		api.GET("/chat", h.FetchChats)
		api.POST("/chat/group", h.CreateGroupChat)
		api.PUT("/chat/group/rename", h.RenameGroup)
		api.PUT("/chat/group/add", h.AddToGroup)
		api.PUT("/chat/group/remove", h.RemoveFromGroup)
		api.PUT("/chat/group/leave", h.LeaveGroup)

		api.POST("/message", h.SendMessage)
		api.GET("/message/:chatId", h.ListMessages)
		api.PUT("/message/:messageId", h.UpdateMessage)
		api.DELETE("/message/:messageId", h.DeleteMessage)

		api.GET("/notifications", h.GetNotifications)
		api.PUT("/notifications/read", h.MarkNotificationRead)
	}

	r.GET("/ws", h.AuthRequired(), h.ServeWebSocket)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
