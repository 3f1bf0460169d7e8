package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "seed":
		// Creates a demo user: admin seed <name> <email>
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin seed <name> <email>")
			os.Exit(1)
		}
		user := &models.User{Name: os.Args[2], Email: os.Args[3]}
		if err := storageSvc.SaveUser(user); err != nil {
			log.Fatalf("failed to seed user: %v", err)
		}
		fmt.Printf("Created user %s (%s)\n", user.ID, user.Email)

	case "link-telegram":
		// Links a user to a Telegram chat for the notification relay.
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin link-telegram <user_id> <telegram_chat_id>")
			os.Exit(1)
		}
		chatID, err := strconv.ParseInt(os.Args[3], 10, 64)
		if err != nil {
			fmt.Println("Invalid telegram chat id. Please provide an integer.")
			os.Exit(1)
		}
		user, err := storageSvc.GetUserByID(os.Args[2])
		if err != nil {
			log.Fatalf("failed to load user: %v", err)
		}
		user.TelegramChatID = chatID
		if err := storageSvc.SaveUser(user); err != nil {
			log.Fatalf("failed to link telegram chat: %v", err)
		}
		fmt.Printf("Linked user %s to telegram chat %d\n", user.ID, chatID)

	case "prune-notifications":
		// Deletes read notifications older than the given number of days.
		days := 30
		if len(os.Args) > 2 {
			days, err = strconv.Atoi(os.Args[2])
			if err != nil {
				fmt.Println("Invalid number of days. Please provide an integer.")
				os.Exit(1)
			}
		}
		cutoff := time.Now().AddDate(0, 0, -days)
		res := db.Where("is_read = ? AND created_at < ?", true, cutoff).Delete(&models.Notification{})
		if res.Error != nil {
			log.Fatalf("failed to prune notifications: %v", res.Error)
		}
		fmt.Printf("Pruned %d read notifications older than %d days\n", res.RowsAffected, days)

	default:
		fmt.Printf("Unknown command %q\n", os.Args[1])
		os.Exit(1)
	}
}
