package handler

import (
	"errors"
	"net/http"

	"chatterbox/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type markNotificationRequest struct {
	NotificationID string `json:"notificationId" binding:"required"`
}

// GetNotifications lists the caller's notifications, newest first.
func (h *Handler) GetNotifications(c *gin.Context) {
	notifications, err := h.Storage.NotificationsForUser(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead marks a single notification as read. Independent of
// message read receipts: the two read concepts never touch each other.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	var req markNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "notificationId is required"})
		return
	}

	notification, err := h.Storage.MarkNotificationRead(req.NotificationID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Notification not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to mark notification as read"})
		return
	}
	c.JSON(http.StatusOK, notification)
}
