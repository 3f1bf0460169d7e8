package handler

import (
	"errors"
	"net/http"
	"time"

	"chatterbox/backend/internal/config"
	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/policy"
	"chatterbox/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
	ChatID  string `json:"chatId" binding:"required"`
}

type updateMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage creates a message over REST. This path deliberately does not
// push to sockets: after a successful create the client re-emits the
// populated message as a message-sent event, and only that event drives
// fan-out and notifications.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Content and ChatId are required"})
		return
	}
	userID := currentUserID(c)

	chat, err := h.Storage.GetChatByID(req.ChatID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to send message"})
		return
	}
	if !chat.HasMember(userID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "You are not a member of this chat"})
		return
	}

	msg := &models.Message{
		SenderID: userID,
		ChatID:   req.ChatID,
		Content:  req.Content,
	}
	if err := h.Storage.CreateMessage(msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to send message"})
		return
	}

	if err := h.Storage.SetLatestMessage(req.ChatID, msg.ID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to send message"})
		return
	}

	placeholder := h.Localizer.GetString(lang(c.GetHeader("Accept-Language")), config.DeletedPlaceholderKey)
	c.JSON(http.StatusCreated, gin.H{
		"message": msg.View(placeholder, true),
		"msg":     "Message Sent Successfully",
	})
}

// ListMessages returns a chat's messages for display: deleted content is
// substituted with the localized placeholder and canEdit is computed fresh
// for the caller on every request.
func (h *Handler) ListMessages(c *gin.Context) {
	userID := currentUserID(c)
	now := time.Now()

	messages, err := h.Storage.MessagesForChat(c.Param("chatId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to fetch messages"})
		return
	}

	placeholder := h.Localizer.GetString(lang(c.GetHeader("Accept-Language")), config.DeletedPlaceholderKey)
	views := make([]models.MessageView, 0, len(messages))
	for i := range messages {
		views = append(views, messages[i].View(placeholder, policy.Editable(&messages[i], userID, now)))
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": views,
		"message":  "Messages Fetched Successfully",
	})
}

// UpdateMessage edits a message's content, subject to the sender-only
// fifteen-minute window.
func (h *Handler) UpdateMessage(c *gin.Context) {
	var req updateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Content is required"})
		return
	}

	msg, err := h.Storage.GetMessageByID(c.Param("messageId"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to update message"})
		return
	}

	if err := policy.CanEdit(msg, currentUserID(c), time.Now()); err != nil {
		if errors.Is(err, policy.ErrEditWindowClosed) {
			c.JSON(http.StatusForbidden, gin.H{"message": "You cannot edit this message after 15 minutes"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden: You can only edit your own messages"})
		return
	}

	if err := h.Storage.UpdateMessageContent(msg.ID, req.Content); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to update message"})
		return
	}
	msg.Content = req.Content

	c.JSON(http.StatusOK, gin.H{"message": msg, "msg": "Message Updated Successfully"})
}

// DeleteMessage toggles the soft-delete flag: deleting a deleted message
// restores it. Sender-only, no time window.
func (h *Handler) DeleteMessage(c *gin.Context) {
	msg, err := h.Storage.GetMessageByID(c.Param("messageId"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to delete message"})
		return
	}

	if err := policy.CanDelete(msg, currentUserID(c)); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden: You can only delete your own messages"})
		return
	}

	if err := h.Storage.SetMessageDeleted(msg.ID, !msg.IsDeleted); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to delete message"})
		return
	}

	result := "Message Deleted Successfully"
	if msg.IsDeleted {
		result = "Message Restored Successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": result})
}
