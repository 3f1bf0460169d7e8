package handler

import (
	"errors"
	"net/http"

	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

type accessChatRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type createGroupRequest struct {
	Name  string   `json:"name" binding:"required"`
	Users []string `json:"users" binding:"required,min=2"`
}

type renameGroupRequest struct {
	ChatID   string `json:"chatId" binding:"required"`
	ChatName string `json:"chatName" binding:"required"`
}

type groupMemberRequest struct {
	ChatID string `json:"chatId" binding:"required"`
	UserID string `json:"userId" binding:"required"`
}

type leaveGroupRequest struct {
	ChatID string `json:"chatId" binding:"required"`
}

// AccessChat returns the one-on-one chat with the given user, creating it on
// first access. Idempotent on the unordered pair: the same two users always
// resolve to the same chat.
func (h *Handler) AccessChat(c *gin.Context) {
	var req accessChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User id param not sent with request"})
		return
	}

	chat, created, err := h.Storage.AccessOneToOneChat(currentUserID(c), req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to access chat"})
		return
	}

	result := "Chat already exists"
	if created {
		result = "Chat created successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": result, "chat": chat})
}

// FetchChats lists the caller's chats, most recently active first.
func (h *Handler) FetchChats(c *gin.Context) {
	chats, err := h.Storage.ChatsForUser(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to fetch chats"})
		return
	}
	c.JSON(http.StatusOK, chats)
}

// CreateGroupChat creates a group with the caller as admin and member.
func (h *Handler) CreateGroupChat(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please Fill all the fields"})
		return
	}
	userID := currentUserID(c)

	chat := &models.Chat{
		Name:    req.Name,
		UserIDs: pq.StringArray(append(req.Users, userID)),
		AdminID: userID,
	}
	if err := h.Storage.CreateGroupChat(chat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to create group chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Group Chat Created Successfully",
		"groupChat": chat,
	})
}

// RenameGroup renames a group chat. Admin only.
func (h *Handler) RenameGroup(c *gin.Context) {
	var req renameGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide chatId and chatName"})
		return
	}

	chat, _ := h.loadGroup(c, req.ChatID)
	if chat == nil {
		return
	}
	if chat.AdminID != currentUserID(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	updated, err := h.Storage.RenameChat(req.ChatID, req.ChatName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to rename group"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Group Renamed Successfully", "groupChat": updated})
}

// AddToGroup adds a member to a group chat. Admin only. Notifications for
// messages already sent are unaffected by membership changes.
func (h *Handler) AddToGroup(c *gin.Context) {
	var req groupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide chatId and userId"})
		return
	}

	chat, _ := h.loadGroup(c, req.ChatID)
	if chat == nil {
		return
	}
	if chat.AdminID != currentUserID(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if _, err := h.Storage.GetUserByID(req.UserID); errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User Not Found"})
		return
	} else if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to add user to group"})
		return
	}

	updated, err := h.Storage.AddChatMember(req.ChatID, req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to add user to group"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User Added to Group Successfully", "groupChat": updated})
}

// RemoveFromGroup removes a member. Allowed for the admin, or for a member
// removing themselves.
func (h *Handler) RemoveFromGroup(c *gin.Context) {
	var req groupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide chatId and userId"})
		return
	}
	userID := currentUserID(c)

	chat, _ := h.loadGroup(c, req.ChatID)
	if chat == nil {
		return
	}
	if chat.AdminID != userID && req.UserID != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	updated, err := h.Storage.RemoveChatMember(req.ChatID, req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to remove user from group"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User Removed from Group Successfully", "groupChat": updated})
}

// LeaveGroup removes the caller from the group.
func (h *Handler) LeaveGroup(c *gin.Context) {
	var req leaveGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide chatId"})
		return
	}

	chat, _ := h.loadGroup(c, req.ChatID)
	if chat == nil {
		return
	}

	updated, err := h.Storage.RemoveChatMember(req.ChatID, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to leave chat"})
		return
	}

	if len(updated.UserIDs) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "You left the chat", "groupChat": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You left the chat", "groupChat": updated})
}

// loadGroup fetches a chat and writes the error response itself when the
// chat does not resolve.
func (h *Handler) loadGroup(c *gin.Context, chatID string) (*models.Chat, error) {
	chat, err := h.Storage.GetChatByID(chatID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Chat Not Found"})
		return nil, err
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to load chat"})
		return nil, err
	}
	return chat, nil
}
