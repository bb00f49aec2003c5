package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"activity-service/internal/middleware"
	"activity-service/internal/repositories"
	"activity-service/internal/unread"
)

// UnreadHandler serves unread counts and read cursors.
type UnreadHandler struct {
	engine *unread.Engine
	chats  repositories.ChatRepository
}

// NewUnreadHandler builds an UnreadHandler.
func NewUnreadHandler(engine *unread.Engine, chats repositories.ChatRepository) *UnreadHandler {
	return &UnreadHandler{engine: engine, chats: chats}
}

// ChatUnread handles GET /chats/:chat_id/unread.
func (h *UnreadHandler) ChatUnread(c *gin.Context) {
	chatID, ok := pathID(c, "chat_id")
	if !ok {
		return
	}
	userID := c.GetInt(middleware.UserIDKey)

	member, err := h.chats.IsParticipant(c.Request.Context(), chatID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a chat participant"})
		return
	}

	count, err := h.engine.UnreadCount(c.Request.Context(), userID, chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute unread count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chat_id": chatID, "unread": count})
}

// TotalUnread handles GET /me/unread-total.
func (h *UnreadHandler) TotalUnread(c *gin.Context) {
	userID := c.GetInt(middleware.UserIDKey)

	total, err := h.engine.TotalUnread(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute unread total"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_total": total})
}

// MarkRead handles POST /chats/:chat_id/read.
func (h *UnreadHandler) MarkRead(c *gin.Context) {
	chatID, ok := pathID(c, "chat_id")
	if !ok {
		return
	}
	userID := c.GetInt(middleware.UserIDKey)

	if err := h.engine.MarkAsRead(c.Request.Context(), userID, chatID); err != nil {
		if errors.Is(err, unread.ErrNotParticipant) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a chat participant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark as read"})
		return
	}

	c.Status(http.StatusNoContent)
}
