package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"activity-service/internal/clients"
	"activity-service/internal/events"
	"activity-service/internal/middleware"
	"activity-service/internal/models"
	"activity-service/internal/repositories"
)

// MessageHandler manages message endpoints.
type MessageHandler struct {
	chats    repositories.ChatRepository
	messages repositories.MessageRepository
	profiles clients.ProfileProvider
	emitter  *events.Emitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(
	chats repositories.ChatRepository,
	messages repositories.MessageRepository,
	profiles clients.ProfileProvider,
	emitter *events.Emitter,
) *MessageHandler {
	return &MessageHandler{
		chats:    chats,
		messages: messages,
		profiles: profiles,
		emitter:  emitter,
	}
}

// Post handles POST /chats/:chat_id/messages.
func (h *MessageHandler) Post(c *gin.Context) {
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

	var req struct {
		Body     string  `json:"body" binding:"required"`
		MediaURL *string `json:"media_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messages.Create(c.Request.Context(), chatID, models.SenderUser, userID,
		req.Body, req.MediaURL, models.MessageText)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	h.emitter.MessageCreated(c.Request.Context(), requestIDFromContext(c), msg)
	c.JSON(http.StatusCreated, msg)
}

// List handles GET /chats/:chat_id/messages, joining sender display names
// from the profile provider. Profile failures degrade to bare messages.
func (h *MessageHandler) List(c *gin.Context) {
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

	msgs, err := h.messages.List(c.Request.Context(), chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	senderIDs := make([]int, 0, len(msgs))
	senderIDSet := map[int]struct{}{}
	for _, m := range msgs {
		if m.SenderType != models.SenderUser {
			continue
		}
		if _, ok := senderIDSet[m.SenderID]; !ok {
			senderIDSet[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	senderNames := map[int]string{}
	if profiles, err := h.profiles.BulkProfiles(c.Request.Context(), senderIDs); err == nil {
		for _, p := range profiles {
			senderNames[p.UserID] = p.Name
		}
	}

	type messageResponse struct {
		models.Message
		SenderName string `json:"sender_name,omitempty"`
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, messageResponse{Message: m, SenderName: senderNames[m.SenderID]})
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// Delete handles DELETE /chats/:chat_id/messages/:message_id. Only the sender
// may delete, and missing versus foreign is not distinguishable.
func (h *MessageHandler) Delete(c *gin.Context) {
	chatID, ok := pathID(c, "chat_id")
	if !ok {
		return
	}
	messageID, ok := pathID(c, "message_id")
	if !ok {
		return
	}
	userID := c.GetInt(middleware.UserIDKey)

	msg, err := h.messages.Get(c.Request.Context(), messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load message"})
		return
	}
	if msg.ChatID != chatID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message does not belong to chat"})
		return
	}

	if err := h.messages.Delete(c.Request.Context(), messageID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFoundOrForbidden) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
		return
	}

	c.Status(http.StatusNoContent)
}
