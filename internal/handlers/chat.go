package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"activity-service/internal/clients"
	"activity-service/internal/middleware"
	"activity-service/internal/models"
	"activity-service/internal/repositories"
	"activity-service/internal/social"
)

// ChatHandler manages join/leave/RSVP orchestration and direct chats.
type ChatHandler struct {
	activities repositories.ActivityRepository
	chats      repositories.ChatRepository
	profiles   clients.ProfileProvider
	gate       *social.Gate
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(
	activities repositories.ActivityRepository,
	chats repositories.ChatRepository,
	profiles clients.ProfileProvider,
	gate *social.Gate,
) *ChatHandler {
	return &ChatHandler{
		activities: activities,
		chats:      chats,
		profiles:   profiles,
		gate:       gate,
	}
}

// Join handles POST /activities/:activity_id/join. Idempotent: a repeat join
// reports already_joined rather than failing.
func (h *ChatHandler) Join(c *gin.Context) {
	activityID, ok := pathID(c, "activity_id")
	if !ok {
		return
	}
	userID := c.GetInt(middleware.UserIDKey)

	var req struct {
		RsvpStatus string `json:"rsvp_status"`
	}
	// An empty body is fine; the RSVP then defaults to maybe.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RsvpStatus == "" {
		req.RsvpStatus = models.RsvpMaybe
	}
	if !models.ValidRsvp(req.RsvpStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rsvp_status"})
		return
	}

	activity, err := h.activities.Get(c.Request.Context(), activityID)
	if err != nil {
		if errors.Is(err, repositories.ErrActivityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load activity"})
		return
	}

	if activity.Expired(time.Now().UTC()) {
		c.JSON(http.StatusGone, gin.H{"error": "activity expired"})
		return
	}

	if activity.FemaleOnly {
		profile, err := h.profiles.Profile(c.Request.Context(), userID)
		if err != nil {
			// The gate is a hard business rule; without gender it fails closed.
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not verify eligibility"})
			return
		}
		if profile.Gender == "Male" || profile.Gender == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "activity is female-only"})
			return
		}
	}

	result, err := h.chats.JoinActivity(c.Request.Context(), activity, userID, req.RsvpStatus)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not join activity"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// StartDirect handles POST /chats/direct: resolve-or-create the chat for an
// unordered user pair.
func (h *ChatHandler) StartDirect(c *gin.Context) {
	userID := c.GetInt(middleware.UserIDKey)

	var req struct {
		FriendID int `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.FriendID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		return
	}

	if h.gate.Blocked(c.Request.Context(), userID, req.FriendID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot start chat"})
		return
	}
	friends, err := h.gate.Friends(c.Request.Context(), userID, req.FriendID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to validate friendship"})
		return
	}
	if !friends {
		c.JSON(http.StatusForbidden, gin.H{"error": "users are not friends"})
		return
	}

	chat, err := h.chats.ResolveOrCreateDirectChat(c.Request.Context(), userID, req.FriendID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chat_id": chat.ID})
}

// JoinTrip handles POST /chats/trip: resolve-or-create the shared chat for a
// trip/location key and enroll the caller.
func (h *ChatHandler) JoinTrip(c *gin.Context) {
	userID := c.GetInt(middleware.UserIDKey)

	var req struct {
		TripKey string `json:"trip_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chat, err := h.chats.ResolveOrCreateTripChat(c.Request.Context(), req.TripKey, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not join trip chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chat_id": chat.ID})
}

// Leave handles POST /chats/:chat_id/leave. Direct chats soft-leave by hiding
// the row so history survives re-contact; every other kind deletes the row.
func (h *ChatHandler) Leave(c *gin.Context) {
	chatID, ok := pathID(c, "chat_id")
	if !ok {
		return
	}
	userID := c.GetInt(middleware.UserIDKey)

	chat, err := h.chats.GetChat(c.Request.Context(), chatID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load chat"})
		return
	}

	if chat.Kind == models.ChatDirect {
		err = h.chats.HideParticipant(c.Request.Context(), chatID, userID)
	} else {
		err = h.chats.RemoveParticipant(c.Request.Context(), chatID, userID)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotParticipant) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a chat participant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not leave chat"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Rsvp handles POST /chats/:chat_id/rsvp. Any status may follow any other.
func (h *ChatHandler) Rsvp(c *gin.Context) {
	chatID, ok := pathID(c, "chat_id")
	if !ok {
		return
	}
	userID := c.GetInt(middleware.UserIDKey)

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidRsvp(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	if err := h.chats.UpdateRsvp(c.Request.Context(), chatID, userID, req.Status); err != nil {
		if errors.Is(err, repositories.ErrNotParticipant) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a chat participant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update rsvp"})
		return
	}

	c.Status(http.StatusNoContent)
}
