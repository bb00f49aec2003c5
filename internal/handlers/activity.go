package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"activity-service/internal/events"
	"activity-service/internal/middleware"
	"activity-service/internal/models"
	"activity-service/internal/repositories"
)

// ActivityHandler manages activity CRUD endpoints.
type ActivityHandler struct {
	activities repositories.ActivityRepository
	emitter    *events.Emitter
}

// NewActivityHandler builds an ActivityHandler.
func NewActivityHandler(activities repositories.ActivityRepository, emitter *events.Emitter) *ActivityHandler {
	return &ActivityHandler{activities: activities, emitter: emitter}
}

type createActivityRequest struct {
	Kind            string     `json:"kind" binding:"required"`
	Title           string     `json:"title" binding:"required"`
	Description     string     `json:"description"`
	IntentTag       *string    `json:"intent_tag"`
	Lat             float64    `json:"lat"`
	Lon             float64    `json:"lon"`
	StartAt         *time.Time `json:"start_at"`
	EndAt           *time.Time `json:"end_at"`
	MeetingAt       *time.Time `json:"meeting_at"`
	IsPublic        *bool      `json:"is_public"`
	FemaleOnly      bool       `json:"female_only"`
	MaxParticipants *int       `json:"max_participants"`
	TimeType        string     `json:"time_type"`
	MediaURL        *string    `json:"media_url"`
}

// Create handles POST /activities.
func (h *ActivityHandler) Create(c *gin.Context) {
	userID := c.GetInt(middleware.UserIDKey)

	var req createActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind, err := models.ParseActivityKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kind"})
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	activity, err := h.activities.Create(c.Request.Context(), repositories.ActivitySpec{
		CreatorID:       userID,
		Kind:            kind,
		Title:           req.Title,
		Description:     req.Description,
		IntentTag:       req.IntentTag,
		Lat:             req.Lat,
		Lon:             req.Lon,
		StartAt:         req.StartAt,
		EndAt:           req.EndAt,
		MeetingAt:       req.MeetingAt,
		IsPublic:        isPublic,
		FemaleOnly:      req.FemaleOnly,
		MaxParticipants: req.MaxParticipants,
		TimeType:        req.TimeType,
		MediaURL:        req.MediaURL,
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidKind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kind"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create activity"})
		return
	}

	h.emitter.ActivityCreated(c.Request.Context(), requestIDFromContext(c), activity)
	c.JSON(http.StatusCreated, activity)
}

// Update handles PATCH /activities/:activity_id. Only the creator may update;
// missing and foreign rows are indistinguishable to the caller.
func (h *ActivityHandler) Update(c *gin.Context) {
	activityID, ok := pathID(c, "activity_id")
	if !ok {
		return
	}
	userID := c.GetInt(middleware.UserIDKey)

	var patch models.ActivityPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activity, err := h.activities.Update(c.Request.Context(), activityID, userID, patch)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFoundOrForbidden) {
			c.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update activity"})
		return
	}

	c.JSON(http.StatusOK, activity)
}

// Delete handles DELETE /activities/:activity_id.
func (h *ActivityHandler) Delete(c *gin.Context) {
	activityID, ok := pathID(c, "activity_id")
	if !ok {
		return
	}
	userID := c.GetInt(middleware.UserIDKey)

	if err := h.activities.Delete(c.Request.Context(), activityID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFoundOrForbidden) {
			c.JSON(http.StatusNotFound, gin.H{"error": "activity not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete activity"})
		return
	}

	c.Status(http.StatusNoContent)
}

type listedActivity struct {
	models.Activity
	Status models.ActivityStatus `json:"status"`
}

// ListMine handles GET /activities: the caller's own activities with their
// status derived at read time.
func (h *ActivityHandler) ListMine(c *gin.Context) {
	userID := c.GetInt(middleware.UserIDKey)

	var kind *models.ActivityKind
	if raw := c.Query("kind"); raw != "" {
		parsed, err := models.ParseActivityKind(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kind"})
			return
		}
		kind = &parsed
	}
	statusFilter := models.ActivityStatus(c.Query("status"))

	limit, offset := defaultFeedLimit, 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if parsed > maxFeedLimit {
			parsed = maxFeedLimit
		}
		limit = parsed
	}
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}
		offset = parsed
	}

	activities, err := h.activities.ListByCreator(c.Request.Context(), userID, kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load activities"})
		return
	}

	// Status is derived per read, so paging happens after the filter.
	now := time.Now().UTC()
	listed := make([]listedActivity, 0, len(activities))
	for _, a := range activities {
		status := a.Status(now)
		if statusFilter != "" && status != statusFilter {
			continue
		}
		listed = append(listed, listedActivity{Activity: a, Status: status})
	}

	if offset >= len(listed) {
		listed = []listedActivity{}
	} else {
		listed = listed[offset:]
		if limit < len(listed) {
			listed = listed[:limit]
		}
	}

	c.JSON(http.StatusOK, gin.H{"activities": listed})
}
