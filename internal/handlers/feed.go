package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"activity-service/internal/feed"
	"activity-service/internal/geo"
	"activity-service/internal/middleware"
	"activity-service/internal/models"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// FeedHandler serves the ranked activity feed.
type FeedHandler struct {
	feed *feed.Service
}

// NewFeedHandler builds a FeedHandler.
func NewFeedHandler(svc *feed.Service) *FeedHandler {
	return &FeedHandler{feed: svc}
}

// Get handles GET /feed. Ordering carries a per-request randomness band, so
// limit/offset pagination is not stable across calls.
func (h *FeedHandler) Get(c *gin.Context) {
	userID := c.GetInt(middleware.UserIDKey)

	q := feed.Query{ViewerID: userID, Limit: defaultFeedLimit}

	latRaw, lonRaw := c.Query("lat"), c.Query("lon")
	if (latRaw == "") != (lonRaw == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon must be supplied together"})
		return
	}
	if latRaw != "" {
		lat, errLat := strconv.ParseFloat(latRaw, 64)
		lon, errLon := strconv.ParseFloat(lonRaw, 64)
		if errLat != nil || errLon != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coordinates"})
			return
		}
		q.Location = &geo.Point{Lat: lat, Lon: lon}
	}

	if raw := c.Query("max_distance_km"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_distance_km"})
			return
		}
		q.MaxDistanceKm = radius
	}

	if raw := c.Query("kind"); raw != "" {
		kind, err := models.ParseActivityKind(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kind"})
			return
		}
		q.Kind = &kind
	}

	if raw := c.Query("intent"); raw != "" {
		q.Intent = &raw
	}

	if raw := c.Query("female_only"); raw != "" {
		femaleOnly, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid female_only"})
			return
		}
		q.FemaleOnly = &femaleOnly
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if limit > maxFeedLimit {
			limit = maxFeedLimit
		}
		q.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}
		q.Offset = offset
	}

	ranked, err := h.feed.GetFeed(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": ranked})
}
