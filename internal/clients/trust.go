// Package clients talks to the external collaborators this service consumes:
// the user-profile provider and the trust-score provider.
package clients

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// TrustProvider supplies the externally maintained [0,100] reputation signal.
type TrustProvider interface {
	Trust(ctx context.Context, userID int) (int, error)
}

// TrustClient fetches trust scores over HTTP with an optional Redis cache in
// front. Feed ranking treats any failure as trust 0, so this client never
// retries aggressively.
type TrustClient struct {
	http  *resty.Client
	cache *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

// NewTrustClient constructs a TrustClient. cache may be nil to disable caching.
func NewTrustClient(baseURL string, cache *redis.Client, ttl time.Duration, log zerolog.Logger) *TrustClient {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(2 * time.Second)
	return &TrustClient{http: http, cache: cache, ttl: ttl, log: log}
}

type trustResponse struct {
	UserID int `json:"user_id"`
	Score  int `json:"score"`
}

func trustCacheKey(userID int) string {
	return fmt.Sprintf("trust:%d", userID)
}

// Trust returns the user's trust score, serving from cache when possible.
func (c *TrustClient) Trust(ctx context.Context, userID int) (int, error) {
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, trustCacheKey(userID)).Result(); err == nil {
			if score, err := strconv.Atoi(cached); err == nil {
				return score, nil
			}
		}
	}

	var body trustResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get(fmt.Sprintf("/internal/trust/%d", userID))
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("trust provider status %d", resp.StatusCode())
	}

	score := body.Score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, trustCacheKey(userID), strconv.Itoa(score), c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Int("user_id", userID).Msg("trust cache write failed")
		}
	}
	return score, nil
}
