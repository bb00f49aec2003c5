package clients

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"activity-service/internal/models"
)

// ProfileProvider supplies the profile fields this service needs: gender for
// female-only gating, the hide-distance preference, and display fields for
// participant previews.
type ProfileProvider interface {
	Profile(ctx context.Context, userID int) (models.Profile, error)
	BulkProfiles(ctx context.Context, userIDs []int) ([]models.Profile, error)
}

// ProfileClient is an HTTP implementation of ProfileProvider.
type ProfileClient struct {
	http *resty.Client
}

// NewProfileClient constructs a ProfileClient.
func NewProfileClient(baseURL string) *ProfileClient {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(2 * time.Second)
	return &ProfileClient{http: http}
}

// Profile fetches a single user's profile.
func (c *ProfileClient) Profile(ctx context.Context, userID int) (models.Profile, error) {
	var profile models.Profile
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&profile).
		Get(fmt.Sprintf("/internal/profiles/%d", userID))
	if err != nil {
		return models.Profile{}, err
	}
	if resp.IsError() {
		return models.Profile{}, fmt.Errorf("profile provider status %d", resp.StatusCode())
	}
	return profile, nil
}

type bulkProfilesResponse struct {
	Profiles []models.Profile `json:"profiles"`
}

// BulkProfiles fetches multiple profiles in one call.
func (c *ProfileClient) BulkProfiles(ctx context.Context, userIDs []int) ([]models.Profile, error) {
	if len(userIDs) == 0 {
		return []models.Profile{}, nil
	}

	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, strconv.Itoa(id))
	}

	var body bulkProfilesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("ids", strings.Join(ids, ",")).
		SetResult(&body).
		Get("/internal/profiles")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("profile provider status %d", resp.StatusCode())
	}
	return body.Profiles, nil
}
