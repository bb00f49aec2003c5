package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"activity-service/internal/middleware"
	"activity-service/internal/mocks"
	"activity-service/internal/models"
	"activity-service/internal/social"
)

type chatFixture struct {
	activities *mocks.ActivityRepositoryMock
	chats      *mocks.ChatRepositoryMock
	profiles   *mocks.ProfileProviderMock
	socials    *mocks.SocialRepositoryMock
	router     *gin.Engine
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		activities: new(mocks.ActivityRepositoryMock),
		chats:      new(mocks.ChatRepositoryMock),
		profiles:   new(mocks.ProfileProviderMock),
		socials:    new(mocks.SocialRepositoryMock),
	}
	gate := social.NewGate(f.socials, zerolog.Nop())
	handler := NewChatHandler(f.activities, f.chats, f.profiles, gate)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, 2)
		c.Next()
	})
	r.POST("/activities/:activity_id/join", handler.Join)
	r.POST("/chats/direct", handler.StartDirect)
	r.POST("/chats/trip", handler.JoinTrip)
	r.POST("/chats/:chat_id/leave", handler.Leave)
	r.POST("/chats/:chat_id/rsvp", handler.Rsvp)
	f.router = r
	return f
}

func liveActivity(id, creatorID int) models.Activity {
	now := time.Now().UTC()
	return models.Activity{
		ID:        id,
		CreatorID: creatorID,
		Kind:      models.KindMeetup,
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
		IsPublic:  true,
	}
}

func TestJoinActivitySuccess(t *testing.T) {
	f := newChatFixture()

	activity := liveActivity(7, 1)
	f.activities.On("Get", mock.Anything, 7).Return(activity, nil).Once()
	f.chats.On("JoinActivity", mock.Anything, activity, 2, models.RsvpGoing).
		Return(models.JoinResult{ChatID: 3}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/activities/7/join", bytes.NewBufferString(`{"rsvp_status":"going"}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result models.JoinResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 3, result.ChatID)
	assert.False(t, result.AlreadyJoined)
}

func TestJoinActivityDefaultsRsvpToMaybe(t *testing.T) {
	f := newChatFixture()

	activity := liveActivity(7, 1)
	f.activities.On("Get", mock.Anything, 7).Return(activity, nil).Once()
	f.chats.On("JoinActivity", mock.Anything, activity, 2, models.RsvpMaybe).
		Return(models.JoinResult{ChatID: 3}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/activities/7/join", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	f.chats.AssertExpectations(t)
}

func TestJoinActivityIdempotent(t *testing.T) {
	f := newChatFixture()

	activity := liveActivity(7, 1)
	f.activities.On("Get", mock.Anything, 7).Return(activity, nil).Once()
	f.chats.On("JoinActivity", mock.Anything, activity, 2, models.RsvpMaybe).
		Return(models.JoinResult{ChatID: 3, AlreadyJoined: true}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/activities/7/join", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	// A repeat join is informational, never a failure.
	require.Equal(t, http.StatusOK, rec.Code)
	var result models.JoinResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.True(t, result.AlreadyJoined)
}

func TestJoinExpiredActivity(t *testing.T) {
	f := newChatFixture()

	activity := liveActivity(7, 1)
	activity.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	f.activities.On("Get", mock.Anything, 7).Return(activity, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/activities/7/join", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusGone, rec.Code)
	f.chats.AssertNotCalled(t, "JoinActivity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinFemaleOnlyGating(t *testing.T) {
	cases := []struct {
		name       string
		gender     string
		wantStatus int
	}{
		{"male rejected", "Male", http.StatusForbidden},
		{"unset rejected", "", http.StatusForbidden},
		{"female accepted", "Female", http.StatusOK},
		{"other accepted", "Nonbinary", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newChatFixture()

			activity := liveActivity(7, 1)
			activity.FemaleOnly = true
			f.activities.On("Get", mock.Anything, 7).Return(activity, nil).Once()
			f.profiles.On("Profile", mock.Anything, 2).
				Return(models.Profile{UserID: 2, Gender: tc.gender}, nil).Once()
			if tc.wantStatus == http.StatusOK {
				f.chats.On("JoinActivity", mock.Anything, activity, 2, models.RsvpMaybe).
					Return(models.JoinResult{ChatID: 3}, nil).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/activities/7/join", nil)
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestJoinFemaleOnlyProfileLookupFailsClosed(t *testing.T) {
	f := newChatFixture()

	activity := liveActivity(7, 1)
	activity.FemaleOnly = true
	f.activities.On("Get", mock.Anything, 7).Return(activity, nil).Once()
	f.profiles.On("Profile", mock.Anything, 2).Return(models.Profile{}, assert.AnError).Once()

	req := httptest.NewRequest(http.MethodPost, "/activities/7/join", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	f.chats.AssertNotCalled(t, "JoinActivity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStartDirectRequiresFriendship(t *testing.T) {
	f := newChatFixture()

	f.socials.On("IsBlockedEither", mock.Anything, 2, 5).Return(false, nil).Once()
	f.socials.On("AreFriends", mock.Anything, 2, 5).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/direct", bytes.NewBufferString(`{"friend_id":5}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStartDirectBlockedPair(t *testing.T) {
	f := newChatFixture()

	f.socials.On("IsBlockedEither", mock.Anything, 2, 5).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/direct", bytes.NewBufferString(`{"friend_id":5}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	f.socials.AssertNotCalled(t, "AreFriends", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartDirectSuccess(t *testing.T) {
	f := newChatFixture()

	f.socials.On("IsBlockedEither", mock.Anything, 2, 5).Return(false, nil).Once()
	f.socials.On("AreFriends", mock.Anything, 2, 5).Return(true, nil).Once()
	f.chats.On("ResolveOrCreateDirectChat", mock.Anything, 2, 5).
		Return(models.Chat{ID: 11, Kind: models.ChatDirect}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/direct", bytes.NewBufferString(`{"friend_id":5}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestJoinTripChat(t *testing.T) {
	f := newChatFixture()

	f.chats.On("ResolveOrCreateTripChat", mock.Anything, "lisbon-2026", 2).
		Return(models.Chat{ID: 14, Kind: models.ChatTrip}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/trip", bytes.NewBufferString(`{"trip_key":"lisbon-2026"}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"chat_id":14`)
}

func TestJoinTripChatRequiresKey(t *testing.T) {
	f := newChatFixture()

	req := httptest.NewRequest(http.MethodPost, "/chats/trip", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.chats.AssertNotCalled(t, "ResolveOrCreateTripChat", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeaveDirectChatSoftHides(t *testing.T) {
	f := newChatFixture()

	f.chats.On("GetChat", mock.Anything, 11).
		Return(models.Chat{ID: 11, Kind: models.ChatDirect}, nil).Once()
	f.chats.On("HideParticipant", mock.Anything, 11, 2).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/11/leave", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	f.chats.AssertNotCalled(t, "RemoveParticipant", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeaveGroupChatDeletesRow(t *testing.T) {
	f := newChatFixture()

	f.chats.On("GetChat", mock.Anything, 12).
		Return(models.Chat{ID: 12, Kind: models.ChatMeetup}, nil).Once()
	f.chats.On("RemoveParticipant", mock.Anything, 12, 2).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/12/leave", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	f.chats.AssertNotCalled(t, "HideParticipant", mock.Anything, mock.Anything, mock.Anything)
}

func TestRsvpUpdate(t *testing.T) {
	f := newChatFixture()

	f.chats.On("UpdateRsvp", mock.Anything, 12, 2, models.RsvpNotGoing).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/12/rsvp", bytes.NewBufferString(`{"status":"not_going"}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRsvpRejectsUnknownStatus(t *testing.T) {
	f := newChatFixture()

	req := httptest.NewRequest(http.MethodPost, "/chats/12/rsvp", bytes.NewBufferString(`{"status":"perhaps"}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	f.chats.AssertNotCalled(t, "UpdateRsvp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
