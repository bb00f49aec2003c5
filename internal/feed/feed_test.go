package feed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"activity-service/internal/geo"
	"activity-service/internal/mocks"
	"activity-service/internal/models"
	"activity-service/internal/repositories"
	"activity-service/internal/social"
)

type feedFixture struct {
	activities *mocks.ActivityRepositoryMock
	chats      *mocks.ChatRepositoryMock
	socials    *mocks.SocialRepositoryMock
	trust      *mocks.TrustProviderMock
	profiles   *mocks.ProfileProviderMock
	service    *Service
}

func newFeedFixture() *feedFixture {
	f := &feedFixture{
		activities: new(mocks.ActivityRepositoryMock),
		chats:      new(mocks.ChatRepositoryMock),
		socials:    new(mocks.SocialRepositoryMock),
		trust:      new(mocks.TrustProviderMock),
		profiles:   new(mocks.ProfileProviderMock),
	}
	gate := social.NewGate(f.socials, zerolog.Nop())
	f.service = NewService(f.activities, f.chats, gate, f.trust, f.profiles, 4, zerolog.Nop())
	return f
}

func activityAt(id, creatorID int, lat, lon float64, age time.Duration) models.Activity {
	now := time.Now().UTC()
	return models.Activity{
		ID:        id,
		CreatorID: creatorID,
		Kind:      models.KindMeetup,
		Lat:       lat,
		Lon:       lon,
		CreatedAt: now.Add(-age),
		ExpiresAt: now.Add(24 * time.Hour),
		IsPublic:  true,
	}
}

func TestGetFeedRadiusFilter(t *testing.T) {
	f := newFeedFixture()

	near := activityAt(1, 10, 10.0/111.0, 0, time.Hour) // ~10 km from origin
	far := activityAt(2, 11, 80.0/111.0, 0, time.Hour)  // ~80 km from origin

	f.activities.On("ListFeedCandidates", mock.Anything, 1, mock.Anything, mock.Anything).
		Return([]models.Activity{near, far}, nil).Once()
	f.socials.On("BlockedCreators", mock.Anything, 1, mock.Anything).
		Return(map[int]bool{}, nil).Once()
	f.trust.On("Trust", mock.Anything, 10).Return(50, nil).Once()
	f.chats.On("GetActivityChat", mock.Anything, 1).
		Return(models.Chat{}, repositories.ErrChatNotFound).Once()
	f.profiles.On("BulkProfiles", mock.Anything, mock.Anything).
		Return([]models.Profile{}, nil).Once()

	ranked, err := f.service.GetFeed(context.Background(), Query{
		ViewerID: 1,
		Location: &geo.Point{Lat: 0, Lon: 0},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, 1, ranked[0].ID)
	require.NotNil(t, ranked[0].DistanceKm)
	assert.InDelta(t, 10, *ranked[0].DistanceKm, 0.5)
}

func TestGetFeedExcludesBlockedCreators(t *testing.T) {
	f := newFeedFixture()

	mine := activityAt(1, 10, 0, 0, time.Hour)
	blocked := activityAt(2, 66, 0, 0, time.Hour)

	f.activities.On("ListFeedCandidates", mock.Anything, 1, mock.Anything, mock.Anything).
		Return([]models.Activity{mine, blocked}, nil).Once()
	f.socials.On("BlockedCreators", mock.Anything, 1, mock.Anything).
		Return(map[int]bool{66: true}, nil).Once()
	f.trust.On("Trust", mock.Anything, 10).Return(50, nil).Once()
	f.chats.On("GetActivityChat", mock.Anything, 1).
		Return(models.Chat{}, repositories.ErrChatNotFound).Once()
	f.profiles.On("BulkProfiles", mock.Anything, mock.Anything).
		Return([]models.Profile{}, nil).Once()

	ranked, err := f.service.GetFeed(context.Background(), Query{ViewerID: 1})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, 1, ranked[0].ID)
}

func TestGetFeedTrustFailureDegrades(t *testing.T) {
	f := newFeedFixture()

	a := activityAt(1, 10, 0, 0, time.Hour)

	f.activities.On("ListFeedCandidates", mock.Anything, 1, mock.Anything, mock.Anything).
		Return([]models.Activity{a}, nil).Once()
	f.socials.On("BlockedCreators", mock.Anything, 1, mock.Anything).
		Return(map[int]bool{}, nil).Once()
	f.trust.On("Trust", mock.Anything, 10).Return(0, assert.AnError).Once()
	f.chats.On("GetActivityChat", mock.Anything, 1).
		Return(models.Chat{}, repositories.ErrChatNotFound).Once()
	f.profiles.On("BulkProfiles", mock.Anything, mock.Anything).
		Return([]models.Profile{}, nil).Once()

	ranked, err := f.service.GetFeed(context.Background(), Query{ViewerID: 1})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	// Without location both candidates get the flat distance default, so the
	// feed survived, trust simply contributed nothing.
	assert.Nil(t, ranked[0].DistanceKm)
}

func TestGetFeedCreatorPenaltyCapsProlificCreators(t *testing.T) {
	f := newFeedFixture()

	// Creator 10 floods with three same-age activities; creator 20 posts one.
	// The randomness band (0.15) is smaller than the rank-2 penalty (0.30),
	// so creator 10's oldest post must always rank below creator 20's.
	flood1 := activityAt(1, 10, 0, 0, time.Hour)
	flood2 := activityAt(2, 10, 0, 0, 2*time.Hour)
	flood3 := activityAt(3, 10, 0, 0, 3*time.Hour)
	other := activityAt(4, 20, 0, 0, 3*time.Hour)

	f.activities.On("ListFeedCandidates", mock.Anything, 1, mock.Anything, mock.Anything).
		Return([]models.Activity{flood1, flood2, flood3, other}, nil).Once()
	f.socials.On("BlockedCreators", mock.Anything, 1, mock.Anything).
		Return(map[int]bool{}, nil).Once()
	f.trust.On("Trust", mock.Anything, 10).Return(50, nil).Once()
	f.trust.On("Trust", mock.Anything, 20).Return(50, nil).Once()
	f.chats.On("GetActivityChat", mock.Anything, mock.Anything).
		Return(models.Chat{}, repositories.ErrChatNotFound).Times(4)
	f.profiles.On("BulkProfiles", mock.Anything, mock.Anything).
		Return([]models.Profile{}, nil).Once()

	ranked, err := f.service.GetFeed(context.Background(), Query{ViewerID: 1})
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	pos := map[int]int{}
	for i, r := range ranked {
		pos[r.ID] = i
	}
	assert.Less(t, pos[4], pos[3], "flooded creator's third activity outranked a peer")
}

func TestGetFeedHidesDistanceWhenCreatorPrefersIt(t *testing.T) {
	f := newFeedFixture()

	a := activityAt(1, 10, 10.0/111.0, 0, time.Hour)

	f.activities.On("ListFeedCandidates", mock.Anything, 1, mock.Anything, mock.Anything).
		Return([]models.Activity{a}, nil).Once()
	f.socials.On("BlockedCreators", mock.Anything, 1, mock.Anything).
		Return(map[int]bool{}, nil).Once()
	f.trust.On("Trust", mock.Anything, 10).Return(50, nil).Once()
	f.chats.On("GetActivityChat", mock.Anything, 1).
		Return(models.Chat{ID: 7, ActivityID: &a.ID}, nil).Once()
	f.chats.On("ListParticipants", mock.Anything, 7).
		Return([]models.Participant{{ChatID: 7, UserID: 10}}, nil).Once()
	f.profiles.On("BulkProfiles", mock.Anything, mock.Anything).
		Return([]models.Profile{{UserID: 10, Name: "ana", HideDistance: true}}, nil).Once()

	ranked, err := f.service.GetFeed(context.Background(), Query{
		ViewerID: 1,
		Location: &geo.Point{Lat: 0, Lon: 0},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	// Filtering used the true distance; the response suppresses it.
	assert.Nil(t, ranked[0].DistanceKm)
	require.Len(t, ranked[0].Participants, 1)
	assert.Equal(t, "ana", ranked[0].Participants[0].Name)
}

func TestGetFeedPagination(t *testing.T) {
	f := newFeedFixture()

	items := make([]models.Activity, 0, 5)
	for i := 1; i <= 5; i++ {
		items = append(items, activityAt(i, 100+i, 0, 0, time.Duration(i)*time.Hour))
	}

	f.activities.On("ListFeedCandidates", mock.Anything, 1, mock.Anything, mock.Anything).
		Return(items, nil)
	f.socials.On("BlockedCreators", mock.Anything, 1, mock.Anything).
		Return(map[int]bool{}, nil)
	for i := 1; i <= 5; i++ {
		f.trust.On("Trust", mock.Anything, 100+i).Return(50, nil)
	}
	f.chats.On("GetActivityChat", mock.Anything, mock.Anything).
		Return(models.Chat{}, repositories.ErrChatNotFound)
	f.profiles.On("BulkProfiles", mock.Anything, mock.Anything).
		Return([]models.Profile{}, nil)

	ranked, err := f.service.GetFeed(context.Background(), Query{ViewerID: 1, Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, ranked, 2)

	beyond, err := f.service.GetFeed(context.Background(), Query{ViewerID: 1, Limit: 2, Offset: 99})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}
