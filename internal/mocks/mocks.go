package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"activity-service/internal/models"
	"activity-service/internal/repositories"
)

type ActivityRepositoryMock struct {
	mock.Mock
}

func (m *ActivityRepositoryMock) Create(ctx context.Context, spec repositories.ActivitySpec) (models.Activity, error) {
	args := m.Called(ctx, spec)
	var activity models.Activity
	if val := args.Get(0); val != nil {
		activity = val.(models.Activity)
	}
	return activity, args.Error(1)
}

func (m *ActivityRepositoryMock) Get(ctx context.Context, id int) (models.Activity, error) {
	args := m.Called(ctx, id)
	var activity models.Activity
	if val := args.Get(0); val != nil {
		activity = val.(models.Activity)
	}
	return activity, args.Error(1)
}

func (m *ActivityRepositoryMock) Update(ctx context.Context, id, callerID int, patch models.ActivityPatch) (models.Activity, error) {
	args := m.Called(ctx, id, callerID, patch)
	var activity models.Activity
	if val := args.Get(0); val != nil {
		activity = val.(models.Activity)
	}
	return activity, args.Error(1)
}

func (m *ActivityRepositoryMock) Delete(ctx context.Context, id, callerID int) error {
	args := m.Called(ctx, id, callerID)
	return args.Error(0)
}

func (m *ActivityRepositoryMock) ListByCreator(ctx context.Context, creatorID int, kind *models.ActivityKind) ([]models.Activity, error) {
	args := m.Called(ctx, creatorID, kind)
	var list []models.Activity
	if val := args.Get(0); val != nil {
		list = val.([]models.Activity)
	}
	return list, args.Error(1)
}

func (m *ActivityRepositoryMock) ListFeedCandidates(ctx context.Context, viewerID int, filter repositories.FeedFilter, now time.Time) ([]models.Activity, error) {
	args := m.Called(ctx, viewerID, filter, now)
	var list []models.Activity
	if val := args.Get(0); val != nil {
		list = val.([]models.Activity)
	}
	return list, args.Error(1)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) ResolveOrCreateActivityChat(ctx context.Context, activity models.Activity) (models.Chat, error) {
	args := m.Called(ctx, activity)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) ResolveOrCreateTripChat(ctx context.Context, tripKey string, userID int) (models.Chat, error) {
	args := m.Called(ctx, tripKey, userID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) ResolveOrCreateDirectChat(ctx context.Context, userID, friendID int) (models.Chat, error) {
	args := m.Called(ctx, userID, friendID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) GetActivityChat(ctx context.Context, activityID int) (models.Chat, error) {
	args := m.Called(ctx, activityID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) IsParticipant(ctx context.Context, chatID, userID int) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ChatRepositoryMock) JoinActivity(ctx context.Context, activity models.Activity, userID int, rsvpStatus string) (models.JoinResult, error) {
	args := m.Called(ctx, activity, userID, rsvpStatus)
	var result models.JoinResult
	if val := args.Get(0); val != nil {
		result = val.(models.JoinResult)
	}
	return result, args.Error(1)
}

func (m *ChatRepositoryMock) RemoveParticipant(ctx context.Context, chatID, userID int) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

func (m *ChatRepositoryMock) HideParticipant(ctx context.Context, chatID, userID int) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

func (m *ChatRepositoryMock) UpdateRsvp(ctx context.Context, chatID, userID int, status string) error {
	args := m.Called(ctx, chatID, userID, status)
	return args.Error(0)
}

func (m *ChatRepositoryMock) ListParticipants(ctx context.Context, chatID int) ([]models.Participant, error) {
	args := m.Called(ctx, chatID)
	var list []models.Participant
	if val := args.Get(0); val != nil {
		list = val.([]models.Participant)
	}
	return list, args.Error(1)
}

func (m *ChatRepositoryMock) ListOverviews(ctx context.Context, userID int) ([]models.ChatOverview, error) {
	args := m.Called(ctx, userID)
	var list []models.ChatOverview
	if val := args.Get(0); val != nil {
		list = val.([]models.ChatOverview)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, chatID int, senderType string, senderID int, body string, mediaURL *string, kind string) (models.Message, error) {
	args := m.Called(ctx, chatID, senderType, senderID, body, mediaURL, kind)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) List(ctx context.Context, chatID int) ([]models.Message, error) {
	args := m.Called(ctx, chatID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) Get(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) Delete(ctx context.Context, messageID, senderID int) error {
	args := m.Called(ctx, messageID, senderID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) CountUnread(ctx context.Context, chatID, userID int, since time.Time, excludeSystem bool) (int, error) {
	args := m.Called(ctx, chatID, userID, since, excludeSystem)
	return args.Int(0), args.Error(1)
}

type CursorRepositoryMock struct {
	mock.Mock
}

func (m *CursorRepositoryMock) Get(ctx context.Context, userID, chatID int) (models.UnreadCursor, bool, error) {
	args := m.Called(ctx, userID, chatID)
	var cursor models.UnreadCursor
	if val := args.Get(0); val != nil {
		cursor = val.(models.UnreadCursor)
	}
	return cursor, args.Bool(1), args.Error(2)
}

func (m *CursorRepositoryMock) Upsert(ctx context.Context, userID, chatID int, readAt time.Time) error {
	args := m.Called(ctx, userID, chatID, readAt)
	return args.Error(0)
}

type SocialRepositoryMock struct {
	mock.Mock
}

func (m *SocialRepositoryMock) IsBlockedEither(ctx context.Context, userA, userB int) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *SocialRepositoryMock) AreFriends(ctx context.Context, userA, userB int) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *SocialRepositoryMock) BlockedCreators(ctx context.Context, viewerID int, creatorIDs []int) (map[int]bool, error) {
	args := m.Called(ctx, viewerID, creatorIDs)
	var blocked map[int]bool
	if val := args.Get(0); val != nil {
		blocked = val.(map[int]bool)
	}
	return blocked, args.Error(1)
}

type TrustProviderMock struct {
	mock.Mock
}

func (m *TrustProviderMock) Trust(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type ProfileProviderMock struct {
	mock.Mock
}

func (m *ProfileProviderMock) Profile(ctx context.Context, userID int) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileProviderMock) BulkProfiles(ctx context.Context, userIDs []int) ([]models.Profile, error) {
	args := m.Called(ctx, userIDs)
	var profiles []models.Profile
	if val := args.Get(0); val != nil {
		profiles = val.([]models.Profile)
	}
	return profiles, args.Error(1)
}
