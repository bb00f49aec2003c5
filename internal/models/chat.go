package models

import "time"

// ChatKind enumerates the conversation kinds.
type ChatKind string

const (
	ChatDirect ChatKind = "direct"
	ChatMeetup ChatKind = "meetup"
	ChatEvent  ChatKind = "event"
	ChatBlend  ChatKind = "blend"
	ChatTrip   ChatKind = "trip"
	ChatSystem ChatKind = "system"
)

// ActivityLinked reports whether the chat kind is backed by an activity.
func (k ChatKind) ActivityLinked() bool {
	return k == ChatMeetup || k == ChatEvent || k == ChatBlend
}

// ChatKindFor maps an activity kind to its chat kind.
func ChatKindFor(kind ActivityKind) ChatKind {
	return ChatKind(kind)
}

// Chat is a conversation container. Exactly one of the reference fields is set
// depending on kind: activity-linked chats carry ActivityID, trip chats TripKey,
// direct chats the ordered user pair.
type Chat struct {
	ID           int       `db:"id" json:"id"`
	Kind         ChatKind  `db:"kind" json:"kind"`
	ActivityID   *int      `db:"activity_id" json:"activity_id,omitempty"`
	TripKey      *string   `db:"trip_key" json:"trip_key,omitempty"`
	DirectUser1  *int      `db:"direct_user1" json:"direct_user1,omitempty"`
	DirectUser2  *int      `db:"direct_user2" json:"direct_user2,omitempty"`
	IsSystemChat bool      `db:"is_system_chat" json:"is_system_chat"`
	OwnerUserID  *int      `db:"owner_user_id" json:"owner_user_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RSVP statuses are descriptive only; any status may follow any other.
const (
	RsvpGoing    = "going"
	RsvpMaybe    = "maybe"
	RsvpNotGoing = "not_going"
)

// ValidRsvp reports whether the status is one of the known values.
func ValidRsvp(status string) bool {
	return status == RsvpGoing || status == RsvpMaybe || status == RsvpNotGoing
}

// Participant links a user to a chat.
type Participant struct {
	ChatID     int       `db:"chat_id" json:"chat_id"`
	UserID     int       `db:"user_id" json:"user_id"`
	JoinedAt   time.Time `db:"joined_at" json:"joined_at"`
	RsvpStatus *string   `db:"rsvp_status" json:"rsvp_status,omitempty"`
	Hidden     bool      `db:"hidden" json:"hidden"`
}

// JoinResult reports the outcome of a join. AlreadyJoined is informational,
// not a failure.
type JoinResult struct {
	ChatID        int  `json:"chat_id"`
	AlreadyJoined bool `json:"already_joined"`
}

// ChatOverview is a participant's chat row enriched with the fields the unread
// visibility rules need.
type ChatOverview struct {
	Chat
	ActivityExpiresAt *time.Time `db:"activity_expires_at" json:"activity_expires_at,omitempty"`
	HasUserReply      bool       `db:"has_user_reply" json:"has_user_reply"`
}
