package models

import (
	"errors"
	"time"
)

// ActivityKind enumerates the supported activity kinds.
type ActivityKind string

const (
	KindMeetup ActivityKind = "meetup"
	KindEvent  ActivityKind = "event"
	KindBlend  ActivityKind = "blend"
)

var ErrInvalidKind = errors.New("invalid activity kind")

// ParseActivityKind validates a raw kind value.
func ParseActivityKind(raw string) (ActivityKind, error) {
	switch ActivityKind(raw) {
	case KindMeetup, KindEvent, KindBlend:
		return ActivityKind(raw), nil
	}
	return "", ErrInvalidKind
}

// Lifetimes per kind. Events fall back to their end date when one is set.
const (
	BlendTTL        = 8 * time.Hour
	MeetupTTL       = 24 * time.Hour
	DefaultEventTTL = 7 * 24 * time.Hour
)

// ExpiryFor derives the expiry timestamp for a new activity.
func ExpiryFor(kind ActivityKind, createdAt time.Time, endAt *time.Time) time.Time {
	switch kind {
	case KindBlend:
		return createdAt.Add(BlendTTL)
	case KindMeetup:
		return createdAt.Add(MeetupTTL)
	case KindEvent:
		if endAt != nil {
			return *endAt
		}
		return createdAt.Add(DefaultEventTTL)
	}
	return createdAt.Add(MeetupTTL)
}

// Activity is a time-bounded social gathering proposal shown in the feed.
type Activity struct {
	ID              int          `db:"id" json:"id"`
	CreatorID       int          `db:"creator_id" json:"creator_id"`
	Kind            ActivityKind `db:"kind" json:"kind"`
	Title           string       `db:"title" json:"title"`
	Description     string       `db:"description" json:"description"`
	IntentTag       *string      `db:"intent_tag" json:"intent_tag,omitempty"`
	Lat             float64      `db:"lat" json:"lat"`
	Lon             float64      `db:"lon" json:"lon"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	StartAt         *time.Time   `db:"start_at" json:"start_at,omitempty"`
	EndAt           *time.Time   `db:"end_at" json:"end_at,omitempty"`
	MeetingAt       *time.Time   `db:"meeting_at" json:"meeting_at,omitempty"`
	ExpiresAt       time.Time    `db:"expires_at" json:"expires_at"`
	IsPublic        bool         `db:"is_public" json:"is_public"`
	FemaleOnly      bool         `db:"female_only" json:"female_only"`
	MaxParticipants *int         `db:"max_participants" json:"max_participants,omitempty"`
	TimeType        string       `db:"time_type" json:"time_type"`
	MediaURL        *string      `db:"media_url" json:"media_url,omitempty"`
}

// Expired reports whether the activity is past its expiry at the given instant.
func (a Activity) Expired(now time.Time) bool {
	return !a.ExpiresAt.After(now)
}

// ActivityStatus is derived on every read, never stored.
type ActivityStatus string

const (
	StatusActive   ActivityStatus = "active"
	StatusUpcoming ActivityStatus = "upcoming"
	StatusExpired  ActivityStatus = "expired"
)

// Status computes the listing status of the activity at the given instant.
func (a Activity) Status(now time.Time) ActivityStatus {
	if a.Expired(now) {
		return StatusExpired
	}
	if a.StartAt != nil && a.StartAt.After(now) {
		return StatusUpcoming
	}
	if a.MeetingAt != nil && a.MeetingAt.After(now) {
		return StatusUpcoming
	}
	return StatusActive
}

// ActivityPatch holds the owner-editable subset of activity fields.
// Nil means "leave unchanged". Kind and creator are immutable.
type ActivityPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartAt     *time.Time `json:"start_at,omitempty"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	MeetingAt   *time.Time `json:"meeting_at,omitempty"`
	IsPublic    *bool      `json:"is_public,omitempty"`
	MediaURL    *string    `json:"media_url,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ActivityPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.StartAt == nil &&
		p.EndAt == nil && p.MeetingAt == nil && p.IsPublic == nil && p.MediaURL == nil
}
