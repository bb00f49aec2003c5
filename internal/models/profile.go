package models

// Profile is the slice of the external user-profile record this service needs:
// gender for female-only gating, the hide-distance preference, and display
// fields for participant previews.
type Profile struct {
	UserID       int    `json:"user_id"`
	Name         string `json:"name"`
	AvatarURL    string `json:"avatar_url"`
	Gender       string `json:"gender"`
	HideDistance bool   `json:"hide_distance"`
}

// ParticipantPreview is the denormalized participant info attached to feed
// results, computed at read time.
type ParticipantPreview struct {
	UserID    int    `json:"user_id"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// RankedActivity is a feed entry: the activity plus its computed score and
// read-time decorations. DistanceKm is nil when no location was supplied or
// when the creator hides distance from other users.
type RankedActivity struct {
	Activity
	Score        float64              `json:"score"`
	DistanceKm   *float64             `json:"distance_km,omitempty"`
	Participants []ParticipantPreview `json:"participants"`
}
