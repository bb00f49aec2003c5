package models

// Social edge kinds. Friendship is stored as two directed rows and must be
// queried symmetrically; blocks are checked in both directions.
const (
	EdgeFriend         = "friend"
	EdgeBlocked        = "blocked"
	EdgeRequestPending = "request_pending"
)

// SocialEdge is a directed relation between two users.
type SocialEdge struct {
	UserA int    `db:"user_a" json:"user_a"`
	UserB int    `db:"user_b" json:"user_b"`
	Kind  string `db:"kind" json:"kind"`
}
