package models

import "time"

// Sender types for messages.
const (
	SenderUser   = "user"
	SenderSystem = "system"
	SenderBot    = "bot"
)

// Message kinds.
const (
	MessageText   = "text"
	MessageSystem = "system"
)

// Message is an append-only chat message. There is no update path, only an
// owner-gated delete.
type Message struct {
	ID         int       `db:"id" json:"id"`
	ChatID     int       `db:"chat_id" json:"chat_id"`
	SenderType string    `db:"sender_type" json:"sender_type"`
	SenderID   int       `db:"sender_id" json:"sender_id"`
	Body       string    `db:"body" json:"body"`
	MediaURL   *string   `db:"media_url" json:"media_url,omitempty"`
	Kind       string    `db:"kind" json:"kind"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// UnreadCursor is the per-user, per-chat read watermark. Absence of a row
// means everything since epoch is unread.
type UnreadCursor struct {
	UserID     int       `db:"user_id" json:"user_id"`
	ChatID     int       `db:"chat_id" json:"chat_id"`
	LastReadAt time.Time `db:"last_read_at" json:"last_read_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
