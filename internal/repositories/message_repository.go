package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"activity-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

const messageColumns = `id, chat_id, sender_type, sender_id, body, media_url, kind, created_at`

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, chatID int, senderType string, senderID int, body string, mediaURL *string, kind string) (models.Message, error)
	List(ctx context.Context, chatID int) ([]models.Message, error)
	Get(ctx context.Context, messageID int) (models.Message, error)
	Delete(ctx context.Context, messageID, senderID int) error
	CountUnread(ctx context.Context, chatID, userID int, since time.Time, excludeSystem bool) (int, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create appends a message to a chat.
func (r *MessageRepo) Create(ctx context.Context, chatID int, senderType string, senderID int, body string, mediaURL *string, kind string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`INSERT INTO messages (chat_id, sender_type, sender_id, body, media_url, kind)
         VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+messageColumns,
		chatID, senderType, senderID, body, mediaURL, kind)
	return msg, err
}

// List returns the chat's messages in send order.
func (r *MessageRepo) List(ctx context.Context, chatID int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages WHERE chat_id=$1 ORDER BY created_at ASC`, chatID)
	return msgs, err
}

// Get retrieves a single message.
func (r *MessageRepo) Get(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// Delete removes a message sent by the caller. Zero rows means the message is
// missing or foreign; both surface the same way.
func (r *MessageRepo) Delete(ctx context.Context, messageID, senderID int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM messages WHERE id=$1 AND sender_type=$2 AND sender_id=$3`,
		messageID, models.SenderUser, senderID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFoundOrForbidden
	}
	return nil
}

// CountUnread counts messages after the watermark not authored by the user.
// excludeSystem drops system messages, used when the requester is the system
// account itself.
func (r *MessageRepo) CountUnread(ctx context.Context, chatID, userID int, since time.Time, excludeSystem bool) (int, error) {
	query := `SELECT COUNT(*) FROM messages
        WHERE chat_id=$1 AND created_at > $2
        AND NOT (sender_type='user' AND sender_id=$3)`
	if excludeSystem {
		query += ` AND kind <> 'system'`
	}
	var count int
	err := r.db.GetContext(ctx, &count, query, chatID, since, userID)
	return count, err
}
