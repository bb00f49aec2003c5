package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"activity-service/internal/models"
)

// CursorRepository persists per-user, per-chat read watermarks.
type CursorRepository interface {
	Get(ctx context.Context, userID, chatID int) (models.UnreadCursor, bool, error)
	Upsert(ctx context.Context, userID, chatID int, readAt time.Time) error
}

// CursorRepo is a sqlx implementation of CursorRepository.
type CursorRepo struct {
	db *sqlx.DB
}

// NewCursorRepo constructs a CursorRepo.
func NewCursorRepo(db *sqlx.DB) *CursorRepo {
	return &CursorRepo{db: db}
}

// Get returns the cursor and whether one exists. A missing cursor means
// everything since epoch is unread.
func (r *CursorRepo) Get(ctx context.Context, userID, chatID int) (models.UnreadCursor, bool, error) {
	var cursor models.UnreadCursor
	err := r.db.GetContext(ctx, &cursor,
		`SELECT user_id, chat_id, last_read_at, updated_at FROM unread_cursors WHERE user_id=$1 AND chat_id=$2`,
		userID, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UnreadCursor{}, false, nil
	}
	if err != nil {
		return models.UnreadCursor{}, false, err
	}
	return cursor, true, nil
}

// Upsert advances the watermark, creating the row on first mark-as-read.
func (r *CursorRepo) Upsert(ctx context.Context, userID, chatID int, readAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO unread_cursors (user_id, chat_id, last_read_at, updated_at) VALUES ($1, $2, $3, NOW())
         ON CONFLICT (user_id, chat_id) DO UPDATE SET last_read_at = EXCLUDED.last_read_at, updated_at = NOW()`,
		userID, chatID, readAt)
	return err
}
