package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"activity-service/internal/models"
)

var (
	ErrChatNotFound   = errors.New("chat not found")
	ErrNotParticipant = errors.New("user is not a chat participant")
)

const chatColumns = `id, kind, activity_id, trip_key, direct_user1, direct_user2,
    is_system_chat, owner_user_id, created_at`

// ChatRepository abstracts chat and participant persistence. Every
// resolve-or-create path relies on a uniqueness constraint, not on
// check-then-insert, so concurrent callers converge on one row.
type ChatRepository interface {
	ResolveOrCreateActivityChat(ctx context.Context, activity models.Activity) (models.Chat, error)
	ResolveOrCreateTripChat(ctx context.Context, tripKey string, userID int) (models.Chat, error)
	ResolveOrCreateDirectChat(ctx context.Context, userID, friendID int) (models.Chat, error)
	GetChat(ctx context.Context, chatID int) (models.Chat, error)
	GetActivityChat(ctx context.Context, activityID int) (models.Chat, error)
	IsParticipant(ctx context.Context, chatID, userID int) (bool, error)
	JoinActivity(ctx context.Context, activity models.Activity, userID int, rsvpStatus string) (models.JoinResult, error)
	RemoveParticipant(ctx context.Context, chatID, userID int) error
	HideParticipant(ctx context.Context, chatID, userID int) error
	UpdateRsvp(ctx context.Context, chatID, userID int, status string) error
	ListParticipants(ctx context.Context, chatID int) ([]models.Participant, error)
	ListOverviews(ctx context.Context, userID int) ([]models.ChatOverview, error)
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

type execer interface {
	sqlx.ExtContext
}

func resolveActivityChat(ctx context.Context, q execer, activity models.Activity) (models.Chat, error) {
	var chat models.Chat
	insert := `INSERT INTO chats (kind, activity_id, owner_user_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (activity_id) WHERE activity_id IS NOT NULL DO NOTHING
        RETURNING ` + chatColumns
	err := sqlx.GetContext(ctx, q, &chat, insert,
		models.ChatKindFor(activity.Kind), activity.ID, activity.CreatorID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, err
	}
	// Lost the insert race; the existing row wins.
	err = sqlx.GetContext(ctx, q, &chat,
		`SELECT `+chatColumns+` FROM chats WHERE activity_id=$1`, activity.ID)
	return chat, err
}

// ResolveOrCreateActivityChat returns the single chat for an activity,
// creating it lazily on first use.
func (r *ChatRepo) ResolveOrCreateActivityChat(ctx context.Context, activity models.Activity) (models.Chat, error) {
	return resolveActivityChat(ctx, r.db, activity)
}

// ResolveOrCreateTripChat returns the single chat for a trip/location key and
// enrolls the caller as an active participant.
func (r *ChatRepo) ResolveOrCreateTripChat(ctx context.Context, tripKey string, userID int) (models.Chat, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, err
	}
	defer tx.Rollback()

	var chat models.Chat
	insert := `INSERT INTO chats (kind, trip_key) VALUES ($1, $2)
        ON CONFLICT (trip_key) WHERE trip_key IS NOT NULL DO NOTHING
        RETURNING ` + chatColumns
	err = sqlx.GetContext(ctx, tx, &chat, insert, models.ChatTrip, tripKey)
	if errors.Is(err, sql.ErrNoRows) {
		err = sqlx.GetContext(ctx, tx, &chat,
			`SELECT `+chatColumns+` FROM chats WHERE trip_key=$1`, tripKey)
	}
	if err != nil {
		return models.Chat{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_participants (chat_id, user_id, hidden) VALUES ($1, $2, FALSE)
         ON CONFLICT (chat_id, user_id) DO UPDATE SET hidden = FALSE`, chat.ID, userID); err != nil {
		return models.Chat{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// ResolveOrCreateDirectChat returns the single chat for an unordered user
// pair and makes it visible to both sides again.
func (r *ChatRepo) ResolveOrCreateDirectChat(ctx context.Context, userID, friendID int) (models.Chat, error) {
	if userID == friendID {
		return models.Chat{}, errors.New("cannot create chat with self")
	}
	user1, user2 := userID, friendID
	if user1 > user2 {
		user1, user2 = user2, user1
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, err
	}
	defer tx.Rollback()

	var chat models.Chat
	insert := `INSERT INTO chats (kind, direct_user1, direct_user2) VALUES ($1, $2, $3)
        ON CONFLICT (direct_user1, direct_user2) WHERE direct_user1 IS NOT NULL DO NOTHING
        RETURNING ` + chatColumns
	err = sqlx.GetContext(ctx, tx, &chat, insert, models.ChatDirect, user1, user2)
	if errors.Is(err, sql.ErrNoRows) {
		err = sqlx.GetContext(ctx, tx, &chat,
			`SELECT `+chatColumns+` FROM chats WHERE direct_user1=$1 AND direct_user2=$2`, user1, user2)
	}
	if err != nil {
		return models.Chat{}, err
	}

	// Re-contacting a soft-left direct chat surfaces the old history again.
	for _, uid := range []int{user1, user2} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_participants (chat_id, user_id, hidden) VALUES ($1, $2, FALSE)
             ON CONFLICT (chat_id, user_id) DO UPDATE SET hidden = FALSE`, chat.ID, uid); err != nil {
			return models.Chat{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// GetActivityChat fetches the chat backing an activity, if one exists yet.
func (r *ChatRepo) GetActivityChat(ctx context.Context, activityID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat,
		`SELECT `+chatColumns+` FROM chats WHERE activity_id=$1`, activityID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// IsParticipant checks active (non-hidden) membership.
func (r *ChatRepo) IsParticipant(ctx context.Context, chatID, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM chat_participants WHERE chat_id=$1 AND user_id=$2 AND hidden = FALSE)`,
		chatID, userID)
	return exists, err
}

// JoinActivity resolves the activity's chat and inserts the participant in a
// single transaction; a failure leaves no chat-without-participant state.
// The creator is inserted as a backstop in case the auto-join was missed.
func (r *ChatRepo) JoinActivity(ctx context.Context, activity models.Activity, userID int, rsvpStatus string) (models.JoinResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.JoinResult{}, err
	}
	defer tx.Rollback()

	chat, err := resolveActivityChat(ctx, tx, activity)
	if err != nil {
		return models.JoinResult{}, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO chat_participants (chat_id, user_id, rsvp_status) VALUES ($1, $2, $3)
         ON CONFLICT (chat_id, user_id) DO NOTHING`, chat.ID, userID, rsvpStatus)
	if err != nil {
		return models.JoinResult{}, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return models.JoinResult{}, err
	}

	if activity.CreatorID != userID {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_participants (chat_id, user_id, rsvp_status) VALUES ($1, $2, $3)
             ON CONFLICT (chat_id, user_id) DO NOTHING`, chat.ID, activity.CreatorID, models.RsvpGoing); err != nil {
			return models.JoinResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.JoinResult{}, err
	}
	return models.JoinResult{ChatID: chat.ID, AlreadyJoined: inserted == 0}, nil
}

// RemoveParticipant deletes the participant row (hard leave, group kinds).
func (r *ChatRepo) RemoveParticipant(ctx context.Context, chatID, userID int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM chat_participants WHERE chat_id=$1 AND user_id=$2`, chatID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotParticipant
	}
	return nil
}

// HideParticipant marks the row hidden (soft leave, direct kinds). The row is
// retained so history reappears if the pair re-contacts.
func (r *ChatRepo) HideParticipant(ctx context.Context, chatID, userID int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chat_participants SET hidden = TRUE WHERE chat_id=$1 AND user_id=$2`, chatID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotParticipant
	}
	return nil
}

// UpdateRsvp overwrites the participant's RSVP; there are no transition rules.
func (r *ChatRepo) UpdateRsvp(ctx context.Context, chatID, userID int, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chat_participants SET rsvp_status=$3 WHERE chat_id=$1 AND user_id=$2`, chatID, userID, status)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotParticipant
	}
	return nil
}

// ListParticipants returns active participants for previews, creator first.
func (r *ChatRepo) ListParticipants(ctx context.Context, chatID int) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.SelectContext(ctx, &participants,
		`SELECT chat_id, user_id, joined_at, rsvp_status, hidden
         FROM chat_participants WHERE chat_id=$1 AND hidden = FALSE ORDER BY joined_at ASC`, chatID)
	return participants, err
}

// ListOverviews returns every chat the user actively participates in along
// with the activity expiry and whether any real user has replied, which the
// unread visibility rules consume.
func (r *ChatRepo) ListOverviews(ctx context.Context, userID int) ([]models.ChatOverview, error) {
	query := `SELECT c.id, c.kind, c.activity_id, c.trip_key, c.direct_user1, c.direct_user2,
            c.is_system_chat, c.owner_user_id, c.created_at,
            a.expires_at AS activity_expires_at,
            EXISTS(SELECT 1 FROM messages m WHERE m.chat_id = c.id AND m.sender_type = 'user') AS has_user_reply
        FROM chats c
        JOIN chat_participants cp ON cp.chat_id = c.id AND cp.user_id = $1 AND cp.hidden = FALSE
        LEFT JOIN activities a ON a.id = c.activity_id
        ORDER BY c.created_at DESC`
	var overviews []models.ChatOverview
	err := r.db.SelectContext(ctx, &overviews, query, userID)
	return overviews, err
}
