// Package unread computes per-user unread counts from read-cursor watermarks.
package unread

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"activity-service/internal/models"
	"activity-service/internal/observability"
	"activity-service/internal/repositories"
)

// ErrNotParticipant rejects cursor writes from non-members.
var ErrNotParticipant = errors.New("caller is not a chat participant")

// Engine computes unread counts and maintains read cursors.
type Engine struct {
	chats        repositories.ChatRepository
	messages     repositories.MessageRepository
	cursors      repositories.CursorRepository
	systemUserID int
	fanout       int
	log          zerolog.Logger
}

// NewEngine constructs the unread engine. fanout bounds the concurrency of
// total-unread computation.
func NewEngine(
	chats repositories.ChatRepository,
	messages repositories.MessageRepository,
	cursors repositories.CursorRepository,
	systemUserID int,
	fanout int,
	log zerolog.Logger,
) *Engine {
	if fanout < 1 {
		fanout = 1
	}
	return &Engine{
		chats:        chats,
		messages:     messages,
		cursors:      cursors,
		systemUserID: systemUserID,
		fanout:       fanout,
		log:          log,
	}
}

// UnreadCount counts a chat's messages past the user's watermark, excluding
// the user's own messages. When the requester is the system account its own
// system broadcasts are excluded too.
func (e *Engine) UnreadCount(ctx context.Context, userID, chatID int) (int, error) {
	since := time.Time{}
	cursor, found, err := e.cursors.Get(ctx, userID, chatID)
	if err != nil {
		return 0, err
	}
	if found {
		since = cursor.LastReadAt
	}

	excludeSystem := userID == e.systemUserID
	return e.messages.CountUnread(ctx, chatID, userID, since, excludeSystem)
}

// visible applies the per-kind chat visibility rules for unread totals.
func (e *Engine) visible(c models.ChatOverview, userID int, now time.Time) bool {
	switch {
	case c.Kind.ActivityLinked():
		// Activity chats stop counting once the activity expires.
		return c.ActivityExpiresAt != nil && c.ActivityExpiresAt.After(now)
	case c.Kind == models.ChatTrip:
		return true
	case c.Kind == models.ChatDirect, c.Kind == models.ChatSystem:
		if !c.IsSystemChat && c.Kind == models.ChatDirect {
			return true
		}
		if userID != e.systemUserID {
			// The recipient of a system welcome chat sees it.
			return true
		}
		// The system account only counts welcome chats a real user replied in.
		return c.HasUserReply
	}
	return false
}

// TotalUnread sums unread counts over every currently visible chat the user
// actively participates in, fanning the per-chat counts out with bounded
// concurrency. Chats whose count fails are skipped with a warning.
func (e *Engine) TotalUnread(ctx context.Context, userID int) (int, error) {
	overviews, err := e.chats.ListOverviews(ctx, userID)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	chatIDs := make([]int, 0, len(overviews))
	for _, c := range overviews {
		if e.visible(c, userID, now) {
			chatIDs = append(chatIDs, c.ID)
		}
	}
	observability.ObserveUnreadFanout(len(chatIDs))

	var (
		mu    sync.Mutex
		total int
		wg    sync.WaitGroup
	)
	sem := make(chan struct{}, e.fanout)
	for _, chatID := range chatIDs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(chatID int) {
			defer wg.Done()
			defer func() { <-sem }()

			count, err := e.UnreadCount(ctx, userID, chatID)
			if err != nil {
				// A failing chat contributes 0; the total stays best-effort.
				e.log.Warn().Err(err).Int("chat_id", chatID).Int("user_id", userID).
					Msg("unread count failed, skipping chat")
				return
			}
			mu.Lock()
			total += count
			mu.Unlock()
		}(chatID)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return total, nil
}

// MarkAsRead advances the user's watermark to now. Non-participants are
// rejected.
func (e *Engine) MarkAsRead(ctx context.Context, userID, chatID int) error {
	member, err := e.chats.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotParticipant
	}
	return e.cursors.Upsert(ctx, userID, chatID, time.Now().UTC())
}
