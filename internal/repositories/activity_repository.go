package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"activity-service/internal/models"
)

// ErrNotFoundOrForbidden deliberately conflates "missing" and "not yours" on
// ownership-gated mutations so callers cannot enumerate foreign rows.
var ErrNotFoundOrForbidden = errors.New("activity not found or not owned by caller")

var ErrActivityNotFound = errors.New("activity not found")

const activityColumns = `id, creator_id, kind, title, description, intent_tag, lat, lon,
    created_at, start_at, end_at, meeting_at, expires_at, is_public, female_only,
    max_participants, time_type, media_url`

// ActivitySpec carries the fields accepted on creation.
type ActivitySpec struct {
	CreatorID       int
	Kind            models.ActivityKind
	Title           string
	Description     string
	IntentTag       *string
	Lat             float64
	Lon             float64
	StartAt         *time.Time
	EndAt           *time.Time
	MeetingAt       *time.Time
	IsPublic        bool
	FemaleOnly      bool
	MaxParticipants *int
	TimeType        string
	MediaURL        *string
}

// FeedFilter bounds the candidate query for feed ranking.
type FeedFilter struct {
	Kind       *models.ActivityKind
	FemaleOnly *bool
}

// ActivityRepository abstracts activity persistence.
type ActivityRepository interface {
	Create(ctx context.Context, spec ActivitySpec) (models.Activity, error)
	Get(ctx context.Context, id int) (models.Activity, error)
	Update(ctx context.Context, id, callerID int, patch models.ActivityPatch) (models.Activity, error)
	Delete(ctx context.Context, id, callerID int) error
	ListByCreator(ctx context.Context, creatorID int, kind *models.ActivityKind) ([]models.Activity, error)
	ListFeedCandidates(ctx context.Context, viewerID int, filter FeedFilter, now time.Time) ([]models.Activity, error)
}

// ActivityRepo is a sqlx implementation of ActivityRepository.
type ActivityRepo struct {
	db *sqlx.DB
}

// NewActivityRepo constructs an ActivityRepo.
func NewActivityRepo(db *sqlx.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// Create inserts a new activity. Expiry is derived from the kind and creation
// time, never supplied by the caller.
func (r *ActivityRepo) Create(ctx context.Context, spec ActivitySpec) (models.Activity, error) {
	if _, err := models.ParseActivityKind(string(spec.Kind)); err != nil {
		return models.Activity{}, err
	}

	now := time.Now().UTC()
	expiresAt := models.ExpiryFor(spec.Kind, now, spec.EndAt)

	var activity models.Activity
	query := `INSERT INTO activities
        (creator_id, kind, title, description, intent_tag, lat, lon, created_at,
         start_at, end_at, meeting_at, expires_at, is_public, female_only,
         max_participants, time_type, media_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        RETURNING ` + activityColumns
	err := r.db.GetContext(ctx, &activity, query,
		spec.CreatorID, spec.Kind, spec.Title, spec.Description, spec.IntentTag,
		spec.Lat, spec.Lon, now, spec.StartAt, spec.EndAt, spec.MeetingAt,
		expiresAt, spec.IsPublic, spec.FemaleOnly, spec.MaxParticipants,
		spec.TimeType, spec.MediaURL)
	return activity, err
}

// Get fetches an activity by id.
func (r *ActivityRepo) Get(ctx context.Context, id int) (models.Activity, error) {
	var activity models.Activity
	err := r.db.GetContext(ctx, &activity,
		`SELECT `+activityColumns+` FROM activities WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, ErrActivityNotFound
	}
	return activity, err
}

// Update applies an owner-gated partial update. Zero rows affected means the
// activity is missing or foreign; both surface as ErrNotFoundOrForbidden.
func (r *ActivityRepo) Update(ctx context.Context, id, callerID int, patch models.ActivityPatch) (models.Activity, error) {
	if patch.Empty() {
		return r.ownedActivity(ctx, id, callerID)
	}

	sets := make([]string, 0, 7)
	args := make([]any, 0, 9)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.StartAt != nil {
		add("start_at", *patch.StartAt)
	}
	if patch.EndAt != nil {
		add("end_at", *patch.EndAt)
	}
	if patch.MeetingAt != nil {
		add("meeting_at", *patch.MeetingAt)
	}
	if patch.IsPublic != nil {
		add("is_public", *patch.IsPublic)
	}
	if patch.MediaURL != nil {
		add("media_url", *patch.MediaURL)
	}

	args = append(args, id, callerID)
	query := fmt.Sprintf(`UPDATE activities SET %s WHERE id=$%d AND creator_id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), activityColumns)

	var activity models.Activity
	err := r.db.GetContext(ctx, &activity, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, ErrNotFoundOrForbidden
	}
	return activity, err
}

func (r *ActivityRepo) ownedActivity(ctx context.Context, id, callerID int) (models.Activity, error) {
	var activity models.Activity
	err := r.db.GetContext(ctx, &activity,
		`SELECT `+activityColumns+` FROM activities WHERE id=$1 AND creator_id=$2`, id, callerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Activity{}, ErrNotFoundOrForbidden
	}
	return activity, err
}

// Delete removes an owned activity and its chat membership. The chat row and
// message history survive; only participant rows are cascaded.
func (r *ActivityRepo) Delete(ctx context.Context, id, callerID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chat_participants WHERE chat_id IN (SELECT id FROM chats WHERE activity_id=$1)`, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM activities WHERE id=$1 AND creator_id=$2`, id, callerID)
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
	return tx.Commit()
}

// ListByCreator returns the creator's activities, newest first. Status is
// derived by callers at read time, never filtered here.
func (r *ActivityRepo) ListByCreator(ctx context.Context, creatorID int, kind *models.ActivityKind) ([]models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE creator_id=$1`
	args := []any{creatorID}
	if kind != nil {
		query += ` AND kind=$2`
		args = append(args, *kind)
	}
	query += ` ORDER BY created_at DESC`

	var activities []models.Activity
	err := r.db.SelectContext(ctx, &activities, query, args...)
	return activities, err
}

// ListFeedCandidates returns public, unexpired activities excluding the
// viewer's own. Geo, block, and scoring logic are applied by the caller.
func (r *ActivityRepo) ListFeedCandidates(ctx context.Context, viewerID int, filter FeedFilter, now time.Time) ([]models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
        WHERE is_public = TRUE AND expires_at > $1 AND creator_id <> $2`
	args := []any{now, viewerID}
	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		query += fmt.Sprintf(` AND kind=$%d`, len(args))
	}
	if filter.FemaleOnly != nil {
		args = append(args, *filter.FemaleOnly)
		query += fmt.Sprintf(` AND female_only=$%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	var activities []models.Activity
	err := r.db.SelectContext(ctx, &activities, query, args...)
	return activities, err
}
