package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SocialRepository reads the social graph edges this service gates on.
type SocialRepository interface {
	IsBlockedEither(ctx context.Context, userA, userB int) (bool, error)
	AreFriends(ctx context.Context, userA, userB int) (bool, error)
	BlockedCreators(ctx context.Context, viewerID int, creatorIDs []int) (map[int]bool, error)
}

// SocialRepo is a sqlx implementation of SocialRepository.
type SocialRepo struct {
	db *sqlx.DB
}

// NewSocialRepo constructs a SocialRepo.
func NewSocialRepo(db *sqlx.DB) *SocialRepo {
	return &SocialRepo{db: db}
}

// IsBlockedEither reports whether either user has blocked the other.
func (r *SocialRepo) IsBlockedEither(ctx context.Context, userA, userB int) (bool, error) {
	var blocked bool
	err := r.db.GetContext(ctx, &blocked,
		`SELECT EXISTS(SELECT 1 FROM social_edges
         WHERE kind='blocked' AND ((user_a=$1 AND user_b=$2) OR (user_a=$2 AND user_b=$1)))`,
		userA, userB)
	return blocked, err
}

// AreFriends checks friendship symmetrically regardless of row direction.
func (r *SocialRepo) AreFriends(ctx context.Context, userA, userB int) (bool, error) {
	var friends bool
	err := r.db.GetContext(ctx, &friends,
		`SELECT EXISTS(SELECT 1 FROM social_edges
         WHERE kind='friend' AND ((user_a=$1 AND user_b=$2) OR (user_a=$2 AND user_b=$1)))`,
		userA, userB)
	return friends, err
}

// BlockedCreators resolves block status for a batch of creators in one query,
// checking both directions.
func (r *SocialRepo) BlockedCreators(ctx context.Context, viewerID int, creatorIDs []int) (map[int]bool, error) {
	blocked := make(map[int]bool, len(creatorIDs))
	if len(creatorIDs) == 0 {
		return blocked, nil
	}

	query, args, err := sqlx.In(
		`SELECT user_a, user_b FROM social_edges
         WHERE kind='blocked' AND ((user_a=? AND user_b IN (?)) OR (user_b=? AND user_a IN (?)))`,
		viewerID, creatorIDs, viewerID, creatorIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a, b int
		if err := rows.Scan(&a, &b); err != nil {
			return nil, err
		}
		if a == viewerID {
			blocked[b] = true
		} else {
			blocked[a] = true
		}
	}
	return blocked, rows.Err()
}
