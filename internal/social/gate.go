// Package social gates cross-user visibility on the social graph.
package social

import (
	"context"

	"github.com/rs/zerolog"

	"activity-service/internal/repositories"
)

// Gate answers mutual-visibility questions. Read failures degrade to open
// ("not blocked") with a warning rather than failing the calling read path.
type Gate struct {
	repo repositories.SocialRepository
	log  zerolog.Logger
}

// NewGate constructs a Gate.
func NewGate(repo repositories.SocialRepository, log zerolog.Logger) *Gate {
	return &Gate{repo: repo, log: log}
}

// Blocked reports whether either user has blocked the other.
func (g *Gate) Blocked(ctx context.Context, userA, userB int) bool {
	blocked, err := g.repo.IsBlockedEither(ctx, userA, userB)
	if err != nil {
		g.log.Warn().Err(err).Int("user_a", userA).Int("user_b", userB).
			Msg("block lookup failed, treating as not blocked")
		return false
	}
	return blocked
}

// BlockedCreators resolves block status for a creator batch; on failure every
// creator is treated as not blocked.
func (g *Gate) BlockedCreators(ctx context.Context, viewerID int, creatorIDs []int) map[int]bool {
	blocked, err := g.repo.BlockedCreators(ctx, viewerID, creatorIDs)
	if err != nil {
		g.log.Warn().Err(err).Int("viewer_id", viewerID).
			Msg("bulk block lookup failed, treating all as not blocked")
		return map[int]bool{}
	}
	return blocked
}

// Friends checks friendship symmetrically. Unlike block checks this does not
// degrade: friendship gates a write path and must fail closed.
func (g *Gate) Friends(ctx context.Context, userA, userB int) (bool, error) {
	return g.repo.AreFriends(ctx, userA, userB)
}
