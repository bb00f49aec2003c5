package feed

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"activity-service/internal/clients"
	"activity-service/internal/geo"
	"activity-service/internal/models"
	"activity-service/internal/observability"
	"activity-service/internal/repositories"
	"activity-service/internal/social"
)

// Query bounds one feed request.
type Query struct {
	ViewerID      int
	Location      *geo.Point
	MaxDistanceKm float64
	Kind          *models.ActivityKind
	Intent        *string
	FemaleOnly    *bool
	Limit         int
	Offset        int
}

// Service composes the geo index, social gate, and activity store into an
// ordered candidate list.
type Service struct {
	activities repositories.ActivityRepository
	chats      repositories.ChatRepository
	gate       *social.Gate
	trust      clients.TrustProvider
	profiles   clients.ProfileProvider
	workers    int
	log        zerolog.Logger
}

// NewService constructs the feed service.
func NewService(
	activities repositories.ActivityRepository,
	chats repositories.ChatRepository,
	gate *social.Gate,
	trust clients.TrustProvider,
	profiles clients.ProfileProvider,
	workers int,
	log zerolog.Logger,
) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		activities: activities,
		chats:      chats,
		gate:       gate,
		trust:      trust,
		profiles:   profiles,
		workers:    workers,
		log:        log,
	}
}

type candidate struct {
	activity    models.Activity
	distanceKm  *float64
	creatorRank int
}

// GetFeed returns ranked activities for the viewer. Ordering is randomized
// within a small band per request, so pagination is not stable across calls.
func (s *Service) GetFeed(ctx context.Context, q Query) ([]models.RankedActivity, error) {
	ctx, span := otel.Tracer("activity-service/feed").Start(ctx, "feed.rank")
	defer span.End()
	start := time.Now()

	now := time.Now().UTC()
	activities, err := s.activities.ListFeedCandidates(ctx, q.ViewerID,
		repositories.FeedFilter{Kind: q.Kind, FemaleOnly: q.FemaleOnly}, now)
	if err != nil {
		return nil, err
	}

	candidates := s.filterGeo(activities, q)
	candidates = s.filterBlocked(ctx, q.ViewerID, candidates)
	rankCreators(candidates)

	trustByCreator := s.fetchTrust(ctx, candidates)

	ranked := s.scoreAll(candidates, trustByCreator, q, now)

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	ranked = paginate(ranked, q.Offset, q.Limit)
	s.decorate(ctx, q, ranked)

	observability.ObserveFeed(len(candidates), time.Since(start))
	return ranked, nil
}

// filterGeo applies the radius bound when a location was supplied. A geo
// failure on one candidate never aborts the feed; the candidate is skipped.
func (s *Service) filterGeo(activities []models.Activity, q Query) []*candidate {
	out := make([]*candidate, 0, len(activities))
	for _, a := range activities {
		c := &candidate{activity: a}
		if q.Location != nil {
			radius := q.MaxDistanceKm
			if radius <= 0 {
				radius = DefaultRadiusKm
			}
			d, ok := geo.Within(*q.Location, radius, geo.Point{Lat: a.Lat, Lon: a.Lon})
			if !ok {
				continue
			}
			dist := d
			c.distanceKm = &dist
		}
		out = append(out, c)
	}
	return out
}

func (s *Service) filterBlocked(ctx context.Context, viewerID int, candidates []*candidate) []*candidate {
	creatorSet := map[int]struct{}{}
	creators := make([]int, 0)
	for _, c := range candidates {
		if _, ok := creatorSet[c.activity.CreatorID]; !ok {
			creatorSet[c.activity.CreatorID] = struct{}{}
			creators = append(creators, c.activity.CreatorID)
		}
	}

	blocked := s.gate.BlockedCreators(ctx, viewerID, creators)
	out := candidates[:0]
	for _, c := range candidates {
		if !blocked[c.activity.CreatorID] {
			out = append(out, c)
		}
	}
	return out
}

// rankCreators assigns each candidate its recency rank among the same
// creator's candidates: the newest gets 0, the next 1, and so on. Candidates
// arrive newest-first from the store.
func rankCreators(candidates []*candidate) {
	seen := map[int]int{}
	for _, c := range candidates {
		c.creatorRank = seen[c.activity.CreatorID]
		seen[c.activity.CreatorID]++
	}
}

// fetchTrust resolves trust per distinct creator, degrading to 0 on provider
// failure rather than failing the feed.
func (s *Service) fetchTrust(ctx context.Context, candidates []*candidate) map[int]int {
	trust := map[int]int{}
	for _, c := range candidates {
		creatorID := c.activity.CreatorID
		if _, ok := trust[creatorID]; ok {
			continue
		}
		score, err := s.trust.Trust(ctx, creatorID)
		if err != nil {
			observability.IncUpstreamDegraded("trust")
			s.log.Warn().Err(err).Int("creator_id", creatorID).Msg("trust lookup failed, using 0")
			score = 0
		}
		trust[creatorID] = score
	}
	return trust
}

// scoreAll fans candidate scoring out across a bounded worker pool. Scoring
// is side-effect free per candidate; the randomness term is re-rolled on
// every call so repeated identical queries do not return an identical order.
func (s *Service) scoreAll(candidates []*candidate, trust map[int]int, q Query, now time.Time) []models.RankedActivity {
	ranked := make([]models.RankedActivity, len(candidates))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				c := candidates[i]
				ranked[i] = models.RankedActivity{
					Activity:   c.activity,
					DistanceKm: c.distanceKm,
					Score: Score(ScoreInputs{
						AgeSeconds:  now.Sub(c.activity.CreatedAt).Seconds(),
						DistanceKm:  c.distanceKm,
						TrustScore:  trust[c.activity.CreatorID],
						Intent:      intentMatch(q.Intent, c.activity.IntentTag),
						CreatorRank: c.creatorRank,
						Random:      rand.Float64() * randomnessSpan,
					}),
				}
			}
		}()
	}
	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return ranked
}

func intentMatch(filter *string, tag *string) IntentMatch {
	if filter == nil || *filter == "" {
		return IntentNoFilter
	}
	if tag != nil && *tag == *filter {
		return IntentMatched
	}
	return IntentMismatched
}

func paginate(ranked []models.RankedActivity, offset, limit int) []models.RankedActivity {
	if offset >= len(ranked) {
		return []models.RankedActivity{}
	}
	ranked = ranked[offset:]
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}

// decorate attaches participant previews and applies the creator's
// hide-distance preference to the page being returned. Preview failures
// degrade to bare IDs; they never fail the feed.
func (s *Service) decorate(ctx context.Context, q Query, page []models.RankedActivity) {
	participantsByActivity := make(map[int][]int, len(page))
	userIDs := make([]int, 0, len(page)*4)
	userIDSet := map[int]struct{}{}
	collect := func(id int) {
		if _, ok := userIDSet[id]; !ok {
			userIDSet[id] = struct{}{}
			userIDs = append(userIDs, id)
		}
	}

	for i := range page {
		collect(page[i].CreatorID)
		chat, err := s.chats.GetActivityChat(ctx, page[i].ID)
		if err != nil {
			if !errors.Is(err, repositories.ErrChatNotFound) {
				s.log.Warn().Err(err).Int("activity_id", page[i].ID).Msg("chat lookup failed for preview")
			}
			continue
		}
		participants, err := s.chats.ListParticipants(ctx, chat.ID)
		if err != nil {
			s.log.Warn().Err(err).Int("chat_id", chat.ID).Msg("participant lookup failed for preview")
			continue
		}
		ids := make([]int, 0, len(participants))
		for _, p := range participants {
			ids = append(ids, p.UserID)
			collect(p.UserID)
		}
		participantsByActivity[page[i].ID] = ids
	}

	profileByID := map[int]models.Profile{}
	profiles, err := s.profiles.BulkProfiles(ctx, userIDs)
	if err != nil {
		observability.IncUpstreamDegraded("profiles")
		s.log.Warn().Err(err).Msg("bulk profile lookup failed, previews degraded")
	} else {
		for _, p := range profiles {
			profileByID[p.UserID] = p
		}
	}

	for i := range page {
		ids := participantsByActivity[page[i].ID]
		previews := make([]models.ParticipantPreview, 0, len(ids))
		for _, id := range ids {
			p := profileByID[id]
			previews = append(previews, models.ParticipantPreview{
				UserID:    id,
				Name:      p.Name,
				AvatarURL: p.AvatarURL,
			})
		}
		page[i].Participants = previews

		// Distance stays internal to filtering when the creator hides it.
		if creator, ok := profileByID[page[i].CreatorID]; ok && creator.HideDistance {
			page[i].DistanceKm = nil
		}
	}
}
