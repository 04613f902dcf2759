package services

import (
	"context"
	"sort"
	"time"

	"nearby-activity-backend/internal/config"
	"nearby-activity-backend/internal/geo"
	"nearby-activity-backend/internal/models"
	"nearby-activity-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// FeedItem is one ranked entry in a viewer's nearby feed
type FeedItem struct {
	Activity      models.Activity `json:"activity"`
	DistanceMiles float64         `json:"distance_miles"`
}

// FeedAggregator assembles per-viewer live feeds. The feed is a pure
// function of the latest ping/event snapshots plus viewer context; it
// holds no persisted state of its own.
type FeedAggregator struct {
	policy       *VisibilityPolicy
	users        *repository.UserRepository
	connections  *repository.ConnectionRepository
	activities   *repository.ActivityRepository
	limit        int
	snapshotSize int64
}

// NewFeedAggregator creates a feed aggregator
func NewFeedAggregator(
	policy *VisibilityPolicy,
	users *repository.UserRepository,
	connections *repository.ConnectionRepository,
	activities *repository.ActivityRepository,
	cfg config.EngineConfig,
) *FeedAggregator {
	return &FeedAggregator{
		policy:       policy,
		users:        users,
		connections:  connections,
		activities:   activities,
		limit:        cfg.FeedLimit,
		snapshotSize: int64(cfg.SnapshotSize),
	}
}

// FeedSession is one viewer's live feed subscription
type FeedSession struct {
	updates   chan []FeedItem
	locations chan models.Coordinates
	cancel    context.CancelFunc
}

// Updates delivers recomputed feeds, latest-wins: a slow reader only
// ever sees the current feed.
func (s *FeedSession) Updates() <-chan []FeedItem {
	return s.updates
}

// UpdateLocation moves the viewer's feed origin. Never blocks; an
// unconsumed older fix is replaced.
func (s *FeedSession) UpdateLocation(loc models.Coordinates) {
	for {
		select {
		case s.locations <- loc:
			return
		default:
			select {
			case <-s.locations:
			default:
			}
		}
	}
}

// Stop tears the session down
func (s *FeedSession) Stop() {
	s.cancel()
}

func (s *FeedSession) publish(items []FeedItem) {
	for {
		select {
		case s.updates <- items:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

// Open starts a live feed for the viewer. Store failures on any input
// degrade that input to empty with a logged error rather than failing
// the session: the viewer sees "nothing nearby", not a crash.
func (f *FeedAggregator) Open(ctx context.Context, viewerID string, origin *models.Coordinates) *FeedSession {
	sessionCtx, cancel := context.WithCancel(ctx)
	session := &FeedSession{
		updates:   make(chan []FeedItem, 1),
		locations: make(chan models.Coordinates, 1),
		cancel:    cancel,
	}

	blocked := f.loadBlocked(sessionCtx, viewerID)

	pingCh := f.openActivityStream(sessionCtx, viewerID, f.activities.WatchPings)
	eventCh := f.openActivityStream(sessionCtx, viewerID, f.activities.WatchEvents)

	var connCh <-chan []models.Connection
	if stream, err := f.connections.WatchForUser(sessionCtx, viewerID); err != nil {
		log.Error().Err(err).Str("user_id", viewerID).Msg("Failed to watch connections")
	} else {
		connCh = stream.Updates()
	}

	go f.run(sessionCtx, session, viewerID, origin, blocked, pingCh, eventCh, connCh)

	return session
}

type activityWatch func(ctx context.Context, limit int64) (*repository.Stream[models.Activity], error)

func (f *FeedAggregator) openActivityStream(ctx context.Context, viewerID string, watch activityWatch) <-chan []models.Activity {
	stream, err := watch(ctx, f.snapshotSize)
	if err != nil {
		log.Error().Err(err).Str("user_id", viewerID).Msg("Failed to watch activities")
		return nil
	}
	return stream.Updates()
}

func (f *FeedAggregator) loadBlocked(ctx context.Context, viewerID string) map[string]bool {
	blocked := make(map[string]bool)
	viewer, err := f.users.GetByID(ctx, viewerID)
	if err != nil {
		log.Error().Err(err).Str("user_id", viewerID).Msg("Failed to load viewer for feed")
		return blocked
	}
	for _, id := range viewer.BlockedUsers {
		blocked[id] = true
	}
	for _, id := range viewer.BlockedBy {
		blocked[id] = true
	}
	return blocked
}

func (f *FeedAggregator) run(
	ctx context.Context,
	session *FeedSession,
	viewerID string,
	origin *models.Coordinates,
	blocked map[string]bool,
	pingCh, eventCh <-chan []models.Activity,
	connCh <-chan []models.Connection,
) {
	defer close(session.updates)

	var pings, events []models.Activity
	active := make(map[string]bool)

	recompute := func() {
		viewer := ViewerContext{
			UserID:            viewerID,
			Origin:            origin,
			ActiveConnections: active,
			Blocked:           blocked,
		}
		session.publish(f.Assemble(viewer, pings, events, time.Now()))
	}
	recompute()

	for {
		select {
		case <-ctx.Done():
			return
		case items, ok := <-pingCh:
			if !ok {
				pingCh = nil
				continue
			}
			pings = items
		case items, ok := <-eventCh:
			if !ok {
				eventCh = nil
				continue
			}
			events = items
		case conns, ok := <-connCh:
			if !ok {
				connCh = nil
				continue
			}
			active = activeSetOf(viewerID, conns)
		case loc := <-session.locations:
			origin = &loc
		}
		recompute()
	}
}

func activeSetOf(viewerID string, conns []models.Connection) map[string]bool {
	set := make(map[string]bool)
	for _, c := range conns {
		if c.Status != models.ConnectionActive {
			continue
		}
		if other := c.Other(viewerID); other != "" {
			set[other] = true
		}
	}
	return set
}

// Assemble filters both snapshots through the visibility policy, merges,
// sorts newest-primary-time first and truncates to the feed limit.
func (f *FeedAggregator) Assemble(viewer ViewerContext, pings, events []models.Activity, now time.Time) []FeedItem {
	items := make([]FeedItem, 0, len(pings)+len(events))
	for _, group := range [][]models.Activity{pings, events} {
		for _, act := range group {
			if !f.policy.Visible(viewer, act, now) {
				continue
			}
			item := FeedItem{Activity: act, DistanceMiles: -1}
			if viewer.Origin != nil && act.Location != nil {
				item.DistanceMiles = geo.DistanceMiles(
					viewer.Origin.Latitude, viewer.Origin.Longitude,
					act.Location.Latitude, act.Location.Longitude)
			}
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Activity.PrimaryTime().After(items[j].Activity.PrimaryTime())
	})
	if len(items) > f.limit {
		items = items[:f.limit]
	}
	return items
}
