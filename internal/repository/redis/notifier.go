package redis

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Notifier reacts to committed fixture and order writes: it drops the cached
// listings and tells other instances to do the same. Failures are logged and
// swallowed since the write has already committed.
type Notifier struct {
	cache  *Cache
	pubsub *FixturesPubSub
	log    *slog.Logger
}

func NewNotifier(cache *Cache, pubsub *FixturesPubSub, log *slog.Logger) *Notifier {
	return &Notifier{cache: cache, pubsub: pubsub, log: log}
}

func (n *Notifier) FixtureChanged(ctx context.Context, fixtureID uuid.UUID) {
	if n.cache != nil {
		if err := n.cache.InvalidateFixtures(ctx); err != nil {
			n.log.Warn("invalidate fixture cache", slog.String("fixture_id", fixtureID.String()), slog.Any("err", err))
		}
	}

	if n.pubsub != nil {
		if err := n.pubsub.PublishFixtureChanged(ctx, fixtureID); err != nil {
			n.log.Warn("publish fixture change", slog.String("fixture_id", fixtureID.String()), slog.Any("err", err))
		}
	}
}
