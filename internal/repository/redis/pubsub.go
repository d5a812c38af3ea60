package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// FixturesPubSub broadcasts fixture changes so that other instances drop
// their cached listings.
type FixturesPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewFixturesPubSub(rdb *redis.Client) *FixturesPubSub {
	return &FixturesPubSub{
		rdb:     rdb,
		channel: ChannelFixturesChanged(),
	}
}

type fixtureChangedMsg struct {
	Type      string    `json:"type"`
	FixtureID uuid.UUID `json:"fixture_id"`
	TsUnix    int64     `json:"ts_unix"`
}

func (p *FixturesPubSub) PublishFixtureChanged(ctx context.Context, fixtureID uuid.UUID) error {
	msg := fixtureChangedMsg{
		Type:      "fixture_changed",
		FixtureID: fixtureID,
		TsUnix:    time.Now().Unix(),
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe blocks, calling handler for every well-formed message, until ctx
// is done or the subscription channel closes.
func (p *FixturesPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, fixtureID uuid.UUID)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			if id, ok := decodeFixtureChanged(m.Payload); ok {
				handler(ctx, id)
			}
		}
	}
}

func decodeFixtureChanged(payload string) (uuid.UUID, bool) {
	var msg fixtureChangedMsg
	if err := json.Unmarshal([]byte(payload), &msg); err != nil || msg.FixtureID == uuid.Nil {
		return uuid.Nil, false
	}
	return msg.FixtureID, true
}
