// Package events carries push events to connected clients over Redis
// pub/sub, one channel per user.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jaekwang-park/vici/internal/metrics"
	"github.com/jaekwang-park/vici/internal/model"
)

const channelPrefix = "vici:events:"

// Publisher sends an event to every subscriber of a user's channel.
type Publisher interface {
	Publish(ctx context.Context, userID string, ev model.Event) error
}

// Subscriber streams a user's events until ctx is done or the returned
// close function is called.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string) (<-chan model.Event, func() error, error)
}

type Bus struct {
	client *redis.Client
	logger *slog.Logger
}

var (
	_ Publisher  = (*Bus)(nil)
	_ Subscriber = (*Bus)(nil)
)

func NewBus(ctx context.Context, opts *redis.Options, logger *slog.Logger) (*Bus, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Bus{client: client, logger: logger}, nil
}

func Channel(userID string) string {
	return channelPrefix + userID
}

func (b *Bus) Publish(ctx context.Context, userID string, ev model.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if err := b.client.Publish(ctx, Channel(userID), data).Err(); err != nil {
		return fmt.Errorf("publishing %s: %w", ev.Type, err)
	}
	metrics.RecordEventPublished(string(ev.Type))
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, userID string) (<-chan model.Event, func() error, error) {
	ps := b.client.Subscribe(ctx, Channel(userID))
	// Wait for the subscription to be confirmed so no event published after
	// Subscribe returns is missed.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, nil, fmt.Errorf("subscribing to %s: %w", Channel(userID), err)
	}

	out := make(chan model.Event)
	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev model.Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.logger.Warn("dropping malformed event", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, ps.Close, nil
}

// ActiveUsers returns the users with at least one open subscription on any
// instance sharing this Redis.
func (b *Bus) ActiveUsers(ctx context.Context) ([]string, error) {
	channels, err := b.client.PubSubChannels(ctx, channelPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("listing event channels: %w", err)
	}
	users := make([]string, 0, len(channels))
	for _, c := range channels {
		users = append(users, strings.TrimPrefix(c, channelPrefix))
	}
	sort.Strings(users)
	return users, nil
}

func (b *Bus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Bus) Close() error {
	return b.client.Close()
}
