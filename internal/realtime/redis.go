package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"

	"github.com/go-redis/redis/v8"
)

// RedisBus fans changes out through a Redis pub/sub channel so every
// service instance sees writes made by the others.
type RedisBus struct {
	Client  *redis.Client
	Channel string
	Logger  *logger.Logger
}

func NewRedisBus(client *redis.Client, channel string, log *logger.Logger) *RedisBus {
	return &RedisBus{Client: client, Channel: channel, Logger: log}
}

func (b *RedisBus) Publish(ctx context.Context, table, event string) error {
	payload, err := json.Marshal(models.Change{Table: table, Event: event, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	return b.Client.Publish(ctx, b.Channel, payload).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan models.Change, error) {
	pubsub := b.Client.Subscribe(ctx, b.Channel)
	// Wait for the subscription confirmation so no publish is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", b.Channel, err)
	}

	out := make(chan models.Change, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change models.Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					if b.Logger != nil {
						b.Logger.Warn("REALTIME", fmt.Sprintf("Dropping malformed change payload: %v", err))
					}
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	if b.Logger != nil {
		b.Logger.Info("REALTIME", fmt.Sprintf("Subscribed to Redis channel %s", b.Channel))
	}
	return out, nil
}
