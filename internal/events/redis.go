package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisBus relays events through Redis pub/sub so every API instance sees them.
type RedisBus struct {
	client  *redis.Client
	channel string
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a Redis client and checks the connection.
func NewRedisClient(ctx context.Context, opt RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opt.Addr,
		Password: opt.Password,
		DB:       opt.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client, channel: Channel}
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, raw).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	sub := b.client.Subscribe(ctx, b.channel)
	// Receive blocks until the subscription is confirmed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	out := make(chan Event, 32)
	go relay(ctx, sub.Channel(), out)

	cancel := func() { _ = sub.Close() }
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return out, cancel, nil
}

// relay decodes pub/sub payloads into out until in closes or ctx ends. Payloads that
// are not events are skipped, and events are dropped while out is full.
func relay(ctx context.Context, in <-chan *redis.Message, out chan<- Event) {
	defer close(out)
	for msg := range in {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("[EVENTS] action=decode channel=%s error=%q", msg.Channel, err.Error())
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}
