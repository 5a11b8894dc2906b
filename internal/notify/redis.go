package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel carries every booking lifecycle event.
const Channel = "booking.events"

// Event is one lifecycle notification: booking.created, booking.confirmed,
// booking.cancelled, booking.rejected, booking.completed, booking.no_show.
type Event struct {
	Action    string    `json:"action"`
	BookingID string    `json:"booking_id"`
	Status    string    `json:"status"`
	ActorID   string    `json:"actor_id"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(redisAddr string) (*RedisPublisher, error) {
	const op = "notify.NewRedisPublisher"

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisPublisher{client: client}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	const op = "notify.RedisPublisher.Publish"

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
