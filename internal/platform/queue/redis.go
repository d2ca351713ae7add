package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"sahaya_api/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a client that has answered a PING.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func CloseRedis(rdb *redis.Client, logger *slog.Logger) {
	if rdb == nil {
		return
	}
	if err := rdb.Close(); err != nil {
		logger.Error("Closing redis", slog.Any("error", err))
		return
	}
	logger.Info("Redis connection closed")
}

// RedisPublisher fans user events out on a pub/sub channel that the socket
// gateway subscribes to.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event model.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", event.Type, err)
	}
	return nil
}

// NopPublisher drops events. Used when no redis is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.Event) error { return nil }
