package publisher

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher implements Publisher using Redis streams. Each key gets its
// own stream named <prefix>:<key>.
type RedisPublisher struct {
	client          *redis.Client
	streamPrefix    string
	streamMaxLength int64
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, streamPrefix string, streamMaxLength int64) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		streamPrefix:    streamPrefix,
		streamMaxLength: streamMaxLength,
	}
}

// Ping checks that Redis answers
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Stream returns the stream name messages for key are added to
func (p *RedisPublisher) Stream(key string) string {
	return p.streamPrefix + ":" + key
}

// Publish adds message to the key's stream as a JSON string field
func (p *RedisPublisher) Publish(ctx context.Context, key string, message []byte) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.Stream(key),
		Values: map[string]interface{}{
			key: string(message),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.Stream(key), err)
	}
	return nil
}

// TrimStreams trims all streams to the configured maximum length
func (p *RedisPublisher) TrimStreams(ctx context.Context) error {
	pattern := p.streamPrefix + ":*"
	iter := p.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		stream := iter.Val()
		if err := p.client.XTrimMaxLen(ctx, stream, p.streamMaxLength).Err(); err != nil {
			return fmt.Errorf("xtrim %s: %w", stream, err)
		}
	}
	return iter.Err()
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
