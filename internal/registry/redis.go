package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// ErrNotConnected is returned by Push when the user has no live connection.
var ErrNotConnected = errors.New("user has no live connection")

// presenceKey is the Redis set of user ids with at least one open socket.
// The socket front-end adds and removes members; the matcher only reads.
const presenceKey = "notif:online_users"

func userChannel(userID int64) string {
	return fmt.Sprintf("notif:user:%d", userID)
}

// RedisRegistry implements Registry on Redis: presence via a shared set,
// delivery via pub/sub channels the socket front-end subscribes to. This
// keeps the matcher process free of any socket handling.
type RedisRegistry struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewRedisRegistry creates a registry backed by the given Redis client.
func NewRedisRegistry(rdb *redis.Client, logger *slog.Logger) *RedisRegistry {
	return &RedisRegistry{rdb: rdb, logger: logger}
}

func (r *RedisRegistry) Lookup(ctx context.Context, userID int64) (bool, error) {
	online, err := r.rdb.SIsMember(ctx, presenceKey, userID).Result()
	if err != nil {
		return false, fmt.Errorf("presence lookup for user %d: %w", userID, err)
	}
	return online, nil
}

// pushEnvelope is the wire format published to the user channel.
type pushEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func (r *RedisRegistry) Push(ctx context.Context, userID int64, event string, payload any) error {
	body, err := json.Marshal(pushEnvelope{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	receivers, err := r.rdb.Publish(ctx, userChannel(userID), body).Result()
	if err != nil {
		return fmt.Errorf("publish to user %d: %w", userID, err)
	}
	if receivers == 0 {
		// Connection dropped between Lookup and Push. The persisted
		// notification remains the durable record.
		return ErrNotConnected
	}

	r.logger.Debug("Push delivered",
		slog.Int64("user_id", userID),
		slog.String("event", event),
		slog.Int64("subscribers", receivers),
	)

	return nil
}

// NewRedisClient parses a redis URL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}
