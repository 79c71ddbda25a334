package relay

import (
	"context"
	"fmt"

	"commitsonic/internal/logger"
	"commitsonic/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisRelay publishes each batch with PUBLISH on the repository channel.
type RedisRelay struct {
	client redisPublisher
}

func NewRedisRelay(client *redis.Client) *RedisRelay {
	return &RedisRelay{client: client}
}

func (r *RedisRelay) Publish(ctx context.Context, repoFullName string, commits []models.Commit) error {
	channel, payload, err := encode(repoFullName, commits)
	if err != nil {
		return err
	}

	receivers, err := r.client.Publish(ctx, channel, payload).Result()
	if err != nil {
		return fmt.Errorf("relay: redis publish to %s failed: %w", channel, err)
	}

	logger.Debug("batch relayed",
		zap.String("driver", DriverRedis),
		zap.String("channel", channel),
		zap.Int("commit_count", len(commits)),
		zap.Int64("receivers", receivers))
	return nil
}

// Close leaves the client open; it is owned by the db package.
func (r *RedisRelay) Close() error {
	return nil
}
