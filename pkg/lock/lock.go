package lock

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gigmarket/internal/config"
)

const keyPrefix = "gigmarket:lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lease taken over by another caller is left alone.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type RedisLocker struct {
	rdb redisClient
}

func New(rdb redisClient) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func PayKey(milestoneID int) string {
	return keyPrefix + "pay:" + strconv.Itoa(milestoneID)
}

func ReleaseKey(milestoneID int) string {
	return keyPrefix + "release:" + strconv.Itoa(milestoneID)
}

// Acquire takes the lease on key for ttl. ok is false when somebody else holds it.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error) {
	token = uuid.NewString()
	ok, err = l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		zap.L().Error("Failed to acquire lock", zap.String("key", key), zap.Error(err))
		return "", false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	deleted, err := l.rdb.Eval(ctx, releaseScript, []string{key}, token).Int64()
	if err != nil {
		zap.L().Error("Failed to release lock", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	if deleted == 0 {
		zap.L().Warn("Lock already expired or taken over", zap.String("key", key))
	}
	return nil
}
