package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisClient struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisClient(addr, password string, db int, log *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))

	return &RedisClient{client: rdb, log: log}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Кэш шаблонов: сериализованный шаблон по ключу name:language.

func templateKey(name, language string) string {
	return fmt.Sprintf("template:%s:%s", name, language)
}

func (r *RedisClient) SetTemplate(ctx context.Context, name, language string, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, templateKey(name, language), data, ttl).Err()
}

func (r *RedisClient) GetTemplate(ctx context.Context, name, language string) ([]byte, error) {
	return r.client.Get(ctx, templateKey(name, language)).Bytes()
}

func (r *RedisClient) InvalidateTemplate(ctx context.Context, name, language string) error {
	return r.client.Del(ctx, templateKey(name, language)).Err()
}

// Блокировка диспетчера: два экземпляра не должны разбирать одну очередь.

func (r *RedisClient) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, "1", ttl).Result()
}

// RefreshLock продлевает аренду. false — ключ уже истёк или удалён,
// блокировка потеряна и может быть захвачена другим экземпляром.
func (r *RedisClient) RefreshLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.Expire(ctx, key, ttl).Result()
}

func (r *RedisClient) ReleaseLock(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
