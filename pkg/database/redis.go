package database

import (
	"context"

	"github.com/go-redis/redis/v8"

	"kanban-backend/configs"
)

// ConnectRedis opens the cache client. The cache is advisory: callers decide
// whether a failed connection is fatal.
func ConnectRedis(ctx context.Context, cfg configs.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
		DB:   0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
