package redis

import (
	"context"
	"fmt"
	"time"

	"sms_campaign_server/internal/config"

	"github.com/redis/go-redis/v9"
)

// Init connects to redis and starts the cache workers.
// The connection is verified with a PING before returning.
func Init(ctx context.Context, cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.Db,
		PoolSize:     50,
		MinIdleConns: cfg.WorkerNum,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	workers, size := cfg.WorkerNum, cfg.TaskChanSize
	if workers <= 0 {
		workers = 15
	}
	if size <= 0 {
		size = 3000
	}
	return NewRedisCache(client, workers, size), nil
}
