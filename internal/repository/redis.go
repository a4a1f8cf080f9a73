package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeiKhy/utm-tracker/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPoolSize = 50
	redisDialTimeout     = 5 * time.Second
)

// RedisDB кэш slug -> ссылка для редиректа
type RedisDB struct {
	Client *redis.Client
}

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*RedisDB, error) {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultRedisPoolSize
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     poolSize,
		MinIdleConns: max(1, poolSize/10),
		DialTimeout:  redisDialTimeout,
	})

	db := &RedisDB{Client: client}
	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()

	if err := db.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", client.Options().Addr, err)
	}

	return db, nil
}

// Ping используется при подключении и в health check
func (db *RedisDB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx).Err()
}

func (db *RedisDB) Close() error {
	return db.Client.Close()
}
