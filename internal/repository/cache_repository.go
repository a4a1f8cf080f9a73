package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/redis/go-redis/v9"
)

// CacheRepository кэш разрешения slug -> ссылка
type CacheRepository interface {
	Get(ctx context.Context, slug string) (*models.Link, error)
	Set(ctx context.Context, slug string, link *models.Link, ttl time.Duration) error
	Delete(ctx context.Context, slug string) error
}

type cacheRepository struct {
	redis *RedisDB
}

func NewCacheRepository(redis *RedisDB) CacheRepository {
	return &cacheRepository{redis: redis}
}

func (r *cacheRepository) Get(ctx context.Context, slug string) (*models.Link, error) {
	data, err := r.redis.Client.Get(ctx, r.key(slug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read cached link: %w", err)
	}

	var link models.Link
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal link: %w", err)
	}

	return &link, nil
}

func (r *cacheRepository) Set(ctx context.Context, slug string, link *models.Link, ttl time.Duration) error {
	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("failed to marshal link: %w", err)
	}

	return r.redis.Client.Set(ctx, r.key(slug), data, ttl).Err()
}

func (r *cacheRepository) Delete(ctx context.Context, slug string) error {
	return r.redis.Client.Del(ctx, r.key(slug)).Err()
}

func (r *cacheRepository) key(slug string) string {
	return "utm:slug:" + slug
}

// NopCache кэш для CLI команд, которым Redis не нужен: всегда промах
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*models.Link, error) { return nil, ErrCacheMiss }

func (NopCache) Set(context.Context, string, *models.Link, time.Duration) error { return nil }

func (NopCache) Delete(context.Context, string) error { return nil }
