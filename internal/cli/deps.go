package cli

import (
	"context"

	"github.com/SergeiKhy/utm-tracker/internal/repository"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"go.uber.org/zap"
)

// stores подключения к хранилищам. Redis нужен только серверу.
type stores struct {
	db    *repository.PostgresDB
	redis *repository.RedisDB

	links    repository.LinkRepository
	clicks   repository.ClickRepository
	catalogs repository.CatalogRepository
	users    repository.UserRepository
}

func (a *app) openStores(ctx context.Context, withRedis bool) (*stores, error) {
	db, err := repository.NewPostgresDB(ctx, a.cfg.DB)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Connected to PostgreSQL", zap.String("host", a.cfg.DB.Host))

	s := &stores{
		db:       db,
		links:    repository.NewLinkRepository(db),
		clicks:   repository.NewClickRepository(db),
		catalogs: repository.NewCatalogRepository(db),
		users:    repository.NewUserRepository(db),
	}

	if withRedis {
		redis, err := repository.NewRedisClient(ctx, a.cfg.Redis)
		if err != nil {
			db.Close()
			return nil, err
		}
		s.redis = redis
		a.logger.Debug("Connected to Redis", zap.String("host", a.cfg.Redis.Host))
	}

	return s, nil
}

func (s *stores) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	s.db.Close()
}

// cacheRepository без Redis кэш отключён
func (s *stores) cacheRepository() repository.CacheRepository {
	if s.redis == nil {
		return repository.NopCache{}
	}
	return repository.NewCacheRepository(s.redis)
}

func (a *app) linkService(s *stores) service.LinkService {
	return service.NewLinkService(s.links, s.cacheRepository(), s.catalogs, service.LinkServiceConfig{
		BaseURL:        a.cfg.App.BaseURL,
		CacheTTL:       a.cfg.Redis.CacheTTL,
		CreateAttempts: a.cfg.Links.CreateAttempts,
	}, a.logger)
}

func (a *app) statsService(s *stores) service.StatsService {
	return service.NewStatsService(s.links, s.clicks, a.cfg.Analytics.WindowDays, a.logger)
}
