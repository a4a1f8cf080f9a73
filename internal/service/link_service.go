package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/repository"
	"go.uber.org/zap"
)

// Константы сервиса
const (
	defaultCacheTTL       = 24 * time.Hour
	defaultCreateAttempts = 5
	testDataMarker        = "test"
)

// LinkService интерфейс сервиса UTM-ссылок
type LinkService interface {
	CreateLink(ctx context.Context, p models.Principal, input *models.CreateLinkInput) (*models.Link, error)
	// ResolveSlug разрешает slug для редиректа: сначала кэш, затем БД
	ResolveSlug(ctx context.Context, slug string) (*models.Link, error)
	GetLink(ctx context.Context, p models.Principal, id int64) (*models.Link, error)
	ListLinks(ctx context.Context, p models.Principal, filterUserID *int64) ([]*models.Link, error)
	DeleteLink(ctx context.Context, p models.Principal, id int64) error
	ExportLinks(ctx context.Context, p models.Principal) ([]*models.LinkWithOwner, error)
	// CleanupTestData удаляет тестовые ссылки и личные записи справочников,
	// содержащие "test". Только для администратора.
	CleanupTestData(ctx context.Context, p models.Principal) (*models.CleanupResult, error)
}

// LinkServiceConfig параметры сервиса ссылок
type LinkServiceConfig struct {
	BaseURL        string
	CacheTTL       time.Duration
	CreateAttempts int
}

// linkService реализация сервиса ссылок
type linkService struct {
	linkRepo    repository.LinkRepository
	cacheRepo   repository.CacheRepository
	catalogRepo repository.CatalogRepository
	allocator   *SlugAllocator
	cfg         LinkServiceConfig
	logger      *zap.Logger
}

// NewLinkService создаёт новый экземпляр сервиса
func NewLinkService(
	linkRepo repository.LinkRepository,
	cacheRepo repository.CacheRepository,
	catalogRepo repository.CatalogRepository,
	cfg LinkServiceConfig,
	logger *zap.Logger,
) LinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.CreateAttempts <= 0 {
		cfg.CreateAttempts = defaultCreateAttempts
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &linkService{
		linkRepo:    linkRepo,
		cacheRepo:   cacheRepo,
		catalogRepo: catalogRepo,
		allocator:   NewSlugAllocator(linkRepo),
		cfg:         cfg,
		logger:      logger,
	}
}

// CreateLink собирает UTM-параметры, генерирует URL и сохраняет ссылку
// вместе с уже назначенным slug
func (s *linkService) CreateLink(ctx context.Context, p models.Principal, input *models.CreateLinkInput) (*models.Link, error) {
	params := utmParamsFromInput(input)
	if params.Source == "" || params.Medium == "" || params.Campaign == "" {
		return nil, fmt.Errorf("%w: utm_source, utm_medium and utm_campaign are required", ErrInvalidInput)
	}

	generatedURL, err := BuildUTMURL(input.DestinationURL, params)
	if err != nil {
		return nil, err
	}

	// Канал создаётся по имени, если id не передан
	channelID := input.ChannelID
	if channelID == nil && strings.TrimSpace(input.ChannelName) != "" {
		owner := p.UserID
		channel := &models.CatalogEntry{
			Kind:   models.CatalogChannels,
			Name:   strings.TrimSpace(input.ChannelName),
			URL:    strings.TrimSpace(input.ChannelURL),
			UserID: &owner,
		}
		if err := s.catalogRepo.Create(ctx, channel); err != nil {
			return nil, fmt.Errorf("failed to create channel: %w", err)
		}
		channelID = &channel.ID
	}

	link := &models.Link{
		UserID:         p.UserID,
		DestinationURL: strings.TrimSpace(input.DestinationURL),
		UTMSource:      params.Source,
		UTMMedium:      params.Medium,
		UTMCampaign:    params.Campaign,
		UTMTerm:        params.Term,
		UTMContent:     params.Content,
		GeneratedURL:   generatedURL,
		SocialID:       input.SocialID,
		ContentTypeID:  input.ContentTypeID,
		ObjectiveID:    input.ObjectiveID,
		AudienceID:     input.AudienceID,
		ChannelID:      channelID,
		Hook:           input.Hook,
		Angle:          input.Angle,
		AudienceTarget: input.AudienceTarget,
		Budget:         input.Budget,
	}

	// Проверка slug и вставка не атомарны: при гонке уникальный индекс
	// вернёт ErrSlugExists, тогда пробуем новый slug
	for attempt := 1; ; attempt++ {
		slug, err := s.allocator.Allocate(ctx)
		if err != nil {
			return nil, err
		}
		link.Slug = slug
		link.ShortURL = BuildShortURL(s.cfg.BaseURL, slug)

		err = s.linkRepo.Create(ctx, link)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrSlugExists) {
			return nil, err
		}

		s.logger.Warn("Коллизия slug при создании ссылки",
			zap.String("slug", slug),
			zap.Int("attempt", attempt),
		)
		if attempt >= s.cfg.CreateAttempts {
			return nil, ErrSlugExhausted
		}
	}

	s.cache(ctx, link)

	s.logger.Info("Ссылка создана",
		zap.Int64("link_id", link.ID),
		zap.String("slug", link.Slug),
		zap.Int64("user_id", link.UserID),
	)

	return link, nil
}

func (s *linkService) ResolveSlug(ctx context.Context, slug string) (*models.Link, error) {
	link, err := s.cacheRepo.Get(ctx, slug)
	if err == nil {
		return link, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		s.logger.Warn("Ошибка чтения кэша", zap.String("slug", slug), zap.Error(err))
	}

	link, err = s.linkRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	s.cache(ctx, link)
	return link, nil
}

func (s *linkService) GetLink(ctx context.Context, p models.Principal, id int64) (*models.Link, error) {
	link, err := s.linkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanAccess(link.UserID) {
		return nil, ErrForbidden
	}
	return link, nil
}

func (s *linkService) ListLinks(ctx context.Context, p models.Principal, filterUserID *int64) ([]*models.Link, error) {
	return s.linkRepo.List(ctx, ResolveOwnerScope(p, filterUserID))
}

// DeleteLink удаляет ссылку владельца (или любую для администратора)
func (s *linkService) DeleteLink(ctx context.Context, p models.Principal, id int64) error {
	link, err := s.GetLink(ctx, p, id)
	if err != nil {
		return err
	}

	if err := s.linkRepo.Delete(ctx, id); err != nil {
		return err
	}

	if link.Slug != "" {
		if err := s.cacheRepo.Delete(ctx, link.Slug); err != nil {
			s.logger.Warn("Не удалось удалить ссылку из кэша", zap.String("slug", link.Slug), zap.Error(err))
		}
	}

	s.logger.Info("Ссылка удалена", zap.Int64("link_id", id), zap.Int64("by_user", p.UserID))
	return nil
}

func (s *linkService) ExportLinks(ctx context.Context, p models.Principal) ([]*models.LinkWithOwner, error) {
	return s.linkRepo.ListWithOwner(ctx, ResolveOwnerScope(p, nil))
}

func (s *linkService) CleanupTestData(ctx context.Context, p models.Principal) (*models.CleanupResult, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	// Клики удаляются каскадно вместе со ссылками
	slugs, err := s.linkRepo.DeleteMatching(ctx, testDataMarker)
	if err != nil {
		return nil, err
	}
	for _, slug := range slugs {
		if slug == "" {
			continue
		}
		if err := s.cacheRepo.Delete(ctx, slug); err != nil {
			s.logger.Warn("Не удалось удалить ссылку из кэша", zap.String("slug", slug), zap.Error(err))
		}
	}

	result := &models.CleanupResult{DeletedLinks: int64(len(slugs))}
	for _, kind := range models.CatalogKinds {
		// Каналы создаются только пользователями, системных среди них нет
		n, err := s.catalogRepo.DeleteMatching(ctx, kind, testDataMarker, kind == models.CatalogChannels)
		if err != nil {
			return nil, err
		}
		result.DeletedEntries += n
	}

	s.logger.Info("Тестовые данные удалены",
		zap.Int64("links", result.DeletedLinks),
		zap.Int64("entries", result.DeletedEntries),
		zap.Int64("by_user", p.UserID),
	)
	return result, nil
}

// cache ошибки кэша не прерывают операцию
func (s *linkService) cache(ctx context.Context, link *models.Link) {
	if link.Slug == "" {
		return
	}
	if err := s.cacheRepo.Set(ctx, link.Slug, link, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("Не удалось закэшировать ссылку", zap.String("slug", link.Slug), zap.Error(err))
	}
}

// ResolveOwnerScope возвращает владельца, чьи ссылки видит вызывающий.
// nil означает все ссылки (только для администратора без фильтра).
func ResolveOwnerScope(p models.Principal, filterUserID *int64) *int64 {
	if p.IsAdmin() {
		return filterUserID
	}
	owner := p.UserID
	return &owner
}

func utmParamsFromInput(input *models.CreateLinkInput) UTMParams {
	pick := func(explicit, name string) string {
		if v := strings.TrimSpace(explicit); v != "" {
			return v
		}
		return Slugify(name)
	}

	content := input.Hook
	if strings.TrimSpace(content) == "" {
		content = input.Angle
	}

	return UTMParams{
		Source:   pick(input.UTMSource, input.Social),
		Medium:   pick(input.UTMMedium, input.ContentType),
		Campaign: pick(input.UTMCampaign, input.Objective),
		Term:     pick(input.UTMTerm, input.AudienceTarget),
		Content:  pick(input.UTMContent, content),
	}
}
