package service

import (
	"context"
	"errors"
	"time"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/repository"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// StatsService статистика кликов для дашборда. Недоступность БД не считается
// ошибкой: возвращается nil, чтобы дашборд продолжал работать.
type StatsService interface {
	// LinkStats nil, если ссылки нет; ErrForbidden, если вызывающий не владелец и не админ
	LinkStats(ctx context.Context, p models.Principal, linkID int64) (*models.LinkStats, error)
	GlobalStats(ctx context.Context, p models.Principal, filterUserID *int64) (*models.GlobalStats, error)
}

type statsService struct {
	linkRepo   repository.LinkRepository
	clickRepo  repository.ClickRepository
	windowDays int
	now        func() time.Time
	logger     *zap.Logger
}

func NewStatsService(
	linkRepo repository.LinkRepository,
	clickRepo repository.ClickRepository,
	windowDays int,
	logger *zap.Logger,
) StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &statsService{
		linkRepo:   linkRepo,
		clickRepo:  clickRepo,
		windowDays: windowDays,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *statsService) LinkStats(ctx context.Context, p models.Principal, linkID int64) (*models.LinkStats, error) {
	link, err := s.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		if !errors.Is(err, repository.ErrLinkNotFound) {
			s.logger.Error("Не удалось загрузить ссылку для статистики", zap.Int64("link_id", linkID), zap.Error(err))
		}
		return nil, nil
	}

	if !p.CanAccess(link.UserID) {
		return nil, ErrForbidden
	}

	events, err := s.clickRepo.ListByLink(ctx, linkID)
	if err != nil {
		s.logger.Error("Не удалось загрузить клики", zap.Int64("link_id", linkID), zap.Error(err))
		return nil, nil
	}

	return ComputeStats(events, s.windowDays, s.now()), nil
}

// GlobalStats администратор видит все ссылки или ссылки filterUserID,
// остальные только свои. Клики загружаются одним запросом по списку id.
func (s *statsService) GlobalStats(ctx context.Context, p models.Principal, filterUserID *int64) (*models.GlobalStats, error) {
	scope := ResolveOwnerScope(p, filterUserID)

	ids, err := s.linkRepo.ListIDs(ctx, scope)
	if err != nil {
		s.logger.Error("Не удалось загрузить ссылки для статистики", zap.Error(err))
		return nil, nil
	}
	ids = lo.Uniq(ids)

	if len(ids) == 0 {
		return ComputeGlobalStats(0, nil, s.windowDays, s.now()), nil
	}

	events, err := s.clickRepo.ListByLinks(ctx, ids)
	if err != nil {
		s.logger.Error("Не удалось загрузить клики", zap.Int("links", len(ids)), zap.Error(err))
		return nil, nil
	}

	return ComputeGlobalStats(len(ids), events, s.windowDays, s.now()), nil
}
