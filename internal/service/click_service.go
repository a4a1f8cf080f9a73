package service

import (
	"context"
	"fmt"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/repository"
	"go.uber.org/zap"
)

// ClickService запись и чтение кликов
type ClickService interface {
	// Record сохраняет клик и атомарно увеличивает счётчик ссылки
	Record(ctx context.Context, click *models.Click) error
	RecordInput(ctx context.Context, input *models.RecordClickInput) (*models.Click, error)
	ListByLink(ctx context.Context, p models.Principal, linkID int64) ([]models.Click, error)
}

type clickService struct {
	clickRepo repository.ClickRepository
	linkRepo  repository.LinkRepository
	logger    *zap.Logger
}

func NewClickService(clickRepo repository.ClickRepository, linkRepo repository.LinkRepository, logger *zap.Logger) ClickService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &clickService{
		clickRepo: clickRepo,
		linkRepo:  linkRepo,
		logger:    logger,
	}
}

func (s *clickService) Record(ctx context.Context, click *models.Click) error {
	if err := s.clickRepo.Create(ctx, click); err != nil {
		return err
	}

	// Инкремент вычисляется в БД (click_count + 1), гонки не теряют клики
	if err := s.linkRepo.IncrementClickCount(ctx, click.LinkID); err != nil {
		return fmt.Errorf("click %d stored but counter not updated: %w", click.ID, err)
	}

	return nil
}

// RecordInput ручная запись клика в обход редиректа
func (s *clickService) RecordInput(ctx context.Context, input *models.RecordClickInput) (*models.Click, error) {
	if input == nil || input.LinkID <= 0 {
		return nil, fmt.Errorf("%w: utm_link_id must be positive", ErrInvalidInput)
	}

	click := input.ToClick()
	if err := s.Record(ctx, click); err != nil {
		return nil, err
	}

	s.logger.Debug("Клик записан вручную", zap.Int64("link_id", click.LinkID), zap.Int64("click_id", click.ID))
	return click, nil
}

func (s *clickService) ListByLink(ctx context.Context, p models.Principal, linkID int64) ([]models.Click, error) {
	link, err := s.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if !p.CanAccess(link.UserID) {
		return nil, ErrForbidden
	}
	return s.clickRepo.ListByLink(ctx, linkID)
}
