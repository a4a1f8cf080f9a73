package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/repository"
	"go.uber.org/zap"
)

// Системные записи справочников, создаются SeedDefaults
var defaultCatalog = map[models.CatalogKind][]string{
	models.CatalogSocials: {
		"YouTube", "YouTube Ads",
		"Facebook", "Facebook Ads",
		"Instagram", "Instagram Ads",
		"WhatsApp", "WhatsApp Ads",
		"Threads", "Threads Ads",
		"TikTok", "TikTok for Business",
		"X", "X Ads",
		"Snapchat", "Snapchat Ads",
		"LinkedIn", "LinkedIn Ads",
		"Pinterest", "Pinterest Ads",
		"Google Ads", "Apple Search Ads",
	},
	models.CatalogContentTypes: {"Photo", "Vidéo", "Texte", "Sondage", "Story", "Reel", "Live", "Short", "Visuel"},
	models.CatalogObjectives:   {"Conversion", "Lead", "Trafic", "Vente", "Notoriété", "Engagement"},
	models.CatalogAudiences: {
		"Entrepreneur",
		"Étudiants",
		"Salariés",
		"PME et TPE",
		"Freelances",
		"Marketeurs digitaux",
		"E-commerçants",
		"Créateurs de contenu",
	},
}

// CatalogService справочники для построения UTM-параметров
type CatalogService interface {
	List(ctx context.Context, p models.Principal, kind models.CatalogKind) ([]*models.CatalogEntry, error)
	// Create возвращает существующую запись с таким именем или создаёт личную
	Create(ctx context.Context, p models.Principal, kind models.CatalogKind, input *models.CreateCatalogEntryInput) (*models.CatalogEntry, error)
	// SeedDefaults создаёт отсутствующие системные записи, возвращает число созданных
	SeedDefaults(ctx context.Context) (int, error)
}

type catalogService struct {
	repo   repository.CatalogRepository
	logger *zap.Logger
}

func NewCatalogService(repo repository.CatalogRepository, logger *zap.Logger) CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &catalogService{repo: repo, logger: logger}
}

func (s *catalogService) List(ctx context.Context, p models.Principal, kind models.CatalogKind) ([]*models.CatalogEntry, error) {
	if !kind.Valid() {
		return nil, ErrUnknownCatalog
	}
	return s.repo.List(ctx, kind, p.UserID)
}

func (s *catalogService) Create(ctx context.Context, p models.Principal, kind models.CatalogKind, input *models.CreateCatalogEntryInput) (*models.CatalogEntry, error) {
	if !kind.Valid() {
		return nil, ErrUnknownCatalog
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	owner := p.UserID

	// Каналы всегда личные, без дедупликации по имени
	if kind != models.CatalogChannels {
		existing, err := s.repo.FindByName(ctx, kind, name, &owner)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repository.ErrEntryNotFound) {
			return nil, err
		}
	}

	entry := &models.CatalogEntry{
		Kind:   kind,
		Name:   name,
		URL:    strings.TrimSpace(input.URL),
		UserID: &owner,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Debug("Создана запись справочника",
		zap.String("kind", string(kind)),
		zap.String("name", name),
		zap.Int64("user_id", owner),
	)
	return entry, nil
}

func (s *catalogService) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, kind := range models.CatalogKinds {
		for _, name := range defaultCatalog[kind] {
			_, err := s.repo.FindByName(ctx, kind, name, nil)
			if err == nil {
				continue
			}
			if !errors.Is(err, repository.ErrEntryNotFound) {
				return created, err
			}

			if err := s.repo.Create(ctx, &models.CatalogEntry{Kind: kind, Name: name}); err != nil {
				return created, err
			}
			created++
		}
	}

	s.logger.Info("Справочники инициализированы", zap.Int("created", created))
	return created, nil
}
