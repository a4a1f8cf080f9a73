package service_test

import (
	"context"
	"testing"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/SergeiKhy/utm-tracker/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCatalogService_SeedDefaults повторный запуск ничего не создаёт
func TestCatalogService_SeedDefaults(t *testing.T) {
	repo := mocks.NewMockCatalogRepository()
	svc := service.NewCatalogService(repo, nil)
	ctx := context.Background()

	created, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45, created)

	created, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	socials, err := svc.List(ctx, alice, models.CatalogSocials)
	require.NoError(t, err)
	assert.Len(t, socials, 22)
	for _, s := range socials {
		assert.True(t, s.IsSystem())
	}
}

func TestCatalogService_Create_Dedup(t *testing.T) {
	repo := mocks.NewMockCatalogRepository()
	svc := service.NewCatalogService(repo, nil)
	ctx := context.Background()
	_, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)

	// Системная запись с тем же именем возвращается как есть
	existing, err := svc.Create(ctx, alice, models.CatalogSocials, &models.CreateCatalogEntryInput{Name: " Facebook "})
	require.NoError(t, err)
	assert.True(t, existing.IsSystem())

	own, err := svc.Create(ctx, alice, models.CatalogSocials, &models.CreateCatalogEntryInput{Name: "Mastodon"})
	require.NoError(t, err)
	require.NotNil(t, own.UserID)
	assert.Equal(t, alice.UserID, *own.UserID)

	again, err := svc.Create(ctx, alice, models.CatalogSocials, &models.CreateCatalogEntryInput{Name: "Mastodon"})
	require.NoError(t, err)
	assert.Equal(t, own.ID, again.ID)

	// Личная запись alice не видна bob
	bobs, err := svc.List(ctx, bob, models.CatalogSocials)
	require.NoError(t, err)
	assert.Len(t, bobs, 22)

	alices, err := svc.List(ctx, alice, models.CatalogSocials)
	require.NoError(t, err)
	assert.Len(t, alices, 23)
}

func TestCatalogService_Create_ChannelsAlwaysNew(t *testing.T) {
	svc := service.NewCatalogService(mocks.NewMockCatalogRepository(), nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, alice, models.CatalogChannels, &models.CreateCatalogEntryInput{Name: "Main", URL: "https://youtube.com/@a"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, alice, models.CatalogChannels, &models.CreateCatalogEntryInput{Name: "Main", URL: "https://youtube.com/@b"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCatalogService_Validation(t *testing.T) {
	svc := service.NewCatalogService(mocks.NewMockCatalogRepository(), nil)
	ctx := context.Background()

	_, err := svc.List(ctx, alice, models.CatalogKind("planets"))
	assert.ErrorIs(t, err, service.ErrUnknownCatalog)

	_, err = svc.Create(ctx, alice, models.CatalogKind("planets"), &models.CreateCatalogEntryInput{Name: "Mars"})
	assert.ErrorIs(t, err, service.ErrUnknownCatalog)

	_, err = svc.Create(ctx, alice, models.CatalogObjectives, &models.CreateCatalogEntryInput{Name: "   "})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
