package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/SergeiKhy/utm-tracker/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statsEnv struct {
	svc    service.StatsService
	links  *mocks.MockLinkRepository
	clicks *mocks.MockClickRepository
}

func setupStats(t *testing.T) *statsEnv {
	t.Helper()
	env := &statsEnv{
		links:  mocks.NewMockLinkRepository(),
		clicks: mocks.NewMockClickRepository(),
	}
	env.svc = service.NewStatsService(env.links, env.clicks, service.DefaultWindowDays, nil)
	return env
}

func (env *statsEnv) addLink(t *testing.T, owner int64, slug string, countries ...string) *models.Link {
	t.Helper()
	link := &models.Link{UserID: owner, Slug: slug, DestinationURL: "https://example.com"}
	require.NoError(t, env.links.Create(context.Background(), link))
	for _, c := range countries {
		require.NoError(t, env.clicks.Create(context.Background(), &models.Click{LinkID: link.ID, Country: c}))
	}
	return link
}

func TestStatsService_LinkStats(t *testing.T) {
	env := setupStats(t)
	link := env.addLink(t, alice.UserID, "aaaaa", "France", "France", "Germany")

	stats, err := env.svc.LinkStats(context.Background(), alice, link.ID)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(3), stats.TotalClicks)
	assert.Equal(t, map[string]int64{"France": 2, "Germany": 1}, stats.ByCountry)
	assert.Len(t, stats.RecentClicks, 3)
	assert.Len(t, stats.ByDay, 7)
}

func TestStatsService_LinkStats_Access(t *testing.T) {
	env := setupStats(t)
	link := env.addLink(t, alice.UserID, "aaaaa", "France")

	_, err := env.svc.LinkStats(context.Background(), bob, link.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	stats, err := env.svc.LinkStats(context.Background(), admin, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalClicks)
}

// TestStatsService_LinkStats_Missing отсутствующая ссылка и недоступная БД дают nil без ошибки
func TestStatsService_LinkStats_Missing(t *testing.T) {
	env := setupStats(t)

	stats, err := env.svc.LinkStats(context.Background(), alice, 42)
	assert.NoError(t, err)
	assert.Nil(t, stats)

	link := env.addLink(t, alice.UserID, "aaaaa")
	env.clicks.Err = errors.New("db down")
	stats, err = env.svc.LinkStats(context.Background(), alice, link.ID)
	assert.NoError(t, err)
	assert.Nil(t, stats)

	env.links.Err = errors.New("db down")
	stats, err = env.svc.LinkStats(context.Background(), alice, link.ID)
	assert.NoError(t, err)
	assert.Nil(t, stats)
}

// TestStatsService_GlobalStats_OwnerScope клики всех ссылок владельца одним запросом
func TestStatsService_GlobalStats_OwnerScope(t *testing.T) {
	env := setupStats(t)
	env.addLink(t, alice.UserID, "aaaaa", "France", "France")
	env.addLink(t, alice.UserID, "bbbbb", "Germany")
	env.addLink(t, bob.UserID, "ccccc", "Spain", "Spain", "Spain")

	stats, err := env.svc.GlobalStats(context.Background(), alice, nil)
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, int64(2), stats.TotalLinks)
	assert.Equal(t, int64(3), stats.TotalClicks)
	assert.Equal(t, map[string]int64{"France": 2, "Germany": 1}, stats.ByCountry)
	assert.Equal(t, 1, env.clicks.BulkCalls)

	// Фильтр обычного пользователя не расширяет область видимости
	scoped, err := env.svc.GlobalStats(context.Background(), alice, &bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), scoped.TotalLinks)
}

func TestStatsService_GlobalStats_Admin(t *testing.T) {
	env := setupStats(t)
	env.addLink(t, alice.UserID, "aaaaa", "France")
	env.addLink(t, bob.UserID, "ccccc", "Spain", "Spain")

	all, err := env.svc.GlobalStats(context.Background(), admin, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalLinks)
	assert.Equal(t, int64(3), all.TotalClicks)

	bobs, err := env.svc.GlobalStats(context.Background(), admin, &bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bobs.TotalLinks)
	assert.Equal(t, map[string]int64{"Spain": 2}, bobs.ByCountry)
}

func TestStatsService_GlobalStats_NoLinks(t *testing.T) {
	env := setupStats(t)

	stats, err := env.svc.GlobalStats(context.Background(), alice, nil)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Zero(t, stats.TotalLinks)
	assert.Zero(t, stats.TotalClicks)
	assert.Len(t, stats.ByDay, 7)
	assert.Zero(t, env.clicks.BulkCalls)
}

func TestStatsService_GlobalStats_StoreError(t *testing.T) {
	env := setupStats(t)
	env.addLink(t, alice.UserID, "aaaaa", "France")

	env.clicks.Err = errors.New("db down")
	stats, err := env.svc.GlobalStats(context.Background(), alice, nil)
	assert.NoError(t, err)
	assert.Nil(t, stats)

	env.links.Err = errors.New("db down")
	stats, err = env.svc.GlobalStats(context.Background(), alice, nil)
	assert.NoError(t, err)
	assert.Nil(t, stats)
}
