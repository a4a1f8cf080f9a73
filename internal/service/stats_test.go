package service_test

import (
	"testing"
	"time"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statsNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func sum(m map[string]int64) int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}

// TestComputeStats_Scenario 2 клика из Франции и 1 из Германии
func TestComputeStats_Scenario(t *testing.T) {
	events := []models.Click{
		{ID: 1, Country: "France", ClickedAt: statsNow.Add(-time.Hour)},
		{ID: 2, Country: "France", ClickedAt: statsNow.Add(-2 * time.Hour)},
		{ID: 3, Country: "Germany", ClickedAt: statsNow.Add(-3 * time.Hour)},
	}

	stats := service.ComputeStats(events, service.DefaultWindowDays, statsNow)

	assert.Equal(t, int64(3), stats.TotalClicks)
	assert.Equal(t, map[string]int64{"France": 2, "Germany": 1}, stats.ByCountry)
	assert.Equal(t, int64(3), stats.ByDay["2026-03-15"])
}

// TestComputeStats_BreakdownsSumToTotal каждое событие учитывается один раз в каждой разбивке
func TestComputeStats_BreakdownsSumToTotal(t *testing.T) {
	events := []models.Click{
		{Country: "France", DeviceType: "mobile", Browser: "Safari", OS: "iOS", ClickedAt: statsNow},
		{Country: "", DeviceType: "desktop", Browser: "Chrome", OS: "", ClickedAt: statsNow.AddDate(0, 0, -1)},
		{Country: "Spain", DeviceType: "", Browser: "", OS: "Android", ClickedAt: statsNow.AddDate(0, 0, -30)},
		{ClickedAt: statsNow.AddDate(0, 0, -3)},
	}

	stats := service.ComputeStats(events, service.DefaultWindowDays, statsNow)

	assert.Equal(t, int64(4), stats.TotalClicks)
	assert.Equal(t, stats.TotalClicks, sum(stats.ByCountry))
	assert.Equal(t, stats.TotalClicks, sum(stats.ByDevice))
	assert.Equal(t, stats.TotalClicks, sum(stats.ByBrowser))
	assert.Equal(t, stats.TotalClicks, sum(stats.ByOS))

	assert.Equal(t, int64(2), stats.ByCountry["unknown"])
	assert.Equal(t, int64(2), stats.ByDevice["unknown"])

	// Клик 30-дневной давности не попадает в by_day
	assert.Equal(t, int64(3), sum(stats.ByDay))
}

// TestComputeStats_ByDayWindow by_day содержит ровно 7 последовательных дат
func TestComputeStats_ByDayWindow(t *testing.T) {
	stats := service.ComputeStats(nil, service.DefaultWindowDays, statsNow)

	require.Len(t, stats.ByDay, 7)
	for i := 0; i < 7; i++ {
		day := statsNow.AddDate(0, 0, -i).Format("2006-01-02")
		v, ok := stats.ByDay[day]
		assert.True(t, ok, "missing day %s", day)
		assert.Zero(t, v)
	}
	_, ok := stats.ByDay["2026-03-08"]
	assert.False(t, ok)
}

func TestComputeStats_CustomWindow(t *testing.T) {
	stats := service.ComputeStats(nil, 30, statsNow)
	assert.Len(t, stats.ByDay, 30)

	fallback := service.ComputeStats(nil, 0, statsNow)
	assert.Len(t, fallback.ByDay, service.DefaultWindowDays)
}

// TestComputeStats_Empty пустой набор событий
func TestComputeStats_Empty(t *testing.T) {
	stats := service.ComputeStats([]models.Click{}, service.DefaultWindowDays, statsNow)

	assert.Zero(t, stats.TotalClicks)
	assert.Empty(t, stats.ByCountry)
	assert.Empty(t, stats.ByDevice)
	assert.Empty(t, stats.ByBrowser)
	assert.Empty(t, stats.ByOS)
	assert.Len(t, stats.ByDay, 7)
	assert.NotNil(t, stats.RecentClicks)
	assert.Empty(t, stats.RecentClicks)
}

// TestComputeStats_RecentClicksCapped не больше 20 последних кликов
func TestComputeStats_RecentClicksCapped(t *testing.T) {
	base := statsNow.Add(-24 * time.Hour)
	events := make([]models.Click, 10000)
	for i := range events {
		events[i] = models.Click{ID: int64(i + 1), ClickedAt: base.Add(time.Duration(i) * time.Second)}
	}
	// Порядок входа не должен влиять на результат
	events[0], events[9999] = events[9999], events[0]

	stats := service.ComputeStats(events, service.DefaultWindowDays, statsNow)

	require.Len(t, stats.RecentClicks, 20)
	for i, c := range stats.RecentClicks {
		assert.Equal(t, int64(10000-i), c.ID)
	}
	assert.Equal(t, int64(10000), stats.TotalClicks)
	// Входной срез не изменяется
	assert.Equal(t, int64(10000), events[0].ID)
}

func TestComputeGlobalStats(t *testing.T) {
	events := []models.Click{
		{LinkID: 1, Country: "France", ClickedAt: statsNow},
		{LinkID: 2, Country: "Germany", ClickedAt: statsNow},
	}

	stats := service.ComputeGlobalStats(3, events, service.DefaultWindowDays, statsNow)
	assert.Equal(t, int64(3), stats.TotalLinks)
	assert.Equal(t, int64(2), stats.TotalClicks)
	assert.Equal(t, int64(2), stats.ByDay["2026-03-15"])
}

func TestComputeStats_LocalDay(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	now := time.Date(2026, time.March, 15, 0, 30, 0, 0, paris)
	// 23:45 UTC 14 марта это уже 15 марта в CET
	events := []models.Click{{ClickedAt: time.Date(2026, time.March, 14, 23, 45, 0, 0, time.UTC)}}

	stats := service.ComputeStats(events, service.DefaultWindowDays, now)
	assert.Equal(t, int64(1), stats.ByDay["2026-03-15"])
}
