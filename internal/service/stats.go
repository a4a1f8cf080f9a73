package service

import (
	"slices"
	"time"

	"github.com/SergeiKhy/utm-tracker/internal/attribution"
	"github.com/SergeiKhy/utm-tracker/internal/models"
)

const (
	DefaultWindowDays = 7
	recentClicksLimit = 20
	dayLayout         = "2006-01-02"
)

// ComputeStats статистика одной ссылки: разбивки и 20 последних кликов
func ComputeStats(events []models.Click, windowDays int, now time.Time) *models.LinkStats {
	recent := slices.Clone(events)
	slices.SortStableFunc(recent, func(a, b models.Click) int {
		return b.ClickedAt.Compare(a.ClickedAt)
	})
	if len(recent) > recentClicksLimit {
		recent = recent[:recentClicksLimit]
	}
	if recent == nil {
		recent = []models.Click{}
	}

	return &models.LinkStats{
		Breakdown:    aggregate(events, windowDays, now),
		RecentClicks: recent,
	}
}

// ComputeGlobalStats статистика по набору ссылок, без recent_clicks
func ComputeGlobalStats(totalLinks int, events []models.Click, windowDays int, now time.Time) *models.GlobalStats {
	return &models.GlobalStats{
		Breakdown:  aggregate(events, windowDays, now),
		TotalLinks: int64(totalLinks),
	}
}

// aggregate один проход по событиям. Каждое событие даёт ровно один счётчик
// в каждой разбивке, пустые значения учитываются как "unknown". by_day содержит
// ровно windowDays дат по локальному времени now, события вне окна в него не попадают.
func aggregate(events []models.Click, windowDays int, now time.Time) models.Breakdown {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	b := models.Breakdown{
		TotalClicks: int64(len(events)),
		ByCountry:   make(map[string]int64),
		ByDevice:    make(map[string]int64),
		ByBrowser:   make(map[string]int64),
		ByOS:        make(map[string]int64),
		ByDay:       make(map[string]int64, windowDays),
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i := 0; i < windowDays; i++ {
		b.ByDay[today.AddDate(0, 0, -i).Format(dayLayout)] = 0
	}

	for _, e := range events {
		b.ByCountry[orUnknown(e.Country)]++
		b.ByDevice[orUnknown(e.DeviceType)]++
		b.ByBrowser[orUnknown(e.Browser)]++
		b.ByOS[orUnknown(e.OS)]++

		day := e.ClickedAt.In(now.Location()).Format(dayLayout)
		if _, ok := b.ByDay[day]; ok {
			b.ByDay[day]++
		}
	}

	return b
}

func orUnknown(s string) string {
	if s == "" {
		return attribution.Unknown
	}
	return s
}
