package models

// Breakdown общие для обоих видов статистики счётчики
type Breakdown struct {
	TotalClicks int64            `json:"total_clicks"`
	ByCountry   map[string]int64 `json:"by_country"`
	ByDevice    map[string]int64 `json:"by_device"`
	ByBrowser   map[string]int64 `json:"by_browser"`
	ByOS        map[string]int64 `json:"by_os"`
	ByDay       map[string]int64 `json:"by_day"`
}

// LinkStats статистика одной ссылки
type LinkStats struct {
	Breakdown
	RecentClicks []Click `json:"recent_clicks"`
}

// GlobalStats статистика по всем ссылкам в области видимости
type GlobalStats struct {
	Breakdown
	TotalLinks int64 `json:"total_links"`
}
