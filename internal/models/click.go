package models

import (
	"time"
)

// Click один зафиксированный переход по короткой ссылке. Не изменяется после записи.
type Click struct {
	ID             int64     `json:"id"`
	LinkID         int64     `json:"utm_link_id"`
	Country        string    `json:"country,omitempty"`
	CountryCode    string    `json:"country_code,omitempty"`
	Region         string    `json:"region,omitempty"`
	City           string    `json:"city,omitempty"`
	DeviceType     string    `json:"device_type,omitempty"`
	Browser        string    `json:"browser,omitempty"`
	BrowserVersion string    `json:"browser_version,omitempty"`
	OS             string    `json:"os,omitempty"`
	OSVersion      string    `json:"os_version,omitempty"`
	Platform       string    `json:"platform,omitempty"`
	Referer        string    `json:"referer,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	IPAddress      string    `json:"ip_address,omitempty"`
	ClickedAt      time.Time `json:"clicked_at"`
}

// ClickEvent сырые данные запроса, передаваемые в worker pool
type ClickEvent struct {
	LinkID     int64
	Slug       string
	IPAddress  string
	UserAgent  string
	Referer    string
	ReceivedAt time.Time
}

// RecordClickInput тело запроса ручной записи клика
type RecordClickInput struct {
	LinkID         int64  `json:"utm_link_id"`
	Country        string `json:"country"`
	CountryCode    string `json:"country_code"`
	City           string `json:"city"`
	Region         string `json:"region"`
	DeviceType     string `json:"device_type"`
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browser_version"`
	OS             string `json:"os"`
	OSVersion      string `json:"os_version"`
	Platform       string `json:"platform"`
	Referer        string `json:"referer"`
	UserAgent      string `json:"user_agent"`
	IPAddress      string `json:"ip_address"`
}

func (in RecordClickInput) ToClick() *Click {
	return &Click{
		LinkID:         in.LinkID,
		Country:        in.Country,
		CountryCode:    in.CountryCode,
		City:           in.City,
		Region:         in.Region,
		DeviceType:     in.DeviceType,
		Browser:        in.Browser,
		BrowserVersion: in.BrowserVersion,
		OS:             in.OS,
		OSVersion:      in.OSVersion,
		Platform:       in.Platform,
		Referer:        in.Referer,
		UserAgent:      in.UserAgent,
		IPAddress:      in.IPAddress,
	}
}
