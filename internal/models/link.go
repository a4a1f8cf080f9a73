package models

import (
	"time"
)

// Link сгенерированная UTM-ссылка с коротким slug
type Link struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Slug           string    `json:"slug,omitempty"`
	ShortURL       string    `json:"short_url,omitempty"`
	DestinationURL string    `json:"destination_url"`
	UTMSource      string    `json:"utm_source"`
	UTMMedium      string    `json:"utm_medium"`
	UTMCampaign    string    `json:"utm_campaign"`
	UTMTerm        string    `json:"utm_term,omitempty"`
	UTMContent     string    `json:"utm_content,omitempty"`
	GeneratedURL   string    `json:"generated_url"`
	SocialID       *int64    `json:"social_id,omitempty"`
	ContentTypeID  *int64    `json:"content_type_id,omitempty"`
	ObjectiveID    *int64    `json:"objective_id,omitempty"`
	AudienceID     *int64    `json:"audience_id,omitempty"`
	ChannelID      *int64    `json:"channel_id,omitempty"`
	Hook           string    `json:"hook,omitempty"`
	Angle          string    `json:"angle,omitempty"`
	AudienceTarget string    `json:"audience_target,omitempty"`
	Budget         string    `json:"budget,omitempty"`
	ClickCount     int64     `json:"click_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateLinkInput параметры создания ссылки. Названия из справочников превращаются
// в UTM-параметры, явные utm_* имеют приоритет.
type CreateLinkInput struct {
	DestinationURL string `json:"destination_url" binding:"required"`

	Social         string `json:"social"`
	ContentType    string `json:"content_type"`
	Objective      string `json:"objective"`
	AudienceTarget string `json:"audience_target"`
	Hook           string `json:"hook"`
	Angle          string `json:"angle"`
	Budget         string `json:"budget"`

	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`
	UTMTerm     string `json:"utm_term"`
	UTMContent  string `json:"utm_content"`

	SocialID      *int64 `json:"social_id"`
	ContentTypeID *int64 `json:"content_type_id"`
	ObjectiveID   *int64 `json:"objective_id"`
	AudienceID    *int64 `json:"audience_id"`
	ChannelID     *int64 `json:"channel_id"`
	ChannelName   string `json:"channel_name"`
	ChannelURL    string `json:"channel_url"`
}

// LinkWithOwner строка экспорта: ссылка и данные владельца
type LinkWithOwner struct {
	Link
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// CleanupResult итог удаления тестовых данных
type CleanupResult struct {
	DeletedLinks   int64 `json:"deleted"`
	DeletedEntries int64 `json:"deleted_entries"`
}
