package models

import "time"

// CatalogKind имя справочника
type CatalogKind string

const (
	CatalogSocials      CatalogKind = "socials"
	CatalogContentTypes CatalogKind = "content_types"
	CatalogObjectives   CatalogKind = "objectives"
	CatalogAudiences    CatalogKind = "audiences"
	CatalogChannels     CatalogKind = "channels"
)

var CatalogKinds = []CatalogKind{
	CatalogSocials,
	CatalogContentTypes,
	CatalogObjectives,
	CatalogAudiences,
	CatalogChannels,
}

func (k CatalogKind) Valid() bool {
	for _, kind := range CatalogKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// CatalogEntry запись справочника. UserID == nil означает системную запись,
// видимую всем пользователям.
type CatalogEntry struct {
	ID        int64       `json:"id"`
	Kind      CatalogKind `json:"kind"`
	Name      string      `json:"name"`
	URL       string      `json:"url,omitempty"`
	UserID    *int64      `json:"user_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func (e *CatalogEntry) IsSystem() bool {
	return e.UserID == nil
}

type CreateCatalogEntryInput struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url"`
}
