package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        int64     `json:"id"`
	OpenID    string    `json:"open_id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Principal аутентифицированный вызывающий
type Principal struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccess владелец или администратор
func (p Principal) CanAccess(ownerID int64) bool {
	return p.IsAdmin() || p.UserID == ownerID
}
