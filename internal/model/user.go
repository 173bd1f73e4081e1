package model

import (
	"strings"
	"time"
)

// User is a Telegram account. Plans, checks and categories are scoped to User.ID.
type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayName prefers the first name, then the username.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	return strings.TrimSpace(u.Username)
}
