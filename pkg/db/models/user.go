package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a Telegram customer keyed by the Telegram user id.
type User struct {
	ID           int64       `gorm:"column:id;primaryKey;autoIncrement:false"`
	FirstName    string      `gorm:"column:first_name;not null"`
	LastName     string      `gorm:"column:last_name"`
	Username     string      `gorm:"column:username"`
	LanguageCode string      `gorm:"column:language_code;not null"`
	Phone        string      `gorm:"column:phone"`
	IsAdmin      bool        `gorm:"column:is_admin;not null"`
	FavoriteIDs  []uuid.UUID `gorm:"column:favorites;type:jsonb;serializer:json"`
	OrderIDs     []uuid.UUID `gorm:"column:order_history;type:jsonb;serializer:json"`
	CreatedAt    time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

// HasFavorite reports whether productID is in the favorites list.
func (u User) HasFavorite(productID uuid.UUID) bool {
	for _, id := range u.FavoriteIDs {
		if id == productID {
			return true
		}
	}
	return false
}
