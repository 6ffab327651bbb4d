package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
)

// User is the caller's own profile.
type User struct {
	ID           int64       `json:"id"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name,omitempty"`
	Username     string      `json:"username,omitempty"`
	LanguageCode string      `json:"language_code"`
	Phone        string      `json:"phone,omitempty"`
	IsAdmin      bool        `json:"is_admin"`
	Favorites    []uuid.UUID `json:"favorites"`
	OrderCount   int         `json:"order_count"`
	CreatedAt    time.Time   `json:"created_at"`
}

func FromUser(u *models.User) User {
	favorites := u.FavoriteIDs
	if favorites == nil {
		favorites = []uuid.UUID{}
	}
	return User{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Username:     u.Username,
		LanguageCode: u.LanguageCode,
		Phone:        u.Phone,
		IsAdmin:      u.IsAdmin,
		Favorites:    favorites,
		OrderCount:   len(u.OrderIDs),
		CreatedAt:    u.CreatedAt,
	}
}
