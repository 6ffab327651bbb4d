package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
)

// UserDTO is the transport shape of a user.
type UserDTO struct {
	ID           int64       `json:"id"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name,omitempty"`
	Username     string      `json:"username,omitempty"`
	LanguageCode string      `json:"language_code"`
	Phone        string      `json:"phone,omitempty"`
	IsAdmin      bool        `json:"is_admin"`
	Favorites    []uuid.UUID `json:"favorites"`
	Orders       []uuid.UUID `json:"orders"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Profile is what Telegram tells us about a user on each interaction.
type Profile struct {
	ID           int64
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Username:     u.Username,
		LanguageCode: u.LanguageCode,
		Phone:        u.Phone,
		IsAdmin:      u.IsAdmin,
		Favorites:    append([]uuid.UUID{}, u.FavoriteIDs...),
		Orders:       append([]uuid.UUID{}, u.OrderIDs...),
		CreatedAt:    u.CreatedAt,
	}
}

func (p Profile) ToModel(isAdmin bool) *models.User {
	lang := p.LanguageCode
	if lang == "" {
		lang = DefaultLanguage
	}
	return &models.User{
		ID:           p.ID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Username:     p.Username,
		LanguageCode: lang,
		IsAdmin:      isAdmin,
		FavoriteIDs:  []uuid.UUID{},
		OrderIDs:     []uuid.UUID{},
	}
}
