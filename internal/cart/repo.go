package cart

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
)

// Repository persists carts. Every write recomputes the cart total first.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByUser(ctx context.Context, userID int64) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *Repository) Create(ctx context.Context, cart *models.Cart) error {
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	cart.Recalculate()
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *Repository) Save(ctx context.Context, cart *models.Cart) error {
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	cart.Recalculate()
	return r.db.WithContext(ctx).Save(cart).Error
}
