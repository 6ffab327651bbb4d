package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
)

// Repository persists the single delivery settings row.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Ensure inserts defaults under the fixed singleton key unless a row is
// already present. Concurrent callers converge on one row.
func (r *Repository) Ensure(ctx context.Context, defaults models.DeliverySettings) error {
	defaults.ID = models.DeliverySettingsID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&defaults).Error
}

func (r *Repository) Find(ctx context.Context) (*models.DeliverySettings, error) {
	var s models.DeliverySettings
	if err := r.db.WithContext(ctx).First(&s, "id = ?", models.DeliverySettingsID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the full document back.
func (r *Repository) Save(ctx context.Context, s *models.DeliverySettings) error {
	s.ID = models.DeliverySettingsID
	return r.db.WithContext(ctx).Save(s).Error
}
