package delivery

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
)

// Repository persists delivery persons.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, person *models.DeliveryPerson) error {
	return r.db.WithContext(ctx).Create(person).Error
}

// Save writes the full record back.
func (r *Repository) Save(ctx context.Context, person *models.DeliveryPerson) error {
	return r.db.WithContext(ctx).Save(person).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryPerson, error) {
	var person models.DeliveryPerson
	if err := r.db.WithContext(ctx).First(&person, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *Repository) FindByExternalID(ctx context.Context, externalID int64) (*models.DeliveryPerson, error) {
	var person models.DeliveryPerson
	if err := r.db.WithContext(ctx).First(&person, "external_id = ?", externalID).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *Repository) ExistsByExternalID(ctx context.Context, externalID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DeliveryPerson{}).
		Where("external_id = ?", externalID).
		Count(&count).Error
	return count > 0, err
}

// List returns active persons, newest registration first.
func (r *Repository) List(ctx context.Context) ([]models.DeliveryPerson, error) {
	return find(r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("added_at DESC"))
}

// ListActive returns active persons, best rated first.
func (r *Repository) ListActive(ctx context.Context) ([]models.DeliveryPerson, error) {
	return find(r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("rating DESC").
		Order("added_at ASC"))
}

// ListOnline returns active persons that are online, best rated first.
func (r *Repository) ListOnline(ctx context.Context) ([]models.DeliveryPerson, error) {
	return find(r.db.WithContext(ctx).
		Where("is_active = ? AND is_online = ?", true, true).
		Order("rating DESC").
		Order("added_at ASC"))
}

func find(q *gorm.DB) ([]models.DeliveryPerson, error) {
	var persons []models.DeliveryPerson
	if err := q.Find(&persons).Error; err != nil {
		return nil, err
	}
	return persons, nil
}
