package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-bot/pkg/types"
)

const (
	DefaultDeliveryRating = 5.0
	MaxDeliveryRating     = 5.0
)

// DeliveryPerson is a courier. Rows are never physically removed; deletion
// flips IsActive.
type DeliveryPerson struct {
	ID                  uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ExternalID          int64              `gorm:"column:external_id;not null;uniqueIndex"`
	Name                string             `gorm:"column:name;not null"`
	Phone               string             `gorm:"column:phone"`
	Username            string             `gorm:"column:username"`
	IsActive            bool               `gorm:"column:is_active;not null;index"`
	IsOnline            bool               `gorm:"column:is_online;not null"`
	CurrentLocation     *types.Location    `gorm:"column:current_location;type:jsonb;serializer:json"`
	Rating              float64            `gorm:"column:rating;not null"`
	TotalDeliveries     int                `gorm:"column:total_deliveries;not null"`
	CompletedDeliveries int                `gorm:"column:completed_deliveries;not null"`
	AverageDeliveryTime int                `gorm:"column:average_delivery_time;not null"`
	WorkingHours        types.WorkingHours `gorm:"embedded;embeddedPrefix:working_hours_"`
	DeliveryZones       []string           `gorm:"column:delivery_zones;type:jsonb;serializer:json"`
	AddedBy             int64              `gorm:"column:added_by"`
	AddedAt             time.Time          `gorm:"column:added_at;not null"`
	LastActivity        time.Time          `gorm:"column:last_activity;not null"`
	UpdatedAt           time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (DeliveryPerson) TableName() string {
	return "delivery_persons"
}

func (p *DeliveryPerson) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Validate checks the counters and rating bounds.
func (p DeliveryPerson) Validate() error {
	if p.Rating < 0 || p.Rating > MaxDeliveryRating {
		return fmt.Errorf("rating %.1f out of range [0,%.0f]", p.Rating, MaxDeliveryRating)
	}
	if p.TotalDeliveries < 0 || p.CompletedDeliveries < 0 {
		return fmt.Errorf("delivery counters must be non-negative")
	}
	if p.CompletedDeliveries > p.TotalDeliveries {
		return fmt.Errorf("completed deliveries %d exceed total %d", p.CompletedDeliveries, p.TotalDeliveries)
	}
	return nil
}

// CompletionRate is completed/total, or zero before the first delivery.
func (p DeliveryPerson) CompletionRate() float64 {
	if p.TotalDeliveries == 0 {
		return 0
	}
	return float64(p.CompletedDeliveries) / float64(p.TotalDeliveries)
}
