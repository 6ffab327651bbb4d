package models

import (
	"time"

	"github.com/angelmondragon/storefront-bot/pkg/types"
)

// DeliverySettingsID is the fixed key of the single settings row.
const DeliverySettingsID = 1

// DeliverySettings is the system-wide delivery configuration.
type DeliverySettings struct {
	ID                          int                 `gorm:"column:id;primaryKey;autoIncrement:false"`
	IsDeliveryEnabled           bool                `gorm:"column:is_delivery_enabled;not null"`
	BaseDeliveryPrice           int64               `gorm:"column:base_delivery_price;not null"`
	FreeDeliveryThreshold       int64               `gorm:"column:free_delivery_threshold;not null"`
	MaxDeliveryDistance         float64             `gorm:"column:max_delivery_distance;not null"`
	DeliveryTimeEstimate        int                 `gorm:"column:delivery_time_estimate;not null"`
	WorkingHours                types.WorkingHours  `gorm:"embedded;embeddedPrefix:working_hours_"`
	Zones                       types.DeliveryZones `gorm:"column:zones;type:jsonb;serializer:json"`
	AutoAssignDelivery          bool                `gorm:"column:auto_assign_delivery;not null"`
	RequireDeliveryConfirmation bool                `gorm:"column:require_delivery_confirmation;not null"`
	UpdatedBy                   *int64              `gorm:"column:updated_by"`
	CreatedAt                   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (DeliverySettings) TableName() string {
	return "delivery_settings"
}

// DefaultDeliverySettings is the document created on first access.
func DefaultDeliverySettings() DeliverySettings {
	return DeliverySettings{
		ID:                          DeliverySettingsID,
		IsDeliveryEnabled:           true,
		BaseDeliveryPrice:           10000,
		FreeDeliveryThreshold:       100000,
		MaxDeliveryDistance:         20,
		DeliveryTimeEstimate:        45,
		WorkingHours:                types.DefaultWorkingHours(),
		AutoAssignDelivery:          false,
		RequireDeliveryConfirmation: true,
		Zones: types.DeliveryZones{
			{Name: "center", Price: 5000, EstimatedTime: 30},
			{Name: "district", Price: 8000, EstimatedTime: 45},
			{Name: "other", Price: 12000, EstimatedTime: 60},
		},
	}
}
