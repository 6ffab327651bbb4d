package dto

import (
	"time"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

// DeliverySettings mirrors the settings document.
type DeliverySettings struct {
	IsDeliveryEnabled           bool                `json:"is_delivery_enabled"`
	BaseDeliveryPrice           int64               `json:"base_delivery_price"`
	FreeDeliveryThreshold       int64               `json:"free_delivery_threshold"`
	MaxDeliveryDistance         float64             `json:"max_delivery_distance"`
	DeliveryTimeEstimate        int                 `json:"delivery_time_estimate"`
	WorkingHours                types.WorkingHours  `json:"working_hours"`
	Zones                       types.DeliveryZones `json:"zones"`
	AutoAssignDelivery          bool                `json:"auto_assign_delivery"`
	RequireDeliveryConfirmation bool                `json:"require_delivery_confirmation"`
	UpdatedBy                   *int64              `json:"updated_by,omitempty"`
	UpdatedAt                   time.Time           `json:"updated_at"`
}

func FromSettings(s *models.DeliverySettings) DeliverySettings {
	zones := s.Zones
	if zones == nil {
		zones = types.DeliveryZones{}
	}
	return DeliverySettings{
		IsDeliveryEnabled:           s.IsDeliveryEnabled,
		BaseDeliveryPrice:           s.BaseDeliveryPrice,
		FreeDeliveryThreshold:       s.FreeDeliveryThreshold,
		MaxDeliveryDistance:         s.MaxDeliveryDistance,
		DeliveryTimeEstimate:        s.DeliveryTimeEstimate,
		WorkingHours:                s.WorkingHours,
		Zones:                       zones,
		AutoAssignDelivery:          s.AutoAssignDelivery,
		RequireDeliveryConfirmation: s.RequireDeliveryConfirmation,
		UpdatedBy:                   s.UpdatedBy,
		UpdatedAt:                   s.UpdatedAt,
	}
}
