package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-bot/api/controllers/dto"
	"github.com/angelmondragon/storefront-bot/api/middleware"
	"github.com/angelmondragon/storefront-bot/api/responses"
	"github.com/angelmondragon/storefront-bot/api/validators"
	settingssvc "github.com/angelmondragon/storefront-bot/internal/settings"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

type updateSettingsRequest struct {
	IsDeliveryEnabled           *bool                `json:"is_delivery_enabled"`
	BaseDeliveryPrice           *int64               `json:"base_delivery_price" validate:"omitempty,min=0"`
	FreeDeliveryThreshold       *int64               `json:"free_delivery_threshold" validate:"omitempty,min=0"`
	MaxDeliveryDistance         *float64             `json:"max_delivery_distance" validate:"omitempty,min=0"`
	DeliveryTimeEstimate        *int                 `json:"delivery_time_estimate" validate:"omitempty,min=0"`
	WorkingHours                *types.WorkingHours  `json:"working_hours"`
	Zones                       *types.DeliveryZones `json:"zones" validate:"omitempty,dive"`
	AutoAssignDelivery          *bool                `json:"auto_assign_delivery"`
	RequireDeliveryConfirmation *bool                `json:"require_delivery_confirmation"`
}

type replaceZonesRequest struct {
	Zones types.DeliveryZones `json:"zones" validate:"dive"`
}

func AdminSettingsGet(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		cfg, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.FromSettings(cfg))
	}
}

// AdminSettingsUpdate patches the settings document; omitted fields keep
// their value.
func AdminSettingsUpdate(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		adminID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cfg, err := svc.Update(r.Context(), settingssvc.UpdateInput{
			IsDeliveryEnabled:           payload.IsDeliveryEnabled,
			BaseDeliveryPrice:           payload.BaseDeliveryPrice,
			FreeDeliveryThreshold:       payload.FreeDeliveryThreshold,
			MaxDeliveryDistance:         payload.MaxDeliveryDistance,
			DeliveryTimeEstimate:        payload.DeliveryTimeEstimate,
			WorkingHours:                payload.WorkingHours,
			Zones:                       payload.Zones,
			AutoAssignDelivery:          payload.AutoAssignDelivery,
			RequireDeliveryConfirmation: payload.RequireDeliveryConfirmation,
			UpdatedBy:                   adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.FromSettings(cfg))
	}
}

// AdminSettingsZones replaces the zone list wholesale.
func AdminSettingsZones(svc settingssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		adminID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload replaceZonesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cfg, err := svc.UpdateZones(r.Context(), payload.Zones, adminID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.FromSettings(cfg))
	}
}
