package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-bot/api/controllers/dto"
	"github.com/angelmondragon/storefront-bot/api/middleware"
	"github.com/angelmondragon/storefront-bot/api/responses"
	"github.com/angelmondragon/storefront-bot/api/validators"
	deliverysvc "github.com/angelmondragon/storefront-bot/internal/delivery"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

type createDeliveryPersonRequest struct {
	ExternalID    int64               `json:"external_id" validate:"required,gt=0"`
	Name          string              `json:"name" validate:"required,max=100"`
	Phone         string              `json:"phone" validate:"max=32"`
	Username      string              `json:"username" validate:"max=64"`
	WorkingHours  *types.WorkingHours `json:"working_hours"`
	DeliveryZones []string            `json:"delivery_zones" validate:"omitempty,dive,required,max=64"`
}

type deliveryStatusRequest struct {
	IsOnline *bool `json:"is_online" validate:"required"`
}

type deliveryLocationRequest struct {
	Lat     float64 `json:"lat" validate:"min=-90,max=90"`
	Lng     float64 `json:"lng" validate:"min=-180,max=180"`
	Address string  `json:"address" validate:"max=300"`
}

// AdminDeliveryList lists couriers; ?filter=active|online narrows the set.
func AdminDeliveryList(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}
		var (
			list []models.DeliveryPerson
			err  error
		)
		switch filter := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("filter"))); filter {
		case "", "all":
			list, err = svc.List(r.Context())
		case "active":
			list, err = svc.ListActive(r.Context())
		case "online":
			list, err = svc.ListOnline(r.Context())
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "filter must be one of all, active, online").WithDetails(map[string]any{"field": "filter"})
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"delivery_persons": dto.FromDeliveryPersons(list)})
	}
}

func AdminDeliveryCreate(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}
		adminID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload createDeliveryPersonRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		person, err := svc.Create(r.Context(), deliverysvc.CreateInput{
			ExternalID:    payload.ExternalID,
			Name:          validators.SanitizeString(payload.Name, 100),
			Phone:         validators.SanitizeString(payload.Phone, 32),
			Username:      validators.SanitizeString(payload.Username, 64),
			WorkingHours:  payload.WorkingHours,
			DeliveryZones: payload.DeliveryZones,
			AddedBy:       adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, dto.FromDeliveryPerson(person))
	}
}

// AdminDeliveryDetail returns the courier with its delivery stats.
func AdminDeliveryDetail(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}
		personID, err := validators.ParseUUIDParam(r, "personId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		person, err := svc.Get(r.Context(), personID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stats, err := svc.Stats(r.Context(), personID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"delivery_person": dto.FromDeliveryPerson(person),
			"stats":           stats,
		})
	}
}

func AdminDeliveryStatus(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}
		personID, err := validators.ParseUUIDParam(r, "personId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload deliveryStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		person, err := svc.SetOnlineStatus(r.Context(), personID, *payload.IsOnline)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.FromDeliveryPerson(person))
	}
}

func AdminDeliveryLocation(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}
		personID, err := validators.ParseUUIDParam(r, "personId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload deliveryLocationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		person, err := svc.UpdateLocation(r.Context(), personID, types.Location{
			Lat:     payload.Lat,
			Lng:     payload.Lng,
			Address: validators.SanitizeString(payload.Address, 300),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.FromDeliveryPerson(person))
	}
}

// AdminDeliveryDelete deactivates the courier; the row is kept for history.
func AdminDeliveryDelete(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}
		personID, err := validators.ParseUUIDParam(r, "personId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SoftDelete(r.Context(), personID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": personID, "deactivated": true})
	}
}

// AdminDeliveryBest previews who the selector would pick right now.
func AdminDeliveryBest(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}
		candidate, err := svc.BestCandidate(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.FromCandidate(candidate))
	}
}
