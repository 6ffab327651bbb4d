package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-bot/api/controllers/dto"
	"github.com/angelmondragon/storefront-bot/api/middleware"
	"github.com/angelmondragon/storefront-bot/api/responses"
	"github.com/angelmondragon/storefront-bot/api/validators"
	usersvc "github.com/angelmondragon/storefront-bot/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
	"github.com/google/uuid"
)

// UserMe returns the caller's profile. Users are created by the bot on
// their first message.
func UserMe(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUsers(w, r, svc, logg)
		if !ok {
			return
		}
		user, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.FromUser(user))
	}
}

type updateMeRequest struct {
	Phone        *string `json:"phone" validate:"omitempty,max=32"`
	LanguageCode *string `json:"language_code" validate:"omitempty,min=2,max=8"`
}

func UserUpdateMe(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUsers(w, r, svc, logg)
		if !ok {
			return
		}
		var payload updateMeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Phone != nil {
			if _, err := svc.SetPhone(r.Context(), userID, validators.SanitizeString(*payload.Phone, 32)); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if payload.LanguageCode != nil {
			if _, err := svc.SetLanguage(r.Context(), userID, validators.SanitizeString(*payload.LanguageCode, 8)); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		user, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.FromUser(user))
	}
}

func UserFavorites(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUsers(w, r, svc, logg)
		if !ok {
			return
		}
		favorites, err := svc.Favorites(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if favorites == nil {
			favorites = []uuid.UUID{}
		}
		responses.WriteSuccess(w, map[string]any{"favorites": favorites})
	}
}

// UserToggleFavorite flips a product in or out of the favorites list.
func UserToggleFavorite(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUsers(w, r, svc, logg)
		if !ok {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		favorite, err := svc.ToggleFavorite(r.Context(), userID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"product_id": productID, "favorite": favorite})
	}
}

func requireUsers(w http.ResponseWriter, r *http.Request, svc usersvc.Service, logg *logger.Logger) (int64, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
		return 0, false
	}
	userID, err := middleware.RequireUserID(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return 0, false
	}
	return userID, true
}
