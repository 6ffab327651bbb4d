package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-bot/api/controllers/dto"
	"github.com/angelmondragon/storefront-bot/api/middleware"
	"github.com/angelmondragon/storefront-bot/api/responses"
	"github.com/angelmondragon/storefront-bot/api/validators"
	cartsvc "github.com/angelmondragon/storefront-bot/internal/cart"
	ordersvc "github.com/angelmondragon/storefront-bot/internal/orders"
	settingssvc "github.com/angelmondragon/storefront-bot/internal/settings"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
)

type checkoutRequest struct {
	Zone    string `json:"zone" validate:"max=64"`
	Address string `json:"address" validate:"required,max=300"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Comment string `json:"comment" validate:"max=500"`
}

// Checkout turns the caller's cart into a pending order.
func Checkout(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), ordersvc.CheckoutInput{
			UserID:  userID,
			Zone:    validators.SanitizeString(payload.Zone, 64),
			Address: validators.SanitizeString(payload.Address, 300),
			Phone:   validators.SanitizeString(payload.Phone, 32),
			Comment: validators.SanitizeString(payload.Comment, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, dto.FromOrder(order))
	}
}

// DeliveryQuote prices delivery for the caller's current cart and the
// optional ?zone= parameter.
func DeliveryQuote(settings settingssvc.Service, carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if settings == nil || carts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote services unavailable"))
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := carts.View(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		zone := validators.SanitizeString(r.URL.Query().Get("zone"), 64)
		quote, err := settings.Quote(r.Context(), view.TotalPrice, zone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
