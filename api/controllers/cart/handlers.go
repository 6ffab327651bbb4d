package cart

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-bot/api/middleware"
	"github.com/angelmondragon/storefront-bot/api/responses"
	"github.com/angelmondragon/storefront-bot/api/validators"
	cartsvc "github.com/angelmondragon/storefront-bot/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
)

// CartFetch returns the caller's cart with live product names and prices.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCart(w, r, svc, logg)
		if !ok {
			return
		}
		writeView(r.Context(), w, svc, logg, userID)
	}
}

// CartAddItem adds quantity of a product; repeated adds accumulate.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCart(w, r, svc, logg)
		if !ok {
			return
		}
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := svc.AddItem(r.Context(), userID, payload.ProductID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeView(r.Context(), w, svc, logg, userID)
	}
}

// CartRemoveItem drops a line, or only ?quantity= units of it.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCart(w, r, svc, logg)
		if !ok {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var qty *int
		if r.URL.Query().Has("quantity") {
			value, err := validators.ParseQueryInt(r, "quantity", 0, 1, 1000)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			qty = &value
		}
		if _, err := svc.RemoveItem(r.Context(), userID, productID, qty); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeView(r.Context(), w, svc, logg, userID)
	}
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCart(w, r, svc, logg)
		if !ok {
			return
		}
		if _, err := svc.Clear(r.Context(), userID); err != nil && !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeView(r.Context(), w, svc, logg, userID)
	}
}

func requireCart(w http.ResponseWriter, r *http.Request, svc cartsvc.Service, logg *logger.Logger) (int64, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
		return 0, false
	}
	userID, err := middleware.RequireUserID(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return 0, false
	}
	return userID, true
}

func writeView(ctx context.Context, w http.ResponseWriter, svc cartsvc.Service, logg *logger.Logger, userID int64) {
	view, err := svc.View(ctx, userID)
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return
	}
	responses.WriteSuccess(w, view)
}
