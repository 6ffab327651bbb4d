package orders

import (
	"context"
	"math"
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-bot/api/controllers/dto"
	"github.com/angelmondragon/storefront-bot/api/middleware"
	"github.com/angelmondragon/storefront-bot/api/responses"
	"github.com/angelmondragon/storefront-bot/api/validators"
	ordersvc "github.com/angelmondragon/storefront-bot/internal/orders"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	"github.com/angelmondragon/storefront-bot/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
	"github.com/angelmondragon/storefront-bot/pkg/pagination"
	"github.com/google/uuid"
)

// List returns the caller's orders, newest first.
func List(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireService(w, r, svc, logg) {
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListForUser(r.Context(), userID, limit, strings.TrimSpace(r.URL.Query().Get("cursor")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.FromOrders(page.Orders, page.NextCursor))
	}
}

// Detail returns one of the caller's orders. Orders owned by someone else
// read as not found.
func Detail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireService(w, r, svc, logg) {
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetForUser(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.FromOrder(order))
	}
}

// Rate records the buyer's 1-5 rating of a delivered order.
func Rate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireService(w, r, svc, logg) {
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload rateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Rate(r.Context(), userID, orderID, payload.Rating)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.FromOrder(order))
	}
}

// AdminList lists every order with optional status, user_id and
// delivery_person_id filters.
func AdminList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireService(w, r, svc, logg) {
			return
		}
		query, err := parseAdminQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.FromOrders(page.Orders, page.NextCursor))
	}
}

func AdminDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, ordersvc.Service.Get)
}

// AdminAssign hands a pending order to the best online courier.
func AdminAssign(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, ordersvc.Service.Assign)
}

func AdminDelivering(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, ordersvc.Service.MarkDelivering)
}

func AdminComplete(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, ordersvc.Service.Complete)
}

func AdminCancel(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, ordersvc.Service.Cancel)
}

// AdminStats reports order counts per status, zero-filled.
func AdminStats(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireService(w, r, svc, logg) {
			return
		}
		counts, err := svc.CountByStatus(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make(map[string]int64, len(enums.OrderStatuses()))
		var total int64
		for _, status := range enums.OrderStatuses() {
			out[status.String()] = counts[status]
			total += counts[status]
		}
		responses.WriteSuccess(w, map[string]any{"by_status": out, "total": total})
	}
}

type orderAction func(svc ordersvc.Service, ctx context.Context, id uuid.UUID) (*models.Order, error)

func transition(svc ordersvc.Service, logg *logger.Logger, action orderAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireService(w, r, svc, logg) {
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := action(svc, r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto.FromOrder(order))
	}
}

func parseAdminQuery(r *http.Request) (ordersvc.ListQuery, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return ordersvc.ListQuery{}, err
	}
	query := ordersvc.ListQuery{
		Pagination: pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		},
	}

	values := r.URL.Query()
	if raw := strings.TrimSpace(values.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return query, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]any{"field": "status"})
		}
		query.Status = &status
	}
	if raw := strings.TrimSpace(values.Get("user_id")); raw != "" {
		userID, err := validators.ParseQueryInt(r, "user_id", 0, 1, math.MaxInt)
		if err != nil {
			return query, err
		}
		id := int64(userID)
		query.UserID = &id
	}
	if raw := strings.TrimSpace(values.Get("delivery_person_id")); raw != "" {
		personID, err := uuid.Parse(raw)
		if err != nil {
			return query, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery_person_id").WithDetails(map[string]any{"field": "delivery_person_id"})
		}
		query.DeliveryPersonID = &personID
	}
	return query, nil
}

func requireService(w http.ResponseWriter, r *http.Request, svc ordersvc.Service, logg *logger.Logger) bool {
	if svc != nil {
		return true
	}
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
	return false
}
