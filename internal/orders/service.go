package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-bot/internal/delivery"
	"github.com/angelmondragon/storefront-bot/internal/settings"
	"github.com/angelmondragon/storefront-bot/pkg/db"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	"github.com/angelmondragon/storefront-bot/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
	"github.com/angelmondragon/storefront-bot/pkg/metrics"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

type orderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	Save(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error)
}

type cartStore interface {
	GetOrCreate(ctx context.Context, userID int64) (*models.Cart, error)
	Clear(ctx context.Context, userID int64) (*models.Cart, error)
}

type catalog interface {
	GetMany(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type stockAdjuster interface {
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}

type orderHistory interface {
	AppendOrder(ctx context.Context, userID int64, orderID uuid.UUID) error
}

type settingsReader interface {
	Get(ctx context.Context) (*models.DeliverySettings, error)
}

type courierDirectory interface {
	AssignBest(ctx context.Context, assign delivery.AssignFunc) (*delivery.Candidate, error)
}

type courierLedger interface {
	RecordDelivery(ctx context.Context, id uuid.UUID, minutes int) (*models.DeliveryPerson, error)
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64) (*models.DeliveryPerson, error)
}

// txRunner is satisfied by *db.Client.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// TxWriters are the stores whose writes commit together with an order.
type TxWriters struct {
	Orders   orderRepository
	Stock    stockAdjuster
	Couriers courierLedger
}

// BindTxFunc builds TxWriters on top of an open transaction.
type BindTxFunc func(tx *gorm.DB) (TxWriters, error)

// Service turns carts into orders and drives them through delivery.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetForUser(ctx context.Context, userID int64, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	ListForUser(ctx context.Context, userID int64, limit int, cursor string) (*ListResult, error)
	Assign(ctx context.Context, id uuid.UUID) (*models.Order, error)
	MarkDelivering(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Complete(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Rate(ctx context.Context, userID int64, id uuid.UUID, rating int) (*models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Order, error)
	CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error)
}

// CheckoutInput carries the delivery details collected from the buyer.
type CheckoutInput struct {
	UserID  int64
	Zone    string
	Address string
	Phone   string
	Comment string
}

type ServiceParams struct {
	Repo     orderRepository
	Carts    cartStore
	Catalog  catalog
	Users    orderHistory
	Settings settingsReader
	Couriers courierDirectory
	DB       txRunner
	BindTx   BindTxFunc
	Logger   *logger.Logger
	Metrics  *metrics.CommerceMetrics
	Location *time.Location
}

type service struct {
	repo     orderRepository
	carts    cartStore
	catalog  catalog
	users    orderHistory
	settings settingsReader
	couriers courierDirectory
	db       txRunner
	bindTx   BindTxFunc
	logg     *logger.Logger
	metrics  *metrics.CommerceMetrics
	location *time.Location
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("orders repository required")
	case params.Carts == nil:
		return nil, fmt.Errorf("cart service required")
	case params.Catalog == nil:
		return nil, fmt.Errorf("product catalog required")
	case params.Users == nil:
		return nil, fmt.Errorf("user service required")
	case params.Settings == nil:
		return nil, fmt.Errorf("settings service required")
	case params.Couriers == nil:
		return nil, fmt.Errorf("delivery service required")
	case params.DB == nil || params.BindTx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:     params.Repo,
		carts:    params.Carts,
		catalog:  params.Catalog,
		users:    params.Users,
		settings: params.Settings,
		couriers: params.Couriers,
		db:       params.DB,
		bindTx:   params.BindTx,
		logg:     params.Logger,
		metrics:  params.Metrics,
		location: loc,
		now:      time.Now,
	}, nil
}

// Checkout places an order from the user's cart. The stock decrements and
// the order insert share one transaction. Once it commits the cart clear,
// history append and auto-assignment are logged on failure rather than
// returned, so a retry cannot place the order twice.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	ctx = s.logg.WithUserID(ctx, input.UserID)
	input.Address = strings.TrimSpace(input.Address)
	input.Phone = strings.TrimSpace(input.Phone)
	if input.Address == "" || input.Phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address and phone are required")
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ensureDeliveryOpen(cfg); err != nil {
		s.metrics.IncCheckout("rejected")
		return nil, err
	}

	cart, err := s.carts.GetOrCreate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines, err := s.snapshotLines(ctx, cart)
	if err != nil {
		s.metrics.IncCheckout("rejected")
		return nil, err
	}

	deliveryPrice := settings.CalculateDeliveryPrice(cfg, cart.TotalPrice, input.Zone)
	order := &models.Order{
		UserID:           input.UserID,
		Items:            lines,
		Subtotal:         cart.TotalPrice,
		DeliveryPrice:    deliveryPrice,
		Total:            cart.TotalPrice + deliveryPrice,
		Zone:             strings.TrimSpace(input.Zone),
		Address:          input.Address,
		Phone:            input.Phone,
		Comment:          strings.TrimSpace(input.Comment),
		Status:           enums.OrderStatusPending,
		EstimatedMinutes: settings.EstimatedTime(cfg, input.Zone),
	}
	err = s.inTx(ctx, func(w TxWriters) error {
		for _, line := range lines {
			if err := w.Stock.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
				return err
			}
		}
		if err := w.Orders.Create(ctx, order); err != nil {
			return pkgerrors.Store(err, "create order")
		}
		return nil
	})
	if err != nil {
		s.metrics.IncCheckout("rejected")
		return nil, err
	}
	ctx = s.logg.WithField(ctx, "order_id", order.ID.String())
	s.metrics.IncCheckout("placed")
	s.logg.Info(ctx, "order placed")

	if _, err := s.carts.Clear(ctx, input.UserID); err != nil {
		s.logg.Error(ctx, "failed to clear cart after checkout", err)
	}
	if err := s.users.AppendOrder(ctx, input.UserID, order.ID); err != nil {
		s.logg.Error(ctx, "failed to append order to user history", err)
	}

	if cfg.AutoAssignDelivery {
		if _, err := s.assign(ctx, order); err != nil {
			if pkgerrors.Is(err, pkgerrors.CodeNoCandidate) {
				s.logg.Warn(ctx, "no delivery person online; order left pending")
			} else {
				s.logg.Error(ctx, "auto-assignment failed", err)
			}
		}
	}
	return order, nil
}

func (s *service) ensureDeliveryOpen(cfg *models.DeliverySettings) error {
	if !cfg.IsDeliveryEnabled {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery is currently disabled")
	}
	open, err := settings.IsWithinWorkingHours(cfg.WorkingHours, s.now().In(s.location))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stored working hours are malformed")
	}
	if !open {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery is closed outside working hours").
			WithDetails(map[string]any{"start": cfg.WorkingHours.Start, "end": cfg.WorkingHours.End})
	}
	return nil
}

func (s *service) snapshotLines(ctx context.Context, cart *models.Cart) ([]types.OrderLine, error) {
	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.catalog.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]types.OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, ok := byID[item.ProductID]
		switch {
		case !ok:
			return nil, pkgerrors.ProductUnavailable(item.ProductID.String(), "not found")
		case !product.IsActive:
			return nil, pkgerrors.ProductUnavailable(item.ProductID.String(), "inactive")
		case product.Stock < item.Quantity:
			return nil, pkgerrors.ProductUnavailable(item.ProductID.String(), "out of stock")
		}
		lines = append(lines, types.OrderLine{
			ProductID: item.ProductID,
			Name:      product.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return lines, nil
}

// inTx runs fn with writers bound to a single transaction.
func (s *service) inTx(ctx context.Context, fn func(w TxWriters) error) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		w, err := s.bindTx(tx)
		if err != nil {
			return err
		}
		return fn(w)
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("order")
		}
		return nil, pkgerrors.Store(err, "load order")
	}
	return order, nil
}

// GetForUser hides orders of other users behind NotFound.
func (s *service) GetForUser(ctx context.Context, userID int64, id uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.NotFound("order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	result, err := s.repo.List(ctx, query)
	if err != nil {
		if errors.Is(err, ErrInvalidCursor) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Store(err, "list orders")
	}
	return result, nil
}

func (s *service) ListForUser(ctx context.Context, userID int64, limit int, cursor string) (*ListResult, error) {
	query := ListQuery{UserID: &userID}
	query.Pagination.Limit = limit
	query.Pagination.Cursor = cursor
	return s.List(ctx, query)
}

// Assign hands a pending order to the best online courier. Assigned orders
// may be reassigned.
func (s *service) Assign(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(enums.OrderStatusAssigned) {
		return nil, invalidTransition(order.Status, enums.OrderStatusAssigned)
	}
	return s.assign(s.logg.WithField(ctx, "order_id", id.String()), order)
}

func (s *service) assign(ctx context.Context, order *models.Order) (*models.Order, error) {
	_, err := s.couriers.AssignBest(ctx, func(ctx context.Context, person *models.DeliveryPerson) error {
		now := s.now().UTC()
		personID := person.ID
		order.DeliveryPersonID = &personID
		order.Status = enums.OrderStatusAssigned
		order.AssignedAt = &now
		if err := s.repo.Save(ctx, order); err != nil {
			return pkgerrors.Store(err, "save order assignment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) MarkDelivering(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, id, enums.OrderStatusDelivering, func(*models.Order, TxWriters) error { return nil })
}

// Complete marks the order delivered and credits the courier with the
// minutes elapsed since assignment. Both writes commit or neither does.
func (s *service) Complete(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, id, enums.OrderStatusDelivered, func(o *models.Order, w TxWriters) error {
		if o.DeliveryPersonID == nil || o.AssignedAt == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order has no delivery person")
		}
		now := s.now().UTC()
		o.DeliveredAt = &now
		_, err := w.Couriers.RecordDelivery(ctx, *o.DeliveryPersonID, elapsedMinutes(*o.AssignedAt, now))
		return err
	})
}

func (s *service) Rate(ctx context.Context, userID int64, id uuid.UUID, rating int) (*models.Order, error) {
	if rating < 1 || rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	order, err := s.GetForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusDelivered || order.DeliveryPersonID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered orders can be rated")
	}
	if order.Rating != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already rated")
	}

	value := float64(rating)
	err = s.inTx(ctx, func(w TxWriters) error {
		if _, err := w.Couriers.UpdateRating(ctx, *order.DeliveryPersonID, value); err != nil {
			return err
		}
		order.Rating = &value
		if err := w.Orders.Save(ctx, order); err != nil {
			return pkgerrors.Store(err, "save order rating")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel stops a non-terminal order and puts its stock back.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, id, enums.OrderStatusCancelled, func(o *models.Order, w TxWriters) error {
		now := s.now().UTC()
		o.CancelledAt = &now
		for _, line := range o.Items {
			if err := w.Stock.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *service) CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Store(err, "count orders")
	}
	return counts, nil
}

// transition moves the order to next. apply runs inside the transaction that
// saves the new status, so its writes commit with it.
func (s *service) transition(ctx context.Context, id uuid.UUID, next enums.OrderStatus, apply func(o *models.Order, w TxWriters) error) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, invalidTransition(order.Status, next)
	}
	err = s.inTx(ctx, func(w TxWriters) error {
		if err := apply(order, w); err != nil {
			return err
		}
		order.Status = next
		if err := w.Orders.Save(ctx, order); err != nil {
			return pkgerrors.Store(err, "save order status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"order_id": id.String(), "status": next.String()})
	s.logg.Info(logCtx, "order status changed")
	return order, nil
}

func invalidTransition(from, to enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order status change not allowed").
		WithDetails(map[string]any{"from": from.String(), "to": to.String()})
}

func elapsedMinutes(from, to time.Time) int {
	minutes := to.Sub(from).Minutes()
	if minutes <= 0 {
		return 0
	}
	return int(math.Round(minutes))
}
