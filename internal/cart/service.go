package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-bot/pkg/db"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
	"github.com/angelmondragon/storefront-bot/pkg/metrics"
)

type cartRepository interface {
	FindByUser(ctx context.Context, userID int64) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	Save(ctx context.Context, cart *models.Cart) error
}

type productLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Service maintains one cart per user.
type Service interface {
	GetOrCreate(ctx context.Context, userID int64) (*models.Cart, error)
	View(ctx context.Context, userID int64) (*View, error)
	AddItem(ctx context.Context, userID int64, productID uuid.UUID, qty int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID int64, productID uuid.UUID, qty *int) (*models.Cart, error)
	Clear(ctx context.Context, userID int64) (*models.Cart, error)
}

type ServiceParams struct {
	Repo     cartRepository
	Products productLoader
	Logger   *logger.Logger
	Metrics  *metrics.CommerceMetrics
}

type service struct {
	repo     cartRepository
	products productLoader
	logg     *logger.Logger
	metrics  *metrics.CommerceMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     params.Repo,
		products: params.Products,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// GetOrCreate returns the user's cart, persisting an empty one on first use.
func (s *service) GetOrCreate(ctx context.Context, userID int64) (*models.Cart, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !db.IsNotFound(err) {
		return nil, pkgerrors.Store(err, "load cart")
	}

	cart = &models.Cart{UserID: userID}
	if err := s.repo.Create(ctx, cart); err != nil {
		if db.IsUniqueViolation(err, "") {
			return s.find(ctx, userID)
		}
		return nil, pkgerrors.Store(err, "create cart")
	}
	return cart, nil
}

func (s *service) View(ctx context.Context, userID int64) (*View, error) {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return buildView(cart, products), nil
}

// AddItem puts qty units of productID into the cart. An existing line keeps
// its position, gains the quantity and is re-priced at the current price.
func (s *service) AddItem(ctx context.Context, userID int64, productID uuid.UUID, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.ProductUnavailable(productID.String(), "not found")
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.ProductUnavailable(productID.String(), "inactive")
	}
	if product.Stock <= 0 {
		return nil, pkgerrors.ProductUnavailable(productID.String(), "out of stock")
	}

	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if i := cart.IndexOf(productID); i >= 0 {
		cart.Items[i].Quantity += qty
		cart.Items[i].Price = product.Price
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Quantity:  qty,
			Price:     product.Price,
		})
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Store(err, "save cart")
	}
	s.metrics.IncCartMutation("add")
	return cart, nil
}

// RemoveItem drops the line when qty is nil or covers the whole line and
// decrements it otherwise.
func (s *service) RemoveItem(ctx context.Context, userID int64, productID uuid.UUID, qty *int) (*models.Cart, error) {
	if qty != nil && *qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	cart, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	i := cart.IndexOf(productID)
	if i < 0 {
		return cart, nil
	}
	if qty == nil || *qty >= cart.Items[i].Quantity {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	} else {
		cart.Items[i].Quantity -= *qty
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Store(err, "save cart")
	}
	s.metrics.IncCartMutation("remove")
	return cart, nil
}

func (s *service) Clear(ctx context.Context, userID int64) (*models.Cart, error) {
	cart, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Store(err, "clear cart")
	}
	s.metrics.IncCartMutation("clear")
	return cart, nil
}

func (s *service) find(ctx context.Context, userID int64) (*models.Cart, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("cart")
		}
		return nil, pkgerrors.Store(err, "load cart")
	}
	return cart, nil
}
