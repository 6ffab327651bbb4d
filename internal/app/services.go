package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-bot/internal/cart"
	"github.com/angelmondragon/storefront-bot/internal/delivery"
	"github.com/angelmondragon/storefront-bot/internal/orders"
	"github.com/angelmondragon/storefront-bot/internal/products"
	"github.com/angelmondragon/storefront-bot/internal/settings"
	"github.com/angelmondragon/storefront-bot/internal/users"
	"github.com/angelmondragon/storefront-bot/pkg/config"
	"github.com/angelmondragon/storefront-bot/pkg/db"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
	"github.com/angelmondragon/storefront-bot/pkg/metrics"
)

// Services is the storefront domain shared by the API and the bot.
type Services struct {
	Users    users.Service
	Products products.Service
	Cart     cart.Service
	Settings settings.Service
	Delivery delivery.Service
	Orders   orders.Service
}

// NewServices builds every domain service on one database client. A nil
// registerer leaves the services without metrics.
func NewServices(client *db.Client, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer) (*Services, error) {
	if client == nil {
		return nil, fmt.Errorf("database client required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	conn := client.DB()

	commerce := metrics.NewCommerceMetrics(reg)
	deliveryMetrics := metrics.NewDeliveryMetrics(reg)
	location := cfg.App.Location()

	usersSvc, err := users.NewService(users.NewRepository(conn), cfg.Telegram.IsAdmin, logg)
	if err != nil {
		return nil, fmt.Errorf("users service: %w", err)
	}
	productRepo := products.NewRepository(conn)
	productsSvc, err := products.NewService(productRepo, logg)
	if err != nil {
		return nil, fmt.Errorf("products service: %w", err)
	}
	cartSvc, err := cart.NewService(cart.ServiceParams{
		Repo:     cart.NewRepository(conn),
		Products: productsSvc,
		Logger:   logg,
		Metrics:  commerce,
	})
	if err != nil {
		return nil, fmt.Errorf("cart service: %w", err)
	}
	settingsSvc, err := settings.NewService(settings.ServiceParams{
		Repo:     settings.NewRepository(conn),
		Logger:   logg,
		Location: location,
	})
	if err != nil {
		return nil, fmt.Errorf("settings service: %w", err)
	}
	deliveryRepo := delivery.NewRepository(conn)
	deliverySvc, err := delivery.NewService(delivery.ServiceParams{
		Repo:    deliveryRepo,
		Logger:  logg,
		Metrics: deliveryMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("delivery service: %w", err)
	}
	orderRepo := orders.NewRepository(conn)
	bindTx := func(tx *gorm.DB) (orders.TxWriters, error) {
		stock, err := products.NewService(productRepo.WithTx(tx), logg)
		if err != nil {
			return orders.TxWriters{}, err
		}
		couriers, err := delivery.NewService(delivery.ServiceParams{
			Repo:    deliveryRepo.WithTx(tx),
			Logger:  logg,
			Metrics: deliveryMetrics,
		})
		if err != nil {
			return orders.TxWriters{}, err
		}
		return orders.TxWriters{Orders: orderRepo.WithTx(tx), Stock: stock, Couriers: couriers}, nil
	}
	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:     orderRepo,
		Carts:    cartSvc,
		Catalog:  productsSvc,
		Users:    usersSvc,
		Settings: settingsSvc,
		Couriers: deliverySvc,
		DB:       client,
		BindTx:   bindTx,
		Logger:   logg,
		Metrics:  commerce,
		Location: location,
	})
	if err != nil {
		return nil, fmt.Errorf("orders service: %w", err)
	}

	return &Services{
		Users:    usersSvc,
		Products: productsSvc,
		Cart:     cartSvc,
		Settings: settingsSvc,
		Delivery: deliverySvc,
		Orders:   ordersSvc,
	}, nil
}
