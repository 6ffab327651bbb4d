package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-bot/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-bot/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/storefront-bot/api/controllers/orders"
	"github.com/angelmondragon/storefront-bot/api/middleware"
	"github.com/angelmondragon/storefront-bot/internal/cart"
	"github.com/angelmondragon/storefront-bot/internal/delivery"
	"github.com/angelmondragon/storefront-bot/internal/orders"
	"github.com/angelmondragon/storefront-bot/internal/products"
	"github.com/angelmondragon/storefront-bot/internal/settings"
	"github.com/angelmondragon/storefront-bot/internal/users"
	"github.com/angelmondragon/storefront-bot/pkg/config"
	"github.com/angelmondragon/storefront-bot/pkg/db"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
	"github.com/angelmondragon/storefront-bot/pkg/redis"
)

// Params collects everything the HTTP surface is built from. Redis and
// Gatherer are optional.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Gatherer prometheus.Gatherer

	Users    users.Service
	Products products.Service
	Cart     cart.Service
	Settings settings.Service
	Delivery delivery.Service
	Orders   orders.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	// Keep nil interfaces nil so the middleware can detect a missing redis.
	var (
		idempotencyStore redis.IdempotencyStore
		rateStore        middleware.RateLimiterStore
		redisPinger      controllers.Pinger
	)
	if p.Redis != nil {
		idempotencyStore = p.Redis
		rateStore = p.Redis
		redisPinger = p.Redis
	}
	var dbPinger controllers.Pinger
	if p.DB != nil {
		dbPinger = p.DB
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()...),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbPinger,
			"redis": redisPinger,
		}))
	})

	if cfg.Metrics.Enabled {
		gatherer := p.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/products", controllers.ProductList(p.Products, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(p.Products, logg))
		r.Get("/categories", controllers.ProductCategories(p.Products, logg))
	})

	apiPolicy := middleware.NewRateLimitPolicy("api", cfg.RateLimit.Window, cfg.RateLimit.IPLimit, cfg.RateLimit.UserLimit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.TelegramUser(cfg.Telegram.IsAdmin, logg))
		r.Use(middleware.RateLimit(apiPolicy, rateStore, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/me", func(r chi.Router) {
			r.Get("/", controllers.UserMe(p.Users, logg))
			r.Patch("/", controllers.UserUpdateMe(p.Users, logg))
			r.Get("/favorites", controllers.UserFavorites(p.Users, logg))
			r.Post("/favorites/{productId}", controllers.UserToggleFavorite(p.Users, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(p.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(p.Cart, logg))
			r.Post("/items", cartcontrollers.CartAddItem(p.Cart, logg))
			r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(p.Cart, logg))
		})

		r.Get("/delivery/quote", controllers.DeliveryQuote(p.Settings, p.Cart, logg))
		r.Post("/checkout", controllers.Checkout(p.Orders, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(p.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(p.Orders, logg))
			r.Post("/{orderId}/rate", ordercontrollers.Rate(p.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.TelegramUser(cfg.Telegram.IsAdmin, logg))
		r.Use(middleware.RequireAdmin(logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(p.Products, logg))
			r.Post("/", controllers.AdminProductCreate(p.Products, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(p.Products, logg))
			r.Post("/{productId}/stock", controllers.AdminProductStock(p.Products, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(p.Products, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.AdminSettingsGet(p.Settings, logg))
			r.Patch("/", controllers.AdminSettingsUpdate(p.Settings, logg))
			r.Put("/zones", controllers.AdminSettingsZones(p.Settings, logg))
		})

		r.Route("/delivery-persons", func(r chi.Router) {
			r.Get("/", controllers.AdminDeliveryList(p.Delivery, logg))
			r.Post("/", controllers.AdminDeliveryCreate(p.Delivery, logg))
			r.Get("/best", controllers.AdminDeliveryBest(p.Delivery, logg))
			r.Get("/{personId}", controllers.AdminDeliveryDetail(p.Delivery, logg))
			r.Post("/{personId}/status", controllers.AdminDeliveryStatus(p.Delivery, logg))
			r.Post("/{personId}/location", controllers.AdminDeliveryLocation(p.Delivery, logg))
			r.Delete("/{personId}", controllers.AdminDeliveryDelete(p.Delivery, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.AdminList(p.Orders, logg))
			r.Get("/stats", ordercontrollers.AdminStats(p.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.AdminDetail(p.Orders, logg))
			r.Post("/{orderId}/assign", ordercontrollers.AdminAssign(p.Orders, logg))
			r.Post("/{orderId}/delivering", ordercontrollers.AdminDelivering(p.Orders, logg))
			r.Post("/{orderId}/complete", ordercontrollers.AdminComplete(p.Orders, logg))
			r.Post("/{orderId}/cancel", ordercontrollers.AdminCancel(p.Orders, logg))
		})
	})

	return r
}
