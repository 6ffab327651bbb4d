package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-bot/api/controllers"
	"github.com/angelmondragon/storefront-bot/internal/app"
	"github.com/angelmondragon/storefront-bot/internal/bot"
	"github.com/angelmondragon/storefront-bot/pkg/config"
	"github.com/angelmondragon/storefront-bot/pkg/db"
	"github.com/angelmondragon/storefront-bot/pkg/instance"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
	"github.com/angelmondragon/storefront-bot/pkg/metrics"
	"github.com/angelmondragon/storefront-bot/pkg/migrate"
	"github.com/angelmondragon/storefront-bot/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg := logger.New(logger.Options{ServiceName: "bot"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	if err := cfg.Telegram.Validate(); err != nil {
		logg.Error(ctx, "invalid telegram config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "bot",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "instance": instance.GetID()})

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "bot stopped with error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var (
		dialogs     bot.DialogStore = bot.NewMemoryDialogs()
		limiter     bot.RateLimiter
		redisPinger controllers.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, redisErr := redis.New(ctx, cfg.Redis, logg)
		if redisErr != nil {
			return redisErr
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
		dialogs, limiter, redisPinger = redisClient, redisClient, redisClient
	} else {
		logg.Warn(ctx, "redis not configured; dialogs kept in memory and rate limiting disabled")
	}

	services, err := app.NewServices(dbClient, cfg, logg, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	if _, err = services.Settings.Get(ctx); err != nil {
		return err
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return err
	}
	api.Debug = cfg.Telegram.Debug
	logg.Info(logg.WithField(ctx, "bot_username", api.Self.UserName), "authorized on telegram")

	b, err := bot.New(bot.Params{
		API:         api,
		Users:       services.Users,
		Products:    services.Products,
		Carts:       services.Cart,
		Orders:      services.Orders,
		Delivery:    services.Delivery,
		Settings:    services.Settings,
		Dialogs:     dialogs,
		Limiter:     limiter,
		Logger:      logg,
		Metrics:     metrics.NewBotMetrics(prometheus.DefaultRegisterer),
		AdminID:     cfg.Telegram.AdminID,
		Currency:    cfg.App.Currency,
		PollTimeout: cfg.Telegram.PollTimeout,
		DialogTTL:   cfg.Telegram.DialogTTL,
		RateLimit:   cfg.Telegram.RateLimit,
		RateWindow:  cfg.Telegram.RateWindow,
	})
	if err != nil {
		return err
	}

	if err := b.PublishCommands(ctx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "publishing command menus failed")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.BotAddr != "" {
		srv := opsServer(cfg, logg, dbClient, redisPinger)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Error(ctx, "ops server stopped", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = multierr.Append(err, srv.Shutdown(shutdownCtx))
		}()
	}

	return b.Run(ctx)
}

// opsServer exposes health checks and prometheus metrics for the bot.
func opsServer(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisPinger controllers.Pinger) *http.Server {
	r := chi.NewRouter()
	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
		"db":    dbClient,
		"redis": redisPinger,
	}))
	path := cfg.Metrics.Path
	if path == "" {
		path = "/metrics"
	}
	r.Handle(path, promhttp.Handler())
	return &http.Server{Addr: cfg.Metrics.BotAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
}
