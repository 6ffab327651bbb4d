package app

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-bot/internal/orders"
	"github.com/angelmondragon/storefront-bot/internal/products"
	"github.com/angelmondragon/storefront-bot/internal/settings"
	"github.com/angelmondragon/storefront-bot/internal/users"
	"github.com/angelmondragon/storefront-bot/pkg/config"
	"github.com/angelmondragon/storefront-bot/pkg/db"
	"github.com/angelmondragon/storefront-bot/pkg/enums"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
	"github.com/angelmondragon/storefront-bot/pkg/migrate"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

func TestNewServicesRequiresClient(t *testing.T) {
	if _, err := NewServices(nil, &config.Config{}, nil, nil); err == nil {
		t.Fatalf("expected error without database client")
	}
}

func TestNewServicesCheckoutAndCancelRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn, err := gorm.Open(sqlite.Open("file:app_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(migrate.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		App:      config.AppConfig{Env: "test", TimeZone: "UTC"},
		Telegram: config.TelegramConfig{AdminID: 1},
	}
	reg := prometheus.NewRegistry()
	svc, err := NewServices(db.NewFromConn(conn), cfg, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}), reg)
	if err != nil {
		t.Fatalf("new services: %v", err)
	}

	if _, err := svc.Settings.Update(ctx, settings.UpdateInput{
		WorkingHours: &types.WorkingHours{Start: "00:00", End: "23:59"},
		UpdatedBy:    1,
	}); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if _, err := svc.Users.Register(ctx, users.Profile{ID: 42, FirstName: "Test", LanguageCode: "en"}); err != nil {
		t.Fatalf("register user: %v", err)
	}
	product, err := svc.Products.Create(ctx, products.CreateInput{Name: "Plov", Category: "food", Price: 25000, Stock: 3})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if _, err := svc.Cart.AddItem(ctx, 42, product.ID, 2); err != nil {
		t.Fatalf("add item: %v", err)
	}

	order, err := svc.Orders.Checkout(ctx, orders.CheckoutInput{UserID: 42, Zone: "center", Address: "Chorsu 1", Phone: "+998900000000"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.Status != enums.OrderStatusPending || order.Total != 55000 {
		t.Fatalf("unexpected order status=%s total=%d", order.Status, order.Total)
	}
	reserved, err := svc.Products.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if reserved.Stock != 1 {
		t.Fatalf("expected stock 1 after checkout got %d", reserved.Stock)
	}

	if _, err := svc.Orders.Cancel(ctx, order.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	restored, err := svc.Products.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if restored.Stock != 3 {
		t.Fatalf("expected stock 3 after cancel got %d", restored.Stock)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if len(families) == 0 {
		t.Fatalf("expected registered metrics")
	}
}
