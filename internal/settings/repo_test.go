package settings

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:settings_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.DeliverySettings{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestRepositoryEnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	if err := repo.Ensure(ctx, models.DefaultDeliverySettings()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	other := models.DefaultDeliverySettings()
	other.BaseDeliveryPrice = 1
	if err := repo.Ensure(ctx, other); err != nil {
		t.Fatalf("second ensure: %v", err)
	}

	var count int64
	if err := repo.db.Model(&models.DeliverySettings{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row got %d", count)
	}

	found, err := repo.Find(ctx)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.BaseDeliveryPrice != 10000 {
		t.Fatalf("second ensure overwrote base price: %d", found.BaseDeliveryPrice)
	}
	if names := found.Zones.Names(); !reflect.DeepEqual(names, []string{"center", "district", "other"}) {
		t.Fatalf("unexpected zones %v", names)
	}
	if found.WorkingHours.Start != "09:00" {
		t.Fatalf("expected 09:00 start got %s", found.WorkingHours.Start)
	}
}

func TestRepositorySaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	if err := repo.Ensure(ctx, models.DefaultDeliverySettings()); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	found, err := repo.Find(ctx)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	found.Zones = types.DeliveryZones{{Name: "A", Price: 5000, EstimatedTime: 30}}
	found.WorkingHours = types.WorkingHours{Start: "22:00", End: "02:00"}
	found.IsDeliveryEnabled = false
	if err := repo.Save(ctx, found); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := repo.Find(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(found.Zones, reloaded.Zones) {
		t.Fatalf("expected zones %v got %v", found.Zones, reloaded.Zones)
	}
	if reloaded.WorkingHours.Start != "22:00" || reloaded.IsDeliveryEnabled {
		t.Fatalf("unexpected reload %+v", reloaded)
	}
}

func TestRepositoryFindMissing(t *testing.T) {
	_, err := NewRepository(newTestDB(t)).Find(context.Background())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found got %v", err)
	}
}
