package controllers

import (
	"context"
	"net/http"
	"testing"

	settingssvc "github.com/angelmondragon/storefront-bot/internal/settings"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

type stubSettingsStore struct {
	settingssvc.Service
	current *models.DeliverySettings
	patch   settingssvc.UpdateInput
	zonesBy int64
}

func (s *stubSettingsStore) Get(ctx context.Context) (*models.DeliverySettings, error) {
	return s.current, nil
}

func (s *stubSettingsStore) Update(ctx context.Context, input settingssvc.UpdateInput) (*models.DeliverySettings, error) {
	s.patch = input
	if input.IsDeliveryEnabled != nil {
		s.current.IsDeliveryEnabled = *input.IsDeliveryEnabled
	}
	if input.BaseDeliveryPrice != nil {
		s.current.BaseDeliveryPrice = *input.BaseDeliveryPrice
	}
	return s.current, nil
}

func (s *stubSettingsStore) UpdateZones(ctx context.Context, zones types.DeliveryZones, updatedBy int64) (*models.DeliverySettings, error) {
	s.current.Zones = zones
	s.zonesBy = updatedBy
	return s.current, nil
}

func newStubSettingsStore() *stubSettingsStore {
	defaults := models.DefaultDeliverySettings()
	return &stubSettingsStore{current: &defaults}
}

func TestAdminSettingsGet(t *testing.T) {
	svc := newStubSettingsStore()
	rec := serve(AdminSettingsGet(svc, testLogger()), newRequest(http.MethodGet, "/", "", 1, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		BaseDeliveryPrice int64               `json:"base_delivery_price"`
		Zones             types.DeliveryZones `json:"zones"`
	}
	decodeData(t, rec, &out)
	if out.BaseDeliveryPrice != 10000 || len(out.Zones) != 3 {
		t.Fatalf("unexpected settings %+v", out)
	}
}

func TestAdminSettingsUpdateLeavesOmittedFields(t *testing.T) {
	svc := newStubSettingsStore()
	rec := serve(AdminSettingsUpdate(svc, testLogger()), newRequest(http.MethodPatch, "/", `{"is_delivery_enabled":false}`, 1, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.patch.IsDeliveryEnabled == nil || *svc.patch.IsDeliveryEnabled {
		t.Fatalf("expected delivery disabled in patch")
	}
	if svc.patch.BaseDeliveryPrice != nil || svc.patch.Zones != nil {
		t.Fatalf("omitted fields should stay nil: %+v", svc.patch)
	}
	if svc.patch.UpdatedBy != 1 {
		t.Fatalf("expected updated_by 1, got %d", svc.patch.UpdatedBy)
	}
}

func TestAdminSettingsUpdateRejectsNegativePrice(t *testing.T) {
	svc := newStubSettingsStore()
	rec := serve(AdminSettingsUpdate(svc, testLogger()), newRequest(http.MethodPatch, "/", `{"base_delivery_price":-1}`, 1, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdminSettingsZonesReplace(t *testing.T) {
	svc := newStubSettingsStore()
	body := `{"zones":[{"name":"airport","price":20000,"estimated_time":90}]}`
	rec := serve(AdminSettingsZones(svc, testLogger()), newRequest(http.MethodPut, "/", body, 1, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.current.Zones) != 1 || svc.current.Zones[0].Name != "airport" || svc.zonesBy != 1 {
		t.Fatalf("unexpected zones %+v by %d", svc.current.Zones, svc.zonesBy)
	}

	rec = serve(AdminSettingsZones(svc, testLogger()), newRequest(http.MethodPut, "/", `{"zones":[{"price":1}]}`, 1, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unnamed zone, got %d", rec.Code)
	}
}
