package settings

import (
	"testing"
	"time"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

func scenarioSettings() *models.DeliverySettings {
	return &models.DeliverySettings{
		BaseDeliveryPrice:     6000,
		FreeDeliveryThreshold: 100000,
		DeliveryTimeEstimate:  50,
		Zones: types.DeliveryZones{
			{Name: "A", Price: 5000, EstimatedTime: 30},
			{Name: "B", Price: 8000, EstimatedTime: 45},
		},
	}
}

func TestCalculateDeliveryPriceScenario(t *testing.T) {
	s := scenarioSettings()
	cases := []struct {
		amount int64
		zone   string
		want   int64
	}{
		{50000, "A", 5000},
		{50000, "C", 6000},
		{150000, "A", 0},
	}
	for _, tc := range cases {
		if got := CalculateDeliveryPrice(s, tc.amount, tc.zone); got != tc.want {
			t.Fatalf("amount=%d zone=%q: expected %d got %d", tc.amount, tc.zone, tc.want, got)
		}
	}
}

func TestCalculateDeliveryPriceFreeAtThreshold(t *testing.T) {
	s := scenarioSettings()
	for _, zone := range []string{"A", "B", "unknown", ""} {
		if got := CalculateDeliveryPrice(s, s.FreeDeliveryThreshold, zone); got != 0 {
			t.Fatalf("zone %q at threshold: expected free got %d", zone, got)
		}
		if got := CalculateDeliveryPrice(s, s.FreeDeliveryThreshold+1, zone); got != 0 {
			t.Fatalf("zone %q over threshold: expected free got %d", zone, got)
		}
	}
}

func TestCalculateDeliveryPriceBelowThreshold(t *testing.T) {
	s := scenarioSettings()
	for _, zone := range s.Zones {
		if got := CalculateDeliveryPrice(s, s.FreeDeliveryThreshold-1, zone.Name); got != zone.Price {
			t.Fatalf("zone %q: expected %d got %d", zone.Name, zone.Price, got)
		}
	}
	if got := CalculateDeliveryPrice(s, 10, ""); got != s.BaseDeliveryPrice {
		t.Fatalf("empty zone: expected base price got %d", got)
	}
	if got := CalculateDeliveryPrice(s, 10, "a"); got != s.BaseDeliveryPrice {
		t.Fatalf("zone names are case sensitive, expected base price got %d", got)
	}
}

func TestEstimatedTime(t *testing.T) {
	s := scenarioSettings()
	for zone, want := range map[string]int{"B": 45, "C": 50, "": 50} {
		if got := EstimatedTime(s, zone); got != want {
			t.Fatalf("zone %q: expected %d got %d", zone, want, got)
		}
	}
}

func TestEncodeClock(t *testing.T) {
	if got := EncodeClock(time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC)); got != 905 {
		t.Fatalf("expected 905 got %d", got)
	}
	if got := EncodeClock(time.Date(2026, 3, 1, 0, 0, 59, 0, time.UTC)); got != 0 {
		t.Fatalf("expected 0 got %d", got)
	}
}

func TestIsWithinWorkingHours(t *testing.T) {
	day := types.WorkingHours{Start: "09:00", End: "21:00"}
	at := func(h, m int) time.Time { return time.Date(2026, 3, 1, h, m, 0, 0, time.UTC) }

	cases := []struct {
		name  string
		hours types.WorkingHours
		now   time.Time
		want  bool
	}{
		{"opening minute", day, at(9, 0), true},
		{"closing minute", day, at(21, 0), true},
		{"midday", day, at(13, 30), true},
		{"before open", day, at(8, 59), false},
		{"after close", day, at(21, 1), false},
		{"overnight late", types.WorkingHours{Start: "22:00", End: "02:00"}, at(23, 15), true},
		{"overnight early", types.WorkingHours{Start: "22:00", End: "02:00"}, at(1, 59), true},
		{"overnight closed", types.WorkingHours{Start: "22:00", End: "02:00"}, at(12, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := IsWithinWorkingHours(tc.hours, tc.now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}

func TestIsWithinWorkingHoursRejectsMalformed(t *testing.T) {
	if _, err := IsWithinWorkingHours(types.WorkingHours{Start: "9am", End: "21:00"}, time.Now()); err == nil {
		t.Fatalf("expected error for malformed start")
	}
}
