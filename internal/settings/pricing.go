package settings

import (
	"time"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

// CalculateDeliveryPrice returns the delivery fee for an order. Orders at or
// above the free-delivery threshold are free regardless of zone; otherwise a
// matching zone's price wins over the base price.
func CalculateDeliveryPrice(s *models.DeliverySettings, orderAmount int64, zone string) int64 {
	if orderAmount >= s.FreeDeliveryThreshold {
		return 0
	}
	if z, ok := s.Zones.Find(zone); ok {
		return z.Price
	}
	return s.BaseDeliveryPrice
}

// EstimatedTime returns the zone ETA in minutes, or the global estimate.
func EstimatedTime(s *models.DeliverySettings, zone string) int {
	if z, ok := s.Zones.Find(zone); ok {
		return z.EstimatedTime
	}
	return s.DeliveryTimeEstimate
}

// EncodeClock encodes the wall clock of t as HHMM, e.g. 09:30 -> 930.
func EncodeClock(t time.Time) int {
	return t.Hour()*100 + t.Minute()
}

// IsWithinWorkingHours reports whether now falls inside hours, bounds
// inclusive. A window whose end is before its start spans midnight.
func IsWithinWorkingHours(hours types.WorkingHours, now time.Time) (bool, error) {
	start, err := types.ParseClock(hours.Start)
	if err != nil {
		return false, err
	}
	end, err := types.ParseClock(hours.End)
	if err != nil {
		return false, err
	}
	current := EncodeClock(now)
	if end < start {
		return current >= start || current <= end, nil
	}
	return start <= current && current <= end, nil
}
