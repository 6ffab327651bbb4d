package types

import (
	"fmt"
	"strings"
)

// DeliveryZone is a named pricing region.
type DeliveryZone struct {
	Name          string `json:"name" validate:"required,max=64"`
	Price         int64  `json:"price" validate:"min=0"`
	EstimatedTime int    `json:"estimated_time" validate:"min=0"`
}

// DeliveryZones keeps the configured order of zones.
type DeliveryZones []DeliveryZone

// Find returns the zone whose name matches after trimming.
func (z DeliveryZones) Find(name string) (DeliveryZone, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DeliveryZone{}, false
	}
	for _, zone := range z {
		if zone.Name == name {
			return zone, true
		}
	}
	return DeliveryZone{}, false
}

// Normalized returns a copy with surrounding whitespace cut from names.
func (z DeliveryZones) Normalized() DeliveryZones {
	out := make(DeliveryZones, len(z))
	for i, zone := range z {
		zone.Name = strings.TrimSpace(zone.Name)
		out[i] = zone
	}
	return out
}

// Names lists the zone names in configured order.
func (z DeliveryZones) Names() []string {
	names := make([]string, 0, len(z))
	for _, zone := range z {
		names = append(names, zone.Name)
	}
	return names
}

// Validate enforces unique, non-empty names and non-negative values.
func (z DeliveryZones) Validate() error {
	seen := make(map[string]struct{}, len(z))
	for i, zone := range z {
		name := strings.TrimSpace(zone.Name)
		if name == "" {
			return fmt.Errorf("zone %d: name is required", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("zone %q is defined more than once", name)
		}
		seen[name] = struct{}{}
		if zone.Price < 0 {
			return fmt.Errorf("zone %q: price must be non-negative", name)
		}
		if zone.EstimatedTime < 0 {
			return fmt.Errorf("zone %q: estimated time must be non-negative", name)
		}
	}
	return nil
}
