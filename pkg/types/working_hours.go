package types

import (
	"fmt"
	"strconv"
	"strings"
)

// WorkingHours is a daily window expressed as "HH:MM" strings.
type WorkingHours struct {
	Start string `json:"start" gorm:"column:start"`
	End   string `json:"end" gorm:"column:end"`
}

// DefaultWorkingHours is used for new delivery persons and the settings document.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{Start: "09:00", End: "21:00"}
}

// Validate checks both bounds parse as clock values.
func (w WorkingHours) Validate() error {
	if _, err := ParseClock(w.Start); err != nil {
		return fmt.Errorf("working hours start: %w", err)
	}
	if _, err := ParseClock(w.End); err != nil {
		return fmt.Errorf("working hours end: %w", err)
	}
	return nil
}

// ParseClock encodes "HH:MM" as the integer HHMM, e.g. "09:00" -> 900.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q: expected HH:MM", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid clock %q: bad hour", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid clock %q: bad minute", value)
	}
	return hours*100 + minutes, nil
}
