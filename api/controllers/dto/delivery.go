package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-bot/internal/delivery"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

// DeliveryPerson is the admin view of a courier.
type DeliveryPerson struct {
	ID                  uuid.UUID          `json:"id"`
	ExternalID          int64              `json:"external_id"`
	Name                string             `json:"name"`
	Phone               string             `json:"phone,omitempty"`
	Username            string             `json:"username,omitempty"`
	IsActive            bool               `json:"is_active"`
	IsOnline            bool               `json:"is_online"`
	CurrentLocation     *types.Location    `json:"current_location,omitempty"`
	Rating              float64            `json:"rating"`
	TotalDeliveries     int                `json:"total_deliveries"`
	CompletedDeliveries int                `json:"completed_deliveries"`
	AverageDeliveryTime int                `json:"average_delivery_time"`
	WorkingHours        types.WorkingHours `json:"working_hours"`
	DeliveryZones       []string           `json:"delivery_zones"`
	AddedBy             int64              `json:"added_by"`
	AddedAt             time.Time          `json:"added_at"`
	LastActivity        time.Time          `json:"last_activity"`
}

// Candidate is a ranked courier with its selector score.
type Candidate struct {
	DeliveryPerson DeliveryPerson `json:"delivery_person"`
	Score          float64        `json:"score"`
}

func FromDeliveryPerson(p *models.DeliveryPerson) DeliveryPerson {
	zones := p.DeliveryZones
	if zones == nil {
		zones = []string{}
	}
	return DeliveryPerson{
		ID:                  p.ID,
		ExternalID:          p.ExternalID,
		Name:                p.Name,
		Phone:               p.Phone,
		Username:            p.Username,
		IsActive:            p.IsActive,
		IsOnline:            p.IsOnline,
		CurrentLocation:     p.CurrentLocation,
		Rating:              p.Rating,
		TotalDeliveries:     p.TotalDeliveries,
		CompletedDeliveries: p.CompletedDeliveries,
		AverageDeliveryTime: p.AverageDeliveryTime,
		WorkingHours:        p.WorkingHours,
		DeliveryZones:       zones,
		AddedBy:             p.AddedBy,
		AddedAt:             p.AddedAt,
		LastActivity:        p.LastActivity,
	}
}

func FromDeliveryPersons(list []models.DeliveryPerson) []DeliveryPerson {
	out := make([]DeliveryPerson, 0, len(list))
	for i := range list {
		out = append(out, FromDeliveryPerson(&list[i]))
	}
	return out
}

func FromCandidate(c *delivery.Candidate) Candidate {
	return Candidate{DeliveryPerson: FromDeliveryPerson(&c.Person), Score: c.Score}
}
