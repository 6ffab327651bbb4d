package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-bot/pkg/enums"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

// Order is the snapshot taken from a cart at checkout.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID           int64             `gorm:"column:user_id;not null;index"`
	Items            []types.OrderLine `gorm:"column:items;type:jsonb;serializer:json"`
	Subtotal         int64             `gorm:"column:subtotal;not null"`
	DeliveryPrice    int64             `gorm:"column:delivery_price;not null"`
	Total            int64             `gorm:"column:total;not null"`
	Zone             string            `gorm:"column:zone"`
	Address          string            `gorm:"column:address;not null"`
	Phone            string            `gorm:"column:phone;not null"`
	Comment          string            `gorm:"column:comment"`
	Status           enums.OrderStatus `gorm:"column:status;not null;index"`
	DeliveryPersonID *uuid.UUID        `gorm:"column:delivery_person_id;type:uuid;index"`
	EstimatedMinutes int               `gorm:"column:estimated_minutes;not null"`
	Rating           *float64          `gorm:"column:rating"`
	AssignedAt       *time.Time        `gorm:"column:assigned_at"`
	DeliveredAt      *time.Time        `gorm:"column:delivered_at"`
	CancelledAt      *time.Time        `gorm:"column:cancelled_at"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
