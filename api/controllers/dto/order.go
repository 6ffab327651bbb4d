package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	"github.com/angelmondragon/storefront-bot/pkg/enums"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

// Order is the order view shared by buyers and the admin.
type Order struct {
	ID               uuid.UUID         `json:"id"`
	UserID           int64             `json:"user_id"`
	Items            []types.OrderLine `json:"items"`
	Subtotal         int64             `json:"subtotal"`
	DeliveryPrice    int64             `json:"delivery_price"`
	Total            int64             `json:"total"`
	Zone             string            `json:"zone,omitempty"`
	Address          string            `json:"address"`
	Phone            string            `json:"phone"`
	Comment          string            `json:"comment,omitempty"`
	Status           enums.OrderStatus `json:"status"`
	DeliveryPersonID *uuid.UUID        `json:"delivery_person_id,omitempty"`
	EstimatedMinutes int               `json:"estimated_minutes"`
	Rating           *float64          `json:"rating,omitempty"`
	AssignedAt       *time.Time        `json:"assigned_at,omitempty"`
	DeliveredAt      *time.Time        `json:"delivered_at,omitempty"`
	CancelledAt      *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

type OrderPage struct {
	Orders     []Order `json:"orders"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

func FromOrder(o *models.Order) Order {
	items := o.Items
	if items == nil {
		items = []types.OrderLine{}
	}
	return Order{
		ID:               o.ID,
		UserID:           o.UserID,
		Items:            items,
		Subtotal:         o.Subtotal,
		DeliveryPrice:    o.DeliveryPrice,
		Total:            o.Total,
		Zone:             o.Zone,
		Address:          o.Address,
		Phone:            o.Phone,
		Comment:          o.Comment,
		Status:           o.Status,
		DeliveryPersonID: o.DeliveryPersonID,
		EstimatedMinutes: o.EstimatedMinutes,
		Rating:           o.Rating,
		AssignedAt:       o.AssignedAt,
		DeliveredAt:      o.DeliveredAt,
		CancelledAt:      o.CancelledAt,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func FromOrders(list []models.Order, nextCursor string) OrderPage {
	page := OrderPage{Orders: make([]Order, 0, len(list)), NextCursor: nextCursor}
	for i := range list {
		page.Orders = append(page.Orders, FromOrder(&list[i]))
	}
	return page
}
