package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
)

// Product is the catalog entry exposed through the API.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url,omitempty"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"is_active"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductPage is one cursor page of products.
type ProductPage struct {
	Products   []Product `json:"products"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func FromProduct(p *models.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Price:       p.Price,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		Available:   p.Available(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromProducts(list []models.Product, nextCursor string) ProductPage {
	page := ProductPage{Products: make([]Product, 0, len(list)), NextCursor: nextCursor}
	for i := range list {
		page.Products = append(page.Products, FromProduct(&list[i]))
	}
	return page
}
