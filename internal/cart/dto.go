package cart

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
)

// LineView is a cart line joined with its product for display.
type LineView struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url,omitempty"`
	Quantity  int       `json:"quantity"`
	Price     int64     `json:"price"`
	Total     int64     `json:"total"`
	Available bool      `json:"available"`
}

// View is the cart as shown to the buyer.
type View struct {
	UserID     int64      `json:"user_id"`
	Items      []LineView `json:"items"`
	ItemCount  int        `json:"item_count"`
	TotalPrice int64      `json:"total_price"`
}

func buildView(cart *models.Cart, products []models.Product) *View {
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	view := &View{
		UserID:     cart.UserID,
		Items:      make([]LineView, 0, len(cart.Items)),
		ItemCount:  cart.ItemCount(),
		TotalPrice: cart.TotalPrice,
	}
	for _, item := range cart.Items {
		line := LineView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Total:     item.Price * int64(item.Quantity),
		}
		if p, ok := byID[item.ProductID]; ok {
			line.Name = p.Name
			line.ImageURL = p.ImageURL
			line.Available = p.Available()
		}
		view.Items = append(view.Items, line)
	}
	return view
}
