package types

import "github.com/google/uuid"

// OrderLine is the immutable snapshot of a cart line taken at checkout.
type OrderLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
}

// Total is price times quantity.
func (l OrderLine) Total() int64 {
	return l.Price * int64(l.Quantity)
}
