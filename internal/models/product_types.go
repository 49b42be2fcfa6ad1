package models

import "time"

// Product is the model for the 'products' table.
// OfferPrice is the price actually charged at checkout; Price is the strike-through
// list price shown next to it.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description" db:"description"`
	Category    string  `json:"category" db:"category"`
	Price       float64 `json:"price" db:"price"`
	OfferPrice  float64 `json:"offerPrice" db:"offer_price"`
	ImageURL    *string `json:"imageUrl,omitempty" db:"image_url"`
	InStock     bool    `json:"inStock" db:"in_stock"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
