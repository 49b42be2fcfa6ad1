package models

import "time"

// Category is the model for the 'categories' table.
// Path is the URL slug the storefront routes on; it must be unique.
type Category struct {
	ID       int64   `json:"id" db:"id"`
	Text     string  `json:"text" db:"text"`
	Path     string  `json:"path" db:"path"`
	ImageURL *string `json:"imageUrl,omitempty" db:"image_url"`
	BgColor  string  `json:"bgColor" db:"bg_color"`
	IsActive bool    `json:"isActive" db:"is_active"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
