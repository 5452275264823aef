package domain

import "time"

type Money struct {
	Currency string `json:"currency" yaml:"currency"`
	Amount   int64  `json:"amount" yaml:"amount"`
}

// Product ids are assigned by the catalog and increase with insertion order,
// which is what keyset pagination relies on.
type Product struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Price       Money     `json:"price" yaml:"price"`
	ImageURL    string    `json:"image_url" yaml:"image_url"`
	Description string    `json:"description,omitempty" yaml:"description"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}
