package app

import (
	"context"
	"errors"

	"github.com/dwikikusuma/shopping-browse/internal/cart/domain"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNotFound        = errors.New("cart line not found")
)

// CartStore holds the shopper's cart lines. Add always starts a line at
// quantity 1 and returns its cart id.
type CartStore interface {
	GetAll(ctx context.Context) ([]domain.CartLine, error)
	Count(ctx context.Context) (int, error)
	Add(ctx context.Context, productID int64) (int64, error)
	Remove(ctx context.Context, cartID int64) error
	SetQuantity(ctx context.Context, cartID int64, count int) error
}
