package app

import (
	"context"

	cart "github.com/dwikikusuma/shopping-browse/internal/cart/domain"
	catalog "github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
)

type LineReader interface {
	Lines(ctx context.Context) ([]cart.CartLine, error)
}

type ProductLookup interface {
	Product(ctx context.Context, productID int64) (catalog.Product, error)
}
