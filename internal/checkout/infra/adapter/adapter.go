// Package adapter exposes the shopper's cart store and product source to
// checkout.
package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/shopping-browse/internal/cart/app"
	cart "github.com/dwikikusuma/shopping-browse/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/shopping-browse/internal/catalog/app"
	catalog "github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
)

type CartLines struct {
	store cartapp.CartStore
}

func NewCartLines(store cartapp.CartStore) *CartLines {
	return &CartLines{store: store}
}

// Lines skips lines that were never persisted.
func (c *CartLines) Lines(ctx context.Context) ([]cart.CartLine, error) {
	all, err := c.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	lines := all[:0:0]
	for _, l := range all {
		if l.Persisted() {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

type Products struct {
	source catalogapp.ProductSource
}

func NewProducts(source catalogapp.ProductSource) *Products {
	return &Products{source: source}
}

func (p *Products) Product(ctx context.Context, productID int64) (catalog.Product, error) {
	return p.source.FetchByID(ctx, productID)
}
