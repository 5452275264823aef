// Package cache wraps a ProductSource with an in-memory page cache.
package cache

import (
	"context"
	"slices"
	"sync"

	"github.com/dwikikusuma/shopping-browse/internal/catalog/app"
	"github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
)

// Source caches pages by cursor and products by id. Failures, including
// ErrEndOfCatalog, are never cached.
type Source struct {
	next app.ProductSource

	mu       sync.Mutex
	pages    map[int64][]domain.Product
	products map[int64]domain.Product
}

func NewSource(next app.ProductSource) *Source {
	return &Source{
		next:     next,
		pages:    make(map[int64][]domain.Product),
		products: make(map[int64]domain.Product),
	}
}

func (s *Source) FetchFirstPage(ctx context.Context) ([]domain.Product, error) {
	return s.page(ctx, 0, func(ctx context.Context) ([]domain.Product, error) {
		return s.next.FetchFirstPage(ctx)
	})
}

func (s *Source) FetchNextPage(ctx context.Context, afterID int64) ([]domain.Product, error) {
	return s.page(ctx, afterID, func(ctx context.Context) ([]domain.Product, error) {
		return s.next.FetchNextPage(ctx, afterID)
	})
}

func (s *Source) FetchByID(ctx context.Context, id int64) (domain.Product, error) {
	s.mu.Lock()
	p, ok := s.products[id]
	s.mu.Unlock()
	if ok {
		return p, nil
	}

	p, err := s.next.FetchByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	s.mu.Lock()
	s.products[id] = p
	s.mu.Unlock()
	return p, nil
}

// ResetCache drops every cached page and product.
func (s *Source) ResetCache() {
	s.mu.Lock()
	clear(s.pages)
	clear(s.products)
	s.mu.Unlock()
	s.next.ResetCache()
}

func (s *Source) page(ctx context.Context, cursor int64, fetch func(context.Context) ([]domain.Product, error)) ([]domain.Product, error) {
	s.mu.Lock()
	cached, ok := s.pages[cursor]
	s.mu.Unlock()
	if ok {
		return slices.Clone(cached), nil
	}

	products, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pages[cursor] = slices.Clone(products)
	for _, p := range products {
		s.products[p.ID] = p
	}
	s.mu.Unlock()
	return products, nil
}
