package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	cart "github.com/dwikikusuma/shopping-browse/internal/cart/domain"
	catalog "github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
	"github.com/dwikikusuma/shopping-browse/internal/checkout/domain"
)

const defaultLookups = 10

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrMixedCurrency = errors.New("cart mixes currencies")
)

type Service struct {
	lines    LineReader
	products ProductLookup
	lookups  int
}

// NewService builds a quote service that runs at most lookups product
// requests at a time.
func NewService(lines LineReader, products ProductLookup, lookups int) *Service {
	if lookups <= 0 {
		lookups = defaultLookups
	}
	return &Service{lines: lines, products: products, lookups: lookups}
}

// Quote prices the cart at the catalog's current prices.
func (s *Service) Quote(ctx context.Context) (domain.Quote, error) {
	lines, err := s.lines.Lines(ctx)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("read cart: %w", err)
	}
	if len(lines) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	products, err := s.lookup(ctx, lines)
	if err != nil {
		return domain.Quote{}, err
	}

	quote := domain.Quote{Lines: make([]domain.QuoteLine, 0, len(lines))}
	for i, l := range lines {
		if l.Quantity < 1 {
			return domain.Quote{}, fmt.Errorf("cart line %d has quantity %d", l.CartID, l.Quantity)
		}
		p := products[l.ProductID]
		if i == 0 {
			quote.Total.Currency = p.Price.Currency
		} else if p.Price.Currency != quote.Total.Currency {
			return domain.Quote{}, ErrMixedCurrency
		}

		total := catalog.Money{Currency: p.Price.Currency, Amount: p.Price.Amount * int64(l.Quantity)}
		quote.Total.Amount += total.Amount
		quote.Lines = append(quote.Lines, domain.QuoteLine{
			CartID:    l.CartID,
			Product:   p,
			Quantity:  l.Quantity,
			LineTotal: total,
		})
	}
	return quote, nil
}

// lookup fetches each distinct product once.
func (s *Service) lookup(ctx context.Context, lines []cart.CartLine) (map[int64]catalog.Product, error) {
	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]bool, len(lines))
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}

	found := make([]catalog.Product, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.lookups)
	for i, id := range ids {
		g.Go(func() error {
			p, err := s.products.Product(ctx, id)
			if err != nil {
				return fmt.Errorf("get product %d: %w", id, err)
			}
			found[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[int64]catalog.Product, len(found))
	for i, p := range found {
		byID[ids[i]] = p
	}
	return byID, nil
}
