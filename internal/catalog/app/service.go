package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrEndOfCatalog  = errors.New("end of catalog")
	ErrAlreadyExists = errors.New("already exists")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

// SaveProduct validates p and inserts it, or replaces the product with the
// same id when p.ID is set.
func (s *Service) SaveProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Price.Currency = strings.ToUpper(strings.TrimSpace(p.Price.Currency))
	p.ImageURL = strings.TrimSpace(p.ImageURL)

	if p.ID < 0 || p.Name == "" || p.Price.Currency == "" || p.Price.Amount <= 0 {
		return domain.Product{}, ErrInvalidInput
	}

	product, err := s.repo.Save(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

// ListProducts returns up to limit products with an id greater than afterID.
// afterID 0 is the start of the catalog.
func (s *Service) ListProducts(ctx context.Context, afterID int64, limit int) ([]domain.Product, error) {
	if afterID < 0 {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return s.repo.List(ctx, afterID, limit)
}
