package app

import (
	"context"
	"errors"

	catalog "github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
	"github.com/dwikikusuma/shopping-browse/internal/recent/domain"
)

var ErrInvalidInput = errors.New("invalid input")

// DefaultLimit bounds the history when no limit is configured.
const DefaultLimit = 10

// Store keeps the recently viewed history, most recent first. Recording a
// product that is already present promotes it instead of duplicating it.
type Store interface {
	GetAll(ctx context.Context) ([]domain.View, error)
	Record(ctx context.Context, product catalog.Product) error
}
