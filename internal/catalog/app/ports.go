package app

import (
	"context"

	"github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
)

type ProductRepo interface {
	Save(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	List(ctx context.Context, afterID int64, limit int) ([]domain.Product, error)
}

// ProductSource is the client-side view of the catalog. FetchNextPage returns
// ErrEndOfCatalog once nothing follows afterID.
type ProductSource interface {
	FetchFirstPage(ctx context.Context) ([]domain.Product, error)
	FetchNextPage(ctx context.Context, afterID int64) ([]domain.Product, error)
	FetchByID(ctx context.Context, id int64) (domain.Product, error)
	ResetCache()
}
