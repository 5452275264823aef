// Package sqlite provides the on-device SQLite recently-viewed store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	catalog "github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
	"github.com/dwikikusuma/shopping-browse/internal/recent/app"
	"github.com/dwikikusuma/shopping-browse/internal/recent/domain"
	"github.com/dwikikusuma/shopping-browse/internal/recent/infra/sqlite/migrations"
	sqlitedb "github.com/dwikikusuma/shopping-browse/pkg/sqlite"
)

type RecentStore struct {
	db    *sql.DB
	limit int
	now   func() time.Time
}

// Open opens the history database at path. limit bounds the number of
// entries kept; values below 1 fall back to app.DefaultLimit.
func Open(path string, limit int) (*RecentStore, error) {
	if limit < 1 {
		limit = app.DefaultLimit
	}
	db, err := sqlitedb.Open(path, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("open recent store: %w", err)
	}
	return &RecentStore{db: db, limit: limit, now: time.Now}, nil
}

func (s *RecentStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *RecentStore) GetAll(ctx context.Context) ([]domain.View, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, name, description, image_url, price_amount, currency, viewed_at
		   FROM recent_views
		  ORDER BY seq DESC
		  LIMIT ?`, s.limit)
	if err != nil {
		return nil, fmt.Errorf("list recent views: %w", err)
	}
	defer rows.Close()

	var views []domain.View
	for rows.Next() {
		var (
			p        catalog.Product
			viewedAt int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.Price.Amount, &p.Price.Currency, &viewedAt); err != nil {
			return nil, fmt.Errorf("scan recent view: %w", err)
		}
		views = append(views, domain.View{
			Product:  p,
			Rank:     len(views),
			ViewedAt: time.UnixMilli(viewedAt).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recent views: %w", err)
	}
	return views, nil
}

// Record makes product the most recent entry and trims the history to the
// configured limit.
func (s *RecentStore) Record(ctx context.Context, product catalog.Product) error {
	if product.ID <= 0 {
		return app.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM recent_views`).Scan(&seq); err != nil {
		return fmt.Errorf("next recent seq: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO recent_views (product_id, name, description, image_url, price_amount, currency, seq, viewed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (product_id) DO UPDATE SET
		   name = excluded.name,
		   description = excluded.description,
		   image_url = excluded.image_url,
		   price_amount = excluded.price_amount,
		   currency = excluded.currency,
		   seq = excluded.seq,
		   viewed_at = excluded.viewed_at`,
		product.ID, product.Name, product.Description, product.ImageURL,
		product.Price.Amount, product.Price.Currency, seq, s.now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("record view of product %d: %w", product.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM recent_views
		  WHERE product_id NOT IN (SELECT product_id FROM recent_views ORDER BY seq DESC LIMIT ?)`,
		s.limit,
	); err != nil {
		return fmt.Errorf("trim recent views: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}
