// Package sqlite provides the on-device SQLite cart store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dwikikusuma/shopping-browse/internal/cart/app"
	"github.com/dwikikusuma/shopping-browse/internal/cart/domain"
	"github.com/dwikikusuma/shopping-browse/internal/cart/infra/sqlite/migrations"
	sqlitedb "github.com/dwikikusuma/shopping-browse/pkg/sqlite"
)

type CartStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the cart database at path and applies its migrations.
func Open(path string) (*CartStore, error) {
	db, err := sqlitedb.Open(path, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("open cart store: %w", err)
	}
	return &CartStore{db: db, now: time.Now}, nil
}

func (s *CartStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *CartStore) GetAll(ctx context.Context) ([]domain.CartLine, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, quantity, added_at FROM cart_lines ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var (
			line    domain.CartLine
			addedAt int64
		)
		if err := rows.Scan(&line.CartID, &line.ProductID, &line.Quantity, &addedAt); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		line.AddedAt = time.UnixMilli(addedAt).UTC()
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	return lines, nil
}

func (s *CartStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cart_lines`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cart lines: %w", err)
	}
	return n, nil
}

// Add starts a line for productID at quantity 1. If the product is already
// in the cart its existing cart id is returned unchanged.
func (s *CartStore) Add(ctx context.Context, productID int64) (int64, error) {
	if productID <= 0 {
		return 0, app.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO cart_lines (product_id, quantity, added_at) VALUES (?, 1, ?)`,
		productID, s.now().UTC().UnixMilli(),
	)
	if err != nil {
		if sqlitedb.IsUniqueViolation(err) {
			return s.cartIDFor(ctx, productID)
		}
		return 0, fmt.Errorf("add product %d: %w", productID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add product %d: %w", productID, err)
	}
	return id, nil
}

func (s *CartStore) Remove(ctx context.Context, cartID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE id = ?`, cartID)
	if err != nil {
		return fmt.Errorf("remove cart line %d: %w", cartID, err)
	}
	return requireAffected(res, cartID)
}

func (s *CartStore) SetQuantity(ctx context.Context, cartID int64, count int) error {
	if count < 1 {
		return app.ErrInvalidQuantity
	}
	res, err := s.db.ExecContext(ctx, `UPDATE cart_lines SET quantity = ? WHERE id = ?`, count, cartID)
	if err != nil {
		return fmt.Errorf("set quantity of cart line %d: %w", cartID, err)
	}
	return requireAffected(res, cartID)
}

func (s *CartStore) cartIDFor(ctx context.Context, productID int64) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM cart_lines WHERE product_id = ?`, productID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, app.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("find cart line for product %d: %w", productID, err)
	}
	return id, nil
}

func requireAffected(res sql.Result, cartID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cart line %d: %w", cartID, err)
	}
	if n == 0 {
		return fmt.Errorf("cart line %d: %w", cartID, app.ErrNotFound)
	}
	return nil
}
