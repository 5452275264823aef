package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dwikikusuma/shopping-browse/internal/catalog/app"
	"github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
	pgutil "github.com/dwikikusuma/shopping-browse/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
    id           BIGSERIAL PRIMARY KEY,
    name         TEXT        NOT NULL UNIQUE,
    description  TEXT        NOT NULL DEFAULT '',
    image_url    TEXT        NOT NULL DEFAULT '',
    price_amount BIGINT      NOT NULL CHECK (price_amount > 0),
    currency     TEXT        NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const productColumns = `id, name, description, image_url, price_amount, currency, created_at, updated_at`

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// EnsureSchema creates the products table if it is missing.
func (r *ProductRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure products schema: %w", err)
	}
	return nil
}

func (r *ProductRepo) Save(ctx context.Context, p domain.Product) (domain.Product, error) {
	var row *sql.Row
	if p.ID == 0 {
		row = r.db.QueryRowContext(ctx,
			`INSERT INTO products (name, description, image_url, price_amount, currency)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING `+productColumns,
			p.Name, p.Description, p.ImageURL, p.Price.Amount, p.Price.Currency,
		)
	} else {
		row = r.db.QueryRowContext(ctx,
			`INSERT INTO products (id, name, description, image_url, price_amount, currency)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE SET
			   name = EXCLUDED.name,
			   description = EXCLUDED.description,
			   image_url = EXCLUDED.image_url,
			   price_amount = EXCLUDED.price_amount,
			   currency = EXCLUDED.currency,
			   updated_at = now()
			 RETURNING `+productColumns,
			p.ID, p.Name, p.Description, p.ImageURL, p.Price.Amount, p.Price.Currency,
		)
	}

	saved, err := scanProduct(row)
	if err != nil {
		if pgutil.IsUniqueViolation(err) {
			return domain.Product{}, fmt.Errorf("product %q: %w", p.Name, app.ErrAlreadyExists)
		}
		return domain.Product{}, fmt.Errorf("save product: %w", err)
	}

	if p.ID != 0 {
		// Explicit ids bypass the sequence; move it past them.
		if _, err := r.db.ExecContext(ctx,
			`SELECT setval(pg_get_serial_sequence('products', 'id'), GREATEST((SELECT MAX(id) FROM products), 1))`,
		); err != nil {
			return domain.Product{}, fmt.Errorf("advance product sequence: %w", err)
		}
	}
	return saved, nil
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return product, nil
}

func (r *ProductRepo) List(ctx context.Context, afterID int64, limit int) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id > $1 ORDER BY id ASC LIMIT $2`,
		afterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (domain.Product, error) {
	var p domain.Product
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.ImageURL,
		&p.Price.Amount,
		&p.Price.Currency,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
