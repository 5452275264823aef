package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/lib/pq"

	"github.com/dwikikusuma/shopping-browse/internal/catalog/app"
	"github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
)

// openTestDB connects to the database named by POSTGRES_TEST_DSN and gives the
// test its own schema so runs do not interfere.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, stmt := range []string{
		`DROP SCHEMA IF EXISTS catalog_test CASCADE`,
		`CREATE SCHEMA catalog_test`,
		`SET search_path TO catalog_test`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	return db
}

func newTestRepo(t *testing.T) *ProductRepo {
	t.Helper()
	repo := NewProductRepo(openTestDB(t))
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return repo
}

func TestProductRepo_KeysetPagination(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		if _, err := repo.Save(ctx, domain.Product{Name: name, Price: domain.Money{Currency: "KRW", Amount: 1000}}); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}

	first, err := repo.List(ctx, 0, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(first) != 2 || first[0].Name != "a" || first[1].Name != "b" {
		t.Fatalf("first page = %+v", first)
	}

	next, err := repo.List(ctx, first[1].ID, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(next) != 3 || next[0].Name != "c" {
		t.Fatalf("next page = %+v", next)
	}

	last, err := repo.List(ctx, next[2].ID, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(last) != 0 {
		t.Fatalf("expected empty page, got %d", len(last))
	}
}

func TestProductRepo_SaveWithIDUpserts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.Save(ctx, domain.Product{ID: 10, Name: "mug", Price: domain.Money{Currency: "KRW", Amount: 1}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := repo.Save(ctx, domain.Product{ID: 10, Name: "mug", Price: domain.Money{Currency: "KRW", Amount: 2}}); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	got, err := repo.Get(ctx, 10)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Price.Amount != 2 {
		t.Fatalf("amount = %d, want 2", got.Price.Amount)
	}

	fresh, err := repo.Save(ctx, domain.Product{Name: "cup", Price: domain.Money{Currency: "KRW", Amount: 1}})
	if err != nil {
		t.Fatalf("Save fresh: %v", err)
	}
	if fresh.ID <= 10 {
		t.Fatalf("sequence not advanced past explicit id: %d", fresh.ID)
	}
}

func TestProductRepo_Errors(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.Get(ctx, 999); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("Get missing: expected ErrNotFound, got %v", err)
	}

	p := domain.Product{Name: "dup", Price: domain.Money{Currency: "KRW", Amount: 1}}
	if _, err := repo.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := repo.Save(ctx, p); !errors.Is(err, app.ErrAlreadyExists) {
		t.Fatalf("duplicate name: expected ErrAlreadyExists, got %v", err)
	}
}
