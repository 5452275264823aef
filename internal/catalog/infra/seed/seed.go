// Package seed loads catalog products from a YAML file.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
)

type File struct {
	Products []domain.Product `yaml:"products"`
}

// Saver is satisfied by the catalog app service.
type Saver interface {
	SaveProduct(ctx context.Context, p domain.Product) (domain.Product, error)
}

func Decode(r io.Reader) ([]domain.Product, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return f.Products, nil
}

func LoadFile(filename string) ([]domain.Product, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Decode(file)
}

// Apply saves every product in order and stops at the first failure.
func Apply(ctx context.Context, log *slog.Logger, svc Saver, products []domain.Product) error {
	for _, p := range products {
		saved, err := svc.SaveProduct(ctx, p)
		if err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		log.Debug("seeded product", slog.Int64("id", saved.ID), slog.String("name", saved.Name))
	}
	log.Info("catalog seeded", slog.Int("products", len(products)))
	return nil
}
