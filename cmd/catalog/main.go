package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	catalogapp "github.com/dwikikusuma/shopping-browse/internal/catalog/app"
	"github.com/dwikikusuma/shopping-browse/internal/catalog/httpapi"
	cpg "github.com/dwikikusuma/shopping-browse/internal/catalog/infra/postgres"
	"github.com/dwikikusuma/shopping-browse/internal/catalog/infra/seed"

	"github.com/dwikikusuma/shopping-browse/pkg/config"
	"github.com/dwikikusuma/shopping-browse/pkg/logger"
	"github.com/dwikikusuma/shopping-browse/pkg/postgres"
	"github.com/dwikikusuma/shopping-browse/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Service: "catalog", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background(), log)
	defer cancel()

	db := mustDB(log, cfg.Postgres)
	defer db.Close()

	repo := cpg.NewProductRepo(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error("schema setup failed", slog.Any("err", err))
		os.Exit(1)
	}
	svc := catalogapp.NewService(repo)

	if cfg.Catalog.SeedFile != "" {
		products, err := seed.LoadFile(cfg.Catalog.SeedFile)
		if err != nil {
			log.Error("seed load failed", slog.Any("err", err), slog.String("file", cfg.Catalog.SeedFile))
			os.Exit(1)
		}
		if err := seed.Apply(ctx, log, svc, products); err != nil {
			log.Error("seed apply failed", slog.Any("err", err))
			os.Exit(1)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewServer(svc, log).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")
		err := shutdown.Graceful(10*time.Second, server.Shutdown, func() {
			log.Warn("graceful stop timeout, forcing stop")
			_ = server.Close()
		})
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			log.Error("http shutdown error", slog.Any("err", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("catalog stopped with error", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}

func mustDB(log *slog.Logger, cfg postgres.Config) *sql.DB {
	db, err := postgres.Open(cfg)
	if err != nil {
		log.Error("db open failed", slog.Any("err", err), slog.String("host", cfg.Host))
		os.Exit(1)
	}
	return db
}
