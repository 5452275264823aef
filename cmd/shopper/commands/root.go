package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	browseapp "github.com/dwikikusuma/shopping-browse/internal/browse/app"
	cartsqlite "github.com/dwikikusuma/shopping-browse/internal/cart/infra/sqlite"
	"github.com/dwikikusuma/shopping-browse/internal/catalog/infra/cache"
	"github.com/dwikikusuma/shopping-browse/internal/catalog/infra/remote"
	checkoutapp "github.com/dwikikusuma/shopping-browse/internal/checkout/app"
	"github.com/dwikikusuma/shopping-browse/internal/checkout/infra/adapter"
	recentsqlite "github.com/dwikikusuma/shopping-browse/internal/recent/infra/sqlite"
	"github.com/dwikikusuma/shopping-browse/pkg/config"
	"github.com/dwikikusuma/shopping-browse/pkg/logger"
	"github.com/dwikikusuma/shopping-browse/pkg/shutdown"
)

type rootOptions struct {
	dataDir    string
	catalogURL string
	pageSize   int
	lang       string
	logLevel   string
}

// Execute runs the CLI until it finishes or SIGINT/SIGTERM arrives.
func Execute() error {
	ctx, cancel := shutdown.WithSignals(context.Background(), nil)
	defer cancel()
	return NewRootCmd().ExecuteContext(ctx)
}

func NewRootCmd() *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:          "shopper",
		Short:        "Browse the catalog and manage your cart",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "cart and history dir (default $SHOPPER_DATA_DIR or ~/.shopper)")
	root.PersistentFlags().StringVar(&opts.catalogURL, "catalog", "", "catalog base URL (default $CATALOG_URL)")
	root.PersistentFlags().IntVar(&opts.pageSize, "page-size", 0, "products per page (default $CATALOG_PAGE_SIZE)")
	root.PersistentFlags().StringVar(&opts.lang, "lang", "en", "language used to format prices")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (default $LOG_LEVEL)")

	withSession := func(fn func(ctx context.Context, s *session, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := openSession(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()
			return fn(cmd.Context(), s, args)
		}
	}

	root.AddCommand(
		browseCmd(withSession),
		cartCmd(withSession),
		viewCmd(withSession),
		recentCmd(withSession),
	)
	return root
}

type sessionRunner func(fn func(ctx context.Context, s *session, args []string) error) func(*cobra.Command, []string) error

func openSession(opts rootOptions, out, errOut io.Writer) (*session, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if opts.dataDir != "" {
		cfg.Shopper.DataDir = opts.dataDir
	}
	if opts.catalogURL != "" {
		cfg.Catalog.URL = opts.catalogURL
	}
	if opts.pageSize > 0 {
		cfg.Catalog.PageSize = opts.pageSize
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	tag, err := language.Parse(opts.lang)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --lang %q: %w", opts.lang, err)
	}

	dir := cfg.Shopper.DataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, err
		}
		dir = filepath.Join(home, ".shopper")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, err
	}

	log := logger.New(logger.Options{Service: "shopper", Env: cfg.AppEnv, Level: cfg.LogLevel, Writer: errOut})

	cartStore, err := cartsqlite.Open(filepath.Join(dir, "cart.db"))
	if err != nil {
		return nil, nil, err
	}
	recentStore, err := recentsqlite.Open(filepath.Join(dir, "recent.db"), cfg.Shopper.RecentLimit)
	if err != nil {
		_ = cartStore.Close()
		return nil, nil, err
	}

	source := cache.NewSource(remote.NewClient(cfg.Catalog.URL, remote.Options{
		PageSize:  cfg.Catalog.PageSize,
		RateLimit: cfg.Catalog.RateLimit,
		RateBurst: cfg.Catalog.RateBurst,
		Timeout:   cfg.Catalog.Timeout,
	}))

	svc := browseapp.NewService(source, cartStore, recentStore, browseapp.Options{
		Logger:      log,
		EventBuffer: cfg.Shopper.EventBuffer,
	})
	checkout := checkoutapp.NewService(
		adapter.NewCartLines(cartStore),
		adapter.NewProducts(source),
		4,
	)

	cleanup := func() {
		svc.ResetCache()
		svc.Close()
		_ = recentStore.Close()
		_ = cartStore.Close()
	}
	return newSession(svc, checkout, out, tag), cleanup, nil
}
