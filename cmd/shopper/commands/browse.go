package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func browseCmd(run sessionRunner) *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List catalog products with their cart state",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, s *session, _ []string) error {
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}
			if err := s.loadPages(ctx, pages); err != nil {
				return err
			}
			s.renderProducts()
			return nil
		}),
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	return cmd
}

func recentCmd(run sessionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List recently viewed products, most recent first",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, s *session, _ []string) error {
			s.svc.LoadRecent()
			if err := s.settle(ctx); err != nil {
				return err
			}
			s.renderRecent()
			return nil
		}),
	}
}
