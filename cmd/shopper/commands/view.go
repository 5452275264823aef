package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func viewCmd(run sessionRunner) *cobra.Command {
	var fromRecent bool

	cmd := &cobra.Command{
		Use:   "view <product-id>",
		Short: "Show a product and record it as viewed",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, s *session, args []string) error {
			productID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q: %w", args[0], err)
			}
			if fromRecent {
				s.svc.OpenRecentProductDetail(productID)
			} else {
				s.svc.OpenProductDetail(productID)
			}
			if err := s.settle(ctx); err != nil {
				return err
			}
			if s.opened == nil {
				return fmt.Errorf("could not open product %d", productID)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&fromRecent, "from-recent", false, "open the product from the recently viewed list")
	return cmd
}
