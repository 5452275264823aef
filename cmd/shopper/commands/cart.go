package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func cartCmd(run sessionRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and change the cart",
	}
	cmd.AddCommand(cartSetCmd(run), cartShowCmd(run))
	return cmd
}

func cartSetCmd(run sessionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> <count>",
		Short: "Change the quantity of a product; 0 removes it",
		Long: "Change the quantity of a product in the cart.\n\n" +
			"A product that is not in the cart yet is added with quantity 1 " +
			"whatever count is given. A count of 0 removes it.",
		Args: cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, s *session, args []string) error {
			productID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q: %w", args[0], err)
			}
			count, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid count %q: %w", args[1], err)
			}
			if count < 0 {
				return fmt.Errorf("count must not be negative: %d", count)
			}

			if _, ok, err := s.loadUntil(ctx, productID); err != nil {
				return err
			} else if !ok {
				return fmt.Errorf("product %d not found in catalog", productID)
			}

			s.svc.ChangeQuantity(productID, count)
			if err := s.settle(ctx); err != nil {
				return err
			}
			item, _ := s.item(productID)
			s.renderItem(item)
			return nil
		}),
	}
}

func cartShowCmd(run sessionRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show cart lines and the total",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, s *session, _ []string) error {
			s.svc.NavigateToCart()
			s.svc.RefreshBadge()
			if err := s.settle(ctx); err != nil {
				return err
			}
			s.renderBadge()
			return nil
		}),
	}
}
