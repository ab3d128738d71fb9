package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/spf13/cobra"
)

func newOrdersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "orders <email>",
		Short: "List a user's orders, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			unit, err := a.cfg.CurrencyUnit()
			if err != nil {
				return err
			}

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer a.closeStore(store)

			orders, err := store.ListOrders(ctx, args[0])
			if err != nil {
				return fmt.Errorf("store.ListOrders: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(orders) == 0 {
				fmt.Fprintln(out, "no orders")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tSTATUS\tITEMS\tTOTAL")
			for _, order := range orders {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					order.ID,
					order.Date.Format(time.RFC3339),
					order.Status,
					len(order.Items),
					domain.NewMoney(order.Total, unit),
				)
			}
			return w.Flush()
		},
	}
}
