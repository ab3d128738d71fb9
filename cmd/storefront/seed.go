package main

import (
	"fmt"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/seed"
	"github.com/spf13/cobra"
)

type seedOptions struct {
	count   int
	seed    uint64
	initial bool
}

func newSeedCommand(a *app) *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert generated products into the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.count < 0 {
				return fmt.Errorf("count[%d] must not be negative", opts.count)
			}

			ctx := cmd.Context()

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer a.closeStore(store)

			var products []domain.Product
			if opts.initial {
				products = append(products, seed.Initial()...)
			}
			products = append(products, seed.Generate(opts.count, opts.seed)...)

			if err := store.SeedProducts(ctx, products); err != nil {
				return fmt.Errorf("store.SeedProducts: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", len(products))
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.count, "count", "n", 50, "number of generated products")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "random seed, the same seed gives the same catalog")
	cmd.Flags().BoolVar(&opts.initial, "initial", false, "also upsert the initial catalog")

	return cmd
}
