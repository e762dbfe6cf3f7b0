package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := setup(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.close()

			names, err := rt.client.ListCategories(ctx)
			if err != nil {
				return fmt.Errorf("listing categories: %w", err)
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), names)
			}
			return printCategories(cmd.OutOrStdout(), names)
		},
	}
}
