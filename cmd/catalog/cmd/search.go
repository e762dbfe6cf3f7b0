package cmd

import (
	"github.com/spf13/cobra"

	"github.com/donaldgifford/catalog-browser/internal/filter"
)

func searchCmd() *cobra.Command {
	var f filterFlags

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search products by name or category",
		Long: "Searches product names and categories for the query text. The\n" +
			"filter flags narrow the results the same way products filter does.",
		Example: `  catalog search milk
  catalog search "whole wheat" --category Bakery --max-price 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, func(st *filter.Store) error {
				if _, err := st.SetSearchQuery(args[0]); err != nil {
					return err
				}
				return f.apply(st)
			})
		},
	}
	f.register(cmd)

	return cmd
}
