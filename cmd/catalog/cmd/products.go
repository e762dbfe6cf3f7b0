package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/catalog-browser/internal/filter"
	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List and filter products",
	}

	cmd.AddCommand(productsListCmd())
	cmd.AddCommand(productsFilterCmd())

	return cmd
}

func productsListCmd() *cobra.Command {
	var sort string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every available product",
		Example: `  catalog products list
  catalog products list --sort price_asc --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, func(st *filter.Store) error {
				if sort == "" {
					return nil
				}
				_, err := st.SetSort(domain.SortKey(strings.ToLower(sort)))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&sort, "sort", "", "sort order ("+sortNames()+")")

	return cmd
}

func productsFilterCmd() *cobra.Command {
	var f filterFlags

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "List products matching category, price and stock filters",
		Example: `  catalog products filter --category Dairy --min-price 2 --max-price 20
  catalog products filter --category Dairy --category Bakery --in-stock --sort price_desc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, f.apply)
		},
	}
	f.register(cmd)

	return cmd
}
