package cmd

import (
	"github.com/spf13/cobra"

	"github.com/donaldgifford/catalog-browser/internal/session"
)

func overviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show categories and all products in one call",
		Long: "Loads the category list and the full product listing in parallel,\n" +
			"as the interactive browser does on start.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := setup(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.close()

			sess, err := session.New(rt.client, newWaiter(),
				session.WithLogger(rt.log),
				session.WithCategoryTTL(rt.cfg.Categories.TTL),
			)
			if err != nil {
				return err
			}
			defer sess.Close()

			ov, err := sess.Load(ctx)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), ov)
			}
			return printOverview(cmd.OutOrStdout(), ov)
		},
	}
}
