package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/catalog-browser/internal/coordinator"
	"github.com/donaldgifford/catalog-browser/internal/session"
	"github.com/donaldgifford/catalog-browser/internal/tui"
)

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog interactively",
		Long: "Opens a terminal browser. Search text, category, price, sort and\n" +
			"stock filters are sent to the backend shortly after you stop\n" +
			"typing; enter sends them immediately.\n\n" +
			"The terminal is taken over, so logs go to logging.file when set\n" +
			"and are discarded otherwise.",
		Args: cobra.NoArgs,
		RunE: runBrowse,
	}
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	logOut, closeLog, err := browseLogOutput()
	if err != nil {
		return err
	}
	defer closeLog()

	rt, err := setup(ctx, logOut)
	if err != nil {
		return err
	}
	defer rt.close()

	binding := tui.NewBinding()
	sess, err := session.New(rt.client, binding,
		session.WithLogger(rt.log),
		session.WithCoordinatorOptions(
			coordinator.WithDelay(rt.cfg.Browse.Debounce),
			coordinator.WithMinQueryLength(rt.cfg.Browse.MinQueryLength),
		),
		session.WithCategoryTTL(rt.cfg.Categories.TTL),
		session.WithCategoryRefresh(rt.cfg.Categories.RefreshInterval, binding.Categories),
	)
	if err != nil {
		return err
	}
	defer sess.Close()

	ov, err := sess.Load(ctx)
	if err != nil {
		return err
	}

	return tui.Run(ctx, tui.New(sess, ov), binding)
}

// browseLogOutput opens logging.file, or discards logs when it is unset.
func browseLogOutput() (io.Writer, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Logging.File == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // log path from trusted config
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
