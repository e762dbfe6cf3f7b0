package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/catalog-browser/internal/coordinator"
	"github.com/donaldgifford/catalog-browser/internal/filter"
	"github.com/donaldgifford/catalog-browser/internal/session"
	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

// filterFlags are the filter options shared by products filter and search.
type filterFlags struct {
	categories []string
	minPrice   string
	maxPrice   string
	sort       string
	inStock    bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.categories, "category", nil, "category to include (repeatable)")
	cmd.Flags().StringVar(&f.minPrice, "min-price", "", "lowest price to include")
	cmd.Flags().StringVar(&f.maxPrice, "max-price", "", "highest price to include")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort order ("+sortNames()+")")
	cmd.Flags().BoolVar(&f.inStock, "in-stock", false, "only show products in stock")
}

// apply pushes the flags into st the same way the interactive view does.
func (f *filterFlags) apply(st *filter.Store) error {
	if len(f.categories) > 0 {
		if _, err := st.SetCategories(f.categories); err != nil {
			return err
		}
	}

	lo, err := filter.ParsePrice("min_price", f.minPrice)
	if err != nil {
		return err
	}
	hi, err := filter.ParsePrice("max_price", f.maxPrice)
	if err != nil {
		return err
	}
	if _, err := st.SetPriceRange(lo, hi); err != nil {
		return err
	}

	if f.sort != "" {
		if _, err := st.SetSort(domain.SortKey(strings.ToLower(f.sort))); err != nil {
			return err
		}
	}
	if f.inStock {
		if _, err := st.SetInStockOnly(true); err != nil {
			return err
		}
	}
	return nil
}

func sortNames() string {
	keys := domain.SortKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

type outcome struct {
	id   uint64
	page *domain.ProductPage
	err  error
}

// waiter is a coordinator consumer that hands terminal outcomes to a
// blocked command.
type waiter struct {
	done chan outcome
}

func newWaiter() *waiter {
	return &waiter{done: make(chan outcome, 4)}
}

func (w *waiter) OnLoading(uint64) {}

func (w *waiter) OnEmpty() {}

func (w *waiter) OnResults(id uint64, page *domain.ProductPage) {
	w.send(outcome{id: id, page: page})
}

func (w *waiter) OnError(id uint64, err error) {
	w.send(outcome{id: id, err: err})
}

func (w *waiter) send(o outcome) {
	select {
	case w.done <- o:
	default:
	}
}

// wait blocks until request id resolves or ctx ends.
func (w *waiter) wait(ctx context.Context, id uint64) (*domain.ProductPage, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case o := <-w.done:
			if o.id == id {
				return o.page, o.err
			}
		}
	}
}

// runQuery builds a one-shot session, lets edit shape its filters, sends
// the result immediately and prints the page.
func runQuery(cmd *cobra.Command, edit func(*filter.Store) error) error {
	ctx := cmd.Context()

	rt, err := setup(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.close()

	w := newWaiter()
	sess, err := session.New(rt.client, w,
		session.WithLogger(rt.log),
		session.WithCoordinatorOptions(coordinator.WithMinQueryLength(rt.cfg.Browse.MinQueryLength)),
	)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := edit(sess.Store()); err != nil {
		return err
	}

	id, err := sess.Apply()
	switch {
	case errors.Is(err, coordinator.ErrEmptyQuery):
		id, err = sess.Reload()
		if err != nil {
			return fmt.Errorf("listing products: %w", err)
		}
	case errors.Is(err, coordinator.ErrQueryTooShort):
		return fmt.Errorf("search query must be at least %d characters", rt.cfg.Browse.MinQueryLength)
	case err != nil:
		return err
	}

	page, err := w.wait(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching products (%s): %w", coordinator.FailureKind(err), err)
	}

	if jsonOutput() {
		return outputJSON(cmd.OutOrStdout(), page)
	}
	return printProductPage(cmd.OutOrStdout(), page)
}
