package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/donaldgifford/catalog-browser/internal/session"
	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func writeProductRows(tw *tabWriter, products []domain.Product) {
	tw.writef("NAME\tCATEGORY\tPRICE\tSTOCK\tDESCRIPTION\n")
	for i := range products {
		p := &products[i]
		tw.writef("%s\t%s\t$%.2f\t%s\t%s\n",
			p.Name,
			p.Category,
			p.Price,
			p.StockLabel(),
			truncate(p.Description, 40),
		)
	}
}

func printProductPage(w io.Writer, page *domain.ProductPage) error {
	tw := newTabWriter(w)
	if page == nil || len(page.Products) == 0 {
		tw.writef("No products match the current filters.\n")
		return tw.finish()
	}
	writeProductRows(tw, page.Products)
	tw.writef("\n%d of %d products\n", len(page.Products), page.TotalCount)
	return tw.finish()
}

func printCategories(w io.Writer, names []string) error {
	tw := newTabWriter(w)
	tw.writef("CATEGORY\n")
	for _, n := range names {
		tw.writef("%s\n", n)
	}
	return tw.finish()
}

func printOverview(w io.Writer, ov *session.Overview) error {
	tw := newTabWriter(w)
	tw.writef("Categories:\t%d\n", len(ov.Categories))
	for _, n := range ov.Categories {
		tw.writef("\t%s\n", n)
	}
	tw.writef("\n")
	if ov.Products != nil {
		writeProductRows(tw, ov.Products.Products)
		tw.writef("\n%d products\n", ov.Products.TotalCount)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
