package coordinatortest

import (
	"context"
	"testing"
	"time"

	"github.com/donaldgifford/catalog-browser/internal/coordinator"
	"github.com/donaldgifford/catalog-browser/internal/filter"
	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

// Call is one FetchProducts invocation held open until the test replies.
type Call struct {
	Ctx   context.Context
	State filter.State
	reply chan reply
}

type reply struct {
	page *domain.ProductPage
	err  error
}

// Respond completes the call with page.
func (c *Call) Respond(page *domain.ProductPage) { c.reply <- reply{page: page} }

// Fail completes the call with err.
func (c *Call) Fail(err error) { c.reply <- reply{err: err} }

// Fetcher is a coordinator.Fetcher whose calls block until answered.
type Fetcher struct {
	calls chan *Call

	// IgnoreCancel makes calls wait for a reply even after their context is
	// cancelled, simulating a response that was already on the wire.
	IgnoreCancel bool
}

var _ coordinator.Fetcher = (*Fetcher)(nil)

// NewFetcher returns a fetcher with no outstanding calls.
func NewFetcher() *Fetcher {
	return &Fetcher{calls: make(chan *Call, 64)}
}

// FetchProducts records the call and waits for the test to answer it.
func (f *Fetcher) FetchProducts(ctx context.Context, s filter.State) (*domain.ProductPage, error) {
	c := &Call{Ctx: ctx, State: s, reply: make(chan reply, 1)}
	f.calls <- c

	if f.IgnoreCancel {
		r := <-c.reply
		return r.page, r.err
	}
	select {
	case r := <-c.reply:
		return r.page, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Next waits up to timeout for the next call and fails the test if none
// arrives.
func (f *Fetcher) Next(tb testing.TB, timeout time.Duration) *Call {
	tb.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(timeout):
		tb.Fatalf("no fetch within %s", timeout)
		return nil
	}
}

// Outstanding returns the number of calls not yet taken with Next.
func (f *Fetcher) Outstanding() int {
	return len(f.calls)
}

// Page builds a product page from names, for assertions on what rendered.
func Page(names ...string) *domain.ProductPage {
	products := make([]domain.Product, 0, len(names))
	for _, n := range names {
		products = append(products, domain.Product{Name: n, IsAvailable: true})
	}
	return &domain.ProductPage{Products: products, TotalCount: len(products)}
}
