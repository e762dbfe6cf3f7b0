package coordinator_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	ptestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/catalog-browser/internal/coordinator"
	ct "github.com/donaldgifford/catalog-browser/internal/coordinator/coordinatortest"
	"github.com/donaldgifford/catalog-browser/internal/filter"
	"github.com/donaldgifford/catalog-browser/internal/metrics"
	"github.com/donaldgifford/catalog-browser/pkg/logger"
)

const wait = 2 * time.Second

type harness struct {
	coord   *coordinator.Coordinator
	clock   *ct.Clock
	fetcher *ct.Fetcher
	events  *ct.Recorder
}

func newHarness(t *testing.T, ignoreCancel bool, opts ...coordinator.Option) *harness {
	t.Helper()

	h := &harness{
		clock:   ct.NewClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		fetcher: ct.NewFetcher(),
		events:  ct.NewRecorder(),
	}
	h.fetcher.IgnoreCancel = ignoreCancel

	base := []coordinator.Option{
		coordinator.WithClock(h.clock),
		coordinator.WithLogger(logger.Discard()),
	}
	h.coord = coordinator.New(h.fetcher, h.events, append(base, opts...)...)
	t.Cleanup(h.coord.Close)
	return h
}

type mutation func(*filter.Store) (filter.State, error)

func withQuery(q string) mutation {
	return func(s *filter.Store) (filter.State, error) { return s.SetSearchQuery(q) }
}

func withCategory(name string) mutation {
	return func(s *filter.Store) (filter.State, error) { return s.SetCategory(name, true) }
}

func withPrice(minPrice, maxPrice float64) mutation {
	return func(s *filter.Store) (filter.State, error) {
		return s.SetPriceRange(filter.Price(minPrice), filter.Price(maxPrice))
	}
}

func state(t *testing.T, muts ...mutation) filter.State {
	t.Helper()
	s := filter.NewStore()
	for _, m := range muts {
		_, err := m(s)
		require.NoError(t, err)
	}
	return s.Snapshot()
}

func names(page *ct.Event) []string {
	out := make([]string, 0, len(page.Page.Products))
	for i := range page.Page.Products {
		out = append(out, page.Page.Products[i].Name)
	}
	return out
}

type statusError struct{ code int }

func (e *statusError) Error() string       { return fmt.Sprintf("HTTP %d", e.code) }
func (e *statusError) FailureKind() string { return "http" }

func TestNotify_RapidChangesDispatchOnce(t *testing.T) {
	h := newHarness(t, false)
	store := filter.NewStore()
	store.Subscribe(h.coord.Notify)

	restartsBefore := ptestutil.ToFloat64(metrics.DebounceRestartsTotal)

	_, err := store.SetCategory("Dairy", true)
	require.NoError(t, err)
	h.clock.Advance(100 * time.Millisecond)
	_, err = store.SetPriceRange(filter.Price(2), filter.Price(20))
	require.NoError(t, err)
	h.clock.Advance(100 * time.Millisecond)
	_, err = store.SetInStockOnly(true)
	require.NoError(t, err)
	h.clock.Advance(499 * time.Millisecond)

	assert.Equal(t, 0, h.fetcher.Outstanding(), "nothing dispatched inside the window")
	assert.True(t, h.coord.Pending())

	h.clock.Advance(time.Millisecond)

	call := h.fetcher.Next(t, wait)
	assert.Equal(t, "category=Dairy&min_price=2&max_price=20&in_stock=true", filter.Encode(call.State))
	assert.False(t, h.coord.Pending())

	loading := h.events.Next(t, wait)
	assert.Equal(t, ct.EventLoading, loading.Kind)
	assert.Equal(t, uint64(1), loading.ID)

	call.Respond(ct.Page("Whole Milk"))
	res := h.events.Next(t, wait)
	assert.Equal(t, ct.EventResults, res.Kind)
	assert.Equal(t, []string{"Whole Milk"}, names(&res))

	assert.Never(t, func() bool { return h.fetcher.Outstanding() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.GreaterOrEqual(t, ptestutil.ToFloat64(metrics.DebounceRestartsTotal)-restartsBefore, float64(2))

	status, ok := h.coord.Status(1)
	require.True(t, ok)
	assert.Equal(t, coordinator.StatusCompleted, status)
}

func TestNotify_CustomDelay(t *testing.T) {
	h := newHarness(t, false, coordinator.WithDelay(200*time.Millisecond))

	h.coord.Notify(state(t, withCategory("Bakery")))
	h.clock.Advance(199 * time.Millisecond)
	assert.Equal(t, 0, h.fetcher.Outstanding())

	h.clock.Advance(time.Millisecond)
	call := h.fetcher.Next(t, wait)
	assert.Equal(t, []string{"Bakery"}, call.State.Categories())
}

func TestStaleResponseNeverRenders(t *testing.T) {
	dispatchers := map[string]func(*testing.T, *harness, filter.State){
		"apply now": func(t *testing.T, h *harness, s filter.State) {
			t.Helper()
			_, err := h.coord.ApplyNow(s)
			require.NoError(t, err)
		},
		"debounced": func(_ *testing.T, h *harness, s filter.State) {
			h.coord.Notify(s)
			h.clock.Advance(coordinator.DefaultDelay)
		},
	}

	for name, dispatch := range dispatchers {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, true)

			dispatch(t, h, state(t, withQuery("milk")))
			milk := h.fetcher.Next(t, wait)
			assert.Equal(t, "milk", milk.State.Query())

			dispatch(t, h, state(t, withQuery("bread")))
			bread := h.fetcher.Next(t, wait)
			assert.Equal(t, "bread", bread.State.Query())

			require.ErrorIs(t, milk.Ctx.Err(), context.Canceled, "superseded request is cancelled")
			status, ok := h.coord.Status(1)
			require.True(t, ok)
			assert.Equal(t, coordinator.StatusSuperseded, status)

			// The older response arrives first, while bread is still pending.
			milk.Respond(ct.Page("Whole Milk", "Skim Milk"))

			assert.Equal(t, ct.EventLoading, h.events.Next(t, wait).Kind)
			assert.Equal(t, ct.EventLoading, h.events.Next(t, wait).Kind)
			assert.Never(t, func() bool {
				for _, ev := range h.events.Drain() {
					if ev.Kind == ct.EventResults {
						return true
					}
				}
				return false
			}, 100*time.Millisecond, 10*time.Millisecond, "milk results must not render")

			bread.Respond(ct.Page("Sourdough"))
			res := h.events.Next(t, wait)
			assert.Equal(t, ct.EventResults, res.Kind)
			assert.Equal(t, uint64(2), res.ID)
			assert.Equal(t, []string{"Sourdough"}, names(&res))
			assert.Equal(t, uint64(2), h.coord.Current())
		})
	}
}

func TestNotify_QueryLengthGating(t *testing.T) {
	h := newHarness(t, false)

	h.coord.Notify(state(t, withQuery("m")))
	assert.False(t, h.coord.Pending(), "single character does not arm the timer")
	h.clock.Advance(time.Second)
	assert.Equal(t, 0, h.fetcher.Outstanding())
	assert.Empty(t, h.events.Drain())

	// A short query suppresses dispatch even when other filters are active.
	h.coord.Notify(state(t, withQuery("m"), withCategory("Dairy")))
	h.clock.Advance(time.Second)
	assert.Equal(t, 0, h.fetcher.Outstanding())

	h.coord.Notify(state(t, withQuery("mi")))
	h.clock.Advance(coordinator.DefaultDelay)
	call := h.fetcher.Next(t, wait)
	assert.Equal(t, "mi", call.State.Query())

	_, err := h.coord.ApplyNow(state(t, withQuery("x")))
	require.ErrorIs(t, err, coordinator.ErrQueryTooShort)
}

func TestNotify_ShortQueryCancelsArmedTimer(t *testing.T) {
	h := newHarness(t, false)

	h.coord.Notify(state(t, withQuery("milk")))
	h.clock.Advance(300 * time.Millisecond)
	h.coord.Notify(state(t, withQuery("m")))
	h.clock.Advance(time.Second)

	assert.Equal(t, 0, h.fetcher.Outstanding())
	assert.Equal(t, 0, h.clock.Armed())
}

func TestShortQuerySupersedesInFlight(t *testing.T) {
	gates := map[string]func(*testing.T, *harness){
		"notify": func(t *testing.T, h *harness) {
			t.Helper()
			h.coord.Notify(state(t, withQuery("m")))
		},
		"apply now": func(t *testing.T, h *harness) {
			t.Helper()
			_, err := h.coord.ApplyNow(state(t, withQuery("m")))
			require.ErrorIs(t, err, coordinator.ErrQueryTooShort)
		},
	}

	for name, gate := range gates {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, true)

			_, err := h.coord.ApplyNow(state(t, withQuery("milk")))
			require.NoError(t, err)
			milk := h.fetcher.Next(t, wait)
			assert.Equal(t, ct.EventLoading, h.events.Next(t, wait).Kind)

			gate(t, h)

			require.ErrorIs(t, milk.Ctx.Err(), context.Canceled)
			status, ok := h.coord.Status(1)
			require.True(t, ok)
			assert.Equal(t, coordinator.StatusSuperseded, status)
			assert.Equal(t, uint64(0), h.coord.Current())

			milk.Respond(ct.Page("Whole Milk"))
			assert.Never(t, func() bool { return len(h.events.Drain()) > 0 },
				100*time.Millisecond, 10*time.Millisecond, "milk results must not render under a shorter query")
		})
	}
}

func TestNotify_EmptyStateSignalsNeutral(t *testing.T) {
	h := newHarness(t, false)

	h.coord.Notify(state(t, withQuery("milk")))
	h.clock.Advance(coordinator.DefaultDelay)
	call := h.fetcher.Next(t, wait)
	assert.Equal(t, ct.EventLoading, h.events.Next(t, wait).Kind)

	h.coord.Notify(filter.Default())

	ev := h.events.Next(t, wait)
	assert.Equal(t, ct.EventEmpty, ev.Kind)
	assert.Equal(t, uint64(0), h.coord.Current())
	require.ErrorIs(t, call.Ctx.Err(), context.Canceled)

	status, ok := h.coord.Status(1)
	require.True(t, ok)
	assert.Equal(t, coordinator.StatusSuperseded, status)

	h.clock.Advance(time.Second)
	assert.Equal(t, 0, h.fetcher.Outstanding(), "empty state never dispatches")
	assert.Never(t, func() bool { return len(h.events.Drain()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestNotify_EmptyQueryWithFiltersDispatches(t *testing.T) {
	h := newHarness(t, false)

	h.coord.Notify(state(t, withCategory("Dairy"), withPrice(2, 20)))
	h.clock.Advance(coordinator.DefaultDelay)

	call := h.fetcher.Next(t, wait)
	assert.Equal(t, filter.EndpointFilter, filter.EndpointFor(call.State))
}

func TestApplyNow(t *testing.T) {
	h := newHarness(t, false)

	h.coord.Notify(state(t, withQuery("egg")))
	id, err := h.coord.ApplyNow(state(t, withQuery("eggs")))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	assert.False(t, h.coord.Pending(), "apply cancels the debounce timer")

	call := h.fetcher.Next(t, wait)
	assert.Equal(t, "eggs", call.State.Query())

	h.clock.Advance(time.Second)
	assert.Equal(t, 0, h.fetcher.Outstanding(), "cancelled timer never fires")

	_, err = h.coord.ApplyNow(filter.Default())
	require.ErrorIs(t, err, coordinator.ErrEmptyQuery)
}

func TestRefresh_DispatchesZeroStateAsListing(t *testing.T) {
	h := newHarness(t, false)

	id, err := h.coord.Refresh()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	call := h.fetcher.Next(t, wait)
	assert.True(t, call.State.IsZero())
	assert.Equal(t, filter.EndpointProducts, filter.EndpointFor(call.State))

	call.Respond(ct.Page("Fresh Apples", "Bananas"))
	assert.Equal(t, ct.EventLoading, h.events.Next(t, wait).Kind)
	res := h.events.Next(t, wait)
	assert.Equal(t, ct.EventResults, res.Kind)
	assert.Equal(t, 2, res.Page.TotalCount)
}

func TestFailureReportsAndDoesNotBlock(t *testing.T) {
	h := newHarness(t, false)

	failedBefore := ptestutil.ToFloat64(metrics.RequestsFailedTotal.WithLabelValues("http"))

	_, err := h.coord.ApplyNow(state(t, withCategory("Dairy")))
	require.NoError(t, err)
	call := h.fetcher.Next(t, wait)
	call.Fail(&statusError{code: 500})

	assert.Equal(t, ct.EventLoading, h.events.Next(t, wait).Kind)
	ev := h.events.Next(t, wait)
	require.Equal(t, ct.EventError, ev.Kind)
	var se *statusError
	require.ErrorAs(t, ev.Err, &se)
	assert.Equal(t, 500, se.code)

	status, ok := h.coord.Status(1)
	require.True(t, ok)
	assert.Equal(t, coordinator.StatusFailed, status)
	assert.GreaterOrEqual(t, ptestutil.ToFloat64(metrics.RequestsFailedTotal.WithLabelValues("http"))-failedBefore, float64(1))

	// No automatic retry, and the next request proceeds normally.
	assert.Equal(t, 0, h.fetcher.Outstanding())
	_, err = h.coord.ApplyNow(state(t, withCategory("Bakery")))
	require.NoError(t, err)
	h.fetcher.Next(t, wait).Respond(ct.Page("Bread"))
	assert.Equal(t, ct.EventLoading, h.events.Next(t, wait).Kind)
	assert.Equal(t, ct.EventResults, h.events.Next(t, wait).Kind)
}

func TestClose(t *testing.T) {
	h := newHarness(t, false)

	_, err := h.coord.ApplyNow(state(t, withQuery("rice")))
	require.NoError(t, err)
	call := h.fetcher.Next(t, wait)
	h.coord.Notify(state(t, withQuery("pasta")))

	h.coord.Close()

	require.ErrorIs(t, call.Ctx.Err(), context.Canceled)
	assert.False(t, h.coord.Pending())
	assert.Equal(t, 0, h.clock.Armed())

	h.coord.Notify(state(t, withQuery("beans")))
	h.clock.Advance(time.Second)
	assert.Equal(t, 0, h.fetcher.Outstanding())

	_, err = h.coord.ApplyNow(state(t, withQuery("beans")))
	require.ErrorIs(t, err, coordinator.ErrClosed)
	_, err = h.coord.Refresh()
	require.ErrorIs(t, err, coordinator.ErrClosed)

	events := h.events.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, ct.EventLoading, events[0].Kind)
}

func TestRealClockDebounce(t *testing.T) {
	f := ct.NewFetcher()
	rec := ct.NewRecorder()
	c := coordinator.New(f, rec,
		coordinator.WithDelay(10*time.Millisecond),
		coordinator.WithLogger(logger.Discard()),
	)
	defer c.Close()

	c.Notify(state(t, withQuery("oats")))
	c.Notify(state(t, withQuery("oatmeal")))

	call := f.Next(t, wait)
	assert.Equal(t, "oatmeal", call.State.Query())
	call.Respond(ct.Page("Oatmeal"))

	assert.Equal(t, ct.EventLoading, rec.Next(t, wait).Kind)
	assert.Equal(t, ct.EventResults, rec.Next(t, wait).Kind)
}

func TestStatusHistoryIsBounded(t *testing.T) {
	h := newHarness(t, false)

	for i := range 40 {
		_, err := h.coord.ApplyNow(state(t, withQuery(fmt.Sprintf("item-%d", i))))
		require.NoError(t, err)
		h.fetcher.Next(t, wait)
	}

	_, ok := h.coord.Status(1)
	assert.False(t, ok, "oldest requests are forgotten")
	status, ok := h.coord.Status(40)
	require.True(t, ok)
	assert.Equal(t, coordinator.StatusPending, status)
}

func TestFailureKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "kinded", err: &statusError{code: 502}, want: "http"},
		{name: "wrapped kinded", err: fmt.Errorf("fetching: %w", &statusError{code: 404}), want: "http"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "deadline", err: fmt.Errorf("get: %w", context.DeadlineExceeded), want: "timeout"},
		{name: "other", err: errors.New("boom"), want: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, coordinator.FailureKind(tt.err))
		})
	}
}

func TestStatusString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pending", coordinator.StatusPending.String())
	assert.Equal(t, "completed", coordinator.StatusCompleted.String())
	assert.Equal(t, "superseded", coordinator.StatusSuperseded.String())
	assert.Equal(t, "failed", coordinator.StatusFailed.String())
}
