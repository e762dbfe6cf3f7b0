// Package coordinator turns a stream of filter state changes into a minimal,
// ordered stream of backend fetches and reconciles their responses so that
// only the newest dispatched request can update the view.
package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/donaldgifford/catalog-browser/internal/filter"
	"github.com/donaldgifford/catalog-browser/internal/metrics"
	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

// DefaultDelay is the debounce window applied to state changes.
const DefaultDelay = 500 * time.Millisecond

// historyLimit bounds how many resolved requests are kept for Status lookups.
const historyLimit = 32

var (
	// ErrEmptyQuery signals the neutral state: no query text and no other
	// active filter. It is not a failure.
	ErrEmptyQuery = errors.New("no active filters")
	// ErrQueryTooShort is returned when a non-empty query is below the
	// minimum length and dispatch was suppressed.
	ErrQueryTooShort = errors.New("query too short")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("coordinator closed")
)

// Fetcher performs the backend call for a state.
type Fetcher interface {
	FetchProducts(ctx context.Context, s filter.State) (*domain.ProductPage, error)
}

// Consumer receives the coordinator's output. OnResults and OnError are
// called at most once per request and never for a request that was no longer
// the newest when it resolved. Calls are serialized. Implementations must
// not call back into the Coordinator (or mutate the store feeding it) from
// inside a callback; hand the work to another goroutine instead.
type Consumer interface {
	OnLoading(id uint64)
	OnResults(id uint64, page *domain.ProductPage)
	OnError(id uint64, err error)
	OnEmpty()
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDelay sets the debounce window.
func WithDelay(d time.Duration) Option {
	return func(c *Coordinator) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithMinQueryLength sets the shortest query that is dispatched.
func WithMinQueryLength(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.minQueryLength = n
		}
	}
}

// WithClock substitutes the timer source.
func WithClock(clk Clock) Option {
	return func(c *Coordinator) { c.clock = clk }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// Coordinator owns the debounce timer and the request table for one session.
type Coordinator struct {
	fetcher        Fetcher
	consumer       Consumer
	clock          Clock
	delay          time.Duration
	minQueryLength int
	log            *slog.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	mu       sync.Mutex
	latest   filter.State
	timer    Timer
	timerGen uint64
	nextID   uint64
	current  uint64 // newest dispatched request still allowed to render; 0 when none
	requests map[uint64]*Request
	closed   bool

	// deliverMu serializes consumer callbacks. It is always acquired before
	// mu, never while holding it.
	deliverMu sync.Mutex
}

// New returns a Coordinator that fetches with f and reports to cons.
func New(f Fetcher, cons Consumer, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		fetcher:        f,
		consumer:       cons,
		clock:          realClock{},
		delay:          DefaultDelay,
		minQueryLength: filter.MinQueryLength,
		log:            slog.Default(),
		baseCtx:        ctx,
		baseCancel:     cancel,
		latest:         filter.Default(),
		requests:       make(map[uint64]*Request),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type gate int

const (
	gateOpen gate = iota
	gateEmpty
	gateShort
)

func (c *Coordinator) gate(s filter.State) gate {
	n := utf8.RuneCountInString(s.Query())
	switch {
	case n == 0 && s.IsZero():
		return gateEmpty
	case n > 0 && n < c.minQueryLength:
		return gateShort
	default:
		return gateOpen
	}
}

// Notify records s as the latest state and restarts the debounce window.
// A zero state is signalled to the consumer immediately and supersedes any
// pending request. A too-short query cancels the timer and supersedes any
// in-flight request without dispatching.
func (c *Coordinator) Notify(s filter.State) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.latest = s
	if c.stopTimerLocked() {
		metrics.DebounceRestartsTotal.Inc()
	}

	switch c.gate(s) {
	case gateEmpty:
		c.clearLocked()
		c.mu.Unlock()
		c.deliverEmpty()
		return
	case gateShort:
		c.clearLocked()
		c.mu.Unlock()
		metrics.ShortQueriesSuppressedTotal.Inc()
		c.log.Debug("query below minimum length, waiting for more input",
			"length", utf8.RuneCountInString(s.Query()),
			"min", c.minQueryLength,
		)
		return
	case gateOpen:
	}

	gen := c.timerGen
	c.timer = c.clock.AfterFunc(c.delay, func() { c.fire(gen) })
	c.mu.Unlock()
}

// ApplyNow bypasses the debounce window and dispatches s immediately. It
// returns the new request ID, ErrEmptyQuery for the neutral state, or
// ErrQueryTooShort when the query is gated.
func (c *Coordinator) ApplyNow(s filter.State) (uint64, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	c.latest = s
	c.stopTimerLocked()

	switch c.gate(s) {
	case gateEmpty:
		c.clearLocked()
		c.mu.Unlock()
		c.deliverEmpty()
		return 0, ErrEmptyQuery
	case gateShort:
		c.clearLocked()
		c.mu.Unlock()
		metrics.ShortQueriesSuppressedTotal.Inc()
		return 0, ErrQueryTooShort
	case gateOpen:
	}

	req, ctx := c.dispatchLocked(s, TriggerApply)
	c.mu.Unlock()
	c.start(ctx, req)
	return req.ID, nil
}

// Refresh re-dispatches the latest state immediately. Unlike ApplyNow a
// zero state is fetched as the unfiltered listing instead of being treated
// as empty.
func (c *Coordinator) Refresh() (uint64, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	c.stopTimerLocked()
	s := c.latest
	if c.gate(s) == gateShort {
		c.mu.Unlock()
		return 0, ErrQueryTooShort
	}

	req, ctx := c.dispatchLocked(s, TriggerRefresh)
	c.mu.Unlock()
	c.start(ctx, req)
	return req.ID, nil
}

// Current returns the ID of the request allowed to render, or 0.
func (c *Coordinator) Current() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Status returns the status of request id. Old resolved requests are
// forgotten; ok is false for unknown IDs.
func (c *Coordinator) Status(id uint64) (status Status, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.requests[id]
	if !ok {
		return 0, false
	}
	return r.Status, true
}

// Pending reports whether a debounce timer is armed.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// Close stops the timer, cancels in-flight requests and waits for their
// goroutines to return. No callbacks are made after Close returns.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.stopTimerLocked()
		c.clearLocked()
	}
	c.mu.Unlock()

	c.baseCancel()
	c.wg.Wait()
}

func (c *Coordinator) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.timerGen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	req, ctx := c.dispatchLocked(c.latest, TriggerDebounce)
	c.mu.Unlock()
	c.start(ctx, req)
}

// stopTimerLocked disarms the debounce timer and invalidates any callback
// already in flight. It reports whether an armed timer was stopped.
func (c *Coordinator) stopTimerLocked() bool {
	c.timerGen++
	if c.timer == nil {
		return false
	}
	stopped := c.timer.Stop()
	c.timer = nil
	return stopped
}

// clearLocked supersedes every pending request and leaves nothing current.
func (c *Coordinator) clearLocked() {
	c.supersedeLocked()
	c.current = 0
}

func (c *Coordinator) supersedeLocked() {
	for _, r := range c.requests {
		if r.Status != StatusPending {
			continue
		}
		r.Status = StatusSuperseded
		r.cancel()
		metrics.RequestsSupersededTotal.Inc()
		c.log.Debug("request superseded", "request_id", r.ID)
	}
}

func (c *Coordinator) dispatchLocked(s filter.State, trigger Trigger) (*Request, context.Context) {
	c.supersedeLocked()

	c.nextID++
	ctx, cancel := context.WithCancel(c.baseCtx)
	req := &Request{
		ID:           c.nextID,
		State:        s,
		Status:       StatusPending,
		Trigger:      trigger,
		DispatchedAt: c.clock.Now(),
		cancel:       cancel,
	}
	c.requests[req.ID] = req
	c.current = req.ID
	c.pruneLocked()
	c.wg.Add(1)

	metrics.RequestsDispatchedTotal.WithLabelValues(string(trigger)).Inc()
	c.log.Debug("request dispatched",
		"request_id", req.ID,
		"trigger", trigger,
		"endpoint", filter.EndpointFor(s),
		"query", filter.Encode(s),
	)

	return req, ctx
}

func (c *Coordinator) pruneLocked() {
	if len(c.requests) <= historyLimit {
		return
	}
	ids := slices.Sorted(maps.Keys(c.requests))
	for _, id := range ids[:len(ids)-historyLimit] {
		if c.requests[id].Status != StatusPending {
			delete(c.requests, id)
		}
	}
}

func (c *Coordinator) start(ctx context.Context, req *Request) {
	c.deliver(req.ID, func() { c.consumer.OnLoading(req.ID) })
	go c.run(ctx, req)
}

func (c *Coordinator) run(ctx context.Context, req *Request) {
	defer c.wg.Done()

	metrics.InFlightRequests.Inc()
	start := time.Now()
	page, err := c.fetcher.FetchProducts(ctx, req.State)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	metrics.InFlightRequests.Dec()

	c.resolve(req.ID, page, err)
}

func (c *Coordinator) resolve(id uint64, page *domain.ProductPage, err error) {
	c.mu.Lock()
	req, ok := c.requests[id]
	if !ok || req.Status != StatusPending {
		c.mu.Unlock()
		metrics.ResponsesDiscardedTotal.Inc()
		c.log.Debug("discarding response for superseded request", "request_id", id)
		return
	}
	req.cancel()
	if err != nil {
		req.Status = StatusFailed
	} else {
		req.Status = StatusCompleted
	}
	c.mu.Unlock()

	if err != nil {
		kind := FailureKind(err)
		metrics.RequestsFailedTotal.WithLabelValues(kind).Inc()
		c.log.Warn("product request failed", "request_id", id, "kind", kind, "error", err)
	} else {
		metrics.RequestsCompletedTotal.Inc()
	}

	delivered := c.deliver(id, func() {
		if err != nil {
			c.consumer.OnError(id, err)
			return
		}
		c.consumer.OnResults(id, page)
	})
	if !delivered {
		metrics.ResponsesDiscardedTotal.Inc()
		c.log.Debug("discarding response, newer request dispatched", "request_id", id)
	}
}

// deliver runs fn under deliverMu if id is still the current request.
func (c *Coordinator) deliver(id uint64, fn func()) bool {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	ok := !c.closed && c.current == id
	c.mu.Unlock()
	if !ok {
		return false
	}
	fn()
	return true
}

func (c *Coordinator) deliverEmpty() {
	metrics.EmptyStatesTotal.Inc()

	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	ok := !c.closed && c.current == 0
	c.mu.Unlock()
	if ok {
		c.consumer.OnEmpty()
	}
}
