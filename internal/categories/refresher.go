package categories

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher periodically refreshes a Cache.
type Refresher struct {
	cron      *cron.Cron
	cache     *Cache
	log       *slog.Logger
	onRefresh func([]string)
	timeout   time.Duration
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithOnRefresh registers fn to receive the list after every successful
// scheduled refresh.
func WithOnRefresh(fn func([]string)) RefresherOption {
	return func(r *Refresher) { r.onRefresh = fn }
}

// WithRefreshTimeout bounds each scheduled refresh.
func WithRefreshTimeout(d time.Duration) RefresherOption {
	return func(r *Refresher) { r.timeout = d }
}

// NewRefresher creates a Refresher that refreshes cache every interval.
func NewRefresher(
	cache *Cache,
	interval time.Duration,
	log *slog.Logger,
	opts ...RefresherOption,
) (*Refresher, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("category refresh interval must be positive, got %s", interval)
	}

	c := cron.New()

	r := &Refresher{
		cron:    c,
		cache:   cache,
		log:     log,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}

	if _, err := c.AddFunc("@every "+interval.String(), r.runRefresh); err != nil {
		return nil, err
	}

	return r, nil
}

// Start begins running scheduled refreshes.
func (r *Refresher) Start() {
	r.log.Debug("category refresher started")
	r.cron.Start()
}

// Stop halts the schedule. The returned context is done once a running
// refresh has finished.
func (r *Refresher) Stop() context.Context {
	r.log.Debug("category refresher stopping")
	return r.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (r *Refresher) Entries() []cron.Entry {
	return r.cron.Entries()
}

func (r *Refresher) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	names, err := r.cache.Refresh(ctx)
	if err != nil {
		r.log.Warn("scheduled category refresh failed", "error", err)
		return
	}
	if r.onRefresh != nil {
		r.onRefresh(names)
	}
}
