// Package session wires one browsing session: a filter store, the request
// coordinator fed by it, and the category cache, all talking to one backend.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/donaldgifford/catalog-browser/internal/categories"
	"github.com/donaldgifford/catalog-browser/internal/coordinator"
	"github.com/donaldgifford/catalog-browser/internal/filter"
	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

// Backend is everything a session needs from the catalog API.
type Backend interface {
	coordinator.Fetcher
	categories.Source
	ListProducts(ctx context.Context) (*domain.ProductPage, error)
}

// Option configures a Session.
type Option func(*settings)

type settings struct {
	log             *slog.Logger
	coordOpts       []coordinator.Option
	categoryTTL     time.Duration
	refreshInterval time.Duration
	onCategories    func([]string)
}

// WithLogger sets the base logger. The session adds its ID to every record.
func WithLogger(log *slog.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithCoordinatorOptions passes options through to the coordinator.
func WithCoordinatorOptions(opts ...coordinator.Option) Option {
	return func(s *settings) { s.coordOpts = append(s.coordOpts, opts...) }
}

// WithCategoryTTL sets how long a fetched category list is served.
func WithCategoryTTL(d time.Duration) Option {
	return func(s *settings) { s.categoryTTL = d }
}

// WithCategoryRefresh refreshes categories in the background every interval
// and hands each new list to fn, which may be nil. Zero disables it.
func WithCategoryRefresh(interval time.Duration, fn func([]string)) Option {
	return func(s *settings) {
		s.refreshInterval = interval
		s.onCategories = fn
	}
}

// Session is one user's browsing state. Sessions share nothing.
type Session struct {
	id        string
	log       *slog.Logger
	backend   Backend
	store     *filter.Store
	coord     *coordinator.Coordinator
	cats      *categories.Cache
	refresher *categories.Refresher

	unsubscribe func()
	closeOnce   sync.Once
}

// Overview is the initial listing: every category and every product.
type Overview struct {
	Categories []string            `json:"categories"`
	Products   *domain.ProductPage `json:"products"`
}

// New builds a session reporting to cons. Store mutations reach the
// coordinator as soon as they are applied.
func New(b Backend, cons coordinator.Consumer, opts ...Option) (*Session, error) {
	cfg := settings{
		log:         slog.Default(),
		categoryTTL: categories.DefaultTTL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	id := uuid.NewString()
	log := cfg.log.With("session_id", id)

	s := &Session{
		id:      id,
		log:     log,
		backend: b,
		store:   filter.NewStore(),
		cats:    categories.NewCache(b, cfg.categoryTTL, categories.WithLogger(log)),
	}

	coordOpts := append([]coordinator.Option{coordinator.WithLogger(log)}, cfg.coordOpts...)
	s.coord = coordinator.New(b, cons, coordOpts...)

	if cfg.refreshInterval > 0 {
		var refreshOpts []categories.RefresherOption
		if cfg.onCategories != nil {
			refreshOpts = append(refreshOpts, categories.WithOnRefresh(cfg.onCategories))
		}
		r, err := categories.NewRefresher(s.cats, cfg.refreshInterval, log, refreshOpts...)
		if err != nil {
			s.coord.Close()
			return nil, fmt.Errorf("creating category refresher: %w", err)
		}
		s.refresher = r
		r.Start()
	}

	s.unsubscribe = s.store.Subscribe(s.coord.Notify)

	log.Debug("session started")
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Store returns the filter store. Mutate it to drive debounced fetches.
func (s *Session) Store() *filter.Store { return s.store }

// Coordinator returns the session's coordinator.
func (s *Session) Coordinator() *coordinator.Coordinator { return s.coord }

// Load fetches the category list and the full product listing in parallel.
// It bypasses the coordinator; nothing it returns is tied to a request ID.
func (s *Session) Load(ctx context.Context) (*Overview, error) {
	var ov Overview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		names, err := s.cats.Get(gctx)
		if err != nil {
			return err
		}
		ov.Categories = names
		return nil
	})
	g.Go(func() error {
		page, err := s.backend.ListProducts(gctx)
		if err != nil {
			return err
		}
		ov.Products = page
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading catalog overview: %w", err)
	}

	s.log.Debug("overview loaded",
		"categories", len(ov.Categories),
		"products", len(ov.Products.Products),
	)
	return &ov, nil
}

// Apply dispatches the current filter state immediately, skipping the
// debounce window.
func (s *Session) Apply() (uint64, error) {
	return s.coord.ApplyNow(s.store.Snapshot())
}

// Reload re-executes the current filter state, including the unfiltered
// listing when no filter is active.
func (s *Session) Reload() (uint64, error) {
	return s.coord.Refresh()
}

// Reset restores the default filters and reloads the unfiltered listing.
func (s *Session) Reset() (uint64, error) {
	s.store.Reset()
	return s.coord.Refresh()
}

// Categories returns the cached category list, fetching it when stale.
func (s *Session) Categories(ctx context.Context) ([]string, error) {
	return s.cats.Get(ctx)
}

// Close stops background work and cancels in-flight requests. It is safe to
// call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.unsubscribe()
		s.coord.Close()
		if s.refresher != nil {
			<-s.refresher.Stop().Done()
		}
		s.log.Debug("session closed")
	})
}
