// Package tui is the interactive terminal view of a browsing session. It
// forwards edits to the session's filter store and renders whatever the
// coordinator delivers.
package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/donaldgifford/catalog-browser/internal/coordinator"
	"github.com/donaldgifford/catalog-browser/internal/filter"
	"github.com/donaldgifford/catalog-browser/internal/session"
	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

// ErrorDismissAfter is how long an error stays on the status line.
const ErrorDismissAfter = 5 * time.Second

// Browser is the part of a session the view drives.
type Browser interface {
	Store() *filter.Store
	Apply() (uint64, error)
	Reset() (uint64, error)
	Reload() (uint64, error)
}

var _ Browser = (*session.Session)(nil)

type dismissErrorMsg struct{ seq int }

type focus int

const (
	focusSearch focus = iota
	focusMin
	focusMax
	focusCategories
	focusCount
)

// Option configures a Model.
type Option func(*Model)

// WithStyles replaces the default styles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// WithErrorTimeout sets how long errors stay visible.
func WithErrorTimeout(d time.Duration) Option {
	return func(m *Model) { m.dismissAfter = d }
}

// Model is the bubbletea model for the catalog browser.
type Model struct {
	browser Browser
	keys    keyMap
	help    help.Model
	styles  Styles

	search   textinput.Model
	minPrice textinput.Model
	maxPrice textinput.Model
	table    table.Model
	spinner  spinner.Model
	focus    focus

	categories []string
	cursor     int

	all      *domain.ProductPage
	products []domain.Product
	total    int

	loading      bool
	current      uint64
	status       string
	errText      string
	errSeq       int
	dismissAfter time.Duration

	width int
}

// New returns a model showing ov until the first filter is applied.
func New(b Browser, ov *session.Overview, opts ...Option) Model {
	search := textinput.New()
	search.Placeholder = "search by name or category"
	search.CharLimit = filter.MaxQueryLength
	search.Prompt = ""
	search.Focus()

	minPrice := textinput.New()
	minPrice.Placeholder = "min"
	minPrice.CharLimit = 12
	minPrice.Width = 8
	minPrice.Prompt = ""

	maxPrice := textinput.New()
	maxPrice.Placeholder = "max"
	maxPrice.CharLimit = 12
	maxPrice.Width = 8
	maxPrice.Prompt = ""

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 22},
			{Title: "Category", Width: 12},
			{Title: "Price", Width: 9},
			{Title: "Stock", Width: 10},
		}),
		table.WithFocused(false),
		table.WithHeight(12),
	)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		browser:      b,
		keys:         defaultKeys(),
		help:         help.New(),
		styles:       DefaultStyles(),
		search:       search,
		minPrice:     minPrice,
		maxPrice:     maxPrice,
		table:        t,
		spinner:      sp,
		dismissAfter: ErrorDismissAfter,
	}
	for _, opt := range opts {
		opt(&m)
	}

	if ov != nil {
		m.categories = ov.Categories
		m.all = ov.Products
	}
	m.showAll()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.search.Width = max(msg.Width-12, 10)
		m.table.SetHeight(max(msg.Height-14, 5))
		return m, nil

	case loadingMsg:
		m.loading = true
		m.current = msg.id
		return m, m.spinner.Tick

	case resultsMsg:
		m.loading = false
		m.errText = ""
		m.setProducts(msg.page)
		m.status = fmt.Sprintf("%d of %d products", len(m.products), m.total)
		return m, nil

	case errorMsg:
		m.loading = false
		m.setProducts(nil)
		m.status = ""
		cmd := m.showError(fmt.Sprintf("request failed (%s): %v", coordinator.FailureKind(msg.err), msg.err))
		return m, cmd

	case emptyMsg:
		m.loading = false
		m.current = 0
		m.showAll()
		return m, nil

	case categoriesMsg:
		m.categories = msg.names
		m.cursor = min(m.cursor, max(len(m.categories)-1, 0))
		return m, nil

	case dismissErrorMsg:
		if msg.seq == m.errSeq {
			m.errText = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.DismissErr):
		m.errText = ""
		return m, nil
	case key.Matches(msg, m.keys.NextFocus):
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil
	case key.Matches(msg, m.keys.PrevFocus):
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil
	case key.Matches(msg, m.keys.Apply):
		cmd := m.dispatch(m.browser.Apply)
		return m, cmd
	case key.Matches(msg, m.keys.Reload):
		cmd := m.dispatch(m.browser.Reload)
		return m, cmd
	case key.Matches(msg, m.keys.Reset):
		m.search.SetValue("")
		m.minPrice.SetValue("")
		m.maxPrice.SetValue("")
		cmd := m.dispatch(m.browser.Reset)
		return m, cmd
	case key.Matches(msg, m.keys.CycleSort):
		cmd := m.mutate(func(s *filter.Store) (filter.State, error) {
			return s.SetSort(nextSort(s.Snapshot().Sort()))
		})
		return m, cmd
	case key.Matches(msg, m.keys.InStock):
		cmd := m.mutate(func(s *filter.Store) (filter.State, error) {
			return s.SetInStockOnly(!s.Snapshot().InStockOnly())
		})
		return m, cmd
	}

	if m.focus == focusCategories {
		return m.handleCategoryKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleCategoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.categories)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if len(m.categories) == 0 {
			return m, nil
		}
		name := m.categories[m.cursor]
		cmd := m.mutate(func(s *filter.Store) (filter.State, error) {
			return s.SetCategory(name, !s.Snapshot().HasCategory(name))
		})
		return m, cmd
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusSearch:
		before := m.search.Value()
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != before {
			text := m.search.Value()
			mutateCmd := m.mutate(func(s *filter.Store) (filter.State, error) {
				return s.SetSearchQuery(text)
			})
			return m, tea.Batch(cmd, mutateCmd)
		}
	case focusMin, focusMax:
		input := &m.minPrice
		if m.focus == focusMax {
			input = &m.maxPrice
		}
		before := input.Value()
		*input, cmd = input.Update(msg)
		if input.Value() != before {
			priceCmd := m.applyPriceInputs()
			return m, tea.Batch(cmd, priceCmd)
		}
	case focusCategories, focusCount:
	}
	return m, cmd
}

// applyPriceInputs pushes the price fields into the store once both parse.
func (m *Model) applyPriceInputs() tea.Cmd {
	lo, err := filter.ParsePrice("min_price", m.minPrice.Value())
	if err != nil {
		return m.showError(err.Error())
	}
	hi, err := filter.ParsePrice("max_price", m.maxPrice.Value())
	if err != nil {
		return m.showError(err.Error())
	}
	cmd := m.mutate(func(s *filter.Store) (filter.State, error) {
		return s.SetPriceRange(lo, hi)
	})
	if cmd == nil && m.focus != focusMax {
		m.syncMaxPrice()
	}
	return cmd
}

// syncMaxPrice shows the stored upper bound when the store raised it to
// the lower one. The field being typed into is left alone.
func (m *Model) syncMaxPrice() {
	hi := m.browser.Store().Snapshot().MaxPrice()
	if !hi.Set {
		return
	}
	if typed, err := filter.ParsePrice("max_price", m.maxPrice.Value()); err == nil && typed == hi {
		return
	}
	m.maxPrice.SetValue(strconv.FormatFloat(hi.Value, 'f', -1, 64))
}

// mutate applies a store change. Rejected input is shown as an error and
// never reaches the backend.
func (m *Model) mutate(fn func(*filter.Store) (filter.State, error)) tea.Cmd {
	if _, err := fn(m.browser.Store()); err != nil {
		return m.showError(err.Error())
	}
	return nil
}

func (m *Model) dispatch(fn func() (uint64, error)) tea.Cmd {
	_, err := fn()
	switch {
	case err == nil, errors.Is(err, coordinator.ErrEmptyQuery):
		return nil
	case errors.Is(err, coordinator.ErrQueryTooShort):
		m.status = fmt.Sprintf("type at least %d characters to search", filter.MinQueryLength)
		return nil
	default:
		return m.showError(err.Error())
	}
}

func (m *Model) showError(text string) tea.Cmd {
	m.errText = text
	m.errSeq++
	seq := m.errSeq
	return tea.Tick(m.dismissAfter, func(time.Time) tea.Msg {
		return dismissErrorMsg{seq: seq}
	})
}

func (m *Model) setFocus(f focus) {
	if m.focus == focusMax && f != focusMax {
		m.syncMaxPrice()
	}
	m.focus = f
	m.search.Blur()
	m.minPrice.Blur()
	m.maxPrice.Blur()
	switch f {
	case focusSearch:
		m.search.Focus()
	case focusMin:
		m.minPrice.Focus()
	case focusMax:
		m.maxPrice.Focus()
	case focusCategories, focusCount:
	}
}

func (m *Model) showAll() {
	m.setProducts(m.all)
	if m.all != nil {
		m.status = fmt.Sprintf("showing all %d products", m.total)
	}
}

func (m *Model) setProducts(page *domain.ProductPage) {
	if page == nil {
		m.products = nil
		m.total = 0
		m.table.SetRows(nil)
		return
	}
	m.products = page.Products
	m.total = page.TotalCount

	rows := make([]table.Row, 0, len(page.Products))
	for i := range page.Products {
		p := &page.Products[i]
		rows = append(rows, table.Row{
			p.Name,
			p.Category,
			fmt.Sprintf("$%.2f", p.Price),
			p.StockLabel(),
		})
	}
	m.table.SetRows(rows)
}

func nextSort(k domain.SortKey) domain.SortKey {
	keys := domain.SortKeys()
	i := slices.Index(keys, k)
	return keys[(i+1)%len(keys)]
}
