package tui

import (
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

type sink struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *sink) send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *sink) snapshot() []tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tea.Msg(nil), s.msgs...)
}

func TestBinding_ForwardsInOrder(t *testing.T) {
	t.Parallel()

	var out sink
	b := NewBinding()

	// Queued before Start.
	b.OnLoading(1)

	b.Start(out.send)
	defer b.Close()

	page := &domain.ProductPage{Products: []domain.Product{{Name: "Milk"}}, TotalCount: 1}
	failure := errors.New("boom")

	b.OnResults(1, page)
	b.OnLoading(2)
	b.OnError(2, failure)
	b.OnEmpty()
	b.Categories([]string{"Dairy"})

	require.Eventually(t, func() bool { return len(out.snapshot()) == 6 }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, []tea.Msg{
		loadingMsg{id: 1},
		resultsMsg{id: 1, page: page},
		loadingMsg{id: 2},
		errorMsg{id: 2, err: failure},
		emptyMsg{},
		categoriesMsg{names: []string{"Dairy"}},
	}, out.snapshot())
}

func TestBinding_CallbacksDoNotBlock(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	b := NewBinding()
	b.Start(func(tea.Msg) { <-release })

	done := make(chan struct{})
	go func() {
		for i := range 1000 {
			b.OnLoading(uint64(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callbacks blocked on a stalled receiver")
	}

	close(release)
	b.Close()
}

func TestBinding_CloseDropsLateMessages(t *testing.T) {
	t.Parallel()

	var out sink
	b := NewBinding()
	b.Start(out.send)
	b.Close()
	b.Close()

	b.OnEmpty()
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, out.snapshot())
}
