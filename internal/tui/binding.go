package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/donaldgifford/catalog-browser/internal/coordinator"
	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

// Messages delivered to the model by a Binding.
type (
	loadingMsg    struct{ id uint64 }
	resultsMsg    struct {
		id   uint64
		page *domain.ProductPage
	}
	errorMsg struct {
		id  uint64
		err error
	}
	emptyMsg      struct{}
	categoriesMsg struct{ names []string }
)

// Binding adapts coordinator callbacks into tea messages. Callbacks only
// enqueue, so they never block on the program's event loop; a single pump
// goroutine forwards the queue in order.
type Binding struct {
	send func(tea.Msg)

	mu     sync.Mutex
	queue  []tea.Msg
	wake   chan struct{}
	done   chan struct{}
	closed bool
	wg     sync.WaitGroup
}

var _ coordinator.Consumer = (*Binding)(nil)

// NewBinding returns a Binding forwarding to send, typically
// (*tea.Program).Send. Messages queued before Start are kept.
func NewBinding() *Binding {
	return &Binding{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Start begins forwarding queued messages to send.
func (b *Binding) Start(send func(tea.Msg)) {
	b.send = send
	b.wg.Add(1)
	go b.pump()
}

// Close stops forwarding. Queued messages not yet sent are dropped.
func (b *Binding) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.done)
	b.wg.Wait()
}

func (b *Binding) OnLoading(id uint64) { b.enqueue(loadingMsg{id: id}) }

func (b *Binding) OnResults(id uint64, page *domain.ProductPage) {
	b.enqueue(resultsMsg{id: id, page: page})
}

func (b *Binding) OnError(id uint64, err error) { b.enqueue(errorMsg{id: id, err: err}) }

func (b *Binding) OnEmpty() { b.enqueue(emptyMsg{}) }

// Categories queues a refreshed category list. It matches the signature
// expected by session.WithCategoryRefresh.
func (b *Binding) Categories(names []string) { b.enqueue(categoriesMsg{names: names}) }

func (b *Binding) enqueue(msg tea.Msg) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, msg)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Binding) pump() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case <-b.wake:
		}

		b.mu.Lock()
		batch := b.queue
		b.queue = nil
		b.mu.Unlock()

		for _, msg := range batch {
			select {
			case <-b.done:
				return
			default:
			}
			b.send(msg)
		}
	}
}
