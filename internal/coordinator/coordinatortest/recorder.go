package coordinatortest

import (
	"testing"
	"time"

	"github.com/donaldgifford/catalog-browser/internal/coordinator"
	domain "github.com/donaldgifford/catalog-browser/pkg/types"
)

// EventKind names a consumer callback.
type EventKind string

// Consumer callbacks.
const (
	EventLoading EventKind = "loading"
	EventResults EventKind = "results"
	EventError   EventKind = "error"
	EventEmpty   EventKind = "empty"
)

// Event is one recorded consumer callback.
type Event struct {
	Kind EventKind
	ID   uint64
	Page *domain.ProductPage
	Err  error
}

// Recorder is a coordinator.Consumer that records every callback on a
// buffered channel.
type Recorder struct {
	events chan Event
}

var _ coordinator.Consumer = (*Recorder)(nil)

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{events: make(chan Event, 256)}
}

func (r *Recorder) OnLoading(id uint64) { r.events <- Event{Kind: EventLoading, ID: id} }

func (r *Recorder) OnResults(id uint64, page *domain.ProductPage) {
	r.events <- Event{Kind: EventResults, ID: id, Page: page}
}

func (r *Recorder) OnError(id uint64, err error) {
	r.events <- Event{Kind: EventError, ID: id, Err: err}
}

func (r *Recorder) OnEmpty() { r.events <- Event{Kind: EventEmpty} }

// Next waits up to timeout for the next event and fails the test if none
// arrives.
func (r *Recorder) Next(tb testing.TB, timeout time.Duration) Event {
	tb.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(timeout):
		tb.Fatalf("no consumer event within %s", timeout)
		return Event{}
	}
}

// Drain returns every event recorded so far without waiting.
func (r *Recorder) Drain() []Event {
	var out []Event
	for {
		select {
		case ev := <-r.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}
