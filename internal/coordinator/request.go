package coordinator

import (
	"context"
	"time"

	"github.com/donaldgifford/catalog-browser/internal/filter"
)

// Status is the lifecycle state of a dispatched request.
type Status int

// Request statuses. A request starts pending and moves to exactly one of the
// other three.
const (
	StatusPending Status = iota
	StatusCompleted
	StatusSuperseded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	case StatusSuperseded:
		return "superseded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Trigger records what caused a dispatch.
type Trigger string

// Dispatch triggers.
const (
	TriggerDebounce Trigger = "debounce"
	TriggerApply    Trigger = "apply"
	TriggerRefresh  Trigger = "refresh"
)

// Request is one dispatched fetch.
type Request struct {
	ID           uint64
	State        filter.State
	Status       Status
	Trigger      Trigger
	DispatchedAt time.Time

	cancel context.CancelFunc
}
