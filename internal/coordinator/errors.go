package coordinator

import (
	"context"
	"errors"
)

// kinded is implemented by errors that know their failure category, such as
// the API client's NetworkError and HTTPError.
type kinded interface {
	FailureKind() string
}

// FailureKind returns the category of a fetch error for logging and metrics:
// the error's own kind when it has one, "canceled", "timeout", or "other".
func FailureKind(err error) string {
	var k kinded
	switch {
	case errors.As(err, &k):
		return k.FailureKind()
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "other"
	}
}
