package enrich

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/sony/gobreaker"
)

// ErrUnavailable matches every failure to obtain an answer from the
// reasoning service, whatever its cause.
var ErrUnavailable = errors.New("reasoning service unavailable")

// Kind classifies a remote failure for logs and metrics.
type Kind string

const (
	KindConnectionRefused Kind = "connection_refused"
	KindTimeout           Kind = "timeout"
	KindStatus            Kind = "status"
	KindBreakerOpen       Kind = "breaker_open"
	KindDecode            Kind = "decode"
	KindTransport         Kind = "transport"
)

// RemoteError is the typed failure returned by every Client call.
type RemoteError struct {
	Endpoint   Endpoint
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("enrich %s: remote returned status %d", e.Endpoint, e.StatusCode)
	}
	if e.Err == nil {
		return fmt.Sprintf("enrich %s: %s", e.Endpoint, e.Kind)
	}
	return fmt.Sprintf("enrich %s: %s: %v", e.Endpoint, e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUnavailable) hold for every RemoteError.
func (e *RemoteError) Is(target error) bool { return target == ErrUnavailable }

// classify maps a transport-level error to a RemoteError.
func classify(endpoint Endpoint, err error) *RemoteError {
	var netErr net.Error
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &RemoteError{Endpoint: endpoint, Kind: KindBreakerOpen, Err: err}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &RemoteError{Endpoint: endpoint, Kind: KindConnectionRefused, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &RemoteError{Endpoint: endpoint, Kind: KindTimeout, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &RemoteError{Endpoint: endpoint, Kind: KindTimeout, Err: err}
	default:
		return &RemoteError{Endpoint: endpoint, Kind: KindTransport, Err: err}
	}
}
