package batch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Class classifies a response status for control-flow decisions.
type Class string

const (
	// ClassSuccess represents 2xx responses.
	ClassSuccess Class = "success"

	// ClassClient represents 4xx responses. These are application data
	// at the facade layer, not failures.
	ClassClient Class = "client"

	// ClassServer represents 5xx responses.
	ClassServer Class = "server"

	// ClassUnexpected represents everything else (1xx, unresolved 3xx).
	ClassUnexpected Class = "unexpected"
)

// Classify maps a status code to its class.
func Classify(status int) Class {
	switch {
	case status >= 200 && status < 300:
		return ClassSuccess
	case status >= 400 && status < 500:
		return ClassClient
	case status >= 500 && status < 600:
		return ClassServer
	default:
		return ClassUnexpected
	}
}

// Transport failure codes carried by TransportError. The values follow
// the convention established by the original transport tooling so exit
// statuses stay comparable across deployments.
const (
	// TransportCodeConnect indicates the connection could not be
	// established (DNS, refused connection, TLS setup).
	TransportCodeConnect = 7

	// TransportCodeTimeout indicates the request deadline elapsed.
	TransportCodeTimeout = 28

	// TransportCodeReceive indicates the session died mid-response
	// (truncated or malformed payload).
	TransportCodeReceive = 56
)

// ErrEmptyBatch is returned by internal call paths that require at
// least one descriptor. Executor.Do special-cases the empty batch
// before reaching them.
var ErrEmptyBatch = errors.New("batch contains no descriptors")

// TransportError reports that the physical call mechanism itself
// failed. It is always fatal to the batch in progress.
type TransportError struct {
	Ordinal int
	URL     string
	Code    int
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure (code %d) for %s: %v", e.Code, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a response whose status class makes the request
// a failure at the facade layer (5xx, or 1xx/3xx left unresolved).
type StatusError struct {
	URL    string
	Status int
	Class  Class
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d) from %s", e.Class, e.Status, e.URL)
}

// newTransportError wraps a physical failure, deriving the failure
// code from the error's shape.
func newTransportError(ordinal int, url string, err error) *TransportError {
	return &TransportError{
		Ordinal: ordinal,
		URL:     url,
		Code:    transportCode(err),
		Err:     err,
	}
}

func transportCode(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return TransportCodeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TransportCodeTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return TransportCodeConnect
	}
	return TransportCodeReceive
}

// ExitCode converts a single call's outcome into a process exit
// status: 2xx maps to 0, 4xx/5xx map to status-400 (404 becomes 4,
// 500 becomes 100), any other status maps to 1, and a transport
// failure yields the transport's own code. The compact encoding lets
// a caller branch on exit status without parsing a body.
func ExitCode(status int, err error) int {
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return te.Code
		}
		return 1
	}
	switch Classify(status) {
	case ClassSuccess:
		return 0
	case ClassClient, ClassServer:
		return status - 400
	default:
		return 1
	}
}
