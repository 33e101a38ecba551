// Package batch implements the transport batch executor: it takes a
// finite sequence of request descriptors, issues them as one multiplexed
// client session over a shared connection pool, and yields one response
// record per descriptor, correlated by a per-batch ordinal.
package batch

import (
	"net/url"
	"strings"
)

// Descriptor describes one logical HTTP request. Descriptors are
// immutable once constructed; the executor identifies them by their
// position in the submitted batch, never by URL (several descriptors
// may share a URL).
type Descriptor struct {
	// Method is the HTTP method. Empty means GET.
	Method string

	// URL is the absolute endpoint.
	URL string

	// Params is an ordered list of "key=value" strings. For GET requests
	// they become query parameters; for other methods they are sent as a
	// url-encoded form body.
	Params []string

	// ArrayName names the response body field holding the page's element
	// list. Empty means the whole body is the element list. The executor
	// does not interpret it; it exists for the paginator layer.
	ArrayName string

	// Context carries opaque caller-supplied fields. The executor never
	// interprets them; they are echoed back unchanged on the record.
	Context map[string]string
}

// Record is the executor's output for one descriptor: the descriptor's
// fields plus the response status and body. Exactly one Record exists
// per submitted Descriptor in a successful batch.
type Record struct {
	Descriptor

	// Ordinal is the descriptor's position in the submitted batch. It is
	// the correlation token linking this record to its descriptor.
	Ordinal int

	// Status is the HTTP status code of the response.
	Status int

	// Body is the full response body.
	Body []byte

	// Bytes is the body length.
	Bytes int
}

// Result is the single-request facade's success envelope: the
// descriptor's fields with the body under Output and the raw status
// kept for inspection. The facade produces it for 2xx and 4xx
// responses alike.
type Result struct {
	Descriptor

	// Status is the HTTP status code. 4xx statuses appear here as
	// ordinary application data.
	Status int

	// Output is the response body.
	Output []byte
}

// Outcome pairs a facade-classified result with its per-descriptor
// failure, if any. A wave of outcomes lets one descriptor's server
// error surface without discarding its siblings.
type Outcome struct {
	Result Result
	Err    error
}

// encodeParams url-encodes an ordered "key=value" list, preserving
// submission order. An entry without '=' is treated as a bare key.
func encodeParams(params []string) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		key, value, found := strings.Cut(p, "=")
		b.WriteString(url.QueryEscape(key))
		if found {
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(value))
		}
	}
	return b.String()
}
