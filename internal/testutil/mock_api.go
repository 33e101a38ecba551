// Package testutil provides testing utilities for the pagewave engine.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// PagedResource configures a mock paginated endpoint. Items are
// JSON-encoded elements; the server slices them according to the
// request's page or offset parameter.
type PagedResource struct {
	// Items holds one JSON value per element (e.g. `{"id": 1}` or `"a"`).
	Items []string

	// ArrayName wraps each page in {"<ArrayName>": [...]} when set.
	// Empty means the page body is the bare element array.
	ArrayName string

	// TotalField, when set, adds the total element count to the page
	// object (requires ArrayName, since a bare array has no room for it).
	TotalField string

	// PageParam selects 1-based page slicing (default "page").
	PageParam string

	// StartParam, when set, selects element-offset slicing instead.
	StartParam string

	// SizeParam is the page-size parameter (default "limit").
	SizeParam string

	// FailAt maps a page number (or offset, in offset mode) to a
	// status code returned instead of data.
	FailAt map[int]int

	// Headers are added to every response for this resource.
	Headers map[string]string
}

// MockAPI is a configurable mock paginated REST server.
type MockAPI struct {
	server    *httptest.Server
	mu        sync.RWMutex
	resources map[string]*PagedResource
	handlers  map[string]http.HandlerFunc

	// Tracking
	RequestCount int
	requests     map[string][]url.Values
}

// NewMockAPI creates a new mock API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		resources: make(map[string]*PagedResource),
		handlers:  make(map[string]http.HandlerFunc),
		requests:  make(map[string][]url.Values),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.requests[r.URL.Path] = append(mock.requests[r.URL.Path], r.URL.Query())
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, hasHandler := mock.handlers[r.URL.Path]
		resource, hasResource := mock.resources[r.URL.Path]
		mock.mu.RUnlock()

		if hasHandler {
			handler(w, r)
			return
		}
		if hasResource {
			mock.serveResource(w, r, resource)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "not found"}`))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.requests = make(map[string][]url.Values)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResource configures a paginated resource for a path.
func (m *MockAPI) SetResource(path string, resource PagedResource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[path] = &resource
}

// Requests returns the query parameters of every request made to a
// path, in arrival order.
func (m *MockAPI) Requests(path string) []url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]url.Values, len(m.requests[path]))
	copy(out, m.requests[path])
	return out
}

// PagesRequested returns the value of the given query parameter for
// every request made to a path, in arrival order.
func (m *MockAPI) PagesRequested(path, param string) []string {
	var pages []string
	for _, q := range m.Requests(path) {
		pages = append(pages, q.Get(param))
	}
	return pages
}

// serveResource slices the resource's items per the request's paging
// parameters and writes one page.
func (m *MockAPI) serveResource(w http.ResponseWriter, r *http.Request, res *PagedResource) {
	query := r.URL.Query()

	sizeParam := res.SizeParam
	if sizeParam == "" {
		sizeParam = "limit"
	}
	size := len(res.Items)
	if s, err := strconv.Atoi(query.Get(sizeParam)); err == nil && s > 0 {
		size = s
	}

	var offset, failKey int
	if res.StartParam != "" {
		offset, _ = strconv.Atoi(query.Get(res.StartParam))
		failKey = offset
	} else {
		pageParam := res.PageParam
		if pageParam == "" {
			pageParam = "page"
		}
		page := 1
		if p, err := strconv.Atoi(query.Get(pageParam)); err == nil && p > 0 {
			page = p
		}
		offset = (page - 1) * size
		failKey = page
	}

	for key, value := range res.Headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if status, ok := res.FailAt[failKey]; ok {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error": "injected failure (status %d)"}`, status)
		return
	}

	end := offset + size
	if offset > len(res.Items) {
		offset = len(res.Items)
	}
	if end > len(res.Items) {
		end = len(res.Items)
	}
	elements := "[" + strings.Join(res.Items[offset:end], ",") + "]"

	w.WriteHeader(http.StatusOK)
	if res.ArrayName == "" {
		w.Write([]byte(elements))
		return
	}
	if res.TotalField != "" {
		fmt.Fprintf(w, `{"%s": %s, "%s": %d}`, res.ArrayName, elements, res.TotalField, len(res.Items))
		return
	}
	fmt.Fprintf(w, `{"%s": %s}`, res.ArrayName, elements)
}
