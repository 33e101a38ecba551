package cache

import (
	"strings"
)

// Key represents a unique identifier for a cached response.
type Key struct {
	// URL is the absolute endpoint (e.g., "https://api.example.com/items")
	URL string

	// Params is the descriptor's ordered "key=value" parameter list.
	// Order is preserved: two descriptors with the same params in a
	// different order address different entries, matching how the
	// origin would see them.
	Params []string
}

// String generates a deterministic cache key string.
// Format: pagewave:url:param1=val1:param2=val2
//
// Example:
//
//	pagewave:https://api.example.com/items:limit=100:page=1
func (k Key) String() string {
	parts := []string{"pagewave"}

	url := strings.TrimRight(k.URL, "/")
	if url != "" {
		parts = append(parts, url)
	}

	for _, p := range k.Params {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, ":")
}
