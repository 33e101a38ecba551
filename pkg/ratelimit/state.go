// Package ratelimit implements shared error-budget tracking and wave
// gating. It monitors the X-RateLimit-Remaining and X-RateLimit-Reset
// response headers so concurrent fetchers sharing one Redis instance
// spend a single upstream error budget.
package ratelimit

import (
	"time"
)

// Redis keys for budget state storage.
const (
	RedisKeyRemaining      = "pagewave:budget:remaining"
	RedisKeyResetTimestamp = "pagewave:budget:reset_timestamp"
	RedisKeyLastUpdate     = "pagewave:budget:last_update"
)

// Thresholds for budget decisions.
const (
	// ThresholdCritical blocks all waves when the remaining budget
	// falls below this value.
	ThresholdCritical = 5

	// ThresholdWarning applies throttling when the remaining budget
	// falls below this value.
	ThresholdWarning = 20

	// ThresholdHealthy indicates normal operation.
	ThresholdHealthy = 50
)

// State represents the current upstream error-budget state.
// It is shared across all fetcher instances via Redis.
type State struct {
	// Remaining is the number of errors allowed before the upstream
	// starts rejecting requests. Extracted from X-RateLimit-Remaining.
	Remaining int `json:"remaining"`

	// ResetAt is the timestamp when the budget window resets.
	// Calculated from X-RateLimit-Reset (seconds until reset).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is the timestamp when this state was last updated.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when Remaining >= ThresholdHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if waves should be blocked.
func (s *State) NeedsCriticalBlock() bool {
	return s.Remaining < ThresholdCritical
}

// NeedsThrottling returns true if waves should be throttled.
func (s *State) NeedsThrottling() bool {
	return s.Remaining < ThresholdWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the budget resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates the IsHealthy field from the current Remaining.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.Remaining >= ThresholdHealthy
}
