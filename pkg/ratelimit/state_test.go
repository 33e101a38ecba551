package ratelimit

import (
	"testing"
	"time"
)

func TestStateThresholds(t *testing.T) {
	tests := []struct {
		name          string
		remaining     int
		criticalBlock bool
		throttling    bool
		healthy       bool
	}{
		{"healthy", 100, false, false, true},
		{"at_healthy_threshold", ThresholdHealthy, false, false, true},
		{"below_healthy", ThresholdHealthy - 1, false, false, false},
		{"at_warning_threshold", ThresholdWarning, false, false, false},
		{"below_warning", ThresholdWarning - 1, false, true, false},
		{"at_critical_threshold", ThresholdCritical, false, true, false},
		{"below_critical", ThresholdCritical - 1, true, false, false},
		{"zero", 0, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &State{Remaining: tt.remaining}
			state.UpdateHealth()

			if got := state.NeedsCriticalBlock(); got != tt.criticalBlock {
				t.Errorf("NeedsCriticalBlock() = %v, want %v", got, tt.criticalBlock)
			}
			if got := state.NeedsThrottling(); got != tt.throttling {
				t.Errorf("NeedsThrottling() = %v, want %v", got, tt.throttling)
			}
			if got := state.IsHealthy; got != tt.healthy {
				t.Errorf("IsHealthy = %v, want %v", got, tt.healthy)
			}
		})
	}
}

func TestStateTimeUntilReset(t *testing.T) {
	future := &State{ResetAt: time.Now().Add(30 * time.Second)}
	d := future.TimeUntilReset()
	if d <= 0 || d > 30*time.Second {
		t.Errorf("TimeUntilReset() = %v, want about 30s", d)
	}

	past := &State{ResetAt: time.Now().Add(-10 * time.Second)}
	if got := past.TimeUntilReset(); got != 0 {
		t.Errorf("TimeUntilReset() for elapsed reset = %v, want 0", got)
	}
}

func TestStateIsStale(t *testing.T) {
	fresh := &State{LastUpdate: time.Now()}
	if fresh.IsStale(time.Minute) {
		t.Error("fresh state should not be stale")
	}

	old := &State{LastUpdate: time.Now().Add(-2 * time.Minute)}
	if !old.IsStale(time.Minute) {
		t.Error("old state should be stale")
	}
}
