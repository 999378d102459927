package pyramid

import "testing"

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusNone, StatusPending, StatusGenerating, StatusComplete, StatusFailed} {
		if !s.Valid() {
			t.Errorf("status %q should be valid", s)
		}
	}
	if Status("done").Valid() {
		t.Error("unknown status should not be valid")
	}
}

func TestStatusProcessing(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusNone, false},
		{StatusPending, true},
		{StatusGenerating, true},
		{StatusComplete, false},
		{StatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Processing(); got != tt.expected {
				t.Errorf("%s.Processing() = %v, want %v", tt.status, got, tt.expected)
			}
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusNone, StatusPending},
		{StatusFailed, StatusPending},
		{StatusPending, StatusGenerating},
		{StatusGenerating, StatusComplete},
		{StatusGenerating, StatusFailed},
		// Cleanup forces any state back to none.
		{StatusNone, StatusNone},
		{StatusPending, StatusNone},
		{StatusGenerating, StatusNone},
		{StatusComplete, StatusNone},
		{StatusFailed, StatusNone},
	}
	for _, tt := range allowed {
		if !tt.from.CanTransition(tt.to) {
			t.Errorf("transition %s -> %s should be allowed", tt.from, tt.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusNone, StatusGenerating},
		{StatusNone, StatusComplete},
		{StatusPending, StatusComplete},
		{StatusPending, StatusFailed},
		{StatusComplete, StatusPending},
		{StatusComplete, StatusGenerating},
		{StatusGenerating, StatusPending},
		{StatusFailed, StatusGenerating},
		{StatusFailed, StatusComplete},
	}
	for _, tt := range denied {
		if tt.from.CanTransition(tt.to) {
			t.Errorf("transition %s -> %s should be denied", tt.from, tt.to)
		}
	}
}
