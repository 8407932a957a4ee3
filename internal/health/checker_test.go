package health

import (
	"testing"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.String(); got != tt.expected {
				t.Errorf("Status.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNewResult(t *testing.T) {
	result := NewResult(StatusHealthy, "test message")

	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want %v", result.Status, StatusHealthy)
	}

	if result.Message != "test message" {
		t.Errorf("Message = %q, want %q", result.Message, "test message")
	}

	if result.Details == nil || len(result.Details) != 0 {
		t.Errorf("Details should be an empty map, got %v", result.Details)
	}
}

func TestWithDetail(t *testing.T) {
	result := Degraded("test")

	if returned := result.WithDetail("url", "http://localhost:8000"); returned != result {
		t.Error("WithDetail should return same result for chaining")
	}

	result.WithDetail("database", "connected").WithDetail("ai_service", "available")

	if len(result.Details) != 3 {
		t.Errorf("Details has %d entries, want 3", len(result.Details))
	}
	if result.Details["database"] != "connected" {
		t.Errorf("Details[database] = %q, want connected", result.Details["database"])
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		result *Result
		want   Status
	}{
		{Healthy("ok"), StatusHealthy},
		{Degraded("meh"), StatusDegraded},
		{Unhealthy("down"), StatusUnhealthy},
	}

	for _, tt := range tests {
		if tt.result.Status != tt.want {
			t.Errorf("%q has status %v, want %v", tt.result.Message, tt.result.Status, tt.want)
		}
	}
}
