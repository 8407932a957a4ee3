package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/studydash/internal/api"
	"github.com/felixgeelhaar/studydash/internal/storage"
)

type fakePinger struct {
	status *api.HealthStatus
	err    error
}

func (f fakePinger) Health(ctx context.Context) (*api.HealthStatus, error) {
	return f.status, f.err
}

func TestBackendChecker(t *testing.T) {
	tests := []struct {
		name   string
		pinger fakePinger
		want   Status
	}{
		{"healthy", fakePinger{status: &api.HealthStatus{Status: "healthy", Database: "connected"}}, StatusHealthy},
		{"self-reported degraded", fakePinger{status: &api.HealthStatus{Status: "degraded"}}, StatusDegraded},
		{"unreachable", fakePinger{err: errors.New("connection refused")}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewBackendChecker(tt.pinger, "http://localhost:8000")
			result := c.Check(context.Background())

			if result.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", result.Status, tt.want, result.Message)
			}
			if result.Details["url"] != "http://localhost:8000" {
				t.Errorf("url detail missing: %v", result.Details)
			}
		})
	}
}

func TestStoreChecker(t *testing.T) {
	store := storage.NewMemoryStore()
	c := NewStoreChecker(store)

	if c.Name() != "session-store" {
		t.Errorf("Name() = %q", c.Name())
	}
	if got := c.Check(context.Background()); got.Status != StatusHealthy || got.Message != "no stored session" {
		t.Errorf("empty store: got %v %q", got.Status, got.Message)
	}

	_ = store.Set("token", "tok")
	if got := c.Check(context.Background()); got.Message != "stored session is readable" {
		t.Errorf("stored token: got %q", got.Message)
	}
}

func TestStoreCheckerUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	result := NewStoreChecker(storage.NewFileStore(path, "")).Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("corrupt store should be unhealthy, got %v", result.Status)
	}
}

func TestFileModeChecker(t *testing.T) {
	dir := t.TempDir()
	private := filepath.Join(dir, "private.yaml")
	shared := filepath.Join(dir, "shared.yaml")

	if err := os.WriteFile(private, []byte("a: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(shared, []byte("a: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(shared, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want Status
	}{
		{private, StatusHealthy},
		{shared, StatusDegraded},
		{filepath.Join(dir, "missing.yaml"), StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			c := NewFileModeChecker("config", tt.path)
			if got := c.Check(context.Background()); got.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", got.Status, tt.want, got.Message)
			}
		})
	}
}
