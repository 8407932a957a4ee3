package health

import (
	"context"
	"fmt"
	"os"

	"github.com/felixgeelhaar/studydash/internal/api"
	"github.com/felixgeelhaar/studydash/internal/session"
	"github.com/felixgeelhaar/studydash/internal/storage"
)

// Pinger reports the backend's own view of its health
type Pinger interface {
	Health(ctx context.Context) (*api.HealthStatus, error)
}

// BackendChecker calls the backend health endpoint
type BackendChecker struct {
	pinger Pinger
	url    string
}

// NewBackendChecker checks the backend at url through p
func NewBackendChecker(p Pinger, url string) *BackendChecker {
	return &BackendChecker{pinger: p, url: url}
}

// Name implements Checker
func (c *BackendChecker) Name() string { return "backend" }

// Check implements Checker
func (c *BackendChecker) Check(ctx context.Context) *Result {
	status, err := c.pinger.Health(ctx)
	if err != nil {
		return Unhealthy("backend unreachable").
			WithDetail("url", c.url).
			WithDetail("error", err.Error())
	}

	result := Healthy("backend is up").WithDetail("url", c.url)
	if status.Database != "" {
		result.WithDetail("database", status.Database)
	}
	if status.AIService != "" {
		result.WithDetail("ai_service", status.AIService)
	}
	if status.Status != "healthy" {
		result.Status = StatusDegraded
		result.Message = fmt.Sprintf("backend reports %q", status.Status)
	}
	return result
}

// StoreChecker verifies the stored session can be read back
type StoreChecker struct {
	store storage.Store
}

// NewStoreChecker checks store
func NewStoreChecker(store storage.Store) *StoreChecker {
	return &StoreChecker{store: store}
}

// Name implements Checker
func (c *StoreChecker) Name() string { return "session-store" }

// Check implements Checker
func (c *StoreChecker) Check(ctx context.Context) *Result {
	_, ok, err := c.store.Get(session.KeyToken)
	if err != nil {
		return Unhealthy("stored session is unreadable").WithDetail("error", err.Error())
	}
	if !ok {
		return Healthy("no stored session")
	}
	return Healthy("stored session is readable")
}

// FileModeChecker warns when a file holding secrets is readable by others
type FileModeChecker struct {
	name string
	path string
}

// NewFileModeChecker checks the permissions of path under name
func NewFileModeChecker(name, path string) *FileModeChecker {
	return &FileModeChecker{name: name, path: path}
}

// Name implements Checker
func (c *FileModeChecker) Name() string { return c.name }

// Check implements Checker
func (c *FileModeChecker) Check(ctx context.Context) *Result {
	info, err := os.Stat(c.path)
	if os.IsNotExist(err) {
		return Healthy("not present").WithDetail("path", c.path)
	}
	if err != nil {
		return Unhealthy("cannot stat file").WithDetail("path", c.path).WithDetail("error", err.Error())
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		return Degraded(fmt.Sprintf("readable by other users (%04o)", mode)).
			WithDetail("path", c.path).
			WithDetail("fix", fmt.Sprintf("chmod 600 %s", c.path))
	}
	return Healthy("permissions ok").WithDetail("path", c.path)
}
