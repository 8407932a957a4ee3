package api

import (
	"context"
	"net/http"
)

// HealthStatus is the backend's self-reported health
type HealthStatus struct {
	Status    string `json:"status" yaml:"status" validate:"required"`
	Database  string `json:"database" yaml:"database"`
	AIService string `json:"ai_service" yaml:"ai_service"`
}

// Health calls the unauthenticated health endpoint
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
