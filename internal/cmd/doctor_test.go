package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/studydash/internal/health"
)

func TestDoctorHealthy(t *testing.T) {
	testEnv(t)
	login(t)

	out, err := run(t, "", "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "backend is up")
	assert.Contains(t, out, "stored session is readable")
	assert.Contains(t, out, "Overall: healthy")
}

func TestDoctorUnreachableBackend(t *testing.T) {
	testEnv(t)
	t.Setenv("STUDYDASH_API_URL", "http://127.0.0.1:1")

	out, err := run(t, "", "doctor", "--format", "json")
	require.Error(t, err)

	var view struct {
		Overall health.Status   `json:"overall"`
		Checks  []health.Report `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view), out)
	assert.Equal(t, health.StatusUnhealthy, view.Overall)
	require.NotEmpty(t, view.Checks)
	assert.Equal(t, "backend", view.Checks[0].Name)
	assert.Equal(t, health.StatusUnhealthy, view.Checks[0].Result.Status)
}
