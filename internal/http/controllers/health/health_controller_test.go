package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/dropDatabas3/mallkit/internal/http/dto/health"
)

func healthz(t *testing.T, c *HealthController) (int, dto.HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var out dto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestHealthz_Ready(t *testing.T) {
	ok := PingFunc(func(ctx context.Context) error { return nil })
	code, out := healthz(t, NewHealthController("1.2.3", map[string]Pinger{"cache": ok, "postgres": nil}))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", out.Status)
	assert.Equal(t, "1.2.3", out.Version)
	assert.Equal(t, "ok", out.Components["cache"].Status)
	assert.Equal(t, "disabled", out.Components["postgres"].Status)
}

func TestHealthz_Degraded(t *testing.T) {
	down := PingFunc(func(ctx context.Context) error { return errors.New("dial tcp: refused") })
	ok := PingFunc(func(ctx context.Context) error { return nil })
	code, out := healthz(t, NewHealthController("dev", map[string]Pinger{"cache": down, "postgres": ok}))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", out.Status)
	assert.Equal(t, "error", out.Components["cache"].Status)
	assert.Contains(t, out.Components["cache"].Message, "refused")
	assert.Equal(t, "ok", out.Components["postgres"].Status)
}
