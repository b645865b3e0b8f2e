// Package health contiene el controller para health checks.
package health

import (
	"context"
	"net/http"
	"time"

	dto "github.com/dropDatabas3/mallkit/internal/http/dto/health"
	httperrors "github.com/dropDatabas3/mallkit/internal/http/errors"
	"github.com/dropDatabas3/mallkit/internal/observability/logger"
)

// Pinger es una dependencia chequeable (cache, pool de Postgres...).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapta una función a Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthController maneja GET /healthz.
type HealthController struct {
	version    string
	components map[string]Pinger
}

func NewHealthController(version string, components map[string]Pinger) *HealthController {
	return &HealthController{version: version, components: components}
}

// Healthz responde 200 si todas las dependencias responden, 503 si no.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status:     "ready",
		Components: make(map[string]dto.ComponentStatus, len(c.components)),
		Version:    c.version,
		Timestamp:  time.Now().UTC(),
	}
	for name, p := range c.components {
		if p == nil {
			resp.Components[name] = dto.ComponentStatus{Status: "disabled"}
			continue
		}
		if err := p.Ping(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Components[name] = dto.ComponentStatus{Status: "error", Message: err.Error()}
			continue
		}
		resp.Components[name] = dto.ComponentStatus{Status: "ok"}
	}

	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
		logger.From(ctx).Warn("health check degraded", logger.Layer("controller"))
	}
	httperrors.WriteJSON(w, status, resp)
}
