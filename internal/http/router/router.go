// Package router arma el chi.Router del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	captchactrl "github.com/dropDatabas3/mallkit/internal/http/controllers/captcha"
	healthctrl "github.com/dropDatabas3/mallkit/internal/http/controllers/health"
	sharedctrl "github.com/dropDatabas3/mallkit/internal/http/controllers/shared"
	httperrors "github.com/dropDatabas3/mallkit/internal/http/errors"
	mw "github.com/dropDatabas3/mallkit/internal/http/middlewares"
	"github.com/dropDatabas3/mallkit/internal/rate"
)

// Deps contiene todo lo que necesitan las rutas.
type Deps struct {
	Captcha *captchactrl.CaptchaController
	Shared  *sharedctrl.SharedController
	Health  *healthctrl.HealthController

	// CaptchaLimiter limita POST /v1/captcha/send por IP. nil => sin límite.
	CaptchaLimiter rate.Limiter
	// CheckLimiter limita POST /v1/captcha/check por IP. El límite por
	// (propósito, email) lo aplica el controller.
	CheckLimiter rate.Limiter
	Admin          mw.AdminConfig

	// MetricsHandler sirve /metrics; nil usa promhttp.Handler().
	MetricsHandler http.Handler
}

// New registra todas las rutas.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithLogging(),
		mw.WithMetrics(),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.New(http.StatusMethodNotAllowed, "method_not_allowed", "método no permitido"))
	})

	if deps.Health != nil {
		r.Get("/healthz", deps.Health.Healthz)
	}
	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	if deps.Captcha != nil {
		registerCaptchaRoutes(r, deps)
	}
	if deps.Shared != nil {
		registerSharedRoutes(r, deps)
	}
	return r
}

func registerCaptchaRoutes(r chi.Router, deps Deps) {
	c := deps.Captcha
	r.Route("/v1/captcha", func(r chi.Router) {
		r.Method(http.MethodPost, "/send", mw.Chain(http.HandlerFunc(c.Send),
			mw.WithRateLimit(mw.RateLimitConfig{
				Limiter: deps.CaptchaLimiter,
				KeyFunc: mw.IPPathRateKey,
			}),
		))
		r.Method(http.MethodPost, "/check", mw.Chain(http.HandlerFunc(c.Check),
			mw.WithRateLimit(mw.RateLimitConfig{
				Limiter: deps.CheckLimiter,
				KeyFunc: mw.IPPathRateKey,
			}),
		))
		// el borrado manual es solo admin; el público consume con check destroy:true
		r.With(mw.RequireAdmin(deps.Admin)).Delete("/", c.Destroy)
	})
}

func registerSharedRoutes(r chi.Router, deps Deps) {
	c := deps.Shared
	r.Route("/v1/shared", func(r chi.Router) {
		r.Use(mw.RequireAdmin(deps.Admin))
		r.Get("/", c.List)
		r.Post("/connect", c.Connect)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/items", c.Items)
			r.Post("/inventory-state", c.InventoryState)
			r.Post("/trade", c.Trade)
			r.Get("/draft-card", c.DraftCard)
			r.Get("/inventory", c.Inventory)
		})
	})
}
