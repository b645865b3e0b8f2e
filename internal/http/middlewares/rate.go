package middlewares

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dropDatabas3/mallkit/internal/http/errors"
	"github.com/dropDatabas3/mallkit/internal/observability/logger"
	"github.com/dropDatabas3/mallkit/internal/rate"
)

// clientIP extrae la IP del cliente, considerando proxies.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// IPPathRateKey separa límites por endpoint sin leer el body.
func IPPathRateKey(r *http.Request) string {
	return clientIP(r) + "|" + r.URL.Path
}

type RateLimitConfig struct {
	Limiter rate.Limiter
	KeyFunc RateKeyFunc
}

// WithRateLimit responde 429 cuando el limiter lo indica. Si el limiter
// falla, el request pasa.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPPathRateKey
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := cfg.Limiter.Allow(r.Context(), cfg.KeyFunc(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limit error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				if res.RetryAfter > 0 {
					secs := int(math.Ceil(res.RetryAfter.Seconds()))
					w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				}
				errors.WriteError(w, errors.ErrRateLimitExceeded)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}
