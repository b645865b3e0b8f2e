// Package metrics define los collectors Prometheus del servicio. Viven en un
// paquete propio para que captcha, partner y http no se importen entre sí.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	CaptchaSendTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "captcha_send_total",
		Help: "Envíos de códigos de verificación por propósito y resultado",
	}, []string{"purpose", "result"}) // result: sent|rate_limited|send_failed|store_failed

	CaptchaCheckTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "captcha_check_total",
		Help: "Validaciones de códigos por propósito y resultado",
	}, []string{"purpose", "result"}) // result: valid|invalid

	PartnerRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "partner_requests_total",
		Help: "Requests al partner por endpoint y resultado",
	}, []string{"endpoint", "result"}) // result: ok|connection_error|remote_error

	PartnerRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "partner_request_duration_seconds",
		Help:    "Latencia de requests al partner",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"endpoint"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Register registra todos los collectors en reg (o el default si es nil).
// Registrar dos veces no es error.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		CaptchaSendTotal,
		CaptchaCheckTotal,
		PartnerRequestsTotal,
		PartnerRequestDuration,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}
