// Package captcha contiene el controller de códigos de verificación por email.
package captcha

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/dropDatabas3/mallkit/internal/captcha"
	dto "github.com/dropDatabas3/mallkit/internal/http/dto/captcha"
	httperrors "github.com/dropDatabas3/mallkit/internal/http/errors"
	"github.com/dropDatabas3/mallkit/internal/observability/logger"
	"github.com/dropDatabas3/mallkit/internal/rate"
	"github.com/dropDatabas3/mallkit/internal/validate"
)

// Service es lo que el controller usa de captcha.Service.
type Service interface {
	SendCaptcha(ctx context.Context, email string, purpose captcha.Purpose) error
	CheckCaptcha(ctx context.Context, email string, purpose captcha.Purpose, code int) bool
	DestroyCaptcha(ctx context.Context, email string, purpose captcha.Purpose) error
}

type CaptchaController struct {
	svc          Service
	checkLimiter rate.Limiter
}

// Option configura un CaptchaController.
type Option func(*CaptchaController)

// WithCheckLimiter limita los intentos de check por (propósito, email),
// sin importar desde cuántas IPs lleguen.
func WithCheckLimiter(l rate.Limiter) Option {
	return func(c *CaptchaController) { c.checkLimiter = l }
}

func NewCaptchaController(svc Service, opts ...Option) *CaptchaController {
	c := &CaptchaController{svc: svc}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Send maneja POST /v1/captcha/send.
func (c *CaptchaController) Send(w http.ResponseWriter, r *http.Request) {
	var in dto.SendRequest
	if !httperrors.ReadJSON(w, r, &in) {
		return
	}
	purpose, ok := parse(w, &in, in.Purpose)
	if !ok {
		return
	}

	if err := c.svc.SendCaptcha(r.Context(), in.Email, purpose); err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Check maneja POST /v1/captcha/check. Con destroy=true el código se consume
// si fue válido.
func (c *CaptchaController) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in dto.CheckRequest
	if !httperrors.ReadJSON(w, r, &in) {
		return
	}
	purpose, ok := parse(w, &in, in.Purpose)
	if !ok {
		return
	}

	if !c.allowCheck(w, r, purpose, in.Email) {
		return
	}

	// un código no entero (ej. 12.5) nunca coincide
	code, err := strconv.Atoi(in.Code.String())
	valid := err == nil && c.svc.CheckCaptcha(ctx, in.Email, purpose, code)

	if valid && in.Destroy {
		if err := c.svc.DestroyCaptcha(ctx, in.Email, purpose); err != nil {
			logger.From(ctx).Warn("captcha destroy after check failed", logger.Err(err))
		}
	}
	httperrors.WriteJSON(w, http.StatusOK, dto.CheckResponse{Valid: valid})
}

// allowCheck aplica checkLimiter; si el limiter falla el check sigue.
func (c *CaptchaController) allowCheck(w http.ResponseWriter, r *http.Request, purpose captcha.Purpose, email string) bool {
	if c.checkLimiter == nil {
		return true
	}
	res, err := c.checkLimiter.Allow(r.Context(), purpose.Key(email))
	if err != nil {
		logger.From(r.Context()).Warn("captcha check limiter error", logger.Err(err))
		return true
	}
	if res.Allowed {
		return true
	}
	if res.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(max(int(math.Ceil(res.RetryAfter.Seconds())), 1)))
	}
	logger.From(r.Context()).Warn("captcha check attempts exhausted", logger.Purpose(purpose.String()))
	httperrors.WriteError(w, httperrors.ErrCaptchaCheckLimit)
	return false
}

// Destroy maneja DELETE /v1/captcha (solo admin).
func (c *CaptchaController) Destroy(w http.ResponseWriter, r *http.Request) {
	var in dto.DestroyRequest
	if !httperrors.ReadJSON(w, r, &in) {
		return
	}
	purpose, ok := parse(w, &in, in.Purpose)
	if !ok {
		return
	}
	if err := c.svc.DestroyCaptcha(r.Context(), in.Email, purpose); err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parse valida el DTO y el propósito; escribe el 400 si algo falla.
func parse(w http.ResponseWriter, in any, rawPurpose string) (captcha.Purpose, bool) {
	if err := validate.Struct(in); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription(err.Error()))
		return 0, false
	}
	p, err := captcha.ParsePurpose(rawPurpose)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidPurpose)
		return 0, false
	}
	return p, true
}

func mapError(err error) error {
	switch {
	case errors.Is(err, captcha.ErrRateLimited):
		return httperrors.ErrCaptchaRateLimit
	case errors.Is(err, captcha.ErrSendFailed):
		return httperrors.ErrCaptchaSendFailed
	case errors.Is(err, captcha.ErrInvalidEmail):
		return httperrors.ErrInvalidEmail
	case errors.Is(err, captcha.ErrInvalidPurpose):
		return httperrors.ErrInvalidPurpose
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}
