// Package captcha emite, valida y destruye códigos de verificación de 6
// dígitos enviados por email. Cada (propósito, email) tiene a lo sumo un
// registro vivo en el session.Store.
package captcha

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/dropDatabas3/mallkit/internal/email"
	"github.com/dropDatabas3/mallkit/internal/metrics"
	"github.com/dropDatabas3/mallkit/internal/observability/logger"
	"github.com/dropDatabas3/mallkit/internal/session"
	"github.com/dropDatabas3/mallkit/internal/validate"
)

const (
	DefaultCooldown = 60 * time.Second
	DefaultTTL      = 300 * time.Second

	codeMin = 100000
	codeMax = 999999
)

var (
	ErrRateLimited    = errors.New("captcha: resend attempted too soon")
	ErrSendFailed     = errors.New("captcha: delivery failed")
	ErrInvalidPurpose = errors.New("captcha: invalid purpose")
	ErrInvalidEmail   = errors.New("captcha: invalid email")
)

var userMessages = map[error]string{
	ErrRateLimited:    "验证码发送频繁，请稍后再试",
	ErrSendFailed:     "验证码发送失败，请稍后再试",
	ErrInvalidPurpose: "验证码类型错误",
	ErrInvalidEmail:   "邮箱格式不正确",
}

// UserMessage devuelve el mensaje para el usuario final de un error del paquete.
func UserMessage(err error) string {
	for sentinel, msg := range userMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return "服务繁忙，请稍后再试"
}

// Config ajusta los tiempos. Cero => defaults.
type Config struct {
	Cooldown time.Duration
	TTL      time.Duration
}

// Service es el CaptchaMailer.
type Service struct {
	store    session.Store
	sender   email.Sender
	cooldown int64
	ttl      int64

	now     func() time.Time
	newCode func() (int, error)
}

// Option configura un Service.
type Option func(*Service)

// WithClock inyecta el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCodeGenerator inyecta el generador de códigos (tests).
func WithCodeGenerator(gen func() (int, error)) Option {
	return func(s *Service) { s.newCode = gen }
}

// NewService crea el servicio.
func NewService(store session.Store, sender email.Sender, cfg Config, opts ...Option) *Service {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	s := &Service{
		store:    store,
		sender:   sender,
		cooldown: int64(cfg.Cooldown / time.Second),
		ttl:      int64(cfg.TTL / time.Second),
		now:      time.Now,
		newCode:  randomCode,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// randomCode genera un entero uniforme en [100000, 999999].
func randomCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + codeMin, nil
}

// SendCaptcha genera un código, lo envía a addr y lo guarda. Si el último
// envío para (purpose, addr) tiene menos de Cooldown devuelve ErrRateLimited.
// Si la entrega falla devuelve ErrSendFailed y no guarda nada.
func (s *Service) SendCaptcha(ctx context.Context, addr string, purpose Purpose) error {
	if !purpose.Valid() {
		return ErrInvalidPurpose
	}
	if err := validate.Email(addr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}

	log := logger.From(ctx).With(logger.Op("SendCaptcha"), logger.Purpose(purpose.String()), logger.Email(addr))
	key := purpose.Key(addr)

	if rec, err := s.store.Get(ctx, key); err == nil {
		if rec.Time+s.cooldown > s.now().Unix() {
			metrics.CaptchaSendTotal.WithLabelValues(purpose.String(), "rate_limited").Inc()
			return ErrRateLimited
		}
	} else if !errors.Is(err, session.ErrNotFound) {
		log.Warn("session read failed, treating as absent", logger.Err(err))
	}

	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("captcha: generate code: %w", err)
	}

	if !s.sender.SendMessage(ctx, addr, purpose.Subject(), purpose.Body(code)) {
		metrics.CaptchaSendTotal.WithLabelValues(purpose.String(), "send_failed").Inc()
		log.Warn("captcha delivery failed")
		return ErrSendFailed
	}

	if err := s.store.Set(ctx, key, session.Record{Time: s.now().Unix(), Code: code}); err != nil {
		metrics.CaptchaSendTotal.WithLabelValues(purpose.String(), "store_failed").Inc()
		log.Error("captcha store failed", logger.Err(err))
		return fmt.Errorf("captcha: store: %w", err)
	}

	metrics.CaptchaSendTotal.WithLabelValues(purpose.String(), "sent").Inc()
	log.Info("captcha sent")
	return nil
}

// CheckCaptcha reporta si code es el código vigente para (purpose, addr).
// Ausente, distinto o vencido (edad >= TTL) dan false sin distinguir.
func (s *Service) CheckCaptcha(ctx context.Context, addr string, purpose Purpose, code int) bool {
	ok := s.check(ctx, addr, purpose, code)
	result := "invalid"
	if ok {
		result = "valid"
	}
	metrics.CaptchaCheckTotal.WithLabelValues(purpose.String(), result).Inc()
	return ok
}

func (s *Service) check(ctx context.Context, addr string, purpose Purpose, code int) bool {
	if !purpose.Valid() {
		return false
	}
	rec, err := s.store.Get(ctx, purpose.Key(addr))
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			logger.From(ctx).Warn("session read failed", logger.Op("CheckCaptcha"), logger.Err(err))
		}
		return false
	}
	if rec.Code != code {
		return false
	}
	if rec.Time+s.ttl <= s.now().Unix() {
		return false
	}
	return true
}

// DestroyCaptcha borra el registro de (purpose, addr). Ausente es no-op.
func (s *Service) DestroyCaptcha(ctx context.Context, addr string, purpose Purpose) error {
	if !purpose.Valid() {
		return ErrInvalidPurpose
	}
	if err := s.store.Remove(ctx, purpose.Key(addr)); err != nil {
		return fmt.Errorf("captcha: remove: %w", err)
	}
	return nil
}
