package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/mallkit/internal/observability/logger"
	"github.com/dropDatabas3/mallkit/internal/settings"
)

// Stage identifica el punto de intercepción.
type Stage int

const (
	StageBeforeSend Stage = iota
	StageSendSuccess
	StageSendFailure
)

func (s Stage) String() string {
	switch s {
	case StageBeforeSend:
		return "before_send"
	case StageSendSuccess:
		return "send_success"
	case StageSendFailure:
		return "send_failure"
	default:
		return "unknown"
	}
}

// Event es lo que recibe un Interceptor.
type Event struct {
	Stage   Stage
	Config  SMTPConfig
	To      string
	Subject string
	Body    string
	Err     error // solo en StageSendFailure
}

// Interceptor puede forzar el resultado de SendMessage devolviendo un *bool
// no nil. nil significa "seguir".
type Interceptor func(ctx context.Context, ev Event) *bool

// Override es un helper para devolver un resultado desde un Interceptor.
func Override(v bool) *bool { return &v }

// Sender es lo que consume captcha.
type Sender interface {
	SendMessage(ctx context.Context, to, subject, htmlBody string) bool
}

// Mailer resuelve la configuración SMTP por envío y delega en Transport.
type Mailer struct {
	settings     settings.Source
	transport    Transport
	interceptors []Interceptor
	timeout      time.Duration
}

// MailerOption configura un Mailer.
type MailerOption func(*Mailer)

// WithInterceptors agrega interceptores en orden.
func WithInterceptors(ics ...Interceptor) MailerOption {
	return func(m *Mailer) { m.interceptors = append(m.interceptors, ics...) }
}

// WithTimeout cambia el timeout de envío (default 10s).
func WithTimeout(d time.Duration) MailerOption {
	return func(m *Mailer) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// NewMailer crea un Mailer. transport nil usa SMTPTransport.
func NewMailer(src settings.Source, transport Transport, opts ...MailerOption) *Mailer {
	if transport == nil {
		transport = NewSMTPTransport()
	}
	m := &Mailer{settings: src, transport: transport, timeout: DefaultTimeout}
	for _, o := range opts {
		o(m)
	}
	return m
}

// LoadConfig lee y decodifica "email_config".
func (m *Mailer) LoadConfig(ctx context.Context) (SMTPConfig, error) {
	raw, err := m.settings.Get(ctx, settings.KeyEmailConfig)
	if err != nil {
		if errors.Is(err, settings.ErrNotFound) {
			return SMTPConfig{}, ErrNoConfig
		}
		return SMTPConfig{}, err
	}
	return ParseSMTPConfig(raw)
}

func (m *Mailer) shopName(ctx context.Context) string {
	raw, err := m.settings.Get(ctx, settings.KeyShopName)
	if err != nil {
		return ""
	}
	return ParseShopName(raw)
}

// SendMessage envía un HTML a to. Devuelve false ante cualquier fallo de
// configuración o transporte; los interceptores pueden forzar el resultado.
func (m *Mailer) SendMessage(ctx context.Context, to, subject, htmlBody string) bool {
	log := logger.From(ctx).With(logger.Component("Mailer"), logger.Email(to))

	ev := Event{To: to, Subject: subject, Body: htmlBody}

	cfg, err := m.LoadConfig(ctx)
	if err != nil {
		log.Error("smtp config unavailable", logger.Err(err))
		ev.Err = err
		return m.fail(ctx, ev)
	}
	ev.Config = cfg

	if v := m.intercept(ctx, StageBeforeSend, ev); v != nil {
		log.Debug("send short-circuited", logger.String("stage", StageBeforeSend.String()), logger.Bool("result", *v))
		return *v
	}

	err = m.transport.Send(ctx, Delivery{
		Config:   cfg,
		FromName: m.shopName(ctx),
		To:       to,
		Subject:  subject,
		HTML:     htmlBody,
		Timeout:  m.timeout,
	})
	if err != nil {
		d := DiagnoseSMTP(err)
		log.Warn("smtp send failed",
			logger.Err(err),
			logger.String("diag", d.Code),
			logger.Bool("temporary", d.Temporary),
		)
		ev.Err = err
		return m.fail(ctx, ev)
	}

	if v := m.intercept(ctx, StageSendSuccess, ev); v != nil {
		return *v
	}
	log.Info("email sent")
	return true
}

func (m *Mailer) fail(ctx context.Context, ev Event) bool {
	if v := m.intercept(ctx, StageSendFailure, ev); v != nil {
		return *v
	}
	return false
}

// intercept corre los interceptores en orden; el primero que devuelve un
// resultado gana. Un panic en un interceptor se trata como "seguir".
func (m *Mailer) intercept(ctx context.Context, st Stage, ev Event) *bool {
	ev.Stage = st
	for i, ic := range m.interceptors {
		if ic == nil {
			continue
		}
		if v := safeCall(ctx, ic, ev, i); v != nil {
			return v
		}
	}
	return nil
}

func safeCall(ctx context.Context, ic Interceptor, ev Event, idx int) (out *bool) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.From(ctx).Error("interceptor panic",
				logger.Int("index", idx),
				logger.String("stage", ev.Stage.String()),
				logger.String("panic", fmt.Sprint(rec)),
			)
			out = nil
		}
	}()
	return ic(ctx, ev)
}
