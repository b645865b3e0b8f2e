package email

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/mallkit/internal/observability/logger"
)

// Transport entrega un Delivery. Implementado por SMTPTransport.
type Transport interface {
	Send(ctx context.Context, d Delivery) error
}

// SMTPTransport implementa Transport con go-mail.
type SMTPTransport struct {
	InsecureSkipVerify bool // solo dev
}

// NewSMTPTransport crea el transporte por defecto.
func NewSMTPTransport() *SMTPTransport { return &SMTPTransport{} }

// Send abre una conexión, autentica y envía un único mensaje HTML.
func (s *SMTPTransport) Send(ctx context.Context, d Delivery) error {
	cfg := d.Config
	log := logger.From(ctx).With(
		logger.Component("SMTPTransport"),
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("tls_mode", cfg.TLSMode()),
	)

	m := mail.NewMessage(mail.SetCharset("UTF-8"))
	m.SetAddressHeader("From", cfg.Username, d.FromName)
	m.SetHeader("To", d.To)
	m.SetHeader("Subject", d.Subject)
	m.SetBody("text/html", d.HTML)

	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: s.InsecureSkipVerify,
	}
	dialer.Timeout = d.Timeout
	if dialer.Timeout <= 0 {
		dialer.Timeout = DefaultTimeout
	}
	switch cfg.TLSMode() {
	case TLSModeSSL:
		dialer.SSL = true
	default:
		dialer.SSL = false
		dialer.StartTLSPolicy = mail.MandatoryStartTLS
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := dialer.DialAndSend(m); err != nil {
		log.Debug("smtp dial/send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
