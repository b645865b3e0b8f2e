package email

import (
	"errors"
	"net"
	"strings"
)

// SMTPDiag clasifica un error SMTP para logs y métricas.
type SMTPDiag struct {
	Code      string // auth|tls|dial|timeout|rate_limited|invalid_recipient|rejected|network|unknown
	Temporary bool   // si conviene reintentar
}

type diagRule struct {
	code      string
	temporary bool
	match     func(s string) bool
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

// El orden importa: timeout antes que dial, tls antes que auth.
var diagRules = []diagRule{
	{"timeout", true, containsAny("timeout", "deadline exceeded")},
	{"dial", true, containsAny("connection refused", "no such host", "dial tcp", "connectex:")},
	{"tls", false, func(s string) bool {
		return strings.Contains(s, "x509:") ||
			(strings.Contains(s, "tls") && (strings.Contains(s, "handshake") || strings.Contains(s, "certificate")))
	}},
	{"auth", false, func(s string) bool {
		return containsAny("5.7.8", "535", "username and password not accepted", "authentication failed")(s) ||
			(strings.Contains(s, "auth") && strings.Contains(s, "failed"))
	}},
	{"rate_limited", true, containsAny("4.7.0", "rate limit", "try again later", "temporarily unavailable", "421", "451")},
	{"invalid_recipient", false, containsAny("5.1.1", "user unknown", "mailbox not found")},
	{"rejected", false, containsAny("5.7.1", "message rejected", "policy", "dmarc", "spf")},
}

// DiagnoseSMTP analiza un error del transporte.
func DiagnoseSMTP(err error) SMTPDiag {
	if err == nil {
		return SMTPDiag{Code: "unknown"}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return SMTPDiag{Code: "timeout", Temporary: true}
	}
	s := strings.ToLower(err.Error())
	for _, r := range diagRules {
		if r.match(s) {
			return SMTPDiag{Code: r.code, Temporary: r.temporary}
		}
	}
	if errors.As(err, &ne) {
		return SMTPDiag{Code: "network", Temporary: true}
	}
	return SMTPDiag{Code: "unknown"}
}
