// Package email envía mensajes HTML por SMTP usando la configuración de la
// tienda (setting "email_config") y expone puntos de intercepción antes y
// después del envío.
package email

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout es el timeout de envío SMTP.
const DefaultTimeout = 10 * time.Second

// TLS modes.
const (
	TLSModeSSL      = "ssl"
	TLSModeStartTLS = "starttls"
)

var (
	ErrNoConfig      = errors.New("email: smtp config missing")
	ErrInvalidConfig = errors.New("email: smtp config invalid")
)

// SMTPConfig refleja el JSON de "email_config":
// {"smtp": host, "port": 465, "username": ..., "password": ..., "secure": 0}.
type SMTPConfig struct {
	Host     string `json:"smtp"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	// Secure 0 => SSL implícito, cualquier otro valor => STARTTLS.
	Secure int `json:"secure"`
}

// TLSMode traduce Secure al modo de conexión.
func (c SMTPConfig) TLSMode() string {
	if c.Secure == 0 {
		return TLSModeSSL
	}
	return TLSModeStartTLS
}

// ParseSMTPConfig decodifica el JSON de configuración. port y secure se
// aceptan como número o string numérico.
func ParseSMTPConfig(raw string) (SMTPConfig, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return SMTPConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if m == nil {
		return SMTPConfig{}, ErrNoConfig
	}
	cfg := SMTPConfig{
		Host:     asString(m["smtp"]),
		Username: asString(m["username"]),
		Password: asString(m["password"]),
	}
	var err error
	if cfg.Port, err = asInt(m["port"]); err != nil {
		return SMTPConfig{}, fmt.Errorf("%w: port: %v", ErrInvalidConfig, err)
	}
	if cfg.Secure, err = asInt(m["secure"]); err != nil {
		return SMTPConfig{}, fmt.Errorf("%w: secure: %v", ErrInvalidConfig, err)
	}
	if cfg.Host == "" || cfg.Port <= 0 {
		return SMTPConfig{}, fmt.Errorf("%w: smtp host and port required", ErrInvalidConfig)
	}
	return cfg, nil
}

// ParseShopName acepta el nombre plano o como string JSON.
func ParseShopName(raw string) string {
	raw = strings.TrimSpace(raw)
	var s string
	if strings.HasPrefix(raw, `"`) && json.Unmarshal([]byte(raw), &s) == nil {
		return s
	}
	return raw
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func asInt(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return int(t), nil
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, nil
		}
		return strconv.Atoi(strings.TrimSpace(t))
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

// Delivery es un envío concreto hacia el transporte SMTP.
type Delivery struct {
	Config   SMTPConfig
	FromName string
	To       string
	Subject  string
	HTML     string
	Timeout  time.Duration
}
