package captcha

import (
	"fmt"
	"strconv"
	"strings"
)

// Purpose es el motivo del código de verificación.
type Purpose int

const (
	Register Purpose = iota
	Forget
	BindNew
	BindOld
)

type template struct {
	slug    string
	subject string
	body    string // %d => código
}

// Un registro por Purpose. Textos en zh-CN, igual que el storefront.
var templates = [...]template{
	Register: {
		slug:    "register",
		subject: "【注册账号】验证您的电子邮件",
		body:    "您好，您正在进行账号注册，本次验证码为：%d，有效期为5分钟。",
	},
	Forget: {
		slug:    "forget",
		subject: "【找回密码】验证您的电子邮件",
		body:    "您好，您正在找回密码，本次验证码为：%d，有效期为5分钟。",
	},
	BindNew: {
		slug:    "bind_new",
		subject: "【绑定新邮箱】验证您的电子邮件",
		body:    "您好，您正在绑定新邮箱，本次验证码为：%d，有效期为5分钟。",
	},
	BindOld: {
		slug:    "bind_old",
		subject: "【修改邮箱】验证您的电子邮件",
		body:    "您好，您的邮箱正在被修改，本次验证码为：%d，有效期为5分钟。",
	},
}

// Valid indica si p es un Purpose conocido.
func (p Purpose) Valid() bool { return p >= 0 && int(p) < len(templates) }

func (p Purpose) String() string {
	if !p.Valid() {
		return "unknown"
	}
	return templates[p].slug
}

// Key deriva la key de sesión para (p, email).
func (p Purpose) Key(email string) string {
	return "captcha:" + p.String() + ":" + email
}

// Subject y Body del mensaje. Vacíos para un Purpose inválido.
func (p Purpose) Subject() string {
	if !p.Valid() {
		return ""
	}
	return templates[p].subject
}

func (p Purpose) Body(code int) string {
	if !p.Valid() {
		return ""
	}
	return fmt.Sprintf(templates[p].body, code)
}

// ParsePurpose acepta el slug ("register", "bind_new", ...) o el índice numérico.
func ParsePurpose(s string) (Purpose, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, t := range templates {
		if t.slug == s {
			return Purpose(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Purpose(n).Valid() {
		return Purpose(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPurpose, s)
}

// Purposes lista todos los propósitos.
func Purposes() []Purpose {
	out := make([]Purpose, len(templates))
	for i := range templates {
		out[i] = Purpose(i)
	}
	return out
}
