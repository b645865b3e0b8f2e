// Package errors define el sobre de error de la API:
//
//	{"error": "<code>", "error_description": "...", "request_id": "..."}
package errors

import (
	"fmt"
	"net/http"
)

// AppError es un error con status HTTP y código estable para el cliente.
type AppError struct {
	Code        string
	Description string
	HTTPStatus  int
	Err         error // causa, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Description, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Description)
}

func (e *AppError) Unwrap() error { return e.Err }

func New(status int, code, description string) *AppError {
	return &AppError{Code: code, Description: description, HTTPStatus: status}
}

// WithDescription devuelve una copia con otra descripción.
func (e *AppError) WithDescription(desc string) *AppError {
	c := *e
	c.Description = desc
	return &c
}

// WithCause devuelve una copia con la causa.
func (e *AppError) WithCause(err error) *AppError {
	c := *e
	c.Err = err
	return &c
}

// 400
var (
	ErrInvalidJSON    = New(http.StatusBadRequest, "invalid_json", "json inválido")
	ErrInvalidRequest = New(http.StatusBadRequest, "invalid_request", "parámetros inválidos")
	ErrInvalidPurpose = New(http.StatusBadRequest, "invalid_purpose", "验证码类型错误")
	ErrInvalidEmail   = New(http.StatusBadRequest, "invalid_email", "邮箱格式不正确")
)

// 401 / 403 / 404
var (
	ErrUnauthorized = New(http.StatusUnauthorized, "unauthorized", "token ausente o inválido")
	ErrForbidden    = New(http.StatusForbidden, "forbidden", "se requiere rol admin")
	ErrNotFound     = New(http.StatusNotFound, "not_found", "recurso no encontrado")
	ErrStoreUnknown = New(http.StatusNotFound, "shared_store_not_found", "tienda compartida inexistente")
)

// 422 / 429
var (
	ErrPartner           = New(http.StatusUnprocessableEntity, "partner_error", "el partner rechazó la operación")
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "rate_limited", "demasiadas solicitudes")
	ErrCaptchaRateLimit  = New(http.StatusTooManyRequests, "captcha_rate_limited", "验证码发送频繁，请稍后再试")
	ErrCaptchaCheckLimit = New(http.StatusTooManyRequests, "captcha_check_limited", "验证码尝试次数过多，请稍后再试")
)

// 5xx
var (
	ErrInternalServerError = New(http.StatusInternalServerError, "internal_error", "error interno")
	ErrCaptchaSendFailed   = New(http.StatusBadGateway, "captcha_send_failed", "验证码发送失败，请稍后再试")
	ErrPartnerUnreachable  = New(http.StatusBadGateway, "partner_unreachable", "连接失败")
)
