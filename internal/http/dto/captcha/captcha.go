// Package captcha contiene DTOs para /v1/captcha.
package captcha

import "encoding/json"

// SendRequest es el body de POST /v1/captcha/send.
type SendRequest struct {
	Email   string `json:"email" validate:"required,email,max=254"`
	Purpose string `json:"purpose" validate:"required"`
}

// CheckRequest es el body de POST /v1/captcha/check. code acepta número o string.
type CheckRequest struct {
	Email   string      `json:"email" validate:"required,max=254"`
	Purpose string      `json:"purpose" validate:"required"`
	Code    json.Number `json:"code" validate:"required"`
	Destroy bool        `json:"destroy,omitempty"`
}

type CheckResponse struct {
	Valid bool `json:"valid"`
}

// DestroyRequest es el body de DELETE /v1/captcha.
type DestroyRequest struct {
	Email   string `json:"email" validate:"required,max=254"`
	Purpose string `json:"purpose" validate:"required"`
}
