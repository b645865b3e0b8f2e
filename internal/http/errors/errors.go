package errors

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

// FromError convierte err en *AppError; cualquier otro error es un 500.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WriteError escribe el sobre de error. El request id se toma del header
// X-Request-ID ya seteado por el middleware.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:            appErr.Code,
		ErrorDescription: appErr.Description,
		RequestID:        w.Header().Get("X-Request-ID"),
	})
}

// WriteJSON: respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodifica el body (máx 64KB) sin fallar por campos desconocidos.
// Escribe el error y devuelve false si el body no sirve.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteError(w, ErrInvalidJSON.WithDescription("Content-Type debe ser application/json"))
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		WriteError(w, ErrInvalidJSON)
		return false
	}
	return true
}
