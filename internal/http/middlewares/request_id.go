package middlewares

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// WithRequestID propaga X-Request-ID o genera un UUID v4. Lo expone en el
// header de respuesta y en el contexto.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
			if rid == "" || len(rid) > 128 {
				rid = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", rid)
			next.ServeHTTP(w, r.WithContext(setRequestID(r.Context(), rid)))
		})
	}
}
