package middlewares

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/mallkit/internal/observability/logger"
)

// statusRecorder captura el status code y bytes escritos de la respuesta.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.status = http.StatusOK
		s.wroteHeader = true
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// WithLogging inyecta un logger con request_id/method/path en el contexto y
// registra cada request al terminar. El nivel depende del status.
func WithLogging() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := w.Header().Get("X-Request-ID")
			if requestID == "" {
				requestID = GetRequestID(r.Context())
			}

			reqLog := logger.L().With(
				logger.RequestID(requestID),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
			)
			ctx := logger.ToContext(r.Context(), reqLog)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			fields := []zap.Field{
				logger.Status(rec.status),
				logger.Int("bytes", rec.bytes),
				logger.Duration(time.Since(start)),
				logger.ClientIP(clientIP(r)),
			}
			switch {
			case rec.status >= 500:
				reqLog.Error("request failed", fields...)
			case rec.status >= 400:
				reqLog.Warn("request completed with client error", fields...)
			default:
				reqLog.Info("request completed", fields...)
			}
		})
	}
}
