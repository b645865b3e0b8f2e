package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/mallkit/internal/http/errors"
	"github.com/dropDatabas3/mallkit/internal/observability/logger"
)

// AdminConfig configura RequireAdmin.
type AdminConfig struct {
	// Secret HS256. Vacío deshabilita las rutas admin (siempre 401).
	Secret []byte
	// Issuer esperado en "iss"; vacío no lo valida.
	Issuer string
}

// RequireAdmin valida Authorization: Bearer <JWT HS256> y exige rol admin:
// "role":"admin" o "admin" dentro de "roles". Token ausente o inválido => 401,
// sin rol => 403.
func RequireAdmin(cfg AdminConfig) Middleware {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (any, error) { return cfg.Secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(cfg.Secret) == 0 {
				errors.WriteError(w, errors.ErrUnauthorized.WithDescription("admin API deshabilitada"))
				return
			}

			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin", error="invalid_token"`)
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			if _, err := parser.ParseWithClaims(strings.TrimSpace(ah[7:]), claims, keyFunc); err != nil {
				logger.From(r.Context()).Debug("admin token rejected", logger.Err(err))
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin", error="invalid_token"`)
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			if !isAdmin(claims) {
				errors.WriteError(w, errors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func isAdmin(claims jwt.MapClaims) bool {
	if role, ok := claims["role"].(string); ok && strings.EqualFold(role, "admin") {
		return true
	}
	if roles, ok := claims["roles"].([]any); ok {
		for _, v := range roles {
			if strings.EqualFold(fmt.Sprint(v), "admin") {
				return true
			}
		}
	}
	return false
}
