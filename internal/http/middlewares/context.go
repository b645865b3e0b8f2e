package middlewares

import "context"

type ctxKey string

const (
	ctxClaimsKey    ctxKey = "claims"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithClaims inyecta las claims JWT del admin en el contexto.
func WithClaims(ctx context.Context, claims map[string]any) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, claims)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetClaims devuelve las claims o nil si RequireAdmin no corrió.
func GetClaims(ctx context.Context) map[string]any {
	if v, ok := ctx.Value(ctxClaimsKey).(map[string]any); ok {
		return v
	}
	return nil
}

func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}
