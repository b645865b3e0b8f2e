package logger

import (
	"time"

	"go.uber.org/zap"
)

// ─── HTTP ───

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field { return zap.String("method", v) }
func Path(v string) zap.Field { return zap.String("path", v) }
func Status(v int) zap.Field { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// ─── Negocio ───

// Email crea un campo para el destinatario (usar con cuidado en prod).
func Email(v string) zap.Field { return zap.String("email", v) }

// Purpose identifica el tipo de código de verificación.
func Purpose(v string) zap.Field { return zap.String("purpose", v) }

// Endpoint es el path del partner invocado.
func Endpoint(v string) zap.Field { return zap.String("endpoint", v) }

// StoreID identifica el shared store configurado.
func StoreID(v string) zap.Field { return zap.String("store_id", v) }

// ─── Sistema ───

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field { return zap.String("op", v) }
func Layer(v string) zap.Field { return zap.String("layer", v) }
func Err(err error) zap.Field { return zap.Error(err) }

func String(key, v string) zap.Field { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
