// Package logger expone un logger Zap singleton con scoping por contexto.
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "mallkit"})
//	defer logger.Sync()
//
// En services (con contexto):
//
//	log := logger.From(ctx).With(logger.Op("SendCaptcha"))
//	log.Info("captcha sent", logger.Purpose("register"))
package logger

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configura el logger.
type Config struct {
	// Env: "dev" (consola con colores) o "prod" (JSON). Default "dev".
	Env string
	// Level: debug | info | warn | error. Default "info".
	Level       string
	ServiceName string
	Version     string
}

var (
	once     sync.Once
	mu       sync.RWMutex
	instance *zap.Logger
)

// Init inicializa el singleton. Solo la primera llamada tiene efecto.
func Init(cfg Config) {
	once.Do(func() {
		l := build(cfg)
		mu.Lock()
		instance = l
		mu.Unlock()
	})
}

// L retorna el logger singleton. Si Init no fue llamado usa dev/info.
func L() *zap.Logger {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l == nil {
		Init(Config{Env: "dev", Level: "info"})
		mu.RLock()
		l = instance
		mu.RUnlock()
	}
	return l
}

// Replace cambia el singleton (tests: zap.NewNop o observer).
func Replace(l *zap.Logger) {
	once.Do(func() {})
	mu.Lock()
	instance = l
	mu.Unlock()
}

// Named retorna un logger con nombre de componente.
func Named(name string) *zap.Logger { return L().Named(name) }

// Sync flushea buffers pendientes.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if instance != nil {
		return instance.Sync()
	}
	return nil
}

type ctxKey struct{}

// ToContext inyecta un logger scoped en el contexto (lo usan los middlewares).
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From extrae el logger del contexto, o el singleton si no hay.
func From(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return L()
}

func build(cfg Config) *zap.Logger {
	level := parseLevel(cfg.Level)

	var zcfg zap.Config
	opts := []zap.Option{zap.AddCaller()}
	if strings.EqualFold(cfg.Env, "prod") {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	l, err := zcfg.Build(opts...)
	if err != nil {
		// fallback a un logger básico
		l, _ = zap.NewProduction()
	}
	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}
	if cfg.Version != "" {
		l = l.With(zap.String("version", cfg.Version))
	}
	return l
}

func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
