package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/mallkit/internal/cache"
	"github.com/dropDatabas3/mallkit/internal/captcha"
	"github.com/dropDatabas3/mallkit/internal/config"
	"github.com/dropDatabas3/mallkit/internal/email"
	captchactrl "github.com/dropDatabas3/mallkit/internal/http/controllers/captcha"
	healthctrl "github.com/dropDatabas3/mallkit/internal/http/controllers/health"
	sharedctrl "github.com/dropDatabas3/mallkit/internal/http/controllers/shared"
	mw "github.com/dropDatabas3/mallkit/internal/http/middlewares"
	"github.com/dropDatabas3/mallkit/internal/http/router"
	"github.com/dropDatabas3/mallkit/internal/metrics"
	"github.com/dropDatabas3/mallkit/internal/observability/logger"
	"github.com/dropDatabas3/mallkit/internal/partner"
	"github.com/dropDatabas3/mallkit/internal/rate"
	"github.com/dropDatabas3/mallkit/internal/secretbox"
	"github.com/dropDatabas3/mallkit/internal/session"
	"github.com/dropDatabas3/mallkit/internal/settings"
	"github.com/dropDatabas3/mallkit/internal/shared"
)

var version = "dev"

func main() {
	// .env es opcional
	_ = godotenv.Load()

	configPath := flag.String("config", envOr("CONFIG_PATH", "configs/config.yaml"), "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.App.Version == "" {
		cfg.App.Version = version
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.L().Error("service stopped with error", logger.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.L()

	if err := metrics.Register(nil); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	cacheClient, err := cache.New(ctx, cache.Config{
		Driver:     cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		Password:   cfg.Cache.Redis.Password,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: config.Dur(cfg.Cache.SessionTTL),
	})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cacheClient.Close()

	box, err := secretbox.New(cfg.Security.SecretBoxKey)
	if err != nil {
		return err
	}

	health := map[string]healthctrl.Pinger{"cache": cacheClient}

	var (
		settingsSrc settings.Source
		stores      shared.Repository
	)
	if cfg.Storage.Driver != "" {
		pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return fmt.Errorf("pgxpool: %w", err)
		}
		defer pool.Close()
		health["postgres"] = healthctrl.PingFunc(pool.Ping)

		settingsSrc = settings.NewPG(pool)
		stores = shared.NewPG(pool)
		log.Info("storage: postgres")
	} else {
		settingsSrc = settings.NewStatic(cfg.Settings)
		stores = shared.FromConfig(cfg.SharedStores)
		log.Info("storage: static config", logger.Int("shared_stores", len(cfg.SharedStores)))
	}
	settingsSrc = settings.Unsealed(settingsSrc, box)
	// la cache guarda las app keys selladas; se abren al salir
	stores = shared.Unsealed(shared.NewCached(stores, cacheClient, config.Dur(cfg.Cache.StoreTTL)), box)

	mailer := email.NewMailer(settingsSrc, email.NewSMTPTransport())
	captchaSvc := captcha.NewService(
		session.NewCacheStore(cacheClient, config.Dur(cfg.Cache.SessionTTL)),
		mailer,
		captcha.Config{Cooldown: config.Dur(cfg.Captcha.Cooldown), TTL: config.Dur(cfg.Captcha.TTL)},
	)
	partnerClient := partner.NewClient(nil, config.Dur(cfg.Partner.Timeout))

	var sendLimiter, checkIPLimiter, checkTargetLimiter rate.Limiter
	if !cfg.Rate.Disabled {
		window := config.Dur(cfg.Rate.Captcha.Window)
		if sendLimiter, err = newLimiter(cfg, cacheClient, "captcha", cfg.Rate.Captcha.Limit, window); err != nil {
			return err
		}
		window = config.Dur(cfg.Rate.Check.Window)
		if checkIPLimiter, err = newLimiter(cfg, cacheClient, "check:ip", cfg.Rate.Check.Limit, window); err != nil {
			return err
		}
		if checkTargetLimiter, err = newLimiter(cfg, cacheClient, "check:target", cfg.Rate.Check.Limit, window); err != nil {
			return err
		}
	}

	if cfg.Admin.JWTSecret == "" {
		log.Warn("admin.jwt_secret vacío: /v1/shared deshabilitado")
	}

	handler := router.New(router.Deps{
		Captcha:        captchactrl.NewCaptchaController(captchaSvc, captchactrl.WithCheckLimiter(checkTargetLimiter)),
		Shared:         sharedctrl.NewSharedController(stores, partnerClient),
		Health:         healthctrl.NewHealthController(cfg.App.Version, health),
		CaptchaLimiter: sendLimiter,
		CheckLimiter:   checkIPLimiter,
		Admin:          mw.AdminConfig{Secret: []byte(cfg.Admin.JWTSecret), Issuer: cfg.Admin.Issuer},
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http listening", logger.String("addr", cfg.Server.Addr), logger.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Dur(cfg.Server.ShutdownTimeout))
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLimiter(cfg *config.Config, c cache.Client, name string, limit int, window time.Duration) (rate.Limiter, error) {
	if cfg.Rate.Kind != "redis" {
		return rate.NewMemoryLimiter(limit, window), nil
	}
	raw, ok := c.(interface{ Raw() *rdb.Client })
	if !ok {
		return nil, errors.New("rate: kind=redis requiere cache redis")
	}
	return rate.NewRedisLimiter(raw.Raw(), cfg.Cache.Redis.Prefix+"rl:"+name+":", limit, window), nil
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
