package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"app_env"`
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr            string `yaml:"addr"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		// "" | pg. Vacío => settings y shared stores salen del YAML.
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			DB       int    `yaml:"db"`
			Password string `yaml:"password"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		// TTL aplicado a los registros de sesión en el backend.
		SessionTTL string `yaml:"session_ttl"`
		StoreTTL   string `yaml:"store_ttl"`
	} `yaml:"cache"`

	Captcha struct {
		Cooldown string `yaml:"cooldown"`
		TTL      string `yaml:"ttl"`
	} `yaml:"captcha"`

	Partner struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"partner"`

	Rate struct {
		Disabled bool   `yaml:"disabled"`
		Kind     string `yaml:"kind"` // memory | redis; vacío => igual que cache.kind
		Captcha struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"captcha"`
		// Check limita POST /v1/captcha/check: Limit por IP y por (propósito, email).
		Check struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"check"`
	} `yaml:"rate"`

	Admin struct {
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
	} `yaml:"admin"`

	Security struct {
		// base64(32 bytes) para abrir valores "sealed:".
		SecretBoxKey string `yaml:"secretbox_key"`
	} `yaml:"security"`

	// Settings alimenta settings.Static cuando no hay storage pg
	// (email_config, shop_name, ...). Los valores son strings JSON.
	Settings map[string]string `yaml:"settings"`

	SharedStores []SharedStore `yaml:"shared_stores"`
}

// SharedStore es una entrada estática de tienda compartida.
type SharedStore struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Domain string `yaml:"domain"`
	AppID  string `yaml:"app_id"`
	AppKey string `yaml:"app_key"`
}

// Load lee el YAML de path, aplica defaults, overrides por env y valida.
// Si path no existe se parte de una config vacía (útil con .env puro).
func Load(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	c.applyDefaults()
	c.applyEnvOverrides()
	if c.Rate.Kind == "" {
		c.Rate.Kind = c.Cache.Kind
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "mallkit"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "15s"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.SessionTTL == "" {
		c.Cache.SessionTTL = "10m"
	}
	if c.Cache.StoreTTL == "" {
		c.Cache.StoreTTL = "1m"
	}
	if c.Captcha.Cooldown == "" {
		c.Captcha.Cooldown = "60s"
	}
	if c.Captcha.TTL == "" {
		c.Captcha.TTL = "300s"
	}
	if c.Partner.Timeout == "" {
		c.Partner.Timeout = "10s"
	}
	if c.Rate.Captcha.Limit == 0 {
		c.Rate.Captcha.Limit = 10
	}
	if c.Rate.Captcha.Window == "" {
		c.Rate.Captcha.Window = "1m"
	}
	if c.Rate.Check.Limit == 0 {
		c.Rate.Check.Limit = 5
	}
	if c.Rate.Check.Window == "" {
		c.Rate.Check.Window = "1m"
	}
	if c.Admin.Issuer == "" {
		c.Admin.Issuer = "mallkit"
	}
	if c.Settings == nil {
		c.Settings = map[string]string{}
	}
}

// Validate chequea drivers y duraciones.
func (c *Config) Validate() error {
	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: cache.kind inválido %q (memory|redis)", c.Cache.Kind)
	}
	if c.Cache.Kind == "redis" && strings.TrimSpace(c.Cache.Redis.Addr) == "" {
		return fmt.Errorf("config: cache.redis.addr requerido con cache.kind=redis")
	}
	switch c.Rate.Kind {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("config: rate.kind inválido %q (memory|redis)", c.Rate.Kind)
	}
	if c.Rate.Kind == "redis" && c.Cache.Kind != "redis" {
		return fmt.Errorf("config: rate.kind=redis requiere cache.kind=redis")
	}
	switch c.Storage.Driver {
	case "", "pg", "postgres":
	default:
		return fmt.Errorf("config: storage.driver inválido %q", c.Storage.Driver)
	}
	if c.Storage.Driver != "" && strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("config: storage.dsn requerido con storage.driver=%s", c.Storage.Driver)
	}
	durs := map[string]string{
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"cache.session_ttl":       c.Cache.SessionTTL,
		"cache.store_ttl":         c.Cache.StoreTTL,
		"captcha.cooldown":        c.Captcha.Cooldown,
		"captcha.ttl":             c.Captcha.TTL,
		"partner.timeout":         c.Partner.Timeout,
		"rate.captcha.window":     c.Rate.Captcha.Window,
		"rate.check.window":       c.Rate.Check.Window,
	}
	for name, v := range durs {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	if c.Rate.Captcha.Limit < 0 || c.Rate.Check.Limit < 0 {
		return fmt.Errorf("config: rate.*.limit no puede ser negativo")
	}
	// el backend no puede olvidar un registro antes que cooldown y ttl
	sessionTTL := Dur(c.Cache.SessionTTL)
	if need := max(Dur(c.Captcha.Cooldown), Dur(c.Captcha.TTL)); sessionTTL < need {
		return fmt.Errorf("config: cache.session_ttl (%s) debe ser >= max(captcha.cooldown, captcha.ttl) (%s)", sessionTTL, need)
	}
	if strings.EqualFold(c.App.Env, "prod") && c.Admin.JWTSecret == "" {
		return fmt.Errorf("config: admin.jwt_secret requerido en prod")
	}
	seen := map[string]struct{}{}
	for _, s := range c.SharedStores {
		if s.ID == "" || s.Domain == "" {
			return fmt.Errorf("config: shared_stores requiere id y domain")
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("config: shared_stores id duplicado %q", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// Dur parsea una duración ya validada por Load.
func Dur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}

	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	if v, ok := getEnvStr("PARTNER_TIMEOUT"); ok {
		c.Partner.Timeout = v
	}

	if v, ok := getEnvBool("RATE_DISABLED"); ok {
		c.Rate.Disabled = v
	}
	if v, ok := getEnvInt("RATE_CAPTCHA_PER_MINUTE"); ok {
		c.Rate.Captcha.Limit = v
		c.Rate.Captcha.Window = "1m"
	}
	if v, ok := getEnvInt("RATE_CHECK_PER_MINUTE"); ok {
		c.Rate.Check.Limit = v
		c.Rate.Check.Window = "1m"
	}

	if v, ok := getEnvStr("ADMIN_JWT_SECRET"); ok {
		c.Admin.JWTSecret = v
	}
	if v, ok := getEnvStr("SECRETBOX_KEY"); ok {
		c.Security.SecretBoxKey = v
	}
}
