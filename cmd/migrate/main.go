package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dropDatabas3/mallkit/internal/config"
	"github.com/dropDatabas3/mallkit/internal/observability/logger"
	migrations "github.com/dropDatabas3/mallkit/migrations/postgres"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", envOr("CONFIG_PATH", "configs/config.yaml"), "Path to YAML config")
	flag.Parse()

	// Positional args: [action] [steps]
	action := "up"
	steps := 0
	args := flag.Args()
	if len(args) >= 1 && args[0] != "" {
		action = strings.ToLower(args[0])
	}
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			steps = n
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "mallkit-migrate"})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	if cfg.Storage.DSN == "" {
		log.Fatal("storage.dsn vacío: nada que migrar")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		log.Fatal("pgxpool", logger.Err(err))
	}
	defer pool.Close()

	var suffix string
	switch action {
	case "up":
		suffix = "_up.sql"
	case "down":
		suffix = "_down.sql"
	default:
		log.Fatal("acción desconocida; usar: up | down [steps]", logger.String("action", action))
	}

	files, err := listSQL(suffix)
	if err != nil {
		log.Fatal("list migrations", logger.Err(err))
	}
	if action == "down" {
		reverseInPlace(files)
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}
	if len(files) == 0 {
		log.Info("no migrations found, nothing to do")
		return
	}

	for _, f := range files {
		if err := execSQLFile(ctx, pool, f); err != nil {
			log.Fatal("migration failed", logger.String("file", f), logger.Err(err))
		}
		log.Info("migration applied", logger.String("file", f))
	}
}

func listSQL(suffix string) ([]string, error) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func reverseInPlace(ss []string) {
	for i, j := 0, len(ss)-1; i < j; i, j = i+1, j-1 {
		ss[i], ss[j] = ss[j], ss[i]
	}
}

func execSQLFile(ctx context.Context, pool *pgxpool.Pool, name string) error {
	b, err := fs.ReadFile(migrations.FS, name)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if _, err := pool.Exec(ctx, string(b)); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
