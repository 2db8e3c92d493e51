package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solatis/formkeeper/internal/core/api"
	"github.com/solatis/formkeeper/internal/core/cache"
	"github.com/solatis/formkeeper/internal/core/config"
	"github.com/solatis/formkeeper/internal/core/db"
	"github.com/solatis/formkeeper/internal/core/logging"
	"github.com/solatis/formkeeper/internal/core/store"
	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
)

// app holds the wired dependencies shared by commands.
type app struct {
	cfg   *config.ServerConfig
	log   *zap.Logger
	db    *sqlx.DB
	cache *cache.Redis
	svc   *api.Service
}

// loadConfig reads the config file and environment, then applies the
// persistent flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.ServerConfig, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("db-url") {
		cfg.DatabaseURL = dbURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = strings.ToLower(logLevel)
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = strings.ToLower(logFormat)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.ServerConfig) (*zap.Logger, error) {
	log, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// openDB opens the configured database without touching its schema.
func openDB(ctx context.Context, cmd *cobra.Command) (*config.ServerConfig, *zap.Logger, *sqlx.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Sync()
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, log, database, nil
}

// openApp wires the database, optional cache and form service. The schema
// must be fully migrated.
func openApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, log, database, err := openDB(ctx, cmd)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, db: database}

	if err := requireMigrated(ctx, database); err != nil {
		a.Close()
		return nil, err
	}

	repo, err := store.New(database)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	var formCache cache.FormCache
	if cfg.RedisURL != "" {
		a.cache, err = cache.OpenRedis(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		formCache = a.cache
	}

	a.svc, err = api.NewService(repo, formCache, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return a, nil
}

func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	a.log.Sync()
}

func requireMigrated(ctx context.Context, database *sqlx.DB) error {
	statuses, err := db.MigrateStatus(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to check migrations: %w", err)
	}
	pending := 0
	for _, s := range statuses {
		if !s.Applied {
			pending++
		}
	}
	if pending > 0 {
		return fmt.Errorf("%d pending migration(s) - run 'formkeeper migrate up' first", pending)
	}
	return nil
}

// resolveForm finds a form by id or slug, including soft-deleted forms.
func (a *app) resolveForm(ctx context.Context, ref string) (*schema.Form, error) {
	if _, err := uuid.Parse(ref); err == nil {
		return a.svc.FormByID(ctx, types.FormID(ref))
	}
	forms, err := a.svc.ListForms(ctx, true)
	if err != nil {
		return nil, err
	}
	for _, f := range forms {
		if f.Slug == ref {
			return a.svc.FormByID(ctx, f.ID)
		}
	}
	return nil, fmt.Errorf("%w: %q", types.ErrFormNotFound, ref)
}
