package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/revisit/internal/catalog"
	"github.com/at-ishikawa/revisit/internal/cli"
	"github.com/at-ishikawa/revisit/internal/config"
	"github.com/at-ishikawa/revisit/internal/database"
	"github.com/at-ishikawa/revisit/internal/repetition"
	"github.com/at-ishikawa/revisit/internal/scheduler"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// environment holds what a command needs after the configuration is loaded.
type environment struct {
	cfg       *config.Config
	db        *sqlx.DB
	catalog   catalog.Catalog
	repo      *repetition.DBRepository
	service   *scheduler.Service
	location  *time.Location
	presenter *cli.Presenter
}

func (env *environment) Close() error {
	var errs []error
	if closer, ok := env.catalog.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	errs = append(errs, env.db.Close())
	return errors.Join(errs...)
}

// newEnvironment opens the database and wires the scheduler. A SQLite
// database is migrated on open; MySQL requires an explicit "revisit migrate up".
func newEnvironment(cmd *cobra.Command) (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	location, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("catalog.New() > %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Open() > %w", err)
	}
	if cfg.Database.Driver == config.DriverSQLite {
		if err := database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("database.Migrate() > %w", err)
		}
	}

	repo := repetition.NewDBRepository(db)
	return &environment{
		cfg:     cfg,
		db:      db,
		catalog: cat,
		repo:    repo,
		service: scheduler.NewService(repo, cat,
			scheduler.WithLocation(location),
			scheduler.WithLogger(slog.Default()),
		),
		location:  location,
		presenter: cli.NewPresenter(cmd.OutOrStdout(), location),
	}, nil
}

// withEnvironment runs fn with an environment for the current user.
func withEnvironment(cmd *cobra.Command, fn func(env *environment, userID string) error) error {
	if userID == "" {
		return errors.New("a user is required: pass --user or set REVISIT_USER")
	}
	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = env.Close()
	}()
	return fn(env, userID)
}

func newPresenter(cmd *cobra.Command) *cli.Presenter {
	return cli.NewPresenter(cmd.OutOrStdout(), time.UTC)
}
